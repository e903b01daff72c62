package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHolidaysHandler(t *testing.T) {
	h := holidaysHandler()

	t.Run("returns the requested year", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/calendar/holidays?anno=2026", nil)
		rec := httptest.NewRecorder()
		h(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var days []string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &days))
		assert.Contains(t, days, "2026-07-15")
		assert.Contains(t, days, "2026-04-06")
	})

	t.Run("rejects a malformed year", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/calendar/holidays?anno=duemila", nil)
		rec := httptest.NewRecorder()
		h(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTimeSlotsHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/calendar/slots", nil)
	rec := httptest.NewRecorder()
	timeSlotsHandler()(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var res SlotsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Len(t, res.Mattina, 9)
	assert.Len(t, res.Pomeriggio, 6)
	assert.Len(t, res.Tutti, 15)
}
