package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOraListUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want OraList
	}{
		{"single string", `{"ora": "09:00"}`, OraList{"09:00"}},
		{"list", `{"ora": ["09:00", "09:30"]}`, OraList{"09:00", "09:30"}},
		{"null means whole day", `{"ora": null}`, nil},
		{"absent means whole day", `{}`, nil},
		{"empty list", `{"ora": []}`, OraList{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req CreateClosedSlotsRequest
			require.NoError(t, json.Unmarshal([]byte(tt.in), &req))
			assert.Equal(t, tt.want, req.Ora)
		})
	}

	var req CreateClosedSlotsRequest
	err := json.Unmarshal([]byte(`{"ora": 930}`), &req)
	assert.Error(t, err)
}

func TestValidateCustomTags(t *testing.T) {
	base := CreateClosedSlotsRequest{
		Data:        "2026-09-02",
		Ambulatorio: "pta_centro",
		Ora:         OraList{"09:00"},
	}
	assert.NoError(t, validateStruct(base))

	badDate := base
	badDate.Data = "02/09/2026"
	assert.Error(t, validateStruct(badDate))

	badSlot := base
	badSlot.Ora = OraList{"13:00"}
	assert.Error(t, validateStruct(badSlot))

	badSite := base
	badSite.Ambulatorio = "altrove"
	assert.Error(t, validateStruct(badSite))

	wholeDay := base
	wholeDay.Ora = nil
	assert.NoError(t, validateStruct(wholeDay))
}

func TestCreateAppointmentRequestValidation(t *testing.T) {
	base := CreateAppointmentRequest{
		PatientID:   "8e9f2b54-3c1d-4a6b-9e0f-1a2b3c4d5e6f",
		Ambulatorio: "villa_ginestre",
		Data:        "2026-09-02",
		Ora:         "15:30",
		Tipo:        "PICC",
	}
	assert.NoError(t, validateStruct(base))

	bad := base
	bad.PatientID = "not-a-uuid"
	assert.Error(t, validateStruct(bad))

	bad = base
	bad.Tipo = "CHIR"
	assert.Error(t, validateStruct(bad))

	bad = base
	bad.Ora = "08:00"
	assert.Error(t, validateStruct(bad))
}
