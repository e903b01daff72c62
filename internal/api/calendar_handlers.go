package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/clinicware/ambulatorio-scheduling/internal/agenda"
)

func holidaysHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year := time.Now().Year()
		if anno := r.URL.Query().Get("anno"); anno != "" {
			n, err := strconv.Atoi(anno)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_anno", "anno must be a year")
				return
			}
			year = n
		}

		writeJSON(w, http.StatusOK, agenda.Holidays(year))
	}
}

func timeSlotsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, SlotsResponse{
			Mattina:    agenda.MorningSlots(),
			Pomeriggio: agenda.AfternoonSlots(),
			Tutti:      agenda.TimeSlots,
		})
	}
}
