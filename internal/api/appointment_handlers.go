package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/clinicware/ambulatorio-scheduling/internal/agenda"
)

// dateRangeBounds used when a listing carries no date filter.
const (
	rangeMin = "0001-01-01"
	rangeMax = "9999-12-31"
)

// requireSite checks the claims grant access to the requested site.
// Writes the error response itself and reports whether to continue.
func requireSite(w http.ResponseWriter, r *http.Request, site agenda.Site) bool {
	if !site.Valid() {
		writeError(w, http.StatusBadRequest, "invalid_ambulatorio", "unknown ambulatorio")
		return false
	}
	claims := claimsFrom(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing_token", "no session")
		return false
	}
	if !claims.AllowsSite(site) {
		writeError(w, http.StatusForbidden, "site_forbidden", "no access to this ambulatorio")
		return false
	}
	return true
}

// queryRange resolves the data / data_from+data_to query parameters.
func queryRange(r *http.Request) (from, to string, ok bool) {
	q := r.URL.Query()
	if data := q.Get("data"); data != "" {
		if _, err := parseDate(data); err != nil {
			return "", "", false
		}
		return data, data, true
	}
	dataFrom, dataTo := q.Get("data_from"), q.Get("data_to")
	if dataFrom != "" && dataTo != "" {
		if _, err := parseDate(dataFrom); err != nil {
			return "", "", false
		}
		if _, err := parseDate(dataTo); err != nil {
			return "", "", false
		}
		return dataFrom, dataTo, true
	}
	return rangeMin, rangeMax, true
}

func listAppointmentsHandler(svc *agenda.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		site := agenda.Site(r.URL.Query().Get("ambulatorio"))
		if !requireSite(w, r, site) {
			return
		}

		from, to, ok := queryRange(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_date", "dates must be yyyy-MM-dd")
			return
		}

		var tipo *agenda.CareType
		if t := r.URL.Query().Get("tipo"); t != "" {
			ct := agenda.CareType(t)
			if !ct.Valid() {
				writeError(w, http.StatusBadRequest, "invalid_tipo", "tipo must be PICC or MED")
				return
			}
			tipo = &ct
		}

		appts, err := svc.ListRange(r.Context(), site, from, to, tipo)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponses(appts))
	}
}

func createAppointmentHandler(svc *agenda.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if err := validateStruct(req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}

		site := agenda.Site(req.Ambulatorio)
		if !requireSite(w, r, site) {
			return
		}

		patientID, err := uuid.Parse(req.PatientID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "patient_id must be a valid UUID")
			return
		}

		booking := agenda.BookingRequest{
			PatientID:   patientID,
			Ambulatorio: site,
			Data:        req.Data,
			Ora:         req.Ora,
			Tipo:        agenda.CareType(req.Tipo),
			Prestazioni: req.Prestazioni,
			Note:        req.Note,
		}
		if req.Stato != nil {
			booking.Stato = agenda.AppointmentStatus(*req.Stato)
		}

		appt, err := svc.Book(r.Context(), booking)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(*appt))
	}
}

// loadOwnedAppointment fetches an appointment and enforces site access on
// the row it belongs to.
func loadOwnedAppointment(w http.ResponseWriter, r *http.Request, svc *agenda.Service) (*agenda.Appointment, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
		return nil, false
	}

	appt, err := svc.GetAppointment(r.Context(), id)
	if err != nil {
		handleDomainError(w, err)
		return nil, false
	}
	if !requireSite(w, r, appt.Ambulatorio) {
		return nil, false
	}
	return appt, true
}

func updateAppointmentHandler(svc *agenda.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appt, ok := loadOwnedAppointment(w, r, svc)
		if !ok {
			return
		}

		var req UpdateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if err := validateStruct(req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}

		upd := agenda.AppointmentUpdate{
			Prestazioni: req.Prestazioni,
			Note:        req.Note,
		}
		if req.Stato != nil {
			s := agenda.AppointmentStatus(*req.Stato)
			upd.Stato = &s
		}

		updated, err := svc.Update(r.Context(), appt.ID, upd)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(*updated))
	}
}

func deleteAppointmentHandler(svc *agenda.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appt, ok := loadOwnedAppointment(w, r, svc)
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), appt.ID); err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "appointment deleted"})
	}
}
