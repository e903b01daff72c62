package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/clinicware/ambulatorio-scheduling/internal/agenda"
)

func listClosedSlotsHandler(svc *agenda.Service) http.HandlerFunc {
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

		closures, err := svc.ListClosures(r.Context(), site, from, to)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toClosedSlotResponses(closures))
	}
}

func createClosedSlotsHandler(svc *agenda.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateClosedSlotsRequest
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

		claims := claimsFrom(r.Context())

		closeReq := agenda.CloseRequest{
			Ambulatorio: site,
			Data:        req.Data,
			Ore:         req.Ora,
			CreatedBy:   claims.Subject,
		}
		if req.Tipo != nil {
			t := agenda.CareType(*req.Tipo)
			closeReq.Tipo = &t
		}
		if req.Motivo != nil {
			closeReq.Motivo = *req.Motivo
		}

		created, err := svc.CloseSlots(r.Context(), closeReq)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{
			"created": len(created),
			"slots":   toClosedSlotResponses(created),
		})
	}
}

func deleteClosedSlotHandler(svc *agenda.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_closed_slot_id", "id must be a valid UUID")
			return
		}

		closure, err := svc.GetClosure(r.Context(), id)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		if !requireSite(w, r, closure.Ambulatorio) {
			return
		}

		if err := svc.ReopenSlot(r.Context(), id); err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "slot reopened"})
	}
}

func reopenDayHandler(svc *agenda.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ReopenDayRequest
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

		deleted, err := svc.ReopenDay(r.Context(), site, req.Data)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"message":       fmt.Sprintf("%d slots reopened", deleted),
			"deleted_count": deleted,
		})
	}
}
