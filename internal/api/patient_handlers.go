package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/clinicware/ambulatorio-scheduling/internal/agenda"
	"github.com/clinicware/ambulatorio-scheduling/internal/patient"
)

func listPatientsHandler(svc *patient.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		site := agenda.Site(r.URL.Query().Get("ambulatorio"))
		if !requireSite(w, r, site) {
			return
		}

		q := patient.ListQuery{
			Ambulatorio: site,
			Search:      r.URL.Query().Get("search"),
		}
		if s := r.URL.Query().Get("status"); s != "" {
			st := patient.Status(s)
			q.Status = &st
		}
		if t := r.URL.Query().Get("tipo"); t != "" {
			tp := patient.Type(t)
			q.Tipo = &tp
		}

		patients, err := svc.List(r.Context(), q)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toPatientResponses(patients))
	}
}

func createPatientHandler(svc *patient.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreatePatientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if err := validateStruct(req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		if !requireSite(w, r, agenda.Site(req.Ambulatorio)) {
			return
		}

		p, err := svc.Create(r.Context(), req.toDomain())
		if err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toPatientResponse(*p))
	}
}

// loadOwnedPatient fetches a patient and enforces site access on the row.
func loadOwnedPatient(w http.ResponseWriter, r *http.Request, svc *patient.Service) (*patient.Patient, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_patient_id", "id must be a valid UUID")
		return nil, false
	}

	p, err := svc.Get(r.Context(), id)
	if err != nil {
		handleDomainError(w, err)
		return nil, false
	}
	if !requireSite(w, r, p.Ambulatorio) {
		return nil, false
	}
	return p, true
}

func getPatientHandler(svc *patient.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := loadOwnedPatient(w, r, svc)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, toPatientResponse(*p))
	}
}

func updatePatientHandler(svc *patient.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := loadOwnedPatient(w, r, svc)
		if !ok {
			return
		}

		var req UpdatePatientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if err := validateStruct(req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}

		updated, err := svc.UpdateDetails(r.Context(), p.ID, req.toDomain())
		if err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toPatientResponse(*updated))
	}
}

func deletePatientHandler(svc *patient.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := loadOwnedPatient(w, r, svc)
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), p.ID); err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "patient and related records deleted"})
	}
}

func batchCreatePatientsHandler(svc *patient.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BatchPatientCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if err := validateStruct(req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}

		claims := claimsFrom(r.Context())
		if claims == nil {
			writeError(w, http.StatusUnauthorized, "missing_token", "no session")
			return
		}

		reqs := make([]patient.CreateRequest, 0, len(req.Patients))
		for _, p := range req.Patients {
			reqs = append(reqs, p.toDomain())
		}

		res := svc.CreateBatch(r.Context(), reqs, claims.Sites(), claims.Subject)

		writeJSON(w, http.StatusCreated, BatchCreateResponse{
			Created:         len(res.Created),
			Errors:          len(res.Errors),
			ImpiantiCreated: res.ImplantsCreated,
			Patients:        toPatientResponses(res.Created),
			ErrorDetails:    res.Errors,
		})
	}
}

func batchStatusHandler(svc *patient.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BatchStatusChangeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if err := validateStruct(req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}

		claims := claimsFrom(r.Context())
		if claims == nil {
			writeError(w, http.StatusUnauthorized, "missing_token", "no session")
			return
		}

		ids, err := parseUUIDs(req.PatientIDs)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", err.Error())
			return
		}

		change := patient.StatusChangeRequest{
			PatientIDs:     ids,
			Status:         patient.Status(req.Status),
			DischargeNotes: req.DischargeNotes,
			SuspendNotes:   req.SuspendNotes,
		}
		if req.DischargeReason != nil {
			reason := patient.DischargeReason(*req.DischargeReason)
			change.DischargeReason = &reason
		}

		res, err := svc.ChangeStatusBatch(r.Context(), change, claims.Sites())
		if err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, BatchStatusResponse{
			Updated:      len(res.Updated),
			Errors:       len(res.Errors),
			Patients:     res.Updated,
			ErrorDetails: res.Errors,
		})
	}
}

func batchDeletePatientsHandler(svc *patient.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BatchDeleteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if err := validateStruct(req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}

		claims := claimsFrom(r.Context())
		if claims == nil {
			writeError(w, http.StatusUnauthorized, "missing_token", "no session")
			return
		}

		ids, err := parseUUIDs(req.PatientIDs)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", err.Error())
			return
		}

		res := svc.DeleteBatch(r.Context(), ids, claims.Sites())

		writeJSON(w, http.StatusOK, BatchDeleteResponse{
			Deleted:      len(res.Deleted),
			Errors:       len(res.Errors),
			Patients:     res.Deleted,
			ErrorDetails: res.Errors,
		})
	}
}

func searchPICCHandler(svc *patient.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFrom(r.Context())
		if claims == nil {
			writeError(w, http.StatusUnauthorized, "missing_token", "no session")
			return
		}

		var site *agenda.Site
		if s := r.URL.Query().Get("ambulatorio"); s != "" {
			st := agenda.Site(s)
			if !st.Valid() {
				writeError(w, http.StatusBadRequest, "invalid_ambulatorio", "unknown ambulatorio")
				return
			}
			site = &st
		}

		patients, err := svc.SearchPICC(r.Context(), r.URL.Query().Get("q"), site, claims.Sites())
		if err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toPatientResponses(patients))
	}
}

func batchCreateImplantsHandler(svc *patient.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BatchImplantCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if err := validateStruct(req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}

		claims := claimsFrom(r.Context())
		if claims == nil {
			writeError(w, http.StatusUnauthorized, "missing_token", "no session")
			return
		}

		reqs := make([]patient.ImplantRequest, 0, len(req.Implants))
		for _, im := range req.Implants {
			id, err := uuid.Parse(im.PatientID)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_patient_id", "patient_id must be a valid UUID")
				return
			}
			reqs = append(reqs, patient.ImplantRequest{
				PatientID:    id,
				TipoCatetere: patient.CatheterType(im.TipoImpianto),
				DataImpianto: im.DataInserimento,
			})
		}

		res := svc.CreateImplantsBatch(r.Context(), reqs, claims.Sites(), claims.Subject)

		implants := make([]ImplantResponse, 0, len(res.Created))
		for _, im := range res.Created {
			implants = append(implants, toImplantResponse(im))
		}

		writeJSON(w, http.StatusCreated, BatchImplantResponse{
			Created:      len(res.Created),
			Errors:       len(res.Errors),
			Implants:     implants,
			ErrorDetails: res.Errors,
		})
	}
}

func parseUUIDs(in []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(in))
	for _, s := range in {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
