package api

import (
	"errors"
	"net/http"

	"github.com/clinicware/ambulatorio-scheduling/internal/agenda"
	"github.com/clinicware/ambulatorio-scheduling/internal/auth"
	"github.com/clinicware/ambulatorio-scheduling/internal/patient"
	redisclient "github.com/clinicware/ambulatorio-scheduling/internal/redis"
)

// handleDomainError maps service sentinel errors to the wire error
// envelope. Booking rejections surface the resolver's reason code.
func handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, agenda.ErrPatientNotFound), errors.Is(err, patient.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
	case errors.Is(err, agenda.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, agenda.ErrClosedSlotNotFound):
		writeError(w, http.StatusNotFound, "closed_slot_not_found", err.Error())

	case errors.Is(err, agenda.ErrNonWorkingDay):
		writeError(w, http.StatusConflict, "non_working_day", err.Error())
	case errors.Is(err, agenda.ErrSlotClosed):
		writeError(w, http.StatusConflict, "slot_closed", err.Error())
	case errors.Is(err, agenda.ErrSlotFull):
		writeError(w, http.StatusConflict, "slot_full", err.Error())
	case errors.Is(err, agenda.ErrSlotBeingBooked), errors.Is(err, redisclient.ErrLockNotAcquired):
		writeError(w, http.StatusConflict, "slot_being_booked", "slot is currently being booked, please retry shortly")

	case errors.Is(err, agenda.ErrInvalidSite),
		errors.Is(err, agenda.ErrInvalidCareType),
		errors.Is(err, agenda.ErrInvalidTimeSlot),
		errors.Is(err, agenda.ErrInvalidStatus),
		errors.Is(err, agenda.ErrInvalidDate),
		errors.Is(err, patient.ErrInvalidType),
		errors.Is(err, patient.ErrInvalidStatus),
		errors.Is(err, patient.ErrInvalidCatheterType),
		errors.Is(err, patient.ErrVillaGinestrePICCOnly),
		errors.Is(err, patient.ErrDischargeReasonRequired),
		errors.Is(err, patient.ErrSuspendNotesRequired),
		errors.Is(err, patient.ErrNotPICCPatient):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())

	case errors.Is(err, patient.ErrSiteNotAllowed):
		writeError(w, http.StatusForbidden, "site_forbidden", err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid_credentials", err.Error())

	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
