package agenda

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrClosedSlotNotFound  = errors.New("closed slot not found")
	ErrPatientNotFound     = errors.New("patient not found")
)

// PatientRef is the slice of the roster the agenda needs when booking:
// identity plus the name denormalized onto the appointment row.
type PatientRef struct {
	ID      uuid.UUID
	Nome    string
	Cognome string
}

// AppointmentUpdate carries a partial update; nil fields are left as-is.
type AppointmentUpdate struct {
	Stato       *AppointmentStatus
	Prestazioni []string
	Note        *string
}

// Repository contains all DB interactions needed by the service.
type Repository interface {
	GetPatientRef(ctx context.Context, id uuid.UUID) (*PatientRef, error)

	// Appointments. List results are ordered by (data, ora, created_at).
	ListAppointments(ctx context.Context, site Site, from, to string, tipo *CareType) ([]Appointment, error)
	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	CreateAppointment(ctx context.Context, a Appointment) (*Appointment, error)
	UpdateAppointment(ctx context.Context, id uuid.UUID, upd AppointmentUpdate) (*Appointment, error)
	DeleteAppointment(ctx context.Context, id uuid.UUID) error

	// Closure records. List results are ordered by (created_at, id) so the
	// first wildcard match is deterministic.
	ListClosures(ctx context.Context, site Site, from, to string) ([]ClosedSlot, error)
	GetClosureByID(ctx context.Context, id uuid.UUID) (*ClosedSlot, error)
	FindClosure(ctx context.Context, site Site, data string, ora *string, tipo *CareType) (*ClosedSlot, error)
	CreateClosure(ctx context.Context, c ClosedSlot) (*ClosedSlot, error)
	DeleteClosure(ctx context.Context, id uuid.UUID) error
	DeleteClosuresForDay(ctx context.Context, site Site, data string) (int64, error)

	// Event logging
	InsertEvent(ctx context.Context, ev EventLog) error
}
