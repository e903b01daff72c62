package agenda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	redisclient "github.com/clinicware/ambulatorio-scheduling/internal/redis"
)

const (
	EventAppointmentBooked  = "APPOINTMENT_BOOKED"
	EventAppointmentUpdated = "APPOINTMENT_UPDATED"
	EventAppointmentDeleted = "APPOINTMENT_DELETED"
	EventSlotClosed         = "SLOT_CLOSED"
	EventSlotReopened       = "SLOT_REOPENED"
	EventDayReopened        = "DAY_REOPENED"
)

var (
	ErrInvalidSite     = errors.New("unknown ambulatorio")
	ErrInvalidCareType = errors.New("tipo must be PICC or MED")
	ErrInvalidTimeSlot = errors.New("ora is not a valid time slot")
	ErrInvalidStatus   = errors.New("invalid appointment status")
	ErrSlotBeingBooked = errors.New("slot is currently being booked, please retry")
)

type BookingRequest struct {
	PatientID   uuid.UUID
	Ambulatorio Site
	Data        string
	Ora         string
	Tipo        CareType
	Prestazioni []string
	Note        *string
	Stato       AppointmentStatus // defaults to StatusToDo
}

type CloseRequest struct {
	Ambulatorio Site
	Data        string
	Ore         []string // nil closes the whole day; an empty list closes nothing
	Tipo        *CareType
	Motivo      string
	CreatedBy   string
}

type Service struct {
	repo   Repository
	locker redisclient.Locker
	log    *zap.Logger
}

func NewService(repo Repository, locker redisclient.Locker, log *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		locker: locker,
		log:    log,
	}
}

// slotLockKey scopes the booking critical section to one bookable slot.
func slotLockKey(site Site, data, ora string, tipo CareType) string {
	return fmt.Sprintf("slot:%s:%s:%s:%s", site, data, ora, tipo)
}

// holidaysAround builds the holiday set for the year of data plus its
// neighbours, keeping checks near a year boundary correct.
func holidaysAround(data string) (HolidaySet, error) {
	day, err := time.Parse(DateLayout, data)
	if err != nil {
		return nil, ErrInvalidDate
	}
	y := day.Year()
	return HolidaySetFor(y-1, y, y+1), nil
}

// Book reserves a slot for a patient. The availability check and the
// insert run under a per-slot distributed lock so concurrent requests
// cannot overshoot the slot capacity.
func (s *Service) Book(ctx context.Context, req BookingRequest) (*Appointment, error) {
	if !req.Ambulatorio.Valid() {
		return nil, ErrInvalidSite
	}
	if !req.Tipo.Valid() {
		return nil, ErrInvalidCareType
	}
	if !IsValidSlot(req.Ora) {
		return nil, ErrInvalidTimeSlot
	}
	if req.Stato == "" {
		req.Stato = StatusToDo
	}
	if !req.Stato.Valid() {
		return nil, ErrInvalidStatus
	}

	hs, err := holidaysAround(req.Data)
	if err != nil {
		return nil, err
	}

	patient, err := s.repo.GetPatientRef(ctx, req.PatientID)
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}

	var created *Appointment

	err = s.locker.WithSlotLock(ctx, slotLockKey(req.Ambulatorio, req.Data, req.Ora, req.Tipo), func(lockCtx context.Context) error {
		// Inside the critical section take fresh snapshots and re-run the
		// availability decision.
		closures, err := s.repo.ListClosures(lockCtx, req.Ambulatorio, req.Data, req.Data)
		if err != nil {
			return fmt.Errorf("load closures: %w", err)
		}
		appts, err := s.repo.ListAppointments(lockCtx, req.Ambulatorio, req.Data, req.Data, nil)
		if err != nil {
			return fmt.Errorf("load appointments: %w", err)
		}

		if err := CheckBookable(req.Data, req.Ora, req.Tipo, hs, closures, appts); err != nil {
			return err
		}

		appt, err := s.repo.CreateAppointment(lockCtx, Appointment{
			PatientID:      patient.ID,
			PatientNome:    patient.Nome,
			PatientCognome: patient.Cognome,
			Ambulatorio:    req.Ambulatorio,
			Data:           req.Data,
			Ora:            req.Ora,
			Tipo:           req.Tipo,
			Prestazioni:    req.Prestazioni,
			Note:           req.Note,
			Stato:          req.Stato,
		})
		if err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}

		created = appt

		s.logEvent(lockCtx, appt.ID, EventAppointmentBooked, map[string]any{
			"patient_id":  patient.ID.String(),
			"ambulatorio": req.Ambulatorio,
			"data":        req.Data,
			"ora":         req.Ora,
			"tipo":        req.Tipo,
		})

		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotBeingBooked
		}
		return nil, err
	}

	return created, nil
}

// Update applies a partial change: status and/or procedures and/or note.
// Status transitions are freely reversible, only enum membership is
// enforced.
func (s *Service) Update(ctx context.Context, id uuid.UUID, upd AppointmentUpdate) (*Appointment, error) {
	if upd.Stato != nil && !upd.Stato.Valid() {
		return nil, ErrInvalidStatus
	}

	if _, err := s.repo.GetAppointmentByID(ctx, id); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateAppointment(ctx, id, upd)
	if err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}

	payload := map[string]any{}
	if upd.Stato != nil {
		payload["stato"] = *upd.Stato
	}
	if upd.Prestazioni != nil {
		payload["prestazioni"] = upd.Prestazioni
	}
	s.logEvent(ctx, updated.ID, EventAppointmentUpdated, payload)

	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteAppointment(ctx, id); err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}

	s.logEvent(ctx, appt.ID, EventAppointmentDeleted, map[string]any{
		"data": appt.Data,
		"ora":  appt.Ora,
		"tipo": appt.Tipo,
	})

	return nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetAppointmentByID(ctx, id)
}

// ListDay returns one day's appointments, ordered by hour.
func (s *Service) ListDay(ctx context.Context, site Site, data string, tipo *CareType) ([]Appointment, error) {
	if !site.Valid() {
		return nil, ErrInvalidSite
	}
	return s.repo.ListAppointments(ctx, site, data, data, tipo)
}

func (s *Service) ListRange(ctx context.Context, site Site, from, to string, tipo *CareType) ([]Appointment, error) {
	if !site.Valid() {
		return nil, ErrInvalidSite
	}
	return s.repo.ListAppointments(ctx, site, from, to, tipo)
}

// CloseSlots records one closure per requested hour, or a whole-day
// closure when Ore is nil. An empty hour list creates nothing.
// Already-recorded closures are skipped, never duplicated.
func (s *Service) CloseSlots(ctx context.Context, req CloseRequest) ([]ClosedSlot, error) {
	if !req.Ambulatorio.Valid() {
		return nil, ErrInvalidSite
	}
	if req.Tipo != nil && !req.Tipo.Valid() {
		return nil, ErrInvalidCareType
	}
	if _, err := time.Parse(DateLayout, req.Data); err != nil {
		return nil, ErrInvalidDate
	}
	for _, ora := range req.Ore {
		if !IsValidSlot(ora) {
			return nil, ErrInvalidTimeSlot
		}
	}

	motivo := req.Motivo
	if motivo == "" {
		motivo = "Chiuso"
	}

	ore := make([]*string, 0, len(req.Ore))
	if req.Ore == nil {
		ore = append(ore, nil)
	} else {
		for i := range req.Ore {
			ore = append(ore, &req.Ore[i])
		}
	}

	var created []ClosedSlot
	for _, ora := range ore {
		existing, err := s.repo.FindClosure(ctx, req.Ambulatorio, req.Data, ora, req.Tipo)
		if err != nil && !errors.Is(err, ErrClosedSlotNotFound) {
			return nil, fmt.Errorf("check existing closure: %w", err)
		}
		if existing != nil {
			continue
		}

		c, err := s.repo.CreateClosure(ctx, ClosedSlot{
			Ambulatorio: req.Ambulatorio,
			Data:        req.Data,
			Ora:         ora,
			Tipo:        req.Tipo,
			Motivo:      motivo,
			CreatedBy:   req.CreatedBy,
		})
		if err != nil {
			return nil, fmt.Errorf("create closure: %w", err)
		}
		created = append(created, *c)

		s.logEvent(ctx, c.ID, EventSlotClosed, map[string]any{
			"ambulatorio": req.Ambulatorio,
			"data":        req.Data,
			"ora":         ora,
			"tipo":        req.Tipo,
			"motivo":      motivo,
		})
	}

	return created, nil
}

func (s *Service) ListClosures(ctx context.Context, site Site, from, to string) ([]ClosedSlot, error) {
	if !site.Valid() {
		return nil, ErrInvalidSite
	}
	return s.repo.ListClosures(ctx, site, from, to)
}

func (s *Service) GetClosure(ctx context.Context, id uuid.UUID) (*ClosedSlot, error) {
	return s.repo.GetClosureByID(ctx, id)
}

// ReopenSlot deletes one closure record; other closures for the same day
// are untouched.
func (s *Service) ReopenSlot(ctx context.Context, id uuid.UUID) error {
	c, err := s.repo.GetClosureByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteClosure(ctx, id); err != nil {
		return fmt.Errorf("delete closure: %w", err)
	}

	s.logEvent(ctx, c.ID, EventSlotReopened, map[string]any{
		"data": c.Data,
		"ora":  c.Ora,
		"tipo": c.Tipo,
	})

	return nil
}

// ReopenDay deletes every closure record for the day and reports how many
// were removed.
func (s *Service) ReopenDay(ctx context.Context, site Site, data string) (int64, error) {
	if !site.Valid() {
		return 0, ErrInvalidSite
	}

	n, err := s.repo.DeleteClosuresForDay(ctx, site, data)
	if err != nil {
		return 0, fmt.Errorf("delete closures for day: %w", err)
	}

	if n > 0 {
		s.logEvent(ctx, uuid.Nil, EventDayReopened, map[string]any{
			"ambulatorio": site,
			"data":        data,
			"deleted":     n,
		})
	}

	return n, nil
}

func (s *Service) logEvent(ctx context.Context, entityID uuid.UUID, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.log.Warn("marshal event payload", zap.String("event", eventType), zap.Error(err))
		data = nil
	}

	ev := EventLog{
		EventType: eventType,
		Payload:   data,
		CreatedAt: time.Now(),
	}
	if entityID != uuid.Nil {
		id := entityID
		ev.EntityID = &id
	}

	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		s.log.Warn("insert event log", zap.String("event", eventType), zap.Error(err))
	}
}
