package agenda

import (
	"context"
	"errors"

	"github.com/google/uuid"

	redisclient "github.com/clinicware/ambulatorio-scheduling/internal/redis"
)

var _ Repository = (*mockRepository)(nil)

// mockRepository implements Repository with overridable func fields.
// Unset funcs return a "not implemented" error so tests fail loudly when
// they hit an interaction they did not stub.
type mockRepository struct {
	GetPatientRefFunc        func(ctx context.Context, id uuid.UUID) (*PatientRef, error)
	ListAppointmentsFunc     func(ctx context.Context, site Site, from, to string, tipo *CareType) ([]Appointment, error)
	GetAppointmentByIDFunc   func(ctx context.Context, id uuid.UUID) (*Appointment, error)
	CreateAppointmentFunc    func(ctx context.Context, a Appointment) (*Appointment, error)
	UpdateAppointmentFunc    func(ctx context.Context, id uuid.UUID, upd AppointmentUpdate) (*Appointment, error)
	DeleteAppointmentFunc    func(ctx context.Context, id uuid.UUID) error
	ListClosuresFunc         func(ctx context.Context, site Site, from, to string) ([]ClosedSlot, error)
	GetClosureByIDFunc       func(ctx context.Context, id uuid.UUID) (*ClosedSlot, error)
	FindClosureFunc          func(ctx context.Context, site Site, data string, ora *string, tipo *CareType) (*ClosedSlot, error)
	CreateClosureFunc        func(ctx context.Context, c ClosedSlot) (*ClosedSlot, error)
	DeleteClosureFunc        func(ctx context.Context, id uuid.UUID) error
	DeleteClosuresForDayFunc func(ctx context.Context, site Site, data string) (int64, error)
	InsertEventFunc          func(ctx context.Context, ev EventLog) error
}

func (m *mockRepository) GetPatientRef(ctx context.Context, id uuid.UUID) (*PatientRef, error) {
	if m.GetPatientRefFunc != nil {
		return m.GetPatientRefFunc(ctx, id)
	}
	return nil, errors.New("GetPatientRefFunc not stubbed")
}

func (m *mockRepository) ListAppointments(ctx context.Context, site Site, from, to string, tipo *CareType) ([]Appointment, error) {
	if m.ListAppointmentsFunc != nil {
		return m.ListAppointmentsFunc(ctx, site, from, to, tipo)
	}
	return nil, errors.New("ListAppointmentsFunc not stubbed")
}

func (m *mockRepository) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	if m.GetAppointmentByIDFunc != nil {
		return m.GetAppointmentByIDFunc(ctx, id)
	}
	return nil, errors.New("GetAppointmentByIDFunc not stubbed")
}

func (m *mockRepository) CreateAppointment(ctx context.Context, a Appointment) (*Appointment, error) {
	if m.CreateAppointmentFunc != nil {
		return m.CreateAppointmentFunc(ctx, a)
	}
	return nil, errors.New("CreateAppointmentFunc not stubbed")
}

func (m *mockRepository) UpdateAppointment(ctx context.Context, id uuid.UUID, upd AppointmentUpdate) (*Appointment, error) {
	if m.UpdateAppointmentFunc != nil {
		return m.UpdateAppointmentFunc(ctx, id, upd)
	}
	return nil, errors.New("UpdateAppointmentFunc not stubbed")
}

func (m *mockRepository) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	if m.DeleteAppointmentFunc != nil {
		return m.DeleteAppointmentFunc(ctx, id)
	}
	return errors.New("DeleteAppointmentFunc not stubbed")
}

func (m *mockRepository) ListClosures(ctx context.Context, site Site, from, to string) ([]ClosedSlot, error) {
	if m.ListClosuresFunc != nil {
		return m.ListClosuresFunc(ctx, site, from, to)
	}
	return nil, errors.New("ListClosuresFunc not stubbed")
}

func (m *mockRepository) GetClosureByID(ctx context.Context, id uuid.UUID) (*ClosedSlot, error) {
	if m.GetClosureByIDFunc != nil {
		return m.GetClosureByIDFunc(ctx, id)
	}
	return nil, errors.New("GetClosureByIDFunc not stubbed")
}

func (m *mockRepository) FindClosure(ctx context.Context, site Site, data string, ora *string, tipo *CareType) (*ClosedSlot, error) {
	if m.FindClosureFunc != nil {
		return m.FindClosureFunc(ctx, site, data, ora, tipo)
	}
	return nil, errors.New("FindClosureFunc not stubbed")
}

func (m *mockRepository) CreateClosure(ctx context.Context, c ClosedSlot) (*ClosedSlot, error) {
	if m.CreateClosureFunc != nil {
		return m.CreateClosureFunc(ctx, c)
	}
	return nil, errors.New("CreateClosureFunc not stubbed")
}

func (m *mockRepository) DeleteClosure(ctx context.Context, id uuid.UUID) error {
	if m.DeleteClosureFunc != nil {
		return m.DeleteClosureFunc(ctx, id)
	}
	return errors.New("DeleteClosureFunc not stubbed")
}

func (m *mockRepository) DeleteClosuresForDay(ctx context.Context, site Site, data string) (int64, error) {
	if m.DeleteClosuresForDayFunc != nil {
		return m.DeleteClosuresForDayFunc(ctx, site, data)
	}
	return 0, errors.New("DeleteClosuresForDayFunc not stubbed")
}

func (m *mockRepository) InsertEvent(ctx context.Context, ev EventLog) error {
	if m.InsertEventFunc != nil {
		return m.InsertEventFunc(ctx, ev)
	}
	return nil
}

var _ redisclient.Locker = (*mockLocker)(nil)

// mockLocker runs the critical section inline. Set Busy to simulate a
// lost lock race.
type mockLocker struct {
	Busy bool
	Keys []string
}

func (m *mockLocker) WithSlotLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	m.Keys = append(m.Keys, key)
	if m.Busy {
		return redisclient.ErrLockNotAcquired
	}
	return fn(ctx)
}
