package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/clinicware/ambulatorio-scheduling/internal/agenda"
)

var _ Repository = (*mockRepository)(nil)

// mockRepository implements Repository with overridable func fields.
type mockRepository struct {
	GetByIDFunc       func(ctx context.Context, id uuid.UUID) (*Patient, error)
	ListFunc          func(ctx context.Context, q ListQuery) ([]Patient, error)
	CreateFunc        func(ctx context.Context, p Patient) (*Patient, error)
	UpdateFunc        func(ctx context.Context, id uuid.UUID, upd Update) (*Patient, error)
	DeleteFunc        func(ctx context.Context, id uuid.UUID) error
	CodeExistsFunc    func(ctx context.Context, code string) (bool, error)
	SearchPICCFunc    func(ctx context.Context, sites []agenda.Site, q string, limit int) ([]Patient, error)
	CreateImplantFunc func(ctx context.Context, im Implant) (*Implant, error)
}

func (m *mockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, errors.New("GetByIDFunc not stubbed")
}

func (m *mockRepository) List(ctx context.Context, q ListQuery) ([]Patient, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, q)
	}
	return nil, errors.New("ListFunc not stubbed")
}

func (m *mockRepository) Create(ctx context.Context, p Patient) (*Patient, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, p)
	}
	return nil, errors.New("CreateFunc not stubbed")
}

func (m *mockRepository) Update(ctx context.Context, id uuid.UUID, upd Update) (*Patient, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, upd)
	}
	return nil, errors.New("UpdateFunc not stubbed")
}

func (m *mockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return errors.New("DeleteFunc not stubbed")
}

func (m *mockRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	if m.CodeExistsFunc != nil {
		return m.CodeExistsFunc(ctx, code)
	}
	return false, nil
}

func (m *mockRepository) SearchPICC(ctx context.Context, sites []agenda.Site, q string, limit int) ([]Patient, error) {
	if m.SearchPICCFunc != nil {
		return m.SearchPICCFunc(ctx, sites, q, limit)
	}
	return nil, errors.New("SearchPICCFunc not stubbed")
}

func (m *mockRepository) CreateImplant(ctx context.Context, im Implant) (*Implant, error) {
	if m.CreateImplantFunc != nil {
		return m.CreateImplantFunc(ctx, im)
	}
	return nil, errors.New("CreateImplantFunc not stubbed")
}
