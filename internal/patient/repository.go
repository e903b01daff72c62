package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/clinicware/ambulatorio-scheduling/internal/agenda"
)

var ErrPatientNotFound = errors.New("patient not found")

// ListQuery filters the roster listing. Search matches nome or cognome,
// case-insensitive substring.
type ListQuery struct {
	Ambulatorio agenda.Site
	Status      *Status
	Tipo        *Type
	Search      string
}

// Update carries a partial patient update; nil fields are left as-is.
type Update struct {
	Nome          *string
	Cognome       *string
	Tipo          *Type
	DataNascita   *string
	CodiceFiscale *string
	Telefono      *string
	Email         *string
	MedicoBase    *string
	Anamnesi      *string
	TerapiaInAtto *string
	Allergie      *string

	Status          *Status
	DischargeReason *DischargeReason
	DischargeNotes  *string
	SuspendNotes    *string
	DataDimissione  *string
}

// Repository contains all DB interactions needed by the roster service.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	List(ctx context.Context, q ListQuery) ([]Patient, error)
	Create(ctx context.Context, p Patient) (*Patient, error)
	Update(ctx context.Context, id uuid.UUID, upd Update) (*Patient, error)

	// Delete removes the patient together with their appointments and
	// implants.
	Delete(ctx context.Context, id uuid.UUID) error

	CodeExists(ctx context.Context, code string) (bool, error)

	// SearchPICC returns in-care PICC-eligible patients whose name matches q.
	SearchPICC(ctx context.Context, sites []agenda.Site, q string, limit int) ([]Patient, error)

	CreateImplant(ctx context.Context, im Implant) (*Implant, error)
}
