package patient

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicware/ambulatorio-scheduling/internal/agenda"
)

// Type is the treatment eligibility of a patient. PICC_MED patients can be
// booked on either track.
type Type string

const (
	TypePICC    Type = "PICC"
	TypeMED     Type = "MED"
	TypePICCMED Type = "PICC_MED"
)

func (t Type) Valid() bool {
	switch t {
	case TypePICC, TypeMED, TypePICCMED:
		return true
	}
	return false
}

// EligibleFor reports whether a patient of this type can be booked on the
// given care track.
func (t Type) EligibleFor(care agenda.CareType) bool {
	switch t {
	case TypePICCMED:
		return true
	case TypePICC:
		return care == agenda.CarePICC
	case TypeMED:
		return care == agenda.CareMED
	}
	return false
}

type Status string

const (
	StatusInCare     Status = "in_cura"
	StatusDischarged Status = "dimesso"
	StatusSuspended  Status = "sospeso"
)

func (s Status) Valid() bool {
	switch s {
	case StatusInCare, StatusDischarged, StatusSuspended:
		return true
	}
	return false
}

type DischargeReason string

const (
	DischargeHealed DischargeReason = "guarito"
	DischargeADI    DischargeReason = "adi"
	DischargeOther  DischargeReason = "altro"
)

func (r DischargeReason) Valid() bool {
	switch r {
	case DischargeHealed, DischargeADI, DischargeOther:
		return true
	}
	return false
}

// CatheterType is the implanted device kind recorded for PICC patients.
type CatheterType string

const (
	CatheterPICC     CatheterType = "picc"
	CatheterPICCPort CatheterType = "picc_port"
	CatheterMidline  CatheterType = "midline"
)

func (c CatheterType) Valid() bool {
	switch c {
	case CatheterPICC, CatheterPICCPort, CatheterMidline:
		return true
	}
	return false
}

type Patient struct {
	ID             uuid.UUID
	CodicePaziente string
	Nome           string
	Cognome        string
	Tipo           Type
	Ambulatorio    agenda.Site
	Status         Status
	DataNascita    *string
	CodiceFiscale  *string
	Telefono       *string
	Email          *string
	MedicoBase     *string
	Anamnesi       *string
	TerapiaInAtto  *string
	Allergie       *string

	DischargeReason *DischargeReason
	DischargeNotes  *string
	SuspendNotes    *string
	DataDimissione  *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Implant is the device record created alongside or after a PICC patient.
type Implant struct {
	ID           uuid.UUID
	PatientID    uuid.UUID
	Ambulatorio  agenda.Site
	TipoCatetere CatheterType
	DataImpianto string // yyyy-MM-dd
	Operatore    string
	CreatedAt    time.Time
}
