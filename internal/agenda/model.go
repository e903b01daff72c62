package agenda

import (
	"time"

	"github.com/google/uuid"
)

// Site identifies a clinic location. Every record and every request is
// scoped to exactly one site.
type Site string

const (
	SitePTACentro     Site = "pta_centro"
	SiteVillaGinestre Site = "villa_ginestre"
)

func (s Site) Valid() bool {
	return s == SitePTACentro || s == SiteVillaGinestre
}

// CareType is the treatment track an appointment belongs to.
type CareType string

const (
	CarePICC CareType = "PICC"
	CareMED  CareType = "MED"
)

func (t CareType) Valid() bool {
	return t == CarePICC || t == CareMED
}

type AppointmentStatus string

const (
	StatusToDo   AppointmentStatus = "da_fare"
	StatusDone   AppointmentStatus = "effettuato"
	StatusNoShow AppointmentStatus = "non_presentato"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusToDo, StatusDone, StatusNoShow:
		return true
	}
	return false
}

// SlotCapacity is the maximum number of appointments sharing one
// (data, ora, tipo) slot at a site.
const SlotCapacity = 2

type Appointment struct {
	ID             uuid.UUID
	PatientID      uuid.UUID
	PatientNome    string
	PatientCognome string
	Ambulatorio    Site
	Data           string // yyyy-MM-dd
	Ora            string // HH:MM, one of TimeSlots
	Tipo           CareType
	Prestazioni    []string
	Note           *string
	Stato          AppointmentStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ClosedSlot is an administrative closure. A nil Ora closes the whole day,
// a nil Tipo closes both treatment tracks.
type ClosedSlot struct {
	ID          uuid.UUID
	Ambulatorio Site
	Data        string
	Ora         *string
	Tipo        *CareType
	Motivo      string
	CreatedBy   string
	CreatedAt   time.Time
}

type EventLog struct {
	ID        int64
	EventType string
	EntityID  *uuid.UUID
	Payload   []byte
	CreatedAt time.Time
}
