package api

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicware/ambulatorio-scheduling/internal/agenda"
	"github.com/clinicware/ambulatorio-scheduling/internal/patient"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(agenda.DateLayout, s)
}

// Auth

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	Ambulatori []string  `json:"ambulatori"`
}

type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        UserResponse `json:"user"`
}

// Appointments

type CreateAppointmentRequest struct {
	PatientID   string   `json:"patient_id" validate:"required,uuid"`
	Ambulatorio string   `json:"ambulatorio" validate:"required,oneof=pta_centro villa_ginestre"`
	Data        string   `json:"data" validate:"required,calendar_date"`
	Ora         string   `json:"ora" validate:"required,time_slot"`
	Tipo        string   `json:"tipo" validate:"required,oneof=PICC MED"`
	Prestazioni []string `json:"prestazioni" validate:"required,min=1,dive,required"`
	Note        *string  `json:"note"`
	Stato       *string  `json:"stato" validate:"omitempty,oneof=da_fare effettuato non_presentato"`
}

type UpdateAppointmentRequest struct {
	Stato       *string  `json:"stato" validate:"omitempty,oneof=da_fare effettuato non_presentato"`
	Prestazioni []string `json:"prestazioni" validate:"omitempty,min=1,dive,required"`
	Note        *string  `json:"note"`
}

type AppointmentResponse struct {
	ID             uuid.UUID `json:"id"`
	PatientID      uuid.UUID `json:"patient_id"`
	PatientNome    string    `json:"patient_nome"`
	PatientCognome string    `json:"patient_cognome"`
	Ambulatorio    string    `json:"ambulatorio"`
	Data           string    `json:"data"`
	Ora            string    `json:"ora"`
	Tipo           string    `json:"tipo"`
	Prestazioni    []string  `json:"prestazioni"`
	Note           *string   `json:"note,omitempty"`
	Stato          string    `json:"stato"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toAppointmentResponse(a agenda.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:             a.ID,
		PatientID:      a.PatientID,
		PatientNome:    a.PatientNome,
		PatientCognome: a.PatientCognome,
		Ambulatorio:    string(a.Ambulatorio),
		Data:           a.Data,
		Ora:            a.Ora,
		Tipo:           string(a.Tipo),
		Prestazioni:    a.Prestazioni,
		Note:           a.Note,
		Stato:          string(a.Stato),
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func toAppointmentResponses(as []agenda.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(as))
	for _, a := range as {
		out = append(out, toAppointmentResponse(a))
	}
	return out
}

// Closed slots

// OraList accepts the three wire shapes of the ora field: null (whole
// day), a single "HH:MM" string, or a list of them.
type OraList []string

func (o *OraList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*o = OraList{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*o = OraList(many)
		return nil
	}

	var null any
	if err := json.Unmarshal(data, &null); err == nil && null == nil {
		*o = nil
		return nil
	}

	return fmt.Errorf("ora must be a string, a list of strings or null")
}

type CreateClosedSlotsRequest struct {
	Data        string  `json:"data" validate:"required,calendar_date"`
	Ambulatorio string  `json:"ambulatorio" validate:"required,oneof=pta_centro villa_ginestre"`
	Ora         OraList `json:"ora" validate:"omitempty,dive,time_slot"`
	Tipo        *string `json:"tipo" validate:"omitempty,oneof=PICC MED"`
	Motivo      *string `json:"motivo"`
}

type ReopenDayRequest struct {
	Ambulatorio string `json:"ambulatorio" validate:"required,oneof=pta_centro villa_ginestre"`
	Data        string `json:"data" validate:"required,calendar_date"`
}

type ClosedSlotResponse struct {
	ID          uuid.UUID `json:"id"`
	Ambulatorio string    `json:"ambulatorio"`
	Data        string    `json:"data"`
	Ora         *string   `json:"ora"`
	Tipo        *string   `json:"tipo"`
	Motivo      string    `json:"motivo"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

func toClosedSlotResponse(c agenda.ClosedSlot) ClosedSlotResponse {
	var tipo *string
	if c.Tipo != nil {
		t := string(*c.Tipo)
		tipo = &t
	}
	return ClosedSlotResponse{
		ID:          c.ID,
		Ambulatorio: string(c.Ambulatorio),
		Data:        c.Data,
		Ora:         c.Ora,
		Tipo:        tipo,
		Motivo:      c.Motivo,
		CreatedBy:   c.CreatedBy,
		CreatedAt:   c.CreatedAt,
	}
}

func toClosedSlotResponses(cs []agenda.ClosedSlot) []ClosedSlotResponse {
	out := make([]ClosedSlotResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, toClosedSlotResponse(c))
	}
	return out
}

// Calendar

type SlotsResponse struct {
	Mattina    []string `json:"mattina"`
	Pomeriggio []string `json:"pomeriggio"`
	Tutti      []string `json:"tutti"`
}

// Patients

type CreatePatientRequest struct {
	Nome        string `json:"nome" validate:"required"`
	Cognome     string `json:"cognome" validate:"required"`
	Tipo        string `json:"tipo" validate:"required,oneof=PICC MED PICC_MED"`
	Ambulatorio string `json:"ambulatorio" validate:"required,oneof=pta_centro villa_ginestre"`

	DataNascita   *string `json:"data_nascita" validate:"omitempty,calendar_date"`
	CodiceFiscale *string `json:"codice_fiscale"`
	Telefono      *string `json:"telefono"`
	Email         *string `json:"email" validate:"omitempty,email"`
	MedicoBase    *string `json:"medico_base"`
	Anamnesi      *string `json:"anamnesi"`
	TerapiaInAtto *string `json:"terapia_in_atto"`
	Allergie      *string `json:"allergie"`

	TipoImpianto            *string `json:"tipo_impianto" validate:"omitempty,oneof=picc picc_port midline"`
	DataInserimentoImpianto *string `json:"data_inserimento_impianto" validate:"omitempty,calendar_date"`
}

func (r CreatePatientRequest) toDomain() patient.CreateRequest {
	req := patient.CreateRequest{
		Nome:                    r.Nome,
		Cognome:                 r.Cognome,
		Tipo:                    patient.Type(r.Tipo),
		Ambulatorio:             agenda.Site(r.Ambulatorio),
		DataNascita:             r.DataNascita,
		CodiceFiscale:           r.CodiceFiscale,
		Telefono:                r.Telefono,
		Email:                   r.Email,
		MedicoBase:              r.MedicoBase,
		Anamnesi:                r.Anamnesi,
		TerapiaInAtto:           r.TerapiaInAtto,
		Allergie:                r.Allergie,
		DataInserimentoImpianto: r.DataInserimentoImpianto,
	}
	if r.TipoImpianto != nil {
		t := patient.CatheterType(*r.TipoImpianto)
		req.TipoImpianto = &t
	}
	return req
}

type UpdatePatientRequest struct {
	Nome          *string `json:"nome"`
	Cognome       *string `json:"cognome"`
	Tipo          *string `json:"tipo" validate:"omitempty,oneof=PICC MED PICC_MED"`
	DataNascita   *string `json:"data_nascita" validate:"omitempty,calendar_date"`
	CodiceFiscale *string `json:"codice_fiscale"`
	Telefono      *string `json:"telefono"`
	Email         *string `json:"email" validate:"omitempty,email"`
	MedicoBase    *string `json:"medico_base"`
	Anamnesi      *string `json:"anamnesi"`
	TerapiaInAtto *string `json:"terapia_in_atto"`
	Allergie      *string `json:"allergie"`

	Status          *string `json:"status" validate:"omitempty,oneof=in_cura dimesso sospeso"`
	DischargeReason *string `json:"discharge_reason" validate:"omitempty,oneof=guarito adi altro"`
	DischargeNotes  *string `json:"discharge_notes"`
	SuspendNotes    *string `json:"suspend_notes"`
}

func (r UpdatePatientRequest) toDomain() patient.Update {
	upd := patient.Update{
		Nome:           r.Nome,
		Cognome:        r.Cognome,
		DataNascita:    r.DataNascita,
		CodiceFiscale:  r.CodiceFiscale,
		Telefono:       r.Telefono,
		Email:          r.Email,
		MedicoBase:     r.MedicoBase,
		Anamnesi:       r.Anamnesi,
		TerapiaInAtto:  r.TerapiaInAtto,
		Allergie:       r.Allergie,
		DischargeNotes: r.DischargeNotes,
		SuspendNotes:   r.SuspendNotes,
	}
	if r.Tipo != nil {
		t := patient.Type(*r.Tipo)
		upd.Tipo = &t
	}
	if r.Status != nil {
		s := patient.Status(*r.Status)
		upd.Status = &s
	}
	if r.DischargeReason != nil {
		d := patient.DischargeReason(*r.DischargeReason)
		upd.DischargeReason = &d
	}
	return upd
}

type PatientResponse struct {
	ID             uuid.UUID `json:"id"`
	CodicePaziente string    `json:"codice_paziente"`
	Nome           string    `json:"nome"`
	Cognome        string    `json:"cognome"`
	Tipo           string    `json:"tipo"`
	Ambulatorio    string    `json:"ambulatorio"`
	Status         string    `json:"status"`

	DataNascita   *string `json:"data_nascita,omitempty"`
	CodiceFiscale *string `json:"codice_fiscale,omitempty"`
	Telefono      *string `json:"telefono,omitempty"`
	Email         *string `json:"email,omitempty"`
	MedicoBase    *string `json:"medico_base,omitempty"`
	Anamnesi      *string `json:"anamnesi,omitempty"`
	TerapiaInAtto *string `json:"terapia_in_atto,omitempty"`
	Allergie      *string `json:"allergie,omitempty"`

	DischargeReason *string `json:"discharge_reason,omitempty"`
	DischargeNotes  *string `json:"discharge_notes,omitempty"`
	SuspendNotes    *string `json:"suspend_notes,omitempty"`
	DataDimissione  *string `json:"data_dimissione,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toPatientResponse(p patient.Patient) PatientResponse {
	var reason *string
	if p.DischargeReason != nil {
		r := string(*p.DischargeReason)
		reason = &r
	}
	return PatientResponse{
		ID:              p.ID,
		CodicePaziente:  p.CodicePaziente,
		Nome:            p.Nome,
		Cognome:         p.Cognome,
		Tipo:            string(p.Tipo),
		Ambulatorio:     string(p.Ambulatorio),
		Status:          string(p.Status),
		DataNascita:     p.DataNascita,
		CodiceFiscale:   p.CodiceFiscale,
		Telefono:        p.Telefono,
		Email:           p.Email,
		MedicoBase:      p.MedicoBase,
		Anamnesi:        p.Anamnesi,
		TerapiaInAtto:   p.TerapiaInAtto,
		Allergie:        p.Allergie,
		DischargeReason: reason,
		DischargeNotes:  p.DischargeNotes,
		SuspendNotes:    p.SuspendNotes,
		DataDimissione:  p.DataDimissione,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func toPatientResponses(ps []patient.Patient) []PatientResponse {
	out := make([]PatientResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, toPatientResponse(p))
	}
	return out
}

// Batch

type BatchPatientCreateRequest struct {
	Patients []CreatePatientRequest `json:"patients" validate:"required,min=1,dive"`
}

type BatchStatusChangeRequest struct {
	PatientIDs      []string `json:"patient_ids" validate:"required,min=1,dive,uuid"`
	Status          string   `json:"status" validate:"required,oneof=in_cura dimesso sospeso"`
	DischargeReason *string  `json:"discharge_reason" validate:"omitempty,oneof=guarito adi altro"`
	DischargeNotes  *string  `json:"discharge_notes"`
	SuspendNotes    *string  `json:"suspend_notes"`
}

type BatchDeleteRequest struct {
	PatientIDs []string `json:"patient_ids" validate:"required,min=1,dive,uuid"`
}

type BatchImplantItem struct {
	PatientID       string `json:"patient_id" validate:"required,uuid"`
	TipoImpianto    string `json:"tipo_impianto" validate:"required,oneof=picc picc_port midline"`
	DataInserimento string `json:"data_inserimento" validate:"required,calendar_date"`
}

type BatchImplantCreateRequest struct {
	Implants []BatchImplantItem `json:"implants" validate:"required,min=1,dive"`
}

type BatchCreateResponse struct {
	Created         int                  `json:"created"`
	Errors          int                  `json:"errors"`
	ImpiantiCreated int                  `json:"impianti_created"`
	Patients        []PatientResponse    `json:"patients"`
	ErrorDetails    []patient.BatchError `json:"error_details"`
}

type BatchStatusResponse struct {
	Updated      int                  `json:"updated"`
	Errors       int                  `json:"errors"`
	Patients     []patient.BatchItem  `json:"patients"`
	ErrorDetails []patient.BatchError `json:"error_details"`
}

type BatchDeleteResponse struct {
	Deleted      int                  `json:"deleted"`
	Errors       int                  `json:"errors"`
	Patients     []patient.BatchItem  `json:"patients"`
	ErrorDetails []patient.BatchError `json:"error_details"`
}

type ImplantResponse struct {
	ID           uuid.UUID `json:"id"`
	PatientID    uuid.UUID `json:"patient_id"`
	Ambulatorio  string    `json:"ambulatorio"`
	TipoCatetere string    `json:"tipo_catetere"`
	DataImpianto string    `json:"data_impianto"`
	Operatore    string    `json:"operatore"`
	CreatedAt    time.Time `json:"created_at"`
}

func toImplantResponse(im patient.Implant) ImplantResponse {
	return ImplantResponse{
		ID:           im.ID,
		PatientID:    im.PatientID,
		Ambulatorio:  string(im.Ambulatorio),
		TipoCatetere: string(im.TipoCatetere),
		DataImpianto: im.DataImpianto,
		Operatore:    im.Operatore,
		CreatedAt:    im.CreatedAt,
	}
}

type BatchImplantResponse struct {
	Created      int                  `json:"created"`
	Errors       int                  `json:"errors"`
	Implants     []ImplantResponse    `json:"implants"`
	ErrorDetails []patient.BatchError `json:"error_details"`
}
