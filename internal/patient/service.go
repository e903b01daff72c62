package patient

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinicware/ambulatorio-scheduling/internal/agenda"
)

var (
	ErrInvalidType             = errors.New("invalid patient type")
	ErrInvalidStatus           = errors.New("invalid patient status")
	ErrInvalidCatheterType     = errors.New("invalid catheter type")
	ErrSiteNotAllowed          = errors.New("no access to this ambulatorio")
	ErrVillaGinestrePICCOnly   = errors.New("villa delle ginestre accepts only PICC patients")
	ErrDischargeReasonRequired = errors.New("discharge requires a reason")
	ErrSuspendNotesRequired    = errors.New("suspension requires a note")
	ErrNotPICCPatient          = errors.New("patient is not on the PICC track")
)

const searchLimit = 50

type CreateRequest struct {
	Nome        string
	Cognome     string
	Tipo        Type
	Ambulatorio agenda.Site

	DataNascita   *string
	CodiceFiscale *string
	Telefono      *string
	Email         *string
	MedicoBase    *string
	Anamnesi      *string
	TerapiaInAtto *string
	Allergie      *string

	// Optional implant data, honored in batch creation for PICC-eligible
	// patients.
	TipoImpianto            *CatheterType
	DataInserimentoImpianto *string
}

type StatusChangeRequest struct {
	PatientIDs      []uuid.UUID
	Status          Status
	DischargeReason *DischargeReason
	DischargeNotes  *string
	SuspendNotes    *string
}

type ImplantRequest struct {
	PatientID    uuid.UUID
	TipoCatetere CatheterType
	DataImpianto string
}

// BatchError records one failed item of a batch; the batch itself never
// aborts.
type BatchError struct {
	Ref   string `json:"ref"`
	Error string `json:"error"`
}

type BatchItem struct {
	ID   uuid.UUID `json:"id"`
	Nome string    `json:"nome"`
}

type BatchCreateResult struct {
	Created         []Patient
	ImplantsCreated int
	Errors          []BatchError
}

type BatchStatusResult struct {
	Updated []BatchItem
	Errors  []BatchError
}

type BatchDeleteResult struct {
	Deleted []BatchItem
	Errors  []BatchError
}

type BatchImplantResult struct {
	Created []Implant
	Errors  []BatchError
}

type Service struct {
	repo Repository
	log  *zap.Logger
}

func NewService(repo Repository, log *zap.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// generateCode builds the short roster code: first letter of the family
// name, three digits, one letter.
func generateCode(cognome string) string {
	prefix := "x"
	if r := []rune(strings.ToLower(cognome)); len(r) > 0 && r[0] >= 'a' && r[0] <= 'z' {
		prefix = string(r[0])
	}
	const letters = "abcdefghijklmnopqrstuvwxyz"
	return fmt.Sprintf("%s%03d%c", prefix, rand.Intn(1000), letters[rand.Intn(len(letters))])
}

func (s *Service) uniqueCode(ctx context.Context, cognome string) (string, error) {
	for {
		code := generateCode(cognome)
		exists, err := s.repo.CodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check patient code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
}

func (s *Service) validateCreate(req CreateRequest) error {
	if !req.Ambulatorio.Valid() {
		return agenda.ErrInvalidSite
	}
	if !req.Tipo.Valid() {
		return ErrInvalidType
	}
	// Villa delle Ginestre runs a PICC-only service.
	if req.Ambulatorio == agenda.SiteVillaGinestre && req.Tipo != TypePICC {
		return ErrVillaGinestrePICCOnly
	}
	return nil
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*Patient, error) {
	if err := s.validateCreate(req); err != nil {
		return nil, err
	}

	code, err := s.uniqueCode(ctx, req.Cognome)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.Create(ctx, Patient{
		CodicePaziente: code,
		Nome:           req.Nome,
		Cognome:        req.Cognome,
		Tipo:           req.Tipo,
		Ambulatorio:    req.Ambulatorio,
		Status:         StatusInCare,
		DataNascita:    req.DataNascita,
		CodiceFiscale:  req.CodiceFiscale,
		Telefono:       req.Telefono,
		Email:          req.Email,
		MedicoBase:     req.MedicoBase,
		Anamnesi:       req.Anamnesi,
		TerapiaInAtto:  req.TerapiaInAtto,
		Allergie:       req.Allergie,
	})
	if err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}

	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, q ListQuery) ([]Patient, error) {
	if !q.Ambulatorio.Valid() {
		return nil, agenda.ErrInvalidSite
	}
	if q.Status != nil && !q.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if q.Tipo != nil && !q.Tipo.Valid() {
		return nil, ErrInvalidType
	}
	return s.repo.List(ctx, q)
}

// UpdateDetails applies a partial update. A status change to dimesso must
// carry a discharge reason, a change to sospeso a suspension note; the
// discharge date is stamped here.
func (s *Service) UpdateDetails(ctx context.Context, id uuid.UUID, upd Update) (*Patient, error) {
	if upd.Tipo != nil && !upd.Tipo.Valid() {
		return nil, ErrInvalidType
	}
	if upd.Status != nil {
		if !upd.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		switch *upd.Status {
		case StatusDischarged:
			if upd.DischargeReason == nil || !upd.DischargeReason.Valid() {
				return nil, ErrDischargeReasonRequired
			}
			today := time.Now().Format(agenda.DateLayout)
			upd.DataDimissione = &today
		case StatusSuspended:
			if upd.SuspendNotes == nil || strings.TrimSpace(*upd.SuspendNotes) == "" {
				return nil, ErrSuspendNotesRequired
			}
		}
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	p, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		return nil, fmt.Errorf("update patient: %w", err)
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return err
		}
		return fmt.Errorf("delete patient: %w", err)
	}
	return nil
}

func siteAllowed(site agenda.Site, allowed []agenda.Site) bool {
	for _, a := range allowed {
		if a == site {
			return true
		}
	}
	return false
}

func refName(cognome, nome string) string {
	return strings.TrimSpace(cognome + " " + nome)
}

// CreateBatch creates many patients in one call, collecting per-item
// errors instead of aborting. Items carrying implant data for a
// PICC-eligible patient also record the implant, attributed to operatore.
func (s *Service) CreateBatch(ctx context.Context, reqs []CreateRequest, allowed []agenda.Site, operatore string) BatchCreateResult {
	var res BatchCreateResult

	for _, req := range reqs {
		ref := refName(req.Cognome, req.Nome)

		if !siteAllowed(req.Ambulatorio, allowed) {
			res.Errors = append(res.Errors, BatchError{Ref: ref, Error: ErrSiteNotAllowed.Error()})
			continue
		}
		if err := s.validateCreate(req); err != nil {
			res.Errors = append(res.Errors, BatchError{Ref: ref, Error: err.Error()})
			continue
		}

		wantsImplant := req.Tipo.EligibleFor(agenda.CarePICC) && req.TipoImpianto != nil && req.DataInserimentoImpianto != nil
		if wantsImplant && !req.TipoImpianto.Valid() {
			res.Errors = append(res.Errors, BatchError{Ref: ref, Error: ErrInvalidCatheterType.Error()})
			continue
		}

		p, err := s.Create(ctx, req)
		if err != nil {
			res.Errors = append(res.Errors, BatchError{Ref: ref, Error: err.Error()})
			continue
		}
		res.Created = append(res.Created, *p)

		if wantsImplant {
			if _, err := s.repo.CreateImplant(ctx, Implant{
				PatientID:    p.ID,
				Ambulatorio:  p.Ambulatorio,
				TipoCatetere: *req.TipoImpianto,
				DataImpianto: *req.DataInserimentoImpianto,
				Operatore:    operatore,
			}); err != nil {
				s.log.Warn("create implant for new patient", zap.String("patient_id", p.ID.String()), zap.Error(err))
				res.Errors = append(res.Errors, BatchError{Ref: ref, Error: err.Error()})
				continue
			}
			res.ImplantsCreated++
		}
	}

	return res
}

// ChangeStatusBatch moves many patients to a new lifecycle status.
// Required metadata is validated once up-front; site access per item.
func (s *Service) ChangeStatusBatch(ctx context.Context, req StatusChangeRequest, allowed []agenda.Site) (BatchStatusResult, error) {
	var res BatchStatusResult

	if !req.Status.Valid() {
		return res, ErrInvalidStatus
	}
	switch req.Status {
	case StatusDischarged:
		if req.DischargeReason == nil || !req.DischargeReason.Valid() {
			return res, ErrDischargeReasonRequired
		}
	case StatusSuspended:
		if req.SuspendNotes == nil || strings.TrimSpace(*req.SuspendNotes) == "" {
			return res, ErrSuspendNotesRequired
		}
	}

	for _, id := range req.PatientIDs {
		p, err := s.repo.GetByID(ctx, id)
		if err != nil {
			res.Errors = append(res.Errors, BatchError{Ref: id.String(), Error: err.Error()})
			continue
		}
		if !siteAllowed(p.Ambulatorio, allowed) {
			res.Errors = append(res.Errors, BatchError{Ref: id.String(), Error: ErrSiteNotAllowed.Error()})
			continue
		}

		upd := Update{Status: &req.Status}
		switch req.Status {
		case StatusDischarged:
			upd.DischargeReason = req.DischargeReason
			upd.DischargeNotes = req.DischargeNotes
			today := time.Now().Format(agenda.DateLayout)
			upd.DataDimissione = &today
		case StatusSuspended:
			upd.SuspendNotes = req.SuspendNotes
		}

		if _, err := s.repo.Update(ctx, id, upd); err != nil {
			res.Errors = append(res.Errors, BatchError{Ref: id.String(), Error: err.Error()})
			continue
		}
		res.Updated = append(res.Updated, BatchItem{ID: id, Nome: refName(p.Cognome, p.Nome)})
	}

	return res, nil
}

// DeleteBatch removes many patients, cascading to their appointments and
// implants.
func (s *Service) DeleteBatch(ctx context.Context, ids []uuid.UUID, allowed []agenda.Site) BatchDeleteResult {
	var res BatchDeleteResult

	for _, id := range ids {
		p, err := s.repo.GetByID(ctx, id)
		if err != nil {
			res.Errors = append(res.Errors, BatchError{Ref: id.String(), Error: err.Error()})
			continue
		}
		if !siteAllowed(p.Ambulatorio, allowed) {
			res.Errors = append(res.Errors, BatchError{Ref: id.String(), Error: ErrSiteNotAllowed.Error()})
			continue
		}

		if err := s.repo.Delete(ctx, id); err != nil {
			res.Errors = append(res.Errors, BatchError{Ref: id.String(), Error: err.Error()})
			continue
		}
		res.Deleted = append(res.Deleted, BatchItem{ID: id, Nome: refName(p.Cognome, p.Nome)})
	}

	return res
}

// SearchPICC is the typeahead behind implant creation: in-care
// PICC-eligible patients, optionally restricted to one site.
func (s *Service) SearchPICC(ctx context.Context, q string, site *agenda.Site, allowed []agenda.Site) ([]Patient, error) {
	sites := allowed
	if site != nil {
		if !siteAllowed(*site, allowed) {
			return nil, ErrSiteNotAllowed
		}
		sites = []agenda.Site{*site}
	}
	return s.repo.SearchPICC(ctx, sites, q, searchLimit)
}

// CreateImplantsBatch records implants for existing PICC-track patients.
func (s *Service) CreateImplantsBatch(ctx context.Context, reqs []ImplantRequest, allowed []agenda.Site, operatore string) BatchImplantResult {
	var res BatchImplantResult

	for _, req := range reqs {
		ref := req.PatientID.String()

		if req.PatientID == uuid.Nil || req.TipoCatetere == "" || req.DataImpianto == "" {
			res.Errors = append(res.Errors, BatchError{Ref: ref, Error: "patient_id, tipo_catetere and data_impianto are required"})
			continue
		}
		if !req.TipoCatetere.Valid() {
			res.Errors = append(res.Errors, BatchError{Ref: ref, Error: ErrInvalidCatheterType.Error()})
			continue
		}

		p, err := s.repo.GetByID(ctx, req.PatientID)
		if err != nil {
			res.Errors = append(res.Errors, BatchError{Ref: ref, Error: err.Error()})
			continue
		}
		if !siteAllowed(p.Ambulatorio, allowed) {
			res.Errors = append(res.Errors, BatchError{Ref: ref, Error: ErrSiteNotAllowed.Error()})
			continue
		}
		if !p.Tipo.EligibleFor(agenda.CarePICC) {
			res.Errors = append(res.Errors, BatchError{Ref: ref, Error: ErrNotPICCPatient.Error()})
			continue
		}

		im, err := s.repo.CreateImplant(ctx, Implant{
			PatientID:    p.ID,
			Ambulatorio:  p.Ambulatorio,
			TipoCatetere: req.TipoCatetere,
			DataImpianto: req.DataImpianto,
			Operatore:    operatore,
		})
		if err != nil {
			res.Errors = append(res.Errors, BatchError{Ref: ref, Error: err.Error()})
			continue
		}
		res.Created = append(res.Created, *im)
	}

	return res
}
