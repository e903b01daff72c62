package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicware/ambulatorio-scheduling/internal/agenda"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const patientCols = `id, codice_paziente, nome, cognome, tipo, ambulatorio, status,
	data_nascita, codice_fiscale, telefono, email, medico_base, anamnesi, terapia_in_atto, allergie,
	discharge_reason, discharge_notes, suspend_notes, data_dimissione, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient

	err := row.Scan(
		&p.ID,
		&p.CodicePaziente,
		&p.Nome,
		&p.Cognome,
		&p.Tipo,
		&p.Ambulatorio,
		&p.Status,
		&p.DataNascita,
		&p.CodiceFiscale,
		&p.Telefono,
		&p.Email,
		&p.MedicoBase,
		&p.Anamnesi,
		&p.TerapiaInAtto,
		&p.Allergie,
		&p.DischargeReason,
		&p.DischargeNotes,
		&p.SuspendNotes,
		&p.DataDimissione,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	return &p, nil
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+patientCols+`
		FROM patients
		WHERE id = $1
	`, id)
	return scanPatient(row)
}

func (r *PgRepository) List(ctx context.Context, q ListQuery) ([]Patient, error) {
	query := `
		SELECT ` + patientCols + `
		FROM patients
		WHERE ambulatorio = $1
	`
	args := []any{q.Ambulatorio}

	if q.Status != nil {
		args = append(args, *q.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if q.Tipo != nil {
		args = append(args, *q.Tipo)
		query += fmt.Sprintf(" AND tipo = $%d", len(args))
	}
	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		query += fmt.Sprintf(" AND (nome ILIKE $%d OR cognome ILIKE $%d)", len(args), len(args))
	}
	query += ` ORDER BY cognome, nome`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) Create(ctx context.Context, p Patient) (*Patient, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO patients (id, codice_paziente, nome, cognome, tipo, ambulatorio, status,
			data_nascita, codice_fiscale, telefono, email, medico_base, anamnesi, terapia_in_atto, allergie,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, now(), now())
		RETURNING `+patientCols+`
	`, p.ID, p.CodicePaziente, p.Nome, p.Cognome, p.Tipo, p.Ambulatorio, p.Status,
		p.DataNascita, p.CodiceFiscale, p.Telefono, p.Email, p.MedicoBase, p.Anamnesi, p.TerapiaInAtto, p.Allergie)

	return scanPatient(row)
}

func (r *PgRepository) Update(ctx context.Context, id uuid.UUID, upd Update) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE patients
		SET nome             = COALESCE($2, nome),
		    cognome          = COALESCE($3, cognome),
		    tipo             = COALESCE($4, tipo),
		    data_nascita     = COALESCE($5, data_nascita),
		    codice_fiscale   = COALESCE($6, codice_fiscale),
		    telefono         = COALESCE($7, telefono),
		    email            = COALESCE($8, email),
		    medico_base      = COALESCE($9, medico_base),
		    anamnesi         = COALESCE($10, anamnesi),
		    terapia_in_atto  = COALESCE($11, terapia_in_atto),
		    allergie         = COALESCE($12, allergie),
		    status           = COALESCE($13, status),
		    discharge_reason = COALESCE($14, discharge_reason),
		    discharge_notes  = COALESCE($15, discharge_notes),
		    suspend_notes    = COALESCE($16, suspend_notes),
		    data_dimissione  = COALESCE($17, data_dimissione),
		    updated_at       = now()
		WHERE id = $1
		RETURNING `+patientCols+`
	`, id,
		upd.Nome, upd.Cognome, upd.Tipo, upd.DataNascita, upd.CodiceFiscale, upd.Telefono,
		upd.Email, upd.MedicoBase, upd.Anamnesi, upd.TerapiaInAtto, upd.Allergie,
		upd.Status, upd.DischargeReason, upd.DischargeNotes, upd.SuspendNotes, upd.DataDimissione)

	return scanPatient(row)
}

func (r *PgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPatientNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM appointments WHERE patient_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM implants WHERE patient_id = $1`, id); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PgRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM patients WHERE codice_paziente = $1)
	`, code).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PgRepository) SearchPICC(ctx context.Context, sites []agenda.Site, q string, limit int) ([]Patient, error) {
	query := `
		SELECT ` + patientCols + `
		FROM patients
		WHERE tipo IN ('PICC', 'PICC_MED')
		  AND status = 'in_cura'
		  AND ambulatorio = ANY($1)
	`
	siteStrs := make([]string, 0, len(sites))
	for _, s := range sites {
		siteStrs = append(siteStrs, string(s))
	}
	args := []any{siteStrs}

	if q != "" {
		args = append(args, "%"+q+"%")
		query += fmt.Sprintf(" AND (nome ILIKE $%d OR cognome ILIKE $%d)", len(args), len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY cognome, nome LIMIT $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) CreateImplant(ctx context.Context, im Implant) (*Implant, error) {
	if im.ID == uuid.Nil {
		im.ID = uuid.New()
	}

	var out Implant
	err := r.pool.QueryRow(ctx, `
		INSERT INTO implants (id, patient_id, ambulatorio, tipo_catetere, data_impianto, operatore, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		RETURNING id, patient_id, ambulatorio, tipo_catetere, data_impianto, operatore, created_at
	`, im.ID, im.PatientID, im.Ambulatorio, im.TipoCatetere, im.DataImpianto, im.Operatore).Scan(
		&out.ID,
		&out.PatientID,
		&out.Ambulatorio,
		&out.TipoCatetere,
		&out.DataImpianto,
		&out.Operatore,
		&out.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &out, nil
}
