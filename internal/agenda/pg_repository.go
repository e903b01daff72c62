package agenda

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

const appointmentCols = `id, patient_id, patient_nome, patient_cognome, ambulatorio, data, ora, tipo, prestazioni, note, stato, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var note *string

	err := row.Scan(
		&a.ID,
		&a.PatientID,
		&a.PatientNome,
		&a.PatientCognome,
		&a.Ambulatorio,
		&a.Data,
		&a.Ora,
		&a.Tipo,
		&a.Prestazioni,
		&note,
		&a.Stato,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	a.Note = note
	return &a, nil
}

const closureCols = `id, ambulatorio, data, ora, tipo, motivo, created_by, created_at`

func scanClosure(row pgx.Row) (*ClosedSlot, error) {
	var c ClosedSlot
	var ora *string
	var tipo *CareType

	err := row.Scan(
		&c.ID,
		&c.Ambulatorio,
		&c.Data,
		&ora,
		&tipo,
		&c.Motivo,
		&c.CreatedBy,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClosedSlotNotFound
		}
		return nil, err
	}

	c.Ora = ora
	c.Tipo = tipo
	return &c, nil
}

// Interface methods

func (r *PgRepository) GetPatientRef(ctx context.Context, id uuid.UUID) (*PatientRef, error) {
	var p PatientRef
	err := r.pool.QueryRow(ctx, `
		SELECT id, nome, cognome
		FROM patients
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Nome, &p.Cognome)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PgRepository) ListAppointments(ctx context.Context, site Site, from, to string, tipo *CareType) ([]Appointment, error) {
	query := `
		SELECT ` + appointmentCols + `
		FROM appointments
		WHERE ambulatorio = $1 AND data >= $2 AND data <= $3
	`
	args := []any{site, from, to}
	if tipo != nil {
		query += ` AND tipo = $4`
		args = append(args, *tipo)
	}
	query += ` ORDER BY data, ora, created_at`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentCols+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) CreateAppointment(ctx context.Context, a Appointment) (*Appointment, error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (id, patient_id, patient_nome, patient_cognome, ambulatorio, data, ora, tipo, prestazioni, note, stato, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now(), now())
		RETURNING `+appointmentCols+`
	`, a.ID, a.PatientID, a.PatientNome, a.PatientCognome, a.Ambulatorio, a.Data, a.Ora, a.Tipo, a.Prestazioni, a.Note, a.Stato)

	return scanAppointment(row)
}

func (r *PgRepository) UpdateAppointment(ctx context.Context, id uuid.UUID, upd AppointmentUpdate) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET stato       = COALESCE($2, stato),
		    prestazioni = COALESCE($3, prestazioni),
		    note        = COALESCE($4, note),
		    updated_at  = now()
		WHERE id = $1
		RETURNING `+appointmentCols+`
	`, id, upd.Stato, upd.Prestazioni, upd.Note)

	return scanAppointment(row)
}

func (r *PgRepository) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *PgRepository) ListClosures(ctx context.Context, site Site, from, to string) ([]ClosedSlot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+closureCols+`
		FROM closed_slots
		WHERE ambulatorio = $1 AND data >= $2 AND data <= $3
		ORDER BY created_at, id
	`, site, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ClosedSlot
	for rows.Next() {
		c, err := scanClosure(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) GetClosureByID(ctx context.Context, id uuid.UUID) (*ClosedSlot, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+closureCols+`
		FROM closed_slots
		WHERE id = $1
	`, id)
	return scanClosure(row)
}

func (r *PgRepository) FindClosure(ctx context.Context, site Site, data string, ora *string, tipo *CareType) (*ClosedSlot, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+closureCols+`
		FROM closed_slots
		WHERE ambulatorio = $1
		  AND data = $2
		  AND ora IS NOT DISTINCT FROM $3
		  AND tipo IS NOT DISTINCT FROM $4
	`, site, data, ora, tipo)
	return scanClosure(row)
}

func (r *PgRepository) CreateClosure(ctx context.Context, c ClosedSlot) (*ClosedSlot, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO closed_slots (id, ambulatorio, data, ora, tipo, motivo, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		RETURNING `+closureCols+`
	`, c.ID, c.Ambulatorio, c.Data, c.Ora, c.Tipo, c.Motivo, c.CreatedBy)

	return scanClosure(row)
}

func (r *PgRepository) DeleteClosure(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM closed_slots WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrClosedSlotNotFound
	}
	return nil
}

func (r *PgRepository) DeleteClosuresForDay(ctx context.Context, site Site, data string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM closed_slots
		WHERE ambulatorio = $1 AND data = $2
	`, site, data)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PgRepository) InsertEvent(ctx context.Context, ev EventLog) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO event_logs (event_type, entity_id, payload, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`, ev.EventType, ev.EntityID, ev.Payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert event log: %w", err)
	}

	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
