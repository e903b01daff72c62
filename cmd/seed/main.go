package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicware/ambulatorio-scheduling/internal/agenda"
	"github.com/clinicware/ambulatorio-scheduling/internal/auth"
	"github.com/clinicware/ambulatorio-scheduling/internal/db"
	"github.com/clinicware/ambulatorio-scheduling/internal/patient"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	if err := seedUsers(context.Background(), pool); err != nil {
		log.Fatalf("seed users: %v", err)
	}
	patientIDs, err := seedPatients(context.Background(), pool, 120)
	if err != nil {
		log.Fatalf("seed patients: %v", err)
	}
	if err := seedAppointments(context.Background(), pool, patientIDs, 60); err != nil {
		log.Fatalf("seed appointments: %v", err)
	}

	log.Println("seed complete")
}

func seedUsers(ctx context.Context, pool *pgxpool.Pool) error {
	users := []struct {
		username   string
		password   string
		ambulatori []string
	}{
		{"admin", "admin", []string{string(agenda.SitePTACentro), string(agenda.SiteVillaGinestre)}},
		{"infermiere", "infermiere", []string{string(agenda.SitePTACentro)}},
	}

	for _, u := range users {
		hash, err := auth.HashPassword(u.password)
		if err != nil {
			return err
		}
		_, err = pool.Exec(ctx, `
			INSERT INTO users (id, username, password_hash, ambulatori, created_at, updated_at)
			VALUES ($1, $2, $3, $4, now(), now())
			ON CONFLICT (username) DO NOTHING
		`, uuid.New(), u.username, hash, u.ambulatori)
		if err != nil {
			return err
		}
	}

	log.Println("users seeded")
	return nil
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, count int) ([]uuid.UUID, error) {
	log.Printf("seeding %d patients", count)

	tipi := []patient.Type{patient.TypePICC, patient.TypeMED, patient.TypePICCMED}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.New()
		nome := gofakeit.FirstName()
		cognome := gofakeit.LastName()
		tipo := tipi[gofakeit.Number(0, len(tipi)-1)]

		// Villa delle Ginestre runs PICC only.
		site := agenda.SitePTACentro
		if tipo == patient.TypePICC && gofakeit.Bool() {
			site = agenda.SiteVillaGinestre
		}

		code := gofakeit.LetterN(1) + gofakeit.DigitN(3) + gofakeit.LetterN(1)
		telefono := gofakeit.Phone()

		_, err := tx.Exec(ctx, `
			INSERT INTO patients (id, codice_paziente, nome, cognome, tipo, ambulatorio, status, telefono, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, 'in_cura', $7, now(), now())
		`, id, code, nome, cognome, tipo, site, telefono)
		if err != nil {
			return nil, err
		}
		if site == agenda.SitePTACentro {
			ids = append(ids, id)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.Println("patients seeded")
	return ids, nil
}

func seedAppointments(ctx context.Context, pool *pgxpool.Pool, patientIDs []uuid.UUID, count int) error {
	if len(patientIDs) == 0 {
		return nil
	}
	log.Printf("seeding %d appointments", count)

	year := time.Now().Year()
	hs := agenda.HolidaySetFor(year, year+1)

	day := agenda.NextWorkingDay(time.Now(), hs)
	prestazioni := []string{"medicazione_semplice", "irrigazione_catetere", "fasciatura_semplice"}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	seeded := 0
	for seeded < count {
		data := day.Format(agenda.DateLayout)
		for _, ora := range agenda.TimeSlots {
			if seeded >= count {
				break
			}
			// Leave room under the capacity limit so manual booking works.
			if gofakeit.Number(0, 2) == 0 {
				continue
			}

			tipo := agenda.CarePICC
			if gofakeit.Bool() {
				tipo = agenda.CareMED
			}
			pid := patientIDs[gofakeit.Number(0, len(patientIDs)-1)]
			prest := prestazioni[gofakeit.Number(0, len(prestazioni)-1)]

			_, err := tx.Exec(ctx, `
				INSERT INTO appointments (id, patient_id, patient_nome, patient_cognome, ambulatorio, data, ora, tipo, prestazioni, stato, created_at, updated_at)
				SELECT $1, p.id, p.nome, p.cognome, $2, $3, $4, $5, $6, 'da_fare', now(), now()
				FROM patients p WHERE p.id = $7
			`, uuid.New(), agenda.SitePTACentro, data, ora, tipo, []string{prest}, pid)
			if err != nil {
				return err
			}
			seeded++
		}
		day = agenda.NextWorkingDay(day.AddDate(0, 0, 1), hs)
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Printf("appointments seeded: %d", seeded)
	return nil
}
