package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicware/ambulatorio-scheduling/internal/agenda"
	"github.com/clinicware/ambulatorio-scheduling/internal/config"
	"github.com/clinicware/ambulatorio-scheduling/internal/db"
)

// Contention probe: fires N concurrent booking requests at the same slot
// and checks that no more than agenda.SlotCapacity of them succeed.

type SimConfig struct {
	APIBaseURL  string
	Workers     int
	Username    string
	Password    string
	Ambulatorio string
	Data        string
	Ora         string
	Tipo        string
	PostgresDSN string
}

type bookResult struct {
	status int
	code   string
	err    error
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("contention probe starting")

	cfg := loadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pgPool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pgPool.Close()

	patients, err := loadPatients(ctx, pgPool, cfg.Ambulatorio, cfg.Workers)
	if err != nil {
		log.Fatalf("load patients: %v", err)
	}
	if len(patients) < cfg.Workers {
		log.Fatalf("need %d in-cura patients at %s, found %d (run cmd/seed first)",
			cfg.Workers, cfg.Ambulatorio, len(patients))
	}

	client := &http.Client{Timeout: 10 * time.Second}

	token, err := login(ctx, client, cfg)
	if err != nil {
		log.Fatalf("login: %v", err)
	}

	log.Printf("slot under test: %s %s %s %s, %d workers",
		cfg.Ambulatorio, cfg.Data, cfg.Ora, cfg.Tipo, cfg.Workers)

	results := make([]bookResult, cfg.Workers)
	start := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i] = book(ctx, client, cfg, token, patients[i])
		}(i)
	}
	close(start)
	wg.Wait()

	var created, full, locked, other int
	for _, r := range results {
		switch {
		case r.err != nil:
			other++
			log.Printf("request failed: %v", r.err)
		case r.status == http.StatusCreated:
			created++
		case r.code == "slot_full":
			full++
		case r.code == "slot_being_booked":
			locked++
		default:
			other++
			log.Printf("unexpected response: status=%d code=%s", r.status, r.code)
		}
	}

	booked, err := countBooked(ctx, client, cfg, token)
	if err != nil {
		log.Fatalf("verify slot occupancy: %v", err)
	}

	log.Printf("results: created=%d slot_full=%d slot_being_booked=%d other=%d", created, full, locked, other)
	log.Printf("server-side occupancy for the slot: %d (capacity %d)", booked, agenda.SlotCapacity)

	if booked > agenda.SlotCapacity || created > agenda.SlotCapacity {
		log.Fatalf("CAPACITY VIOLATION: %d bookings landed on a slot of capacity %d", booked, agenda.SlotCapacity)
	}
	log.Println("capacity invariant held")
}

func loadConfig() SimConfig {
	baseCfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load base config: %v", err)
	}

	data := getEnv("SIM_DATA", "")
	if data == "" {
		year := time.Now().Year()
		next := agenda.NextWorkingDay(time.Now().AddDate(0, 0, 1), agenda.HolidaySetFor(year, year+1))
		data = next.Format(agenda.DateLayout)
	}

	return SimConfig{
		APIBaseURL:  getEnv("SIM_API_BASE_URL", "http://localhost:8080"),
		Workers:     getInt("SIM_WORKERS", 10),
		Username:    getEnv("SIM_USERNAME", "admin"),
		Password:    getEnv("SIM_PASSWORD", "admin"),
		Ambulatorio: getEnv("SIM_AMBULATORIO", string(agenda.SitePTACentro)),
		Data:        data,
		Ora:         getEnv("SIM_ORA", "09:00"),
		Tipo:        getEnv("SIM_TIPO", string(agenda.CarePICC)),
		PostgresDSN: baseCfg.PostgresDSN,
	}
}

func loadPatients(ctx context.Context, pool *pgxpool.Pool, site string, limit int) ([]uuid.UUID, error) {
	rows, err := pool.Query(ctx,
		`SELECT id FROM patients WHERE ambulatorio = $1 AND status = 'in_cura' LIMIT $2`,
		site, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func login(ctx context.Context, client *http.Client, cfg SimConfig) (string, error) {
	body, _ := json.Marshal(map[string]string{
		"username": cfg.Username,
		"password": cfg.Password,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.APIBaseURL+"/api/auth/login", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("login failed: status=%d body=%s", resp.StatusCode, raw)
	}

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.AccessToken, nil
}

func book(ctx context.Context, client *http.Client, cfg SimConfig, token string, patientID uuid.UUID) bookResult {
	payload, _ := json.Marshal(map[string]any{
		"patient_id":  patientID.String(),
		"ambulatorio": cfg.Ambulatorio,
		"data":        cfg.Data,
		"ora":         cfg.Ora,
		"tipo":        cfg.Tipo,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.APIBaseURL+"/api/appointments", bytes.NewReader(payload))
	if err != nil {
		return bookResult{err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return bookResult{err: err}
	}
	defer resp.Body.Close()

	var out struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&out)

	return bookResult{status: resp.StatusCode, code: out.Error}
}

func countBooked(ctx context.Context, client *http.Client, cfg SimConfig, token string) (int, error) {
	url := fmt.Sprintf("%s/api/appointments?ambulatorio=%s&data=%s&tipo=%s",
		cfg.APIBaseURL, cfg.Ambulatorio, cfg.Data, cfg.Tipo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("list appointments: status=%d body=%s", resp.StatusCode, raw)
	}

	var appts []struct {
		Ora string `json:"ora"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&appts); err != nil {
		return 0, err
	}

	count := 0
	for _, a := range appts {
		if a.Ora == cfg.Ora {
			count++
		}
	}
	return count, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
