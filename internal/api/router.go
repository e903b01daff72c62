package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/clinicware/ambulatorio-scheduling/internal/agenda"
	"github.com/clinicware/ambulatorio-scheduling/internal/auth"
	"github.com/clinicware/ambulatorio-scheduling/internal/patient"
)

type RouterConfig struct {
	Agenda   *agenda.Service
	Patients *patient.Service
	Auth     *auth.Service
	Tokens   *auth.TokenManager

	PgPool *pgxpool.Pool
	Redis  *redis.Client
	Log    *zap.Logger

	Env            string
	Version        string
	CORSOrigins    []string
	LoginRateLimit int
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Route("/api", func(r chi.Router) {
		r.With(httprate.LimitByIP(cfg.LoginRateLimit, time.Minute)).
			Post("/auth/login", loginHandler(cfg.Auth))

		// Everything else requires a session.
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(cfg.Tokens))

			r.Get("/auth/me", meHandler(cfg.Auth))

			r.Get("/appointments", listAppointmentsHandler(cfg.Agenda))
			r.Post("/appointments", createAppointmentHandler(cfg.Agenda))
			r.Put("/appointments/{id}", updateAppointmentHandler(cfg.Agenda))
			r.Delete("/appointments/{id}", deleteAppointmentHandler(cfg.Agenda))

			r.Get("/patients", listPatientsHandler(cfg.Patients))
			r.Post("/patients", createPatientHandler(cfg.Patients))
			r.Post("/patients/batch", batchCreatePatientsHandler(cfg.Patients))
			r.Put("/patients/batch/status", batchStatusHandler(cfg.Patients))
			r.Post("/patients/batch/delete", batchDeletePatientsHandler(cfg.Patients))
			r.Get("/patients/picc/search", searchPICCHandler(cfg.Patients))
			r.Get("/patients/{id}", getPatientHandler(cfg.Patients))
			r.Put("/patients/{id}", updatePatientHandler(cfg.Patients))
			r.Delete("/patients/{id}", deletePatientHandler(cfg.Patients))

			r.Post("/implants/batch", batchCreateImplantsHandler(cfg.Patients))

			r.Get("/calendar/holidays", holidaysHandler())
			r.Get("/calendar/slots", timeSlotsHandler())

			r.Get("/closed-slots", listClosedSlotsHandler(cfg.Agenda))
			r.Post("/closed-slots", createClosedSlotsHandler(cfg.Agenda))
			r.Post("/closed-slots/reopen-day", reopenDayHandler(cfg.Agenda))
			r.Delete("/closed-slots/{id}", deleteClosedSlotHandler(cfg.Agenda))
		})
	})

	return r
}
