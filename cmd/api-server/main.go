package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/clinicware/ambulatorio-scheduling/internal/agenda"
	"github.com/clinicware/ambulatorio-scheduling/internal/api"
	"github.com/clinicware/ambulatorio-scheduling/internal/auth"
	"github.com/clinicware/ambulatorio-scheduling/internal/config"
	"github.com/clinicware/ambulatorio-scheduling/internal/db"
	"github.com/clinicware/ambulatorio-scheduling/internal/logger"
	"github.com/clinicware/ambulatorio-scheduling/internal/patient"
	redisclient "github.com/clinicware/ambulatorio-scheduling/internal/redis"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	zlog, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	zlog.Info("api-server starting up",
		zap.String("env", cfg.Env),
		zap.String("http_port", cfg.HTTPPort),
		zap.String("version", version),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		zlog.Fatal("postgres connection error", zap.Error(err))
	}
	defer pgPool.Close()
	zlog.Info("connected to Postgres")

	// Connect Redis
	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		zlog.Fatal("redis connection error", zap.Error(err))
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			zlog.Warn("error closing redis", zap.Error(err))
		}
	}()
	zlog.Info("connected to Redis")

	locker := redisclient.NewRedisSlotLocker(rdb, cfg.LockTTL)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	agendaSvc := agenda.NewService(agenda.NewPgRepository(pgPool), locker, zlog)
	patientSvc := patient.NewService(patient.NewPgRepository(pgPool), zlog)
	authSvc := auth.NewService(auth.NewPgRepository(pgPool), tokens, zlog)

	router := api.NewRouter(api.RouterConfig{
		Agenda:         agendaSvc,
		Patients:       patientSvc,
		Auth:           authSvc,
		Tokens:         tokens,
		PgPool:         pgPool,
		Redis:          rdb,
		Log:            zlog,
		Env:            cfg.Env,
		Version:        version,
		CORSOrigins:    cfg.CORSOrigins,
		LoginRateLimit: cfg.LoginRateLimit,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("http server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-rootCtx.Done():
		zlog.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("http server error", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Warn("graceful shutdown failed", zap.Error(err))
	}

	zlog.Info("api-server stopped")
}
