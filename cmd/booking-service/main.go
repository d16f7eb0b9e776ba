package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpHandlers "github.com/harborlink/marina/internal/api/http"
	"github.com/harborlink/marina/internal/availability"
	"github.com/harborlink/marina/internal/cache"
	"github.com/harborlink/marina/internal/clock"
	"github.com/harborlink/marina/internal/config"
	"github.com/harborlink/marina/internal/notify"
	"github.com/harborlink/marina/internal/platform/logger"
	"github.com/harborlink/marina/internal/presence"
	"github.com/harborlink/marina/internal/services"
	"github.com/harborlink/marina/internal/store"
	"github.com/harborlink/marina/internal/store/memstore"
	"github.com/harborlink/marina/internal/store/postgres"
)

func main() {
	log := logger.New("booking-service")

	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Int("http_port", cfg.HTTPPort).
		Bool("postgres", cfg.PostgresDSN != "").
		Msg("Booking service starting…")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// -------- Storage layer -----------------
	var st store.Store
	if cfg.PostgresDSN != "" {
		db, err := postgres.Open(cfg.PostgresDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("Postgres unavailable")
		}
		defer func() { _ = db.Close() }()
		if err := postgres.Bootstrap(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("Schema bootstrap failed")
		}
		st = postgres.NewWithDB(db)
	} else {
		log.Warn().Msg("MARINA_POSTGRES_DSN not set, using in-memory store")
		st = memstore.New()
	}

	// -------- Read cache --------------------
	readCache := cache.New(cfg.CacheCapacity, log)
	readCache.StartSweeper(ctx, cfg.CacheSweepInterval)

	// -------- Presence & notifications ------
	hub := presence.NewHub(cfg.ProbeInterval, cfg.StaleTimeout, log)
	hub.Start(ctx)

	var fallback notify.Fallback = notify.NoopFallback{}
	if cfg.FallbackURL != "" {
		fallback = notify.NewWebhookFallback(cfg.FallbackURL, log)
	}
	notifier := notify.New(hub, fallback, log)

	// -------- Booking service ---------------
	engine := availability.New(st, cfg.TierCeilings)
	svc := services.NewBookingService(st, engine, readCache, notifier, clock.NewSystem(), cfg, log)

	// -------- Health monitor ----------------
	httpHandlers.StartHealthMonitor(ctx, st, 30*time.Second)

	// -------- Router & Server ---------------
	router := httpHandlers.NewRouter(svc, presence.NewHandler(hub, log))
	server := &http.Server{
		Addr:         cfg.GetHTTPAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server…")
	stop()
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}
