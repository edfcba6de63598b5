package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/staysign/guestreg/internal/http/handlers"
	"github.com/staysign/guestreg/internal/pdf"
	"github.com/staysign/guestreg/internal/ratelimit"
	"github.com/staysign/guestreg/internal/repo"
	"github.com/staysign/guestreg/internal/service"
	"github.com/staysign/guestreg/internal/store"
	"github.com/staysign/guestreg/pkg/config"
	"github.com/staysign/guestreg/pkg/events"
	"github.com/staysign/guestreg/pkg/logger"
	mw "github.com/staysign/guestreg/pkg/middleware"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx := context.Background()

	kv := openStore(ctx, cfg)

	bus := openEventBus(cfg)
	defer bus.Close()

	regRepo := repo.NewRegistrationRepo(kv)
	limiter := ratelimit.New(kv, cfg.RateLimit.Window, cfg.RateLimit.MaxRequests)
	submissions := service.NewSubmissionService(regRepo, limiter, bus, cfg.Retention.RecordTTL)
	renderer := pdf.NewRenderer(regRepo)

	h := handlers.New(submissions, renderer, regRepo)

	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.Logging)
	r.Use(mw.CORS(cfg.CORS.AllowedOrigins))
	r.Use(mw.Metrics)

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Get("/schema", h.Schema)
		r.Get("/registrations/{id}/document", h.Document)
	})
	r.Get("/registrations/{id}", h.SuccessView)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down registration service...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Shutdown error", "error", err)
		}
	}()

	logger.Info("Starting registration service", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}

// openStore prefers Redis when configured and falls back to the in-process
// store otherwise. The fallback is not durable and not safe across multiple
// instances; it exists for local development.
func openStore(ctx context.Context, cfg *config.Config) store.KV {
	if cfg.Redis.URL == "" {
		logger.Warn("REDIS_URL not set, using in-memory store (not durable)")
		return store.NewMemoryKV()
	}

	kv, err := store.NewRedisKV(ctx, cfg.Redis.URL, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.OpTimeout)
	if err != nil {
		logger.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}

	logger.Info("Connected to Redis store")
	return kv
}

func openEventBus(cfg *config.Config) events.Publisher {
	if cfg.NATS.URL == "" {
		return events.NoopPublisher{}
	}

	bus, err := events.NewNATSPublisher(cfg.NATS.URL)
	if err != nil {
		logger.Warn("Failed to connect to NATS, events disabled", "error", err)
		return events.NoopPublisher{}
	}

	logger.Info("Connected to NATS event bus")
	return bus
}
