package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"marketdesk/internal/audit"
	"marketdesk/internal/dashboard"
	listinghandler "marketdesk/internal/listing/handler"
	listingmetrics "marketdesk/internal/listing/metrics"
	listingservice "marketdesk/internal/listing/service"
	"marketdesk/internal/listing/store"
	"marketdesk/internal/platform/config"
	"marketdesk/internal/platform/httpserver"
	"marketdesk/internal/platform/logger"
	"marketdesk/internal/platform/metrics"
	platformredis "marketdesk/internal/platform/redis"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal feature packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	listings, healthPing, closeStore, err := buildStore(ctx, cfg)
	if err != nil {
		log.Error("failed to initialize listing store", "error", err.Error())
		os.Exit(1)
	}
	defer closeStore()

	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to redis", "error", err.Error())
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	auditStore := audit.NewInMemoryStore()
	auditInbox := make(chan audit.Event, 256)
	auditWorker := audit.NewWorker(auditStore, auditInbox, log)
	go func() {
		if err := auditWorker.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("audit worker stopped", "error", err.Error())
		}
	}()

	listingSvc := listingservice.New(listings,
		listingservice.WithLogger(log),
		listingservice.WithMetrics(listingmetrics.New()),
		listingservice.WithAuditPublisher(audit.NewChannelPublisher(auditInbox)),
	)

	dashboardOpts := []dashboard.Option{dashboard.WithLogger(log)}
	if redisClient != nil {
		dashboardOpts = append(dashboardOpts,
			dashboard.WithCache(dashboard.NewRedisCache(redisClient), cfg.DashboardCacheTTL))
	}
	dashboardSvc := dashboard.New(listings, dashboardOpts...)

	router := chi.NewRouter()
	router.Use(metrics.Middleware(metrics.New()))
	router.Get("/healthz", healthz(healthPing, redisClient))
	router.Handle("/metrics", promhttp.Handler())
	listinghandler.New(listingSvc, log, cfg.AdminTokenHash).Register(router)
	dashboard.NewHandler(dashboardSvc, log, cfg.AdminTokenHash).Register(router)

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting marketdesk", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err.Error())
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
		os.Exit(1)
	}
	log.Info("marketdesk stopped")
}

// fullStore is what both the listing service and the dashboard need; the
// in-memory and PostgreSQL stores each provide it.
type fullStore interface {
	listingservice.Store
	dashboard.Store
}

func buildStore(ctx context.Context, cfg config.Server) (fullStore, func(context.Context) error, func(), error) {
	if cfg.PostgresDSN == "" {
		return store.NewInMemory(), nil, func() {}, nil
	}

	db, err := store.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, nil, err
	}
	pg := store.NewPostgres(db)
	if err := pg.Schema(ctx); err != nil {
		db.Close()
		return nil, nil, nil, err
	}
	return pg, db.PingContext, func() { db.Close() }, nil
}

// healthz reports liveness plus the health of whichever backends are wired.
func healthz(dbPing func(context.Context) error, redisClient *platformredis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if dbPing != nil {
			if err := dbPing(ctx); err != nil {
				http.Error(w, `{"status":"degraded","component":"postgres"}`, http.StatusServiceUnavailable)
				return
			}
		}
		if redisClient != nil {
			if err := redisClient.Health(ctx); err != nil {
				http.Error(w, `{"status":"degraded","component":"redis"}`, http.StatusServiceUnavailable)
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
