package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/web3-frozen/protocol-dashboard/internal/config"
	"github.com/web3-frozen/protocol-dashboard/internal/dashboard"
	"github.com/web3-frozen/protocol-dashboard/internal/handler"
	"github.com/web3-frozen/protocol-dashboard/internal/middleware"
	"github.com/web3-frozen/protocol-dashboard/internal/refresher"
	"github.com/web3-frozen/protocol-dashboard/internal/snapcache"
	"github.com/web3-frozen/protocol-dashboard/internal/store"
	"github.com/web3-frozen/protocol-dashboard/internal/summary"
	"github.com/web3-frozen/protocol-dashboard/internal/terminal"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	cfg := config.Load()

	if cfg.BearerToken == "" {
		logger.Error("TERMINAL_BEARER_TOKEN is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Durable payload cache. Falls back to in-memory when no database is
	// configured, which is enough for local development.
	var cache terminal.CacheStore
	var pinger handler.Pinger
	if cfg.DatabaseURL != "" {
		db, err := store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := db.Migrate(ctx); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		logger.Info("database connected and migrated")
		cache = db
		pinger = db
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory payload cache")
		cache = store.NewMemory()
	}

	// Redis snapshot cache is optional; without it every request recomputes
	// from the durable cache.
	snaps, err := snapcache.New(cfg.RedisURL, cfg.RedisPassword, cfg.CacheTTL)
	if err != nil {
		logger.Warn("redis unavailable, snapshot cache disabled", "error", err)
		snaps = nil
	} else {
		defer snaps.Close()
		logger.Info("redis connected for snapshot cache")
	}

	client := terminal.NewClient(cfg.BearerToken, cfg.JWTToken, cache, cfg.CacheTTL, logger)
	loader := dashboard.NewLoader(client, snaps, cfg.ProjectSlug, logger)
	gen := summary.New(cfg.OpenAIKey, logger)

	// Background cache warmer
	go refresher.New(loader, nil, cfg.CacheTTL, logger).Run(ctx)

	// HTTP routes
	r := chi.NewRouter()
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.FrontendOrigin))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", handler.Health())
	r.Get("/readyz", handler.Ready(pinger))

	r.Route("/api", func(r chi.Router) {
		r.Get("/snapshot", handler.Snapshot(loader))
		r.Get("/tables", handler.Tables(loader))
		r.Get("/timeseries/{metricID}", handler.TimeSeries(loader))
		r.Get("/summary", handler.Summary(loader, gen))
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "project", cfg.ProjectSlug)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down gracefully")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
