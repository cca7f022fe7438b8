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

	"github.com/ivanstegen/WorkingCrypto/internal/cache"
	"github.com/ivanstegen/WorkingCrypto/internal/clock"
	"github.com/ivanstegen/WorkingCrypto/internal/config"
	"github.com/ivanstegen/WorkingCrypto/internal/fetch"
	"github.com/ivanstegen/WorkingCrypto/internal/handler"
	"github.com/ivanstegen/WorkingCrypto/internal/health"
	"github.com/ivanstegen/WorkingCrypto/internal/middleware"
	"github.com/ivanstegen/WorkingCrypto/internal/ratelimit"
	"github.com/ivanstegen/WorkingCrypto/internal/registry"
	"github.com/ivanstegen/WorkingCrypto/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Audit database is optional: without one the engine serves data
	// but /api/fetches answers 503.
	var db *store.Store
	if cfg.DatabaseURL != "" {
		var err error
		db, err = store.New(ctx, cfg.DatabaseURL)
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
	} else {
		logger.Info("DATABASE_URL not set, fetch audit log disabled")
	}

	// Cache backend: Redis when configured (retry while the secret
	// syncs), in-process memory otherwise.
	var dataCache cache.Cache
	if cfg.RedisURL != "" {
		var rc *cache.Redis
		var err error
		for i := 0; i < 6; i++ {
			rc, err = cache.NewRedis(cfg.RedisURL, cfg.RedisPassword)
			if err == nil {
				break
			}
			logger.Warn("redis not ready, retrying...", "attempt", i+1, "error", err)
			time.Sleep(5 * time.Second)
		}
		if err != nil {
			logger.Error("failed to connect to redis after retries", "error", err)
			os.Exit(1)
		}
		defer rc.Close()
		dataCache = rc
		logger.Info("redis connected for response cache")
	} else {
		dataCache = cache.NewMemory(clock.Real{})
		logger.Info("using in-memory response cache")
	}

	reg := registry.Default(registry.Keys{
		CoinGecko: cfg.CoinGeckoAPIKey,
		CoinCap:   cfg.CoinCapAPIKey,
	})

	clk := clock.Real{}
	tracker := health.NewTracker(reg, clk, logger)
	limiter := ratelimit.New(reg, clk)

	engine := fetch.New(reg, tracker, limiter, dataCache, logger, fetch.Options{
		Audit:        db,
		Connectivity: fetch.DialProbe("1.1.1.1:53", 3*time.Second),
	})

	// Background goroutines
	go tracker.Run(ctx)
	if db.Enabled() {
		go func() {
			ticker := time.NewTicker(time.Hour)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					n, err := db.CleanupOldFetches(ctx, 7*24*time.Hour)
					if err != nil {
						logger.Warn("audit cleanup failed", "error", err)
					} else if n > 0 {
						logger.Info("audit rows cleaned up", "deleted", n)
					}
				}
			}
		}()
	}

	// HTTP routes
	r := chi.NewRouter()
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.FrontendOrigin))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", handler.Health())
	r.Get("/readyz", handler.Ready(db))

	r.Route("/api", func(r chi.Router) {
		r.Get("/markets", handler.Markets(engine))
		r.Get("/assets/{id}", handler.AssetDetail(engine))
		r.Get("/assets/{id}/history", handler.AssetHistory(engine))
		r.Get("/status", handler.Status(engine))
		r.Post("/status/pin", handler.Pin(engine))
		r.Delete("/status/pin", handler.Unpin(engine))
		r.Get("/fetches", handler.Fetches(db))
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port)
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
