// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the medaudio category service.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"medaudio/internal/cache"
	"medaudio/internal/config"
	"medaudio/internal/database"
	"medaudio/internal/handlers"
	"medaudio/internal/jobs"
	"medaudio/internal/metrics"
	"medaudio/internal/router"
	"medaudio/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: JSON in production, text in development.
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))

	slog.Info("configuration loaded",
		"env", cfg.App.Env,
		"addr", cfg.Addr(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config) error {
	// Connect to PostgreSQL.
	db, err := database.Connect(ctx, cfg.DSN(), cfg.Database.Pool)
	if err != nil {
		return err
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(ctx, db); err != nil {
		return err
	}

	// Seed the default taxonomy (no-op if categories already exist).
	if cfg.IsDev() || cfg.Database.Seed {
		if err := database.Seed(ctx, db, database.DefaultTaxonomy); err != nil {
			return err
		}
	}

	// Initialize data stores.
	categoryStore := store.NewCategoryStore(db)
	audioStore := store.NewAudioStore(db)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	cacheOpts := []cache.Option{cache.WithRecorder(m)}

	// Valkey carries cache invalidations between instances. The service
	// runs standalone without it.
	var broadcaster *cache.Broadcaster
	valkeyClient, err := cache.ConnectValkey(ctx, cfg.Valkey.Host, cfg.Valkey.Port, cfg.Valkey.Password, cfg.Valkey.DB)
	if err != nil {
		slog.Warn("valkey unavailable, cache invalidations stay local", "error", err)
	} else {
		defer valkeyClient.Close()
		broadcaster = cache.NewBroadcaster(valkeyClient)
		cacheOpts = append(cacheOpts, cache.WithPublisher(broadcaster))
	}

	categoryCache := cache.NewManager(categoryStore, cfg.Cache, cacheOpts...)
	defer categoryCache.Close()

	if broadcaster != nil {
		go func() {
			if err := broadcaster.Listen(ctx, categoryCache); err != nil {
				slog.Error("cache invalidation listener stopped", "error", err)
			}
		}()
	}

	if err := categoryCache.Warmup(ctx); err != nil {
		slog.Warn("cache warmup failed", "error", err)
	}

	scheduler, err := jobs.New(jobs.Config{
		CacheCleanup:     cfg.Jobs.CacheCleanup,
		CompatReport:     cfg.Jobs.CompatReport,
		CompatReportSize: cfg.Jobs.CompatReportSize,
	}, jobs.Deps{
		Cache:      categoryCache,
		Audios:     audioStore,
		Categories: categoryStore,
		Recorder:   m,
	})
	if err != nil {
		return err
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			slog.Error("job scheduler shutdown failed", "error", err)
		}
	}()

	// Create handler groups with their dependencies.
	r := router.New(router.Handlers{
		Public:  handlers.NewPublic(categoryCache),
		Admin:   handlers.NewAdmin(categoryStore, categoryCache, m),
		Compat:  handlers.NewCompat(audioStore, categoryStore, m),
		Health:  handlers.Health(db, categoryCache),
		Metrics: m.Handler(),
	}, router.Options{
		AdminKeyHash: cfg.Admin.KeyHash,
		CORSOrigins:  cfg.HTTP.CORSOrigins,
		RateLimit:    cfg.HTTP.RateLimit,
		RateWindow:   cfg.HTTP.RateWindow,
		Observer:     m,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	// Give active requests time to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
