package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/okian/platefinder/internal/adapters/http/api"
	"github.com/okian/platefinder/internal/adapters/http/site"
	"github.com/okian/platefinder/internal/adapters/http/swagger"
	"github.com/okian/platefinder/internal/adapters/identity"
	"github.com/okian/platefinder/internal/adapters/repository"
	app "github.com/okian/platefinder/internal/app"
	"github.com/okian/platefinder/internal/config"
	"github.com/okian/platefinder/pkg/logger"
	"github.com/okian/platefinder/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func serve(ctx context.Context, cfg *config.Config) error {
	if err := logger.InitWith(os.Stdout, cfg.LogFormat); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, err := newService(ctx, cfg)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		svc.Stop(stopCtx)
	}()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, svc, cfg),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

// newService assembles the service from configuration: stores, principals
// and seed restaurants.
func newService(ctx context.Context, cfg *config.Config) (*app.Service, error) {
	var extra []app.Option
	if cfg.UsersFile != "" {
		users, err := identity.LoadUsers(cfg.UsersFile)
		if err != nil {
			return nil, err
		}
		extra = append(extra, app.WithUsers(users))
	}
	if cfg.SeedFile != "" {
		seed, err := app.LoadSeed(cfg.SeedFile)
		if err != nil {
			return nil, err
		}
		extra = append(extra, app.WithSeed(seed))
	}

	// Stores open last so a bad users or seed file never leaves a handle behind.
	records, audits, err := openStores(ctx, cfg)
	if err != nil {
		return nil, err
	}

	opts := []app.Option{
		app.WithLogger(logger.Get().Named("service")),
		app.WithRecordStore(records),
		app.WithAuditStore(audits),
		app.WithStoreTimeout(time.Duration(cfg.StoreTimeoutMS) * time.Millisecond),
		app.WithWorkerCount(cfg.AuditWorkerCount),
		app.WithQueueSize(cfg.AuditQueueSize),
		app.WithRoles(cfg.CreatorRole, cfg.ViewerRole),
	}
	return app.New(append(opts, extra...)...), nil
}

func openStores(ctx context.Context, cfg *config.Config) (repository.RecordStore, repository.AuditStore, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		db, err := repository.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	default:
		return repository.NewMemoryRecordStore(), repository.NewMemoryAuditStore(), nil
	}
}

func newMux(ctx context.Context, svc *app.Service, cfg *config.Config) *http.ServeMux {
	mux := http.NewServeMux()
	site.Register(ctx, mux)
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc, api.WithRateLimit(cfg.RateLimit, cfg.RateLimitBurst)).Register(ctx, mux)
	return mux
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater refreshes the gauges GetStats maintains.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()
	if n, ok := stats["restaurants"].(int); ok {
		metrics.UpdateRestaurantCount(n)
	}
	if n, ok := stats["auditQueueLength"].(int); ok {
		metrics.UpdateAuditQueueSize(n)
	}
}
