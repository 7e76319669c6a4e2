// cmd/activities-api/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mergington-activities/internal/activities"
	"mergington-activities/internal/activities/store"
	"mergington-activities/internal/api"
	"mergington-activities/internal/common/aws"
	"mergington-activities/internal/common/config"
	"mergington-activities/internal/common/database"
	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/common/observability"
	"mergington-activities/internal/notify"
	"mergington-activities/pkg/registry"

	"go.uber.org/zap"
)

const (
	connectRetries    = 10
	connectRetryDelay = 2 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting activities API...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
		zap.String("store", cfg.Store.Backend),
	)

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Warn("otel metrics unavailable", zap.Error(err))
	}

	ctx := context.Background()

	// --- Store ---
	activityStore, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		zapLog.Fatal("store initialization failed", zap.Error(err))
	}

	seed, err := loadSeed(cfg.Store.SeedFile)
	if err != nil {
		zapLog.Fatal("failed to load seed catalog", zap.String("path", cfg.Store.SeedFile), zap.Error(err))
	}

	reg := activities.NewRegistry(activityStore, log)
	if err := reg.Seed(ctx, seed); err != nil {
		zapLog.Fatal("failed to seed registry", zap.Error(err))
	}

	// --- Notifications ---
	notifier := newNotifier(ctx, cfg, log)

	// --- HTTP Server ---
	srv := &http.Server{
		Addr: cfg.Server.Address(),
		Handler: api.NewRouter(api.Dependencies{
			Registry:      reg,
			Notifier:      notifier,
			Logger:        log,
			Observability: obs,
			RateLimit:     cfg.Server.RateLimit,
		}),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	serverErr := make(chan error, 1)
	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		zapLog.Info("Shutdown signal received, stopping server...", zap.String("signal", sig.String()))
	case err := <-serverErr:
		zapLog.Error("HTTP server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}
	if err := notifier.Close(shutdownCtx); err != nil {
		zapLog.Warn("Pending notifications dropped", zap.Error(err))
	}
	if err := closeStore(); err != nil {
		zapLog.Error("Error closing store", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down observability", zap.Error(err))
	}

	zapLog.Info("Activities API stopped gracefully")
}

func openStore(ctx context.Context, cfg *config.Config, log logger.Logger) (activities.Store, func() error, error) {
	switch cfg.Store.Backend {
	case config.BackendRedis:
		var rc *database.RedisClient
		err := database.RetryWithBackoff(ctx, func(ctx context.Context) error {
			var err error
			if rc, err = database.NewRedis(cfg.Database.Redis); err != nil {
				return err
			}
			if err = rc.Ping(ctx); err != nil {
				_ = rc.Close()
				return err
			}
			return nil
		}, connectRetries, connectRetryDelay, log, "Redis connection")
		if err != nil {
			return nil, nil, err
		}
		log.Info("Redis connected", map[string]interface{}{"address": cfg.Database.Redis.Address})
		return store.NewRedis(rc.Client, cfg.Database.Redis.KeyPrefix), rc.Close, nil

	case config.BackendPostgres:
		var pg *database.PostgresClient
		err := database.RetryWithBackoff(ctx, func(ctx context.Context) error {
			var err error
			if pg, err = database.NewPostgres(cfg.Database.Postgres); err != nil {
				return err
			}
			if err = pg.Ping(ctx); err != nil {
				_ = pg.Close()
				return err
			}
			return nil
		}, connectRetries, connectRetryDelay, log, "PostgreSQL connection")
		if err != nil {
			return nil, nil, err
		}
		log.Info("PostgreSQL connected", map[string]interface{}{"host": cfg.Database.Postgres.Host})

		s := store.NewPostgres(pg.DB)
		if err := s.EnsureSchema(ctx); err != nil {
			_ = pg.Close()
			return nil, nil, err
		}
		return s, pg.Close, nil

	default:
		return activities.NewMemoryStore(), func() error { return nil }, nil
	}
}

func loadSeed(path string) ([]activities.Activity, error) {
	if path == "" {
		return activities.DefaultSeed(), nil
	}
	catalog, err := registry.LoadRegistry(path)
	if err != nil {
		return nil, err
	}
	return catalog.ToActivities(), nil
}

func newNotifier(ctx context.Context, cfg *config.Config, log logger.Logger) notify.Notifier {
	email := cfg.Notifications.Email
	if !email.Enabled {
		return notify.NoOp{}
	}

	sesClient, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
	if err != nil {
		log.Error("SES client unavailable, confirmations disabled", map[string]interface{}{"error": err})
		return notify.NoOp{}
	}
	log.Info("Signup confirmations enabled", map[string]interface{}{
		"from":   email.FromEmail,
		"region": cfg.Notifications.AWS.Region,
	})
	return notify.NewEmailNotifier(sesClient, email.FromEmail, config.GetDuration(email.Timeout), log)
}
