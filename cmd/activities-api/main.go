// cmd/activities-api/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"activities-api/internal/api"
	"activities-api/internal/common/config"
	"activities-api/internal/common/database"
	"activities-api/internal/common/logger"
	"activities-api/internal/common/observability"
	"activities-api/internal/notifier"
	"activities-api/internal/registry"
	"activities-api/web"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func loadSeed(cfg *config.Config, zapLog *zap.Logger) map[string]registry.Activity {
	if cfg.Registry.SeedFile == "" {
		return registry.DefaultSeed()
	}
	seed, err := registry.LoadSeedFile(cfg.Registry.SeedFile)
	if err != nil {
		zapLog.Fatal("seed file load failed",
			zap.String("path", cfg.Registry.SeedFile),
			zap.Error(err),
		)
	}
	zapLog.Info("seed file loaded",
		zap.String("path", cfg.Registry.SeedFile),
		zap.Int("activities", len(seed)),
	)
	return seed
}

// buildStore constructs the registry store selected by storage.driver,
// seeding it when the backend is empty.
func buildStore(ctx context.Context, cfg *config.Config, zapLog *zap.Logger) (registry.Store, func(), error) {
	regCfg := registry.Config{EnforceCapacity: cfg.Registry.EnforceCapacity}
	seed := loadSeed(cfg, zapLog)

	switch cfg.Storage.Driver {
	case "memory":
		return registry.NewMemoryStore(seed, regCfg), func() {}, nil

	case "postgres":
		var pg *database.PostgresClient
		err := retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Storage.Postgres)
			if err != nil {
				return err
			}
			// sql.Open is lazy; only a ping proves the backend is up.
			if err := pg.Ping(ctx); err != nil {
				pg.Close()
				return err
			}
			return nil
		}, 10, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			return nil, nil, err
		}

		store := registry.NewPostgresStore(pg.GetDB(), regCfg)
		if err := store.EnsureSchema(ctx); err != nil {
			pg.Close()
			return nil, nil, err
		}
		if err := store.SeedIfEmpty(ctx, seed); err != nil {
			pg.Close()
			return nil, nil, err
		}
		return store, func() { pg.Close() }, nil

	case "redis":
		var rdb *database.RedisClient
		err := retryWithBackoff(func() error {
			var err error
			rdb, err = database.NewRedis(cfg.Storage.Redis)
			if err != nil {
				return err
			}
			// redis.NewClient never dials; only a ping proves the backend is up.
			if err := rdb.Ping(ctx); err != nil {
				rdb.Close()
				return err
			}
			return nil
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			return nil, nil, err
		}

		store := registry.NewRedisStore(rdb.GetClient(), regCfg)
		if err := store.SeedIfEmpty(ctx, seed); err != nil {
			rdb.Close()
			return nil, nil, err
		}
		return store, func() { rdb.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}
}

func buildNotifier(ctx context.Context, cfg *config.Config, log logger.Logger, zapLog *zap.Logger) notifier.Notifier {
	if !cfg.Notifications.Email.Enabled && !cfg.Notifications.Events.Enabled {
		return notifier.Noop{}
	}
	n, err := notifier.New(ctx, &notifier.Config{
		EmailEnabled:  cfg.Notifications.Email.Enabled,
		FromEmail:     cfg.Notifications.Email.FromEmail,
		EventsEnabled: cfg.Notifications.Events.Enabled,
		TopicARN:      cfg.Notifications.Events.TopicARN,
		AWSRegion:     cfg.Notifications.AWS.Region,
	}, log)
	if err != nil {
		// Notifications are best-effort; the API keeps serving without them.
		zapLog.Warn("notifier init failed, notifications disabled", zap.Error(err))
		return notifier.Noop{}
	}
	return n
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New("info", "console")
		fallback.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting activities API...",
		zap.String("environment", cfg.App.Environment),
		zap.String("storageDriver", cfg.Storage.Driver),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	store, closeStore, err := buildStore(ctx, cfg, zapLog)
	if err != nil {
		zapLog.Fatal("store initialization failed", zap.Error(err))
	}
	defer closeStore()

	server := api.NewServer(api.Options{
		Store:         store,
		Notifier:      buildNotifier(ctx, cfg, log, zapLog),
		Logger:        log,
		Observability: obs,
		Static:        web.Static(),
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server.Router(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining connections...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}

	zapLog.Info("Shutdown complete")
}
