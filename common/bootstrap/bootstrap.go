package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/promptmyrep/civic/common/cache"
	"github.com/promptmyrep/civic/common/config"
	"github.com/promptmyrep/civic/common/db"
	"github.com/promptmyrep/civic/common/logger"
	rediscommon "github.com/promptmyrep/civic/common/redis"
	"github.com/promptmyrep/civic/common/telemetry"
)

// Setup initializes all service components
// This is the main entry point for all binaries
func Setup(ctx context.Context, serviceName string, opts ...Option) (*Components, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	components := &Components{
		cleanupFuncs: make([]func() error, 0),
	}

	// 1. Load configuration
	var err error
	if options.customConfig != nil {
		components.Config = options.customConfig
	} else {
		components.Config, err = config.Load(serviceName)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}
	cfg := components.Config

	// 2. Initialize logger
	if options.customLogger != nil {
		components.Logger = options.customLogger
	} else {
		components.Logger = logger.New(cfg.Service.LogLevel, cfg.Service.LogFormat)
	}

	components.Logger.Info("initializing service",
		"service", serviceName,
		"environment", cfg.Service.Environment,
	)

	// 3. Initialize database (if not skipped)
	if !options.skipDB {
		components.Logger.Info("connecting to database")
		components.DB, err = db.New(ctx, cfg, components.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		components.addCleanup(func() error {
			components.DB.Close()
			return nil
		})
	}

	// 4. Initialize Redis (optional)
	if !options.skipRedis && cfg.Redis.Addr != "" {
		components.Redis, err = rediscommon.New(ctx, rediscommon.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, components.Logger)
		if err != nil {
			components.Shutdown(ctx)
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}

		components.addCleanup(func() error {
			components.Logger.Info("closing redis client")
			return components.Redis.Close()
		})
	}

	// 5. Initialize cache (if not skipped)
	if !options.skipCache && cfg.Cache.Enabled {
		components.Logger.Info("initializing cache", "backend", cfg.Cache.Backend)

		switch {
		case cfg.Cache.Backend == "redis" && components.Redis != nil:
			components.Cache = cache.NewRedisCache(components.Redis, serviceName+":cache:")
		case cfg.Cache.Backend == "redis":
			components.Logger.Warn("redis cache requested but redis is unavailable, using memory cache")
			fallthrough
		default:
			components.Cache = cache.NewMemoryCache(cfg.Cache.MaxEntries, cfg.Cache.DefaultTTL, components.Logger)
		}

		components.addCleanup(func() error {
			return components.Cache.Close()
		})
	}

	// 6. Initialize telemetry (if not skipped)
	if !options.skipTelemetry {
		components.Telemetry = telemetry.New(
			cfg.Telemetry.PprofPort,
			cfg.Telemetry.MetricsPort,
			components.Logger,
		)

		components.Telemetry.RecordRuntimeInfo(serviceName)

		if err := components.Telemetry.Start(ctx, cfg.Telemetry.EnablePprof, cfg.Telemetry.EnableMetrics); err != nil {
			// Don't fail startup if telemetry fails
			components.Logger.Warn("failed to start telemetry", "error", err)
		}

		components.addCleanup(func() error {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return components.Telemetry.Close(shutdownCtx)
		})
	}

	components.Logger.Info("service initialization complete",
		"service", serviceName,
		"db", components.DB != nil,
		"redis", components.Redis != nil,
		"cache", components.Cache != nil,
		"telemetry", components.Telemetry != nil,
	)

	return components, nil
}
