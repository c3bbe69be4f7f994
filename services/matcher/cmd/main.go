package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/common/cache"
	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/common/cache/memory"
	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/common/cache/redis"
	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/common/telemetry"
	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/services/matcher/internal/config"
	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/services/matcher/internal/consumer"
	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/services/matcher/internal/directory"
	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/services/matcher/internal/events"
	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/services/matcher/internal/messaging"

	"github.com/nats-io/nats.go"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return zap.NewProduction()
}

func newNATSConnection(cfg *config.Config) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Timeout(cfg.NATSConnTimeout),
		nats.Name("matcher-service"),
		nats.RetryOnFailedConnect(true),
	}
	return nats.Connect(cfg.NATSURL, opts...)
}

func newProfileCache(cfg *config.Config) cache.Cache {
	opts := cache.Options{
		DefaultTTL:    cfg.DirectoryCacheTTL,
		RedisURL:      cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	}

	if cfg.DirectoryCacheBackend == "redis" {
		return redis.New(opts)
	}
	return memory.New(opts)
}

func registerTelemetry(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) {
	if cfg.OTELCollectorURL == "" {
		return
	}

	var shutdown func()
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			fn, err := telemetry.InitTracer(ctx, "matcher-service", cfg.OTELCollectorURL)
			if err != nil {
				logger.Warn("failed to init tracer, continuing without traces", zap.Error(err))
				return nil
			}
			shutdown = fn
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if shutdown != nil {
				shutdown()
			}
			return nil
		},
	})
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			newLogger,
			newNATSConnection,
			newProfileCache,
			directory.NewClient,
			messaging.NewPublisher,
			consumer.NewConsumer,
			events.NewHandler,
		),
		fx.Invoke(
			registerTelemetry,
			func(handler *events.Handler, lc fx.Lifecycle) error {
				return handler.RegisterSubscriptions(lc)
			},
		),
	)

	startCtx := context.Background()
	if err := app.Start(startCtx); err != nil {
		log.Fatal(err)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	stopCtx := context.Background()
	if err := app.Stop(stopCtx); err != nil {
		log.Fatal(err)
	}
}
