package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/common/database"
	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/common/telemetry"
	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/services/notifier/internal/api"
	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/services/notifier/internal/archive"
	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/services/notifier/internal/config"
	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/services/notifier/internal/events"
	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/services/notifier/internal/push"
	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/services/notifier/internal/sink"
	"github.com/ISYS3461-2025C-Hercules-DEVision/JobManager-sub000/services/notifier/internal/store"

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
		nats.Name("notifier-service"),
		nats.RetryOnFailedConnect(true),
	}
	return nats.Connect(cfg.NATSURL, opts...)
}

func newStore(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (*store.Store, error) {
	s, err := store.New(context.Background(), cfg.PostgresURL, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			s.Close()
			return nil
		},
	})
	return s, nil
}

func newArchiver(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (sink.MatchArchiver, error) {
	if cfg.ClickHouseDSN == "" {
		logger.Info("match archive disabled, no clickhouse DSN configured")
		return nil, nil
	}

	db, err := database.New(context.Background(), database.Options{
		DSN:             cfg.ClickHouseDSN,
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Hour,
		Username:        cfg.ClickHouseUsername,
		Password:        cfg.ClickHousePassword,
		Database:        cfg.ClickHouseDatabase,
	}, logger)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return db.Close()
		},
	})

	return archive.NewArchiver(db.Conn()), nil
}

func newSink(notificationStore *store.Store, pusher *push.Pusher, archiver sink.MatchArchiver, logger *zap.Logger) *sink.Sink {
	return sink.NewSink(notificationStore, pusher, archiver, logger)
}

func newAPIServer(notificationStore *store.Store, logger *zap.Logger, cfg *config.Config) *api.Server {
	return api.NewServer(notificationStore, logger, cfg)
}

func registerTelemetry(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) {
	if cfg.OTELCollectorURL == "" {
		return
	}

	var shutdown func()
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			fn, err := telemetry.InitTracer(ctx, "notifier-service", cfg.OTELCollectorURL)
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
			newStore,
			newArchiver,
			push.NewPusher,
			newSink,
			newAPIServer,
			events.NewHandler,
		),
		fx.Invoke(
			registerTelemetry,
			func(server *api.Server, lc fx.Lifecycle) {
				server.Register(lc)
			},
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
