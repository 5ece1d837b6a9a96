package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/Alijeyrad/myvoice_backend/config"
	"github.com/Alijeyrad/myvoice_backend/internal/repo"
	"github.com/Alijeyrad/myvoice_backend/pkg/constants"
	"github.com/Alijeyrad/myvoice_backend/pkg/database"
	"github.com/Alijeyrad/myvoice_backend/pkg/email"
	"github.com/Alijeyrad/myvoice_backend/pkg/events"
	"github.com/Alijeyrad/myvoice_backend/pkg/logs"
	"github.com/Alijeyrad/myvoice_backend/pkg/observability"
	redispkg "github.com/Alijeyrad/myvoice_backend/pkg/redis"
	s3pkg "github.com/Alijeyrad/myvoice_backend/pkg/s3"
	"github.com/Alijeyrad/myvoice_backend/pkg/sms"
)

// InfraModule provides all infrastructure dependencies.
var InfraModule = fx.Module("infra",
	fx.Provide(ProvideLogger),
	fx.Provide(ProvideEntClient),
	fx.Provide(ProvideRedis),
	fx.Provide(ProvideLocker),
	fx.Provide(ProvideEmailClient),
	fx.Provide(ProvideSMSClient),
	fx.Provide(ProvideOTel),
	fx.Provide(ProvideMetrics),
	fx.Provide(ProvideS3Client),
	fx.Provide(ProvideNatsClient),
	fx.Provide(ProvideEventBus),
)

// Logger routes fx's own events through the application logger.
func Logger() fx.Option {
	return fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
		return &fxevent.SlogLogger{Logger: log.With("component", "fx")}
	})
}

func ProvideLogger(cfg *config.Config) *slog.Logger {
	log := logs.New(cfg)
	slog.SetDefault(log)
	return log
}

func ProvideEntClient(lc fx.Lifecycle, cfg *config.Config, log *slog.Logger) (*repo.Client, error) {
	client, err := database.NewEntClient(cfg.Database)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !cfg.Database.Migrations.AutoMigrate {
				return nil
			}
			log.Info("applying schema migrations")
			return database.Migrate(ctx, client)
		},
		OnStop: func(ctx context.Context) error {
			log.Debug("closing main database connection")
			return client.Close()
		},
	})
	return client, nil
}

func ProvideRedis(lc fx.Lifecycle, cfg *config.Config, log *slog.Logger) (*redis.Client, error) {
	rdb, err := redispkg.NewRedisFromCentral(cfg.Redis)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Debug("closing Redis connection")
			return rdb.Close()
		},
	})
	return rdb, nil
}

func ProvideLocker(rdb *redis.Client, cfg *config.Config, log *slog.Logger) *redispkg.Locker {
	ttl := time.Duration(cfg.Registration.LockTTLSeconds) * time.Second
	return redispkg.NewLocker(rdb, constants.AppName, ttl, log)
}

func ProvideEmailClient(cfg *config.Config) (*email.Client, error) {
	return email.NewFromCentral(cfg.Email)
}

func ProvideSMSClient(cfg *config.Config) (*sms.Client, error) {
	return sms.NewFromConfig(cfg.SMS)
}

// ProvideS3Client returns nil when no bucket is configured; exports are then
// refused while the rest of the app runs.
func ProvideS3Client(cfg *config.Config, log *slog.Logger) (*s3pkg.Client, error) {
	if cfg.S3.Bucket == "" {
		log.Warn("s3 bucket not configured, report exports disabled")
		return nil, nil
	}
	return s3pkg.New(context.Background(), cfg.S3)
}

func ProvideNatsClient(lc fx.Lifecycle, cfg *config.Config, log *slog.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(cfg.Nats.URL,
		nats.Name(constants.AppName),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Debug("draining NATS connection")
			return nc.Drain()
		},
	})
	return nc, nil
}

func ProvideEventBus(nc *nats.Conn, cfg *config.Config) *events.Bus {
	return events.NewBus(nc, cfg.Nats.SubjectPrefix)
}

func ProvideOTel(lc fx.Lifecycle, cfg *config.Config, log *slog.Logger) (*observability.Provider, error) {
	if !cfg.Observability.Enabled {
		return nil, nil
	}
	provider, err := observability.InitTelemetry(context.Background(), observability.FromCentralConfig(cfg))
	if err != nil {
		return nil, err
	}
	log.Info("observability initialized",
		"tracing", cfg.Observability.Tracing.Enabled,
		"metrics", cfg.Observability.Metrics.Enabled,
	)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Debug("shutting down observability providers")
			return provider.Shutdown(ctx)
		},
	})
	return provider, nil
}

// ProvideMetrics registers the domain counters on the process meter
// provider. Services accept a nil *Metrics.
func ProvideMetrics(p *observability.Provider, cfg *config.Config) (*observability.Metrics, error) {
	if p == nil || !cfg.Observability.Metrics.Enabled {
		return nil, nil
	}
	return observability.NewMetrics(p.MeterProvider)
}
