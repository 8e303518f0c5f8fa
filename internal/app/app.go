package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"github.com/autovolt/lakehouse/internal/config"
	"github.com/autovolt/lakehouse/internal/metrics"
	"github.com/autovolt/lakehouse/internal/orchestrator"
	"github.com/autovolt/lakehouse/internal/persist"
	"github.com/autovolt/lakehouse/internal/services/lock"
	"github.com/autovolt/lakehouse/internal/services/notification"
	"github.com/autovolt/lakehouse/internal/services/storage"
	"github.com/autovolt/lakehouse/internal/services/warehouse"
	"github.com/autovolt/lakehouse/internal/state"
)

// App wires the generator's collaborators from configuration
type App struct {
	Config   *config.Config
	Metrics  *metrics.Metrics
	Blobs    storage.BlobStore
	States   *state.Store
	Sink     *warehouse.Sink
	Notifier *notification.Service
	Runner   *orchestrator.Runner

	redis   *redis.Client
	nats    *nats.Conn
	closers []func() error
}

// New connects every configured backend. Optional backends (Redis, NATS,
// warehouse) are skipped when unset.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg, Metrics: metrics.New()}

	if err := a.openStorage(ctx); err != nil {
		return nil, err
	}
	a.States = state.NewStore(a.Blobs, cfg.StatePath, cfg.InitialSeed)

	if cfg.WarehouseDriver != config.WarehouseNone {
		sink, err := warehouse.Open(ctx, cfg.WarehouseDriver, cfg.DatabaseURL, a.Blobs)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Sink = sink
		a.closers = append(a.closers, sink.Close)
		if err := a.Metrics.RegisterDB(sink.DB(), "warehouse"); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to register warehouse metrics: %w", err)
		}
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		a.redis = redis.NewClient(opts)
		a.closers = append(a.closers, a.redis.Close)
		if err := a.redis.Ping(ctx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to ping redis: %w", err)
		}
	}

	if cfg.NATSURL != "" {
		nc, err := nats.Connect(cfg.NATSURL, nats.Name("autovolt-lakehouse"))
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to nats: %w", err)
		}
		a.nats = nc
		a.closers = append(a.closers, func() error { return nc.Drain() })
	}

	a.Notifier = notification.NewService(a.redis, a.nats, cfg.NATSSubject)
	a.Runner = a.newRunner()

	slog.Info("Application initialised",
		"storage", cfg.StorageBackend,
		"warehouse", cfg.WarehouseDriver,
		"redis", a.redis != nil,
		"nats", a.nats != nil,
	)
	return a, nil
}

func (a *App) openStorage(ctx context.Context) error {
	switch a.Config.StorageBackend {
	case config.StorageMemory:
		a.Blobs = storage.NewMemory(a.Config.MinioBucket)
	default:
		svc, err := storage.NewService(ctx, a.Config)
		if err != nil {
			return err
		}
		a.Blobs = svc
	}
	return nil
}

func (a *App) newRunner() *orchestrator.Runner {
	cfg := a.Config

	var sink persist.Sink
	opts := []orchestrator.Option{
		orchestrator.WithMetrics(a.Metrics),
		orchestrator.WithNotifier(a.Notifier),
	}
	if a.Sink != nil {
		sink = a.Sink
		opts = append(opts, orchestrator.WithTables(a.Sink))
	}
	if a.redis != nil {
		opts = append(opts, orchestrator.WithLocker(lock.NewRedisLocker(a.redis, cfg.RunLockTTL)))
	}

	router := persist.NewRouter(a.Blobs, sink, cfg.LakePrefix, cfg.Location(), persist.WithMetrics(a.Metrics))
	settings := orchestrator.Settings{
		FleetSize:         cfg.FleetSize,
		CalendarStartYear: cfg.CalendarStartYear,
		CalendarEndYear:   cfg.CalendarEndYear,
		Location:          cfg.Location(),
	}
	return orchestrator.NewRunner(settings, a.States, router, opts...)
}

// ParseRequest validates raw run parameters against the configuration
func (a *App) ParseRequest(p orchestrator.Params) (orchestrator.Request, error) {
	return orchestrator.ParseRequest(p, a.Config.Location(), a.Config.StepsPerRun, a.Config.MaxBackfillDays)
}

// Close releases every backend connection
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
