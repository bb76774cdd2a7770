package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/vietddude/fintrack/internal/api"
	"github.com/vietddude/fintrack/internal/core/config"
	"github.com/vietddude/fintrack/internal/core/gate"
	"github.com/vietddude/fintrack/internal/health"
	"github.com/vietddude/fintrack/internal/infra/probe"
	redisclient "github.com/vietddude/fintrack/internal/infra/redis"
	"github.com/vietddude/fintrack/internal/infra/storage"
	"github.com/vietddude/fintrack/internal/infra/storage/memory"
	"github.com/vietddude/fintrack/internal/infra/storage/postgres"
)

// App owns the servers and backends of a running fintrack process.
type App struct {
	cfg         *config.AppConfig
	db          *postgres.DB
	redisClient *redisclient.Client
	store       *storage.Store
	monitor     *health.Monitor
	apiServer   *api.Server
	grpcServer  *health.GRPCServer
	group       *errgroup.Group
	log         *slog.Logger
}

// NewApp creates an App. Nothing is connected until Start.
func NewApp(cfg *config.AppConfig) *App {
	app := &App{
		cfg: cfg,
		log: slog.Default().With("component", "app"),
	}
	if cfg.Server.GRPCPort > 0 {
		app.grpcServer = health.NewGRPCServer(cfg.Server.GRPCPort)
	}
	return app
}

// Targets lists the data stores the process depends on, in gate order.
func Targets(cfg *config.AppConfig) []gate.Target {
	var targets []gate.Target
	if cfg.Database.URL != "" {
		pg := probe.NewPostgresProber(cfg.Database.Driver, cfg.Database.URL, cfg.Gate.TreatMissingDBAsTransient)
		targets = append(targets, gate.Target{Name: "postgres", Prober: pg, Classifier: pg.Classifier()})
	}
	if cfg.Redis.URL != "" {
		rp := probe.NewRedisProber(cfg.Redis.URL, cfg.Redis.Password)
		targets = append(targets, gate.Target{Name: "redis", Prober: rp, Classifier: gate.ClassifierFunc(probe.ClassifyRedis)})
	}
	return targets
}

// WaitForDependencies blocks until every configured data store is reachable.
func WaitForDependencies(ctx context.Context, cfg *config.AppConfig, opts ...gate.Option) error {
	targets := Targets(cfg)
	if len(targets) == 0 {
		slog.Info("No external data stores configured, skipping startup gate")
		return nil
	}
	return gate.WaitAll(ctx, cfg.Gate.Config, targets, opts...)
}

// Start gates on the data stores, opens them and starts serving. The gRPC
// health service is up (NOT_SERVING) while the gate waits.
func (a *App) Start(ctx context.Context) error {
	a.group, ctx = errgroup.WithContext(ctx)

	if a.grpcServer != nil {
		a.group.Go(func() error {
			a.log.Info("gRPC health server listening", "port", a.cfg.Server.GRPCPort)
			return a.grpcServer.Start()
		})
	}

	if err := WaitForDependencies(ctx, a.cfg); err != nil {
		return fmt.Errorf("startup gate: %w", err)
	}

	if err := a.openStorage(ctx); err != nil {
		return err
	}
	a.openCache()

	a.monitor = health.NewMonitor(a.components()...)
	a.apiServer = api.NewServer(api.NewRouter(a.store, a.monitor), a.cfg.Server.Port)

	a.group.Go(func() error {
		a.log.Info("HTTP server listening", "port", a.cfg.Server.Port)
		if err := a.apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if a.db != nil {
		a.db.StartMetricsCollector(ctx)
	}
	if a.grpcServer != nil {
		a.grpcServer.SetServing(true)
	}
	return nil
}

func (a *App) openStorage(ctx context.Context) error {
	if a.cfg.Database.URL == "" {
		a.store = memory.NewMemoryStorage().Store()
		a.log.Warn("No database configured, using in-memory storage")
		return nil
	}

	db, err := postgres.NewDB(ctx, a.cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to init db: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return err
	}
	a.db = db
	a.store = db.Store()
	a.log.Info("Using PostgreSQL storage", "driver", a.cfg.Database.Driver)
	return nil
}

// openCache wraps the store with Redis. A Redis that passed the gate but
// fails here only costs the cache.
func (a *App) openCache() {
	if a.cfg.Redis.URL == "" {
		return
	}
	client, err := redisclient.NewClient(a.cfg.Redis)
	if err != nil {
		a.log.Warn("Redis cache disabled", "error", err)
		return
	}
	a.redisClient = client
	a.store = redisclient.Wrap(a.store, client)
	a.log.Info("Reference lists cached in Redis")
}

func (a *App) components() []health.Component {
	var components []health.Component
	if a.db != nil {
		components = append(components, health.Component{
			Name: "database", Checker: health.CheckerFunc(a.db.Health), Critical: true,
		})
	}
	if a.redisClient != nil {
		components = append(components, health.Component{
			Name: "redis", Checker: health.CheckerFunc(a.redisClient.Ping),
		})
	}
	return components
}

// Wait blocks until a server fails or every server has stopped.
func (a *App) Wait() error {
	if a.group == nil {
		return nil
	}
	return a.group.Wait()
}

// Stop shuts the servers down and closes the backends.
func (a *App) Stop(ctx context.Context) error {
	a.log.Info("Stopping fintrack...")

	var errs []error
	if a.grpcServer != nil {
		a.grpcServer.SetServing(false)
		if err := a.grpcServer.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("grpc: %w", err))
		}
	}
	if a.apiServer != nil {
		if err := a.apiServer.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http: %w", err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("db: %w", err))
		}
	}
	return errors.Join(errs...)
}
