// Package app assembles the till's services and HTTP router from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	limiter "github.com/ulule/limiter/v3"
	limitermemory "github.com/ulule/limiter/v3/drivers/store/memory"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/noah-isme/ngepos/internal/catalog"
	"github.com/noah-isme/ngepos/internal/config"
	"github.com/noah-isme/ngepos/internal/events"
	"github.com/noah-isme/ngepos/internal/ledger"
	"github.com/noah-isme/ngepos/internal/obs"
	"github.com/noah-isme/ngepos/internal/pos"
	"github.com/noah-isme/ngepos/internal/resilience"
	"github.com/noah-isme/ngepos/internal/storage"
)

// Dependencies are the external clients the application is built on. Redis
// and DB are optional; config validation guarantees they are present when a
// configured component needs them.
type Dependencies struct {
	Config *config.Config
	Logger zerolog.Logger
	Redis  *redis.Client
	DB     *pgxpool.Pool
	Now    func() time.Time
}

// App is the assembled application.
type App struct {
	Session *pos.Session
	Catalog *catalog.Service
	Store   storage.KV
	Limiter *limiter.Limiter
	Bus     *events.Bus

	closeStore func() error
}

// New wires storage, catalog, ledger and session, then loads the history.
func New(ctx context.Context, deps Dependencies) (*App, error) {
	cfg := deps.Config
	if cfg == nil {
		return nil, errors.New("app: config is required")
	}

	store, closeStore, err := storage.Open(ctx, storage.Options{
		Backend:     cfg.LedgerBackend,
		SQLitePath:  cfg.LedgerSQLitePath,
		Redis:       deps.Redis,
		RedisPrefix: cfg.RedisKeyPrefix,
		Postgres:    deps.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("open ledger store: %w", err)
	}

	catalogSvc, err := newCatalog(cfg, deps)
	if err != nil {
		_ = closeStore()
		return nil, err
	}

	l, err := ledger.New(ledger.Config{
		Store:  store,
		Key:    cfg.LedgerStorageKey,
		Now:    deps.Now,
		Logger: deps.Logger,
	})
	if err != nil {
		_ = closeStore()
		return nil, err
	}

	bus := &events.Bus{Notifiers: []events.Notifier{
		events.LogNotifier{Logger: obs.Component(deps.Logger, "events")},
		events.MetricsNotifier{},
	}}

	session, err := pos.NewSession(pos.Config{
		Catalog:  catalogSvc,
		Ledger:   l,
		Bus:      bus,
		Location: cfg.ReportLocation,
		Now:      deps.Now,
		Logger:   deps.Logger,
	})
	if err != nil {
		_ = closeStore()
		return nil, err
	}
	loaded := session.Open(ctx)
	deps.Logger.Info().
		Str("backend", cfg.LedgerBackend).
		Int("transactions", loaded).
		Msg("transaction history loaded")

	lim, err := newLimiter(cfg, deps.Redis)
	if err != nil {
		_ = closeStore()
		return nil, err
	}

	return &App{
		Session:    session,
		Catalog:    catalogSvc,
		Store:      store,
		Limiter:    lim,
		Bus:        bus,
		closeStore: closeStore,
	}, nil
}

// Close releases resources owned by the App.
func (a *App) Close() error {
	if a == nil || a.closeStore == nil {
		return nil
	}
	return a.closeStore()
}

func newCatalog(cfg *config.Config, deps Dependencies) (*catalog.Service, error) {
	var provider catalog.Provider
	switch cfg.CatalogSource {
	case config.CatalogPostgres:
		if deps.DB == nil {
			return nil, errors.New("app: postgres catalog requires a database pool")
		}
		provider = catalog.Postgres{DB: deps.DB}
	default:
		provider = catalog.NewStatic(cfg.CatalogLatency)
	}
	breaker := resilience.NewBreaker(resilience.Config{
		Target: "catalog_" + cfg.CatalogSource,
		Logger: obs.Component(deps.Logger, "catalog"),
	})
	return catalog.NewService(catalog.ServiceConfig{
		Provider: catalog.Guarded{Provider: provider, Breaker: breaker},
		Cache:    catalog.NewCache(deps.Redis, cfg.CatalogCacheTTL),
	})
}

// newLimiter shares rate-limit counters through Redis when available.
func newLimiter(cfg *config.Config, rdb *redis.Client) (*limiter.Limiter, error) {
	if cfg.RateLimit.Limit <= 0 {
		return nil, nil
	}
	var store limiter.Store
	if rdb != nil {
		s, err := limiterredis.NewStoreWithOptions(rdb, limiter.StoreOptions{Prefix: cfg.RedisKeyPrefix + "limiter"})
		if err != nil {
			return nil, fmt.Errorf("init rate limiter store: %w", err)
		}
		store = s
	} else {
		store = limitermemory.NewStore()
	}
	return limiter.New(store, cfg.RateLimit), nil
}
