package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Options selects and configures a store. Redis and Postgres clients are owned
// by the caller.
type Options struct {
	Backend     string
	SQLitePath  string
	Redis       *redis.Client
	RedisPrefix string
	Postgres    *pgxpool.Pool
}

// Open returns the store named by opts.Backend. The returned close function
// releases resources Open created itself and is never nil.
func Open(ctx context.Context, opts Options) (KV, func() error, error) {
	noop := func() error { return nil }
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case BackendMemory:
		return NewMemory(), noop, nil
	case BackendSQLite, "":
		path := opts.SQLitePath
		if path == "" {
			path = "ngepos.db"
		}
		db, err := OpenSQLite(ctx, path)
		if err != nil {
			return nil, noop, err
		}
		return db, db.Close, nil
	case BackendRedis:
		if opts.Redis == nil {
			return nil, noop, errors.New("storage: redis backend requires a client")
		}
		return NewRedis(opts.Redis, opts.RedisPrefix), noop, nil
	case BackendPostgres:
		if opts.Postgres == nil {
			return nil, noop, errors.New("storage: postgres backend requires a pool")
		}
		return NewPostgres(opts.Postgres), noop, nil
	default:
		return nil, noop, fmt.Errorf("storage: unknown backend %q", opts.Backend)
	}
}
