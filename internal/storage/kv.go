// Package storage provides the durable key-value stores the ledger writes through to.
package storage

import "context"

// KV is a string key-value store. Get reports a missing key with ok=false and a
// nil error.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}
