package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ngepos/internal/catalog"
	"github.com/noah-isme/ngepos/internal/resilience"
)

type flakyProvider struct {
	calls int
	err   error
}

func (f *flakyProvider) ListProducts(context.Context) ([]catalog.Product, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return catalog.DefaultMenu, nil
}

func TestGuardedFailsFastWhenOpen(t *testing.T) {
	src := &flakyProvider{err: errors.New("connection refused")}
	g := catalog.Guarded{Provider: src, Breaker: resilience.NewBreaker(resilience.Config{MinRequests: 2})}
	ctx := context.Background()

	for range 2 {
		_, err := g.ListProducts(ctx)
		require.Error(t, err)
	}
	require.Equal(t, 2, src.calls)

	_, err := g.ListProducts(ctx)
	require.ErrorIs(t, err, catalog.ErrFetch)
	require.ErrorIs(t, err, resilience.ErrOpenCircuit)
	require.Equal(t, 2, src.calls)
}

func TestGuardedPassesThrough(t *testing.T) {
	src := &flakyProvider{}
	g := catalog.Guarded{Provider: src, Breaker: resilience.NewBreaker(resilience.Config{})}
	products, err := g.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, len(catalog.DefaultMenu))

	bare := catalog.Guarded{Provider: src}
	_, err = bare.ListProducts(context.Background())
	require.NoError(t, err)
}
