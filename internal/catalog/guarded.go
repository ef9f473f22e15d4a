package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/noah-isme/ngepos/internal/resilience"
)

// Guarded fails fast while its breaker is open so a dead product source does
// not stall every cart command.
type Guarded struct {
	Provider Provider
	Breaker  *resilience.Breaker
}

// ListProducts delegates to the wrapped provider through the breaker.
func (g Guarded) ListProducts(ctx context.Context) ([]Product, error) {
	if g.Breaker == nil {
		return g.Provider.ListProducts(ctx)
	}
	var products []Product
	err := g.Breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		products, err = g.Provider.ListProducts(ctx)
		return err
	})
	if errors.Is(err, resilience.ErrOpenCircuit) {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	return products, err
}
