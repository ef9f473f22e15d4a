package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const productsCacheKey = "catalog:products:all"

// Service fronts a Provider with caching and lookup helpers.
type Service struct {
	provider Provider
	cache    *Cache
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Provider Provider
	Cache    *Cache
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Provider == nil {
		return nil, errors.New("catalog: provider is required")
	}
	return &Service{provider: cfg.Provider, cache: cfg.Cache}, nil
}

// ListProducts returns the full product list, served from cache when possible.
func (s *Service) ListProducts(ctx context.Context) ([]Product, error) {
	if s.cache != nil {
		var cached []Product
		ok, err := s.cache.GetJSON(ctx, productsCacheKey, &cached)
		if err == nil && ok {
			return cached, nil
		}
	}
	products, err := s.provider.ListProducts(ctx)
	if err != nil {
		if errors.Is(err, ErrFetch) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	if products == nil {
		products = []Product{}
	}
	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, productsCacheKey, products)
	}
	return products, nil
}

// Search returns products whose name contains query, case-insensitively.
// An empty query returns every product.
func (s *Service) Search(ctx context.Context, query string) ([]Product, error) {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return products, nil
	}
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Find returns the product with the given id.
func (s *Service) Find(ctx context.Context, id int64) (Product, error) {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return Product{}, err
	}
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, fmt.Errorf("product %d: %w", id, ErrNotFound)
}

// Invalidate drops the cached product list so the next read hits the provider.
func (s *Service) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, productsCacheKey)
}

// Ping reports whether the catalog cache backend is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.cache.Ping(ctx)
}
