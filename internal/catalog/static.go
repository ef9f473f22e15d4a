package catalog

import (
	"context"
	"fmt"
	"time"
)

// DefaultMenu is the menu shipped with a fresh install.
var DefaultMenu = []Product{
	{ID: 1, Name: "Nasi Goreng Spesial", Price: 25000, Image: "menu/nasi-goreng-spesial.jpg"},
	{ID: 2, Name: "Mie Ayam Bakso", Price: 18000, Image: "menu/mie-ayam-bakso.jpg"},
	{ID: 3, Name: "Es Teh Manis", Price: 5000, Image: "menu/es-teh-manis.jpg"},
	{ID: 4, Name: "Ayam Geprek", Price: 22000, Image: "menu/ayam-geprek.jpg"},
	{ID: 5, Name: "Sate Ayam", Price: 28000, Image: "menu/sate-ayam.jpg"},
	{ID: 6, Name: "Es Jeruk Segar", Price: 8000, Image: "menu/es-jeruk-segar.jpg"},
	{ID: 7, Name: "Rendang Daging", Price: 35000, Image: "menu/rendang-daging.jpg"},
	{ID: 8, Name: "Kopi Susu", Price: 15000, Image: "menu/kopi-susu.jpg"},
}

// Static serves a fixed product list, optionally after a simulated network delay.
type Static struct {
	Products []Product
	Latency  time.Duration
}

// NewStatic returns a Static provider over DefaultMenu.
func NewStatic(latency time.Duration) *Static {
	return &Static{Products: DefaultMenu, Latency: latency}
}

// ListProducts returns a copy of the configured products.
func (s *Static) ListProducts(ctx context.Context) ([]Product, error) {
	if s.Latency > 0 {
		timer := time.NewTimer(s.Latency)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %w", ErrFetch, ctx.Err())
		case <-timer.C:
		}
	}
	out := make([]Product, len(s.Products))
	copy(out, s.Products)
	return out, nil
}
