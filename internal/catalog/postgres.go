package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

type rowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Postgres reads the menu from the products table.
type Postgres struct {
	DB rowQuerier
}

const listProductsSQL = `SELECT id, name, price, image FROM products WHERE active ORDER BY id`

// ListProducts loads all active products ordered by id.
func (p Postgres) ListProducts(ctx context.Context) ([]Product, error) {
	if p.DB == nil {
		return nil, fmt.Errorf("%w: database not configured", ErrFetch)
	}
	rows, err := p.DB.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	products, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Product, error) {
		var prod Product
		err := row.Scan(&prod.ID, &prod.Name, &prod.Price, &prod.Image)
		return prod, err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	return products, nil
}
