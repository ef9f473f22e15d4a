package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/noah-isme/ngepos/internal/money"
)

// ErrFetch indicates the product list could not be retrieved from its source.
var ErrFetch = errors.New("catalog: failed to fetch products")

// ErrNotFound indicates the requested product does not exist in the catalog.
var ErrNotFound = errors.New("catalog: product not found")

// Product is a sellable menu item. Values are immutable once handed out by a Provider.
type Product struct {
	ID    int64       `json:"id"`
	Name  string      `json:"name"`
	Price money.Money `json:"price"`
	Image string      `json:"image"`
}

// UnmarshalJSON accepts a numeric image, which is how bundled assets were
// referenced in history written by the mobile till.
func (p *Product) UnmarshalJSON(data []byte) error {
	type plain Product
	var raw struct {
		plain
		Image json.RawMessage `json:"image"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Product(raw.plain)
	p.Image = ""
	img := bytes.TrimSpace(raw.Image)
	switch {
	case len(img) == 0 || bytes.Equal(img, []byte("null")):
	case img[0] == '"':
		return json.Unmarshal(img, &p.Image)
	default:
		p.Image = string(img)
	}
	return nil
}

// Provider lists the products available at the till.
type Provider interface {
	ListProducts(ctx context.Context) ([]Product, error)
}
