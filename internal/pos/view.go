package pos

import (
	"github.com/noah-isme/ngepos/internal/catalog"
	"github.com/noah-isme/ngepos/internal/money"
	"github.com/noah-isme/ngepos/internal/payment"
)

// LineView is a cart line with its subtotal.
type LineView struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
	Subtotal money.Money     `json:"subtotal"`
}

// CartView is the cart as rendered by a client.
type CartView struct {
	Lines      []LineView  `json:"lines"`
	TotalItems int         `json:"totalItems"`
	TotalPrice money.Money `json:"totalPrice"`
	TotalLabel string      `json:"totalLabel"`
}

// MethodView describes a payment method button.
type MethodView struct {
	Code      payment.Method `json:"code"`
	Label     string         `json:"label"`
	Supported bool           `json:"supported"`
}

// QuickAmounts feeds the payment screen.
type QuickAmounts struct {
	Total   money.Money   `json:"total"`
	Amounts []money.Money `json:"amounts"`
	Labels  []string      `json:"labels"`
	Methods []MethodView  `json:"methods"`
}
