package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/ngepos/internal/cart"
	"github.com/noah-isme/ngepos/internal/money"
)

// Transaction is a completed sale. It is never mutated after Append returns it.
type Transaction struct {
	ID            string      `json:"id"`
	Items         []cart.Line `json:"items"`
	TotalAmount   money.Money `json:"totalAmount"`
	PaidAmount    money.Money `json:"paidAmount"`
	Change        money.Money `json:"change"`
	PaymentMethod string      `json:"paymentMethod"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// Draft carries the checkout result before the ledger assigns id and timestamp.
type Draft struct {
	Items         []cart.Line
	TotalAmount   money.Money
	PaidAmount    money.Money
	Change        money.Money
	PaymentMethod string
}

// ItemCount returns the number of units sold.
func (t Transaction) ItemCount() int {
	n := 0
	for _, line := range t.Items {
		n += line.Quantity
	}
	return n
}

func (t Transaction) clone() Transaction {
	t.Items = append([]cart.Line(nil), t.Items...)
	return t
}

func cloneAll(txs []Transaction) []Transaction {
	out := make([]Transaction, len(txs))
	for i, tx := range txs {
		out[i] = tx.clone()
	}
	return out
}

// NewTransactionID returns "TRX-" followed by a time-ordered UUIDv7.
func NewTransactionID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return "TRX-" + id.String(), nil
}
