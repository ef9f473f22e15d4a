// Package payment validates tendered cash against an order total.
package payment

import (
	"errors"
	"fmt"

	"github.com/noah-isme/ngepos/internal/money"
)

// ErrInvalidInput is returned when an amount is malformed or negative.
var ErrInvalidInput = errors.New("payment: invalid amount")

// ErrInsufficientFunds is matched by *InsufficientFundsError.
var ErrInsufficientFunds = errors.New("payment: insufficient funds")

// InsufficientFundsError carries the figures needed to tell the cashier how
// much is still missing.
type InsufficientFundsError struct {
	Total    money.Money
	Tendered money.Money
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("payment: tendered %d is below total %d", e.Tendered, e.Total)
}

// Is makes errors.Is(err, ErrInsufficientFunds) succeed.
func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// Shortfall returns Total - Tendered.
func (e *InsufficientFundsError) Shortfall() money.Money {
	return e.Total - e.Tendered
}

// Settlement is the outcome of a successful cash settlement.
type Settlement struct {
	Total    money.Money `json:"total"`
	Tendered money.Money `json:"tendered"`
	Change   money.Money `json:"change"`
}

// Settle checks tendered against total and computes the change to hand back.
func Settle(total, tendered money.Money) (Settlement, error) {
	if total < 0 {
		return Settlement{}, fmt.Errorf("total %d: %w", total, ErrInvalidInput)
	}
	if tendered < 0 {
		return Settlement{}, fmt.Errorf("tendered %d: %w", tendered, ErrInvalidInput)
	}
	if tendered < total {
		return Settlement{}, &InsufficientFundsError{Total: total, Tendered: tendered}
	}
	return Settlement{Total: total, Tendered: tendered, Change: tendered - total}, nil
}

// ParseTendered reads the amount typed on the cash keypad.
func ParseTendered(raw string) (money.Money, error) {
	amount, err := money.Parse(raw)
	if err != nil {
		return 0, fmt.Errorf("tendered %q: %w", raw, ErrInvalidInput)
	}
	return amount, nil
}

// SettleInput parses raw and settles it against total.
func SettleInput(total money.Money, raw string) (Settlement, error) {
	tendered, err := ParseTendered(raw)
	if err != nil {
		return Settlement{}, err
	}
	return Settle(total, tendered)
}

// Result is the settlement outcome shaped for the payment screen.
type Result struct {
	Valid  bool        `json:"valid"`
	Reason string      `json:"reason,omitempty"`
	Change money.Money `json:"change"`
}

// Messages shown on the payment screen.
const (
	ReasonEnterAmount = "Masukkan nominal pembayaran"
	reasonShortPrefix = "Nominal kurang. Minimal "
)

// Evaluate settles raw against total and reports the outcome with a message fit
// for display instead of an error.
func Evaluate(total money.Money, raw string) Result {
	s, err := SettleInput(total, raw)
	if err != nil {
		return Result{Valid: false, Reason: ReasonFor(err)}
	}
	return Result{Valid: true, Change: s.Change}
}

// ReasonFor turns a settlement error into the cashier-facing message.
func ReasonFor(err error) string {
	var short *InsufficientFundsError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &short):
		return reasonShortPrefix + money.Format(short.Total)
	case errors.Is(err, ErrInvalidInput):
		return ReasonEnterAmount
	default:
		return err.Error()
	}
}
