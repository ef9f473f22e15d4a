// Package pos ties the catalog, cart, settlement and ledger into a till session.
package pos

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/ngepos/internal/cart"
	"github.com/noah-isme/ngepos/internal/catalog"
	"github.com/noah-isme/ngepos/internal/common"
	"github.com/noah-isme/ngepos/internal/events"
	"github.com/noah-isme/ngepos/internal/ledger"
	"github.com/noah-isme/ngepos/internal/money"
	"github.com/noah-isme/ngepos/internal/obs"
	"github.com/noah-isme/ngepos/internal/payment"
	"github.com/noah-isme/ngepos/internal/report"
)

// ErrEmptyCart is returned when checking out a cart with no lines.
var ErrEmptyCart = errors.New("pos: cart is empty")

// Catalog is the product lookup the session needs.
type Catalog interface {
	Find(ctx context.Context, id int64) (catalog.Product, error)
}

// Config wires a Session.
type Config struct {
	Catalog  Catalog
	Ledger   *ledger.Ledger
	Bus      *events.Bus
	Location *time.Location
	Now      func() time.Time
	Logger   zerolog.Logger
}

// Session owns the single cart and ledger of a till. Every command holds the
// session lock, so callers on different goroutines are serialized.
type Session struct {
	mu      sync.Mutex
	catalog Catalog
	cart    *cart.Cart
	ledger  *ledger.Ledger
	bus     *events.Bus
	loc     *time.Location
	now     func() time.Time
	logger  zerolog.Logger

	changes []cart.Change
}

// NewSession constructs a session with an empty cart.
func NewSession(cfg Config) (*Session, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("pos: catalog is required")
	}
	if cfg.Ledger == nil {
		return nil, errors.New("pos: ledger is required")
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	s := &Session{
		catalog: cfg.Catalog,
		cart:    cart.New(),
		ledger:  cfg.Ledger,
		bus:     cfg.Bus,
		loc:     loc,
		now:     now,
		logger:  obs.Component(cfg.Logger, "pos"),
	}
	s.cart.Subscribe(func(c cart.Change) { s.changes = append(s.changes, c) })
	return s, nil
}

// Open loads the transaction history.
func (s *Session) Open(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ledger.Load(ctx))
}

// AddToCart adds one unit of the product to the cart.
func (s *Session) AddToCart(ctx context.Context, productID int64) (CartView, error) {
	product, err := s.catalog.Find(ctx, productID)
	if err != nil {
		return CartView{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Add(product)
	s.flush(ctx)
	return s.view(), nil
}

// SetQuantity sets a line's quantity; zero or less removes it. Unknown ids are ignored.
func (s *Session) SetQuantity(ctx context.Context, productID int64, quantity int) CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.SetQuantity(productID, quantity)
	s.flush(ctx)
	return s.view()
}

// RemoveFromCart drops a line. Unknown ids are ignored.
func (s *Session) RemoveFromCart(ctx context.Context, productID int64) CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Remove(productID)
	s.flush(ctx)
	return s.view()
}

// ClearCart empties the cart.
func (s *Session) ClearCart(ctx context.Context) CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Clear()
	s.flush(ctx)
	return s.view()
}

// Cart returns the current cart.
func (s *Session) Cart() CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

// QuickAmounts returns the pay buttons for the current total.
func (s *Session) QuickAmounts() QuickAmounts {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := s.cart.TotalPrice()
	amounts := payment.SuggestedDenominations(total)
	labels := make([]string, len(amounts))
	for i, a := range amounts {
		labels[i] = money.Format(a)
	}
	methods := make([]MethodView, 0, len(payment.Methods()))
	for _, m := range payment.Methods() {
		methods = append(methods, MethodView{Code: m, Label: m.Label(), Supported: m.Supported()})
	}
	return QuickAmounts{Total: total, Amounts: amounts, Labels: labels, Methods: methods}
}

// Evaluate checks a tendered amount against the cart total without committing.
func (s *Session) Evaluate(tendered string) payment.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return payment.Evaluate(s.cart.TotalPrice(), tendered)
}

// Pay settles the cart, records the sale and clears the cart. On any error the
// cart and ledger are unchanged.
func (s *Session) Pay(ctx context.Context, method, tendered string) (ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := payment.ParseMethod(method)
	if err != nil {
		obs.ObserveCheckout("unknown", "invalid_input")
		return ledger.Transaction{}, err
	}
	tx, err := s.pay(ctx, m, tendered)
	obs.ObserveCheckout(string(m), checkoutResult(err))
	if err != nil {
		s.logger.Info().Err(err).Str("method", string(m)).Msg("checkout rejected")
		return ledger.Transaction{}, err
	}
	s.logger.Info().
		Str("transaction_id", tx.ID).
		Int("items", tx.ItemCount()).
		Int64("total", tx.TotalAmount).
		Int64("change", tx.Change).
		Msg("checkout completed")
	return tx, nil
}

func (s *Session) pay(ctx context.Context, m payment.Method, tendered string) (ledger.Transaction, error) {
	if s.cart.IsEmpty() {
		return ledger.Transaction{}, ErrEmptyCart
	}
	if err := payment.RequireSupported(m); err != nil {
		return ledger.Transaction{}, err
	}
	settlement, err := payment.SettleInput(s.cart.TotalPrice(), tendered)
	if err != nil {
		return ledger.Transaction{}, err
	}
	tx, err := s.ledger.Append(ctx, ledger.Draft{
		Items:         s.cart.Snapshot(),
		TotalAmount:   settlement.Total,
		PaidAmount:    settlement.Tendered,
		Change:        settlement.Change,
		PaymentMethod: m.Label(),
	})
	if err != nil {
		return ledger.Transaction{}, err
	}
	s.cart.Clear()
	s.flush(ctx)
	s.emit(ctx, events.TopicTransactionCompleted, tx)
	return tx, nil
}

// History returns one page of transactions, newest first, and the total count.
func (s *Session) History(page, perPage int) ([]ledger.Transaction, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.ledger.Transactions()
	return common.Paginate(all, page, perPage), len(all)
}

// ClearHistory deletes every recorded transaction.
func (s *Session) ClearHistory(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := s.ledger.Len()
	if err := s.ledger.ClearAll(ctx); err != nil {
		return err
	}
	s.logger.Warn().Int("removed", removed).Msg("transaction history cleared")
	s.emit(ctx, events.TopicLedgerCleared, map[string]int{"removed": removed})
	return nil
}

// Dashboard summarizes the history in the report time zone.
func (s *Session) Dashboard() report.Dashboard {
	s.mu.Lock()
	defer s.mu.Unlock()
	return report.Build(s.ledger.Transactions(), s.now(), s.loc)
}

// flush publishes cart changes recorded by the listener since the last flush.
func (s *Session) flush(ctx context.Context) {
	changes := s.changes
	s.changes = nil
	for _, c := range changes {
		s.emit(ctx, events.TopicCartUpdated, c)
	}
}

func (s *Session) emit(ctx context.Context, topic string, payload any) {
	if _, err := s.bus.Emit(ctx, topic, payload); err != nil {
		s.logger.Warn().Err(err).Str("topic", topic).Msg("event delivery failed")
	}
}

func (s *Session) view() CartView {
	lines := s.cart.Lines()
	out := make([]LineView, len(lines))
	for i, l := range lines {
		out[i] = LineView{Product: l.Product, Quantity: l.Quantity, Subtotal: l.Subtotal()}
	}
	total := s.cart.TotalPrice()
	return CartView{
		Lines:      out,
		TotalItems: s.cart.TotalItems(),
		TotalPrice: total,
		TotalLabel: money.Format(total),
	}
}

func checkoutResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, payment.ErrMethodUnsupported):
		return "unsupported"
	case errors.Is(err, payment.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, payment.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ledger.ErrPersistence):
		return "persistence_error"
	default:
		return "error"
	}
}
