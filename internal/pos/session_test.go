package pos_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ngepos/internal/catalog"
	"github.com/noah-isme/ngepos/internal/events"
	"github.com/noah-isme/ngepos/internal/ledger"
	"github.com/noah-isme/ngepos/internal/payment"
	"github.com/noah-isme/ngepos/internal/pos"
	"github.com/noah-isme/ngepos/internal/storage"
)

const (
	nasiGoreng = int64(1)
	esTeh      = int64(3)
	ayamGeprek = int64(4)
	esJeruk    = int64(6)
)

type recorder struct {
	topics []string
}

func (r *recorder) Notify(_ context.Context, e events.Event) error {
	r.topics = append(r.topics, e.Topic)
	return nil
}

type fixture struct {
	session *pos.Session
	ledger  *ledger.Ledger
	store   *storage.Memory
	events  *recorder
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	svc, err := catalog.NewService(catalog.ServiceConfig{Provider: catalog.NewStatic(0)})
	require.NoError(t, err)
	store := storage.NewMemory()
	now := func() time.Time { return time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC) }
	l, err := ledger.New(ledger.Config{Store: store, Now: now})
	require.NoError(t, err)
	rec := &recorder{}
	session, err := pos.NewSession(pos.Config{
		Catalog: svc,
		Ledger:  l,
		Bus:     &events.Bus{Notifiers: []events.Notifier{rec}},
		Now:     now,
	})
	require.NoError(t, err)
	session.Open(context.Background())
	return fixture{session: session, ledger: l, store: store, events: rec}
}

func TestNewSessionRequiresDependencies(t *testing.T) {
	_, err := pos.NewSession(pos.Config{})
	require.Error(t, err)
}

func TestCheckoutScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.session.AddToCart(ctx, nasiGoreng)
	require.NoError(t, err)
	view, err := f.session.AddToCart(ctx, nasiGoreng)
	require.NoError(t, err)
	require.Equal(t, 2, view.TotalItems)
	require.EqualValues(t, 50000, view.TotalPrice)
	require.Equal(t, "Rp 50.000", view.TotalLabel)

	result := f.session.Evaluate("60000")
	require.True(t, result.Valid)
	require.EqualValues(t, 10000, result.Change)

	tx, err := f.session.Pay(ctx, "cash", "60.000")
	require.NoError(t, err)
	require.EqualValues(t, 50000, tx.TotalAmount)
	require.EqualValues(t, 60000, tx.PaidAmount)
	require.EqualValues(t, 10000, tx.Change)
	require.Equal(t, "Tunai", tx.PaymentMethod)
	require.Len(t, tx.Items, 1)
	require.Equal(t, 2, tx.Items[0].Quantity)

	require.Zero(t, f.session.Cart().TotalItems)
	require.Equal(t, 1, f.ledger.Len())

	raw, ok, err := f.store.Get(ctx, ledger.DefaultKey)
	require.NoError(t, err)
	require.True(t, ok)
	require.Contains(t, raw, tx.ID)

	require.Equal(t, []string{
		events.TopicCartUpdated,
		events.TopicCartUpdated,
		events.TopicCartUpdated,
		events.TopicTransactionCompleted,
	}, f.events.topics)
}

func TestCheckoutInsufficientFunds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for _, id := range []int64{ayamGeprek, esJeruk, esTeh} {
		_, err := f.session.AddToCart(ctx, id)
		require.NoError(t, err)
	}
	f.session.RemoveFromCart(ctx, esTeh)
	before := f.session.Cart()
	require.EqualValues(t, 30000, before.TotalPrice)

	_, err := f.session.Pay(ctx, "", "20000")
	require.ErrorIs(t, err, payment.ErrInsufficientFunds)
	var short *payment.InsufficientFundsError
	require.ErrorAs(t, err, &short)
	require.EqualValues(t, 10000, short.Shortfall())

	require.Equal(t, before, f.session.Cart())
	require.Zero(t, f.ledger.Len())
}

func TestCheckoutRejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.session.Pay(ctx, "cash", "10000")
	require.ErrorIs(t, err, pos.ErrEmptyCart)

	_, err = f.session.AddToCart(ctx, esTeh)
	require.NoError(t, err)

	_, err = f.session.Pay(ctx, "qris", "5000")
	require.ErrorIs(t, err, payment.ErrMethodUnsupported)

	_, err = f.session.Pay(ctx, "bitcoin", "5000")
	require.ErrorIs(t, err, payment.ErrInvalidInput)

	_, err = f.session.Pay(ctx, "cash", "lima ribu")
	require.ErrorIs(t, err, payment.ErrInvalidInput)

	require.Equal(t, 1, f.session.Cart().TotalItems)
	require.Zero(t, f.ledger.Len())
}

func TestCheckoutPersistenceFailureKeepsCart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.session.AddToCart(ctx, esTeh)
	require.NoError(t, err)

	f.store.FailNext("set", errors.New("disk full"))
	_, err = f.session.Pay(ctx, "cash", "5000")
	require.ErrorIs(t, err, ledger.ErrPersistence)
	require.Equal(t, 1, f.session.Cart().TotalItems)
	require.Zero(t, f.ledger.Len())

	tx, err := f.session.Pay(ctx, "cash", "5000")
	require.NoError(t, err)
	require.Zero(t, tx.Change)
}

func TestAddUnknownProduct(t *testing.T) {
	f := newFixture(t)
	_, err := f.session.AddToCart(context.Background(), 404)
	require.ErrorIs(t, err, catalog.ErrNotFound)
	require.Empty(t, f.events.topics)
}

func TestNoOpMutationsDoNotEmit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.session.RemoveFromCart(ctx, 99)
	f.session.SetQuantity(ctx, 99, 4)
	require.Empty(t, f.events.topics)
}

func TestQuickAmounts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.session.AddToCart(ctx, ayamGeprek)
	require.NoError(t, err)
	_, err = f.session.AddToCart(ctx, esJeruk)
	require.NoError(t, err)

	qa := f.session.QuickAmounts()
	require.EqualValues(t, 30000, qa.Total)
	require.Equal(t, payment.SuggestedDenominations(30000), qa.Amounts)
	require.Equal(t, "Rp 30.000", qa.Labels[0])
	require.Len(t, qa.Methods, 3)
	require.True(t, qa.Methods[0].Supported)
	require.False(t, qa.Methods[2].Supported)
}

func TestHistoryAndClear(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for i := 0; i < 3; i++ {
		_, err := f.session.AddToCart(ctx, esTeh)
		require.NoError(t, err)
		_, err = f.session.Pay(ctx, "cash", "5000")
		require.NoError(t, err)
	}

	page, total := f.session.History(1, 2)
	require.Equal(t, 3, total)
	require.Len(t, page, 2)
	page, _ = f.session.History(2, 2)
	require.Len(t, page, 1)

	dash := f.session.Dashboard()
	require.EqualValues(t, 15000, dash.TotalRevenue)
	require.Equal(t, 3, dash.TodayTransactions)

	require.NoError(t, f.session.ClearHistory(ctx))
	_, total = f.session.History(1, 20)
	require.Zero(t, total)
	require.Equal(t, events.TopicLedgerCleared, f.events.topics[len(f.events.topics)-1])
}

func TestClearHistoryFailureKeepsTransactions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.session.AddToCart(ctx, esTeh)
	require.NoError(t, err)
	_, err = f.session.Pay(ctx, "cash", "5000")
	require.NoError(t, err)

	f.store.FailNext("delete", errors.New("locked"))
	require.ErrorIs(t, f.session.ClearHistory(ctx), ledger.ErrPersistence)
	_, total := f.session.History(1, 20)
	require.Equal(t, 1, total)
}

func TestCheckoutLogsUnitsSold(t *testing.T) {
	ctx := context.Background()
	svc, err := catalog.NewService(catalog.ServiceConfig{Provider: catalog.NewStatic(0)})
	require.NoError(t, err)
	l, err := ledger.New(ledger.Config{Store: storage.NewMemory()})
	require.NoError(t, err)
	var buf bytes.Buffer
	session, err := pos.NewSession(pos.Config{Catalog: svc, Ledger: l, Logger: zerolog.New(&buf)})
	require.NoError(t, err)

	_, err = session.AddToCart(ctx, esTeh)
	require.NoError(t, err)
	session.SetQuantity(ctx, esTeh, 4)
	_, err = session.AddToCart(ctx, nasiGoreng)
	require.NoError(t, err)

	tx, err := session.Pay(ctx, "cash", "100000")
	require.NoError(t, err)
	require.Equal(t, 5, tx.ItemCount())
	require.Contains(t, buf.String(), `"items":5`)
	require.Contains(t, buf.String(), "checkout completed")
}
