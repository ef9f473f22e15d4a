package payment_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ngepos/internal/money"
	"github.com/noah-isme/ngepos/internal/payment"
)

func TestSettleExactChange(t *testing.T) {
	s, err := payment.Settle(50000, 60000)
	require.NoError(t, err)
	require.Equal(t, payment.Settlement{Total: 50000, Tendered: 60000, Change: 10000}, s)

	s, err = payment.Settle(50000, 50000)
	require.NoError(t, err)
	require.Zero(t, s.Change)
}

func TestSettleInsufficientFunds(t *testing.T) {
	_, err := payment.Settle(30000, 20000)
	require.ErrorIs(t, err, payment.ErrInsufficientFunds)

	var short *payment.InsufficientFundsError
	require.True(t, errors.As(err, &short))
	require.Equal(t, money.Money(30000), short.Total)
	require.Equal(t, money.Money(10000), short.Shortfall())
}

func TestSettleRejectsNegativeAmounts(t *testing.T) {
	_, err := payment.Settle(-1, 0)
	require.ErrorIs(t, err, payment.ErrInvalidInput)
	_, err = payment.Settle(0, -1)
	require.ErrorIs(t, err, payment.ErrInvalidInput)
}

func TestSettleSucceedsIffTenderedCoversTotal(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		total := money.Money(rng.Int63n(1 << 40))
		tendered := money.Money(rng.Int63n(1 << 40))
		s, err := payment.Settle(total, tendered)
		if tendered >= total {
			require.NoError(t, err)
			require.Equal(t, tendered-total, s.Change)
		} else {
			require.ErrorIs(t, err, payment.ErrInsufficientFunds)
		}
	}
}

func TestSettleInput(t *testing.T) {
	s, err := payment.SettleInput(43000, "Rp 50.000")
	require.NoError(t, err)
	require.Equal(t, money.Money(7000), s.Change)

	for _, raw := range []string{"", "  ", "lima puluh", "-50000", "50000.00", "50.000,00", "5.0.0.0.0"} {
		_, err := payment.SettleInput(43000, raw)
		require.ErrorIs(t, err, payment.ErrInvalidInput, "input %q", raw)
	}
}

func TestEvaluate(t *testing.T) {
	require.Equal(t, payment.Result{Valid: true, Change: 10000}, payment.Evaluate(50000, "60000"))
	require.Equal(t, payment.Result{Valid: false, Reason: "Masukkan nominal pembayaran"}, payment.Evaluate(50000, ""))
	require.Equal(t, payment.Result{Valid: false, Reason: "Nominal kurang. Minimal Rp 30.000"}, payment.Evaluate(30000, "20000"))
}

func TestSuggestedDenominations(t *testing.T) {
	cases := []struct {
		name  string
		total money.Money
		want  []money.Money
	}{
		{name: "odd total", total: 43000, want: []money.Money{43000, 50000, 60000, 70000}},
		{name: "round total", total: 50000, want: []money.Money{50000, 60000, 70000, 100000}},
		{name: "small total", total: 5000, want: []money.Money{5000, 10000, 50000, 100000}},
		{name: "steps capped by double", total: 18000, want: []money.Money{18000, 20000, 30000, 50000}},
		{name: "large total", total: 300000, want: []money.Money{300000, 310000, 320000, 500000}},
		{name: "beyond notes", total: 600000, want: []money.Money{600000, 610000, 620000}},
		{name: "zero", total: 0, want: []money.Money{0, 50000, 100000, 200000}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := payment.SuggestedDenominations(tc.total)
			require.Equal(t, tc.want, got)
			for _, amount := range got {
				require.GreaterOrEqual(t, amount, tc.total)
			}
		})
	}
	require.Nil(t, payment.SuggestedDenominations(-1))
}

func TestMethods(t *testing.T) {
	m, err := payment.ParseMethod("Tunai")
	require.NoError(t, err)
	require.Equal(t, payment.MethodCash, m)

	m, err = payment.ParseMethod("")
	require.NoError(t, err)
	require.Equal(t, payment.MethodCash, m)

	m, err = payment.ParseMethod("qris")
	require.NoError(t, err)
	require.ErrorIs(t, payment.RequireSupported(m), payment.ErrMethodUnsupported)
	require.NoError(t, payment.RequireSupported(payment.MethodCash))

	_, err = payment.ParseMethod("bitcoin")
	require.ErrorIs(t, err, payment.ErrInvalidInput)
	require.Equal(t, "Kartu Debit/Kredit", payment.MethodCard.Label())
}
