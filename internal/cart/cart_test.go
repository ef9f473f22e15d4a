package cart_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ngepos/internal/cart"
	"github.com/noah-isme/ngepos/internal/catalog"
	"github.com/noah-isme/ngepos/internal/money"
)

var (
	nasiGoreng = catalog.Product{ID: 1, Name: "Nasi Goreng Spesial", Price: 25000}
	esTeh      = catalog.Product{ID: 3, Name: "Es Teh Manis", Price: 5000}
	kopiSusu   = catalog.Product{ID: 8, Name: "Kopi Susu", Price: 15000}
)

func TestAddAccumulatesSingleLine(t *testing.T) {
	c := cart.New()
	for i := 0; i < 5; i++ {
		c.Add(nasiGoreng)
	}
	require.Equal(t, 5, c.TotalItems())
	require.Equal(t, 1, c.Len())
	require.Equal(t, 5, c.Lines()[0].Quantity)
}

func TestAddPreservesInsertionOrder(t *testing.T) {
	c := cart.New()
	c.Add(kopiSusu)
	c.Add(nasiGoreng)
	c.Add(kopiSusu)
	c.Add(esTeh)

	lines := c.Lines()
	require.Len(t, lines, 3)
	require.Equal(t, []int64{kopiSusu.ID, nasiGoreng.ID, esTeh.ID}, []int64{lines[0].Product.ID, lines[1].Product.ID, lines[2].Product.ID})
	require.Equal(t, 2, lines[0].Quantity)
}

func TestSetQuantity(t *testing.T) {
	c := cart.New()
	c.Add(nasiGoreng)
	c.SetQuantity(nasiGoreng.ID, 4)
	require.Equal(t, 4, c.TotalItems())
	require.Equal(t, money.Money(100000), c.TotalPrice())

	c.SetQuantity(esTeh.ID, 3)
	require.Equal(t, 1, c.Len(), "updating a missing line must not create it")

	c.SetQuantity(nasiGoreng.ID, -1)
	require.True(t, c.IsEmpty())
}

func TestSetQuantityZeroEqualsRemove(t *testing.T) {
	build := func() *cart.Cart {
		c := cart.New()
		c.Add(nasiGoreng)
		c.Add(esTeh)
		c.Add(esTeh)
		return c
	}
	a := build()
	a.SetQuantity(esTeh.ID, 0)
	b := build()
	b.Remove(esTeh.ID)
	require.Equal(t, b.Lines(), a.Lines())

	a.SetQuantity(kopiSusu.ID, 0)
	b.Remove(kopiSusu.ID)
	require.Equal(t, b.Lines(), a.Lines())
}

func TestQuantityIsCapped(t *testing.T) {
	c := cart.New()
	c.Add(nasiGoreng)
	c.SetQuantity(nasiGoreng.ID, math.MaxInt)
	require.Equal(t, cart.MaxQuantity, c.Lines()[0].Quantity)
	require.Equal(t, cart.MaxQuantity, c.TotalItems())
	require.Equal(t, money.Mul(nasiGoreng.Price, cart.MaxQuantity), c.TotalPrice())
	require.Positive(t, c.TotalPrice())

	var changes []cart.Change
	c.Subscribe(func(ch cart.Change) { changes = append(changes, ch) })
	c.Add(nasiGoreng)
	require.Equal(t, cart.MaxQuantity, c.Lines()[0].Quantity)
	require.Empty(t, changes)
}

func TestRemoveAndClear(t *testing.T) {
	c := cart.New()
	c.Add(nasiGoreng)
	c.Add(esTeh)
	c.Remove(kopiSusu.ID)
	require.Equal(t, 2, c.Len())
	c.Remove(nasiGoreng.ID)
	require.Equal(t, 1, c.Len())
	c.Clear()
	require.True(t, c.IsEmpty())
	require.Zero(t, c.TotalItems())
	require.Zero(t, c.TotalPrice())
}

func TestTotalPriceMatchesLinesAfterRandomOperations(t *testing.T) {
	products := []catalog.Product{nasiGoreng, esTeh, kopiSusu}
	rng := rand.New(rand.NewSource(7))
	c := cart.New()
	for step := 0; step < 500; step++ {
		p := products[rng.Intn(len(products))]
		switch rng.Intn(4) {
		case 0, 1:
			c.Add(p)
		case 2:
			c.SetQuantity(p.ID, rng.Intn(6)-1)
		case 3:
			c.Remove(p.ID)
		}

		var wantPrice money.Money
		wantItems := 0
		seen := map[int64]bool{}
		for _, l := range c.Lines() {
			require.False(t, seen[l.Product.ID], "duplicate line for product %d", l.Product.ID)
			seen[l.Product.ID] = true
			require.GreaterOrEqual(t, l.Quantity, 1)
			wantPrice += money.Money(l.Quantity) * l.Product.Price
			wantItems += l.Quantity
		}
		require.Equal(t, wantPrice, c.TotalPrice())
		require.Equal(t, wantItems, c.TotalItems())
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	c := cart.New()
	c.Add(nasiGoreng)
	snap := c.Snapshot()
	c.Add(nasiGoreng)
	c.SetQuantity(nasiGoreng.ID, 9)
	require.Equal(t, 1, snap[0].Quantity)

	snap[0].Quantity = 100
	require.Equal(t, 9, c.Lines()[0].Quantity)
}

func TestListenersNotifiedSynchronously(t *testing.T) {
	c := cart.New()
	var changes []cart.Change
	unsubscribe := c.Subscribe(func(ch cart.Change) { changes = append(changes, ch) })

	c.Add(nasiGoreng)
	c.Add(nasiGoreng)
	c.SetQuantity(nasiGoreng.ID, 5)
	c.SetQuantity(esTeh.ID, 2)
	c.Remove(esTeh.ID)
	c.Remove(nasiGoreng.ID)
	c.Clear()

	require.Equal(t, []cart.Change{
		{Kind: cart.ChangeAdded, ProductID: 1, Quantity: 1},
		{Kind: cart.ChangeQuantity, ProductID: 1, Quantity: 2},
		{Kind: cart.ChangeQuantity, ProductID: 1, Quantity: 5},
		{Kind: cart.ChangeRemoved, ProductID: 1},
		{Kind: cart.ChangeCleared},
	}, changes)

	unsubscribe()
	c.Add(esTeh)
	require.Len(t, changes, 5)
}

func TestUnsubscribeKeepsOtherListeners(t *testing.T) {
	c := cart.New()
	var a, b int
	stopA := c.Subscribe(func(cart.Change) { a++ })
	c.Subscribe(func(cart.Change) { b++ })
	c.Subscribe(nil)
	c.Add(esTeh)
	stopA()
	stopA()
	c.Add(esTeh)
	require.Equal(t, 1, a)
	require.Equal(t, 2, b)
}
