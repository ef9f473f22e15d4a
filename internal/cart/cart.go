// Package cart holds the order being rung up at the till.
package cart

import (
	"github.com/noah-isme/ngepos/internal/catalog"
	"github.com/noah-isme/ngepos/internal/money"
)

// MaxQuantity is the largest quantity a single line can hold.
const MaxQuantity = 9999

// Line pairs a product with the quantity ordered. Quantity is between 1 and
// MaxQuantity.
type Line struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Subtotal returns quantity × unit price.
func (l Line) Subtotal() money.Money {
	return money.Mul(l.Product.Price, l.Quantity)
}

// ChangeKind names the mutation reported to listeners.
type ChangeKind string

const (
	ChangeAdded    ChangeKind = "added"
	ChangeQuantity ChangeKind = "quantity"
	ChangeRemoved  ChangeKind = "removed"
	ChangeCleared  ChangeKind = "cleared"
)

// Change describes a mutation that was applied to the cart. Quantity is the
// line's quantity after the change, zero for removals and clears.
type Change struct {
	Kind      ChangeKind `json:"kind"`
	ProductID int64      `json:"productId,omitempty"`
	Quantity  int        `json:"quantity"`
}

// Listener is called synchronously after every applied mutation.
type Listener func(Change)

type subscription struct {
	id int
	fn Listener
}

// Cart is an ordered set of lines keyed by product id. It is not safe for
// concurrent use; the owning session serializes access.
type Cart struct {
	lines     []Line
	listeners []subscription
	nextSubID int
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// Add puts one unit of product in the cart, creating the line if needed. A line
// already at MaxQuantity is left unchanged.
func (c *Cart) Add(product catalog.Product) {
	if i := c.index(product.ID); i >= 0 {
		if c.lines[i].Quantity >= MaxQuantity {
			return
		}
		c.lines[i].Quantity++
		c.notify(Change{Kind: ChangeQuantity, ProductID: product.ID, Quantity: c.lines[i].Quantity})
		return
	}
	c.lines = append(c.lines, Line{Product: product, Quantity: 1})
	c.notify(Change{Kind: ChangeAdded, ProductID: product.ID, Quantity: 1})
}

// SetQuantity overwrites the quantity of an existing line. A quantity of zero or
// less removes the line and one above MaxQuantity is clamped to it. Unknown
// product ids are ignored.
func (c *Cart) SetQuantity(productID int64, quantity int) {
	if quantity <= 0 {
		c.Remove(productID)
		return
	}
	quantity = min(quantity, MaxQuantity)
	i := c.index(productID)
	if i < 0 {
		return
	}
	c.lines[i].Quantity = quantity
	c.notify(Change{Kind: ChangeQuantity, ProductID: productID, Quantity: quantity})
}

// Remove deletes the line for productID if present.
func (c *Cart) Remove(productID int64) {
	i := c.index(productID)
	if i < 0 {
		return
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	c.notify(Change{Kind: ChangeRemoved, ProductID: productID})
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = nil
	c.notify(Change{Kind: ChangeCleared})
}

// TotalItems returns the sum of all line quantities.
func (c *Cart) TotalItems() int {
	total := 0
	for _, l := range c.lines {
		total += l.Quantity
	}
	return total
}

// TotalPrice returns the sum of all line subtotals.
func (c *Cart) TotalPrice() money.Money {
	var total money.Money
	for _, l := range c.lines {
		total += l.Subtotal()
	}
	return total
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Snapshot returns a deep copy of the lines for recording a sale.
func (c *Cart) Snapshot() []Line {
	return c.Lines()
}

// Len returns the number of distinct lines.
func (c *Cart) Len() int { return len(c.lines) }

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }

// Subscribe registers fn for change notifications and returns a function that
// removes it again.
func (c *Cart) Subscribe(fn Listener) func() {
	if fn == nil {
		return func() {}
	}
	c.nextSubID++
	id := c.nextSubID
	c.listeners = append(c.listeners, subscription{id: id, fn: fn})
	return func() {
		for i, sub := range c.listeners {
			if sub.id == id {
				c.listeners = append(c.listeners[:i:i], c.listeners[i+1:]...)
				return
			}
		}
	}
}

func (c *Cart) notify(change Change) {
	for _, sub := range c.listeners {
		sub.fn(change)
	}
}

func (c *Cart) index(productID int64) int {
	for i, l := range c.lines {
		if l.Product.ID == productID {
			return i
		}
	}
	return -1
}
