package shop

import (
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// Cart is the in-memory, per-session collection of items before checkout.
// Items keep insertion order; the item name is the identity key, compared
// case-insensitively, and adding a name already in the cart merges into
// the existing line instead of duplicating it.
type Cart struct {
	mu    sync.Mutex
	items []ShoppingItem
}

func NewCart() *Cart {
	return &Cart{}
}

// Add validates the input and either appends a new line or, when an item
// with the same name exists, increments its quantity.
func (c *Cart) Add(name string, unitPrice decimal.Decimal, quantity int) error {
	it, err := NewShoppingItem(name, unitPrice, quantity)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.find(it.Name); i >= 0 {
		c.items[i].Quantity += it.Quantity
		return nil
	}
	c.items = append(c.items, it)
	return nil
}

// UpdateQuantity sets the quantity of an existing line. A quantity of
// zero or less removes the line.
func (c *Cart) UpdateQuantity(name string, quantity int) error {
	if quantity > MaxQuantity {
		return fmt.Errorf("%w: quantity must be %d or less", ErrInvalidInput, MaxQuantity)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.find(strings.TrimSpace(name))
	if i < 0 {
		return fmt.Errorf("item %q: %w", name, ErrNotFound)
	}
	if quantity <= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
		return nil
	}
	c.items[i].Quantity = quantity
	return nil
}

// Remove deletes the named line and reports whether it existed. Removing
// an absent name is a no-op so that a stale remove from the UI cannot
// fail a request.
func (c *Cart) Remove(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.find(strings.TrimSpace(name))
	if i < 0 {
		return false
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return true
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []ShoppingItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ShoppingItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Totals computes subtotal, tax and total fresh from the current lines.
// An empty cart yields three zeros.
func (c *Cart) Totals() (subtotal, tax, total decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	subtotal = decimal.Zero
	for _, it := range c.items {
		subtotal = subtotal.Add(it.Subtotal())
	}
	tax = TaxOn(subtotal)
	total = subtotal.Add(tax)
	return subtotal, tax, total
}

// find returns the index of the named line, or -1. Caller holds c.mu.
func (c *Cart) find(name string) int {
	for i, it := range c.items {
		if strings.EqualFold(it.Name, name) {
			return i
		}
	}
	return -1
}
