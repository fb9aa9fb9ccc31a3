package shop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartAddMergesSameName(t *testing.T) {
	c := NewCart()
	require.NoError(t, c.Add("Milk", dec(t, "3.50"), 2))
	require.NoError(t, c.Add("Milk", dec(t, "3.50"), 3))

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestCartAddMergesCaseInsensitive(t *testing.T) {
	c := NewCart()
	require.NoError(t, c.Add("Milk", dec(t, "3.50"), 1))
	require.NoError(t, c.Add("milk", dec(t, "3.50"), 1))

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Milk", items[0].Name)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestCartKeepsInsertionOrder(t *testing.T) {
	c := NewCart()
	require.NoError(t, c.Add("Milk", dec(t, "3.50"), 1))
	require.NoError(t, c.Add("Bread", dec(t, "2.25"), 1))
	require.NoError(t, c.Add("Eggs", dec(t, "4.10"), 1))
	require.NoError(t, c.Add("Milk", dec(t, "3.50"), 1))

	items := c.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "Milk", items[0].Name)
	assert.Equal(t, "Bread", items[1].Name)
	assert.Equal(t, "Eggs", items[2].Name)
}

func TestCartAddRejectsInvalidInput(t *testing.T) {
	c := NewCart()
	require.ErrorIs(t, c.Add("", dec(t, "1.00"), 1), ErrInvalidInput)
	require.ErrorIs(t, c.Add("Milk", dec(t, "-1.00"), 1), ErrInvalidInput)
	require.ErrorIs(t, c.Add("Milk", dec(t, "1.00"), 0), ErrInvalidInput)
	assert.Equal(t, 0, c.Len(), "rejected add must not change the cart")
}

func TestCartUpdateQuantity(t *testing.T) {
	c := NewCart()
	require.NoError(t, c.Add("Milk", dec(t, "3.50"), 2))

	require.NoError(t, c.UpdateQuantity("Milk", 5))
	assert.Equal(t, 5, c.Items()[0].Quantity)

	require.ErrorIs(t, c.UpdateQuantity("Bread", 1), ErrNotFound)
}

func TestCartUpdateQuantityZeroRemoves(t *testing.T) {
	c := NewCart()
	require.NoError(t, c.Add("Milk", dec(t, "3.50"), 2))
	require.NoError(t, c.Add("Bread", dec(t, "2.25"), 1))

	require.NoError(t, c.UpdateQuantity("Milk", 0))
	assert.Equal(t, 1, c.Len())

	sub, tax, total := c.Totals()
	assert.Equal(t, "2.25", sub.StringFixed(2))
	assert.Equal(t, "0.23", tax.StringFixed(2))
	assert.Equal(t, "2.48", total.StringFixed(2))
}

func TestCartRemove(t *testing.T) {
	c := NewCart()
	require.NoError(t, c.Add("Milk", dec(t, "3.50"), 2))

	assert.True(t, c.Remove("milk"))
	assert.Equal(t, 0, c.Len())
	// Removing an absent item is a no-op.
	assert.False(t, c.Remove("Milk"))
}

func TestCartClearAndTotals(t *testing.T) {
	c := NewCart()
	sub, tax, total := c.Totals()
	assert.True(t, sub.IsZero())
	assert.True(t, tax.IsZero())
	assert.True(t, total.IsZero())

	require.NoError(t, c.Add("Milk", dec(t, "3.50"), 2))
	require.NoError(t, c.Add("Bread", dec(t, "2.25"), 1))

	sub, tax, total = c.Totals()
	assert.Equal(t, "9.25", sub.StringFixed(2))
	assert.Equal(t, "0.97", tax.StringFixed(2))
	assert.Equal(t, "10.22", total.StringFixed(2))

	c.Clear()
	sub, tax, total = c.Totals()
	assert.True(t, sub.IsZero())
	assert.True(t, tax.IsZero())
	assert.True(t, total.IsZero())
}
