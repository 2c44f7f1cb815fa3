// Package cart keeps the customer's in-progress selection.
package cart

import "github.com/chrisdamba/pupulse/internal/models"

// Cart holds one line per menu item, in insertion order. Quantities are
// always positive; a line that reaches zero is removed.
type Cart struct {
	items []models.CartItem
}

func New() *Cart {
	return &Cart{}
}

func (c *Cart) indexOf(itemID string) int {
	for i, it := range c.items {
		if it.ID == itemID {
			return i
		}
	}
	return -1
}

// Add puts one unit of item in the cart. It reports whether a new line was
// inserted, as opposed to an existing line being incremented.
func (c *Cart) Add(item models.MenuItem) bool {
	if i := c.indexOf(item.ID); i >= 0 {
		c.items[i].Quantity++
		return false
	}
	c.items = append(c.items, models.CartItem{MenuItem: item, Quantity: 1})
	return true
}

// UpdateQuantity adjusts a line by delta, clamping at zero. Unknown items are ignored.
func (c *Cart) UpdateQuantity(itemID string, delta int) {
	i := c.indexOf(itemID)
	if i < 0 {
		return
	}
	q := c.items[i].Quantity + delta
	if q <= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
		return
	}
	c.items[i].Quantity = q
}

func (c *Cart) ItemQuantity(itemID string) int {
	if i := c.indexOf(itemID); i >= 0 {
		return c.items[i].Quantity
	}
	return 0
}

// Total is the sum of price times quantity over all lines.
func (c *Cart) Total() int {
	total := 0
	for _, it := range c.items {
		total += it.LineTotal()
	}
	return total
}

// Count is the number of units in the cart.
func (c *Cart) Count() int {
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) Len() int {
	return len(c.items)
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// Items returns a copy of the cart lines.
func (c *Cart) Items() []models.CartItem {
	out := make([]models.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Clear() {
	c.items = nil
}
