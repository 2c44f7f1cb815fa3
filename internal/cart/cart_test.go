package cart

import (
	"math/rand"
	"testing"

	"github.com/chrisdamba/pupulse/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	momos  = models.MenuItem{ID: "m1", Name: "Chicken Momos", Price: 80}
	coffee = models.MenuItem{ID: "m2", Name: "Cold Coffee", Price: 60}
	pen    = models.MenuItem{ID: "s1", Name: "Gel Pen", Price: 10}
)

func TestAddInsertsThenIncrements(t *testing.T) {
	c := New()

	assert.True(t, c.Add(momos))
	assert.False(t, c.Add(momos))
	assert.True(t, c.Add(coffee))

	assert.Equal(t, 2, c.ItemQuantity("m1"))
	assert.Equal(t, 1, c.ItemQuantity("m2"))
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 3, c.Count())
	assert.Equal(t, 2*80+60, c.Total())

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "m1", items[0].ID)
	assert.Equal(t, "m2", items[1].ID)
}

func TestUpdateQuantity(t *testing.T) {
	tests := []struct {
		name    string
		delta   int
		wantQty int
		wantLen int
		wantSum int
	}{
		{"increment", 2, 3, 2, 3*80 + 10},
		{"decrement", -1, 0, 1, 10},
		{"clamp below zero", -5, 0, 1, 10},
		{"zero delta", 0, 1, 2, 80 + 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			c.Add(momos)
			c.Add(pen)

			c.UpdateQuantity("m1", tt.delta)

			assert.Equal(t, tt.wantQty, c.ItemQuantity("m1"))
			assert.Equal(t, tt.wantLen, c.Len())
			assert.Equal(t, tt.wantSum, c.Total())
		})
	}
}

func TestUnknownItemsAndEmptyCartAreNoOps(t *testing.T) {
	c := New()
	c.UpdateQuantity("ghost", 3)
	c.UpdateQuantity("ghost", -3)

	assert.True(t, c.IsEmpty())
	assert.Equal(t, 0, c.Total())
	assert.Equal(t, 0, c.ItemQuantity("ghost"))

	c.Add(coffee)
	c.UpdateQuantity("ghost", 1)
	assert.Equal(t, 60, c.Total())
}

func TestItemsReturnsCopy(t *testing.T) {
	c := New()
	c.Add(momos)

	items := c.Items()
	items[0].Quantity = 42

	assert.Equal(t, 1, c.ItemQuantity("m1"))
}

func TestRandomSequencesKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	catalog := []models.MenuItem{momos, coffee, pen}

	for run := 0; run < 50; run++ {
		c := New()
		for step := 0; step < 200; step++ {
			item := catalog[rng.Intn(len(catalog))]
			if rng.Intn(2) == 0 {
				c.Add(item)
			} else {
				c.UpdateQuantity(item.ID, rng.Intn(7)-4)
			}

			want := 0
			for _, line := range c.Items() {
				require.Greater(t, line.Quantity, 0)
				want += line.Price * line.Quantity
			}
			require.Equal(t, want, c.Total())
		}
	}
}

func TestClear(t *testing.T) {
	c := New()
	c.Add(momos)
	c.Clear()
	assert.True(t, c.IsEmpty())
	assert.Equal(t, 0, c.Count())
}
