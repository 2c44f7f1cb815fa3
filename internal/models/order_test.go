package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{OrderStatusPlaced, OrderStatusConfirmed, true},
		{OrderStatusPlaced, OrderStatusCancelled, true},
		{OrderStatusPlaced, OrderStatusDelivered, false},
		{OrderStatusPlaced, OrderStatusOutForDelivery, false},
		{OrderStatusConfirmed, OrderStatusOutForDelivery, true},
		{OrderStatusConfirmed, OrderStatusDelivered, false},
		{OrderStatusOutForDelivery, OrderStatusDelivered, true},
		{OrderStatusOutForDelivery, OrderStatusConfirmed, false},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPlaced, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			err := ValidateTransition(tt.from, tt.to)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTransition))
		})
	}
}

func TestOrderStatusStep(t *testing.T) {
	assert.Equal(t, 0, OrderStatusPlaced.Step())
	assert.Equal(t, 3, OrderStatusOutForDelivery.Step())
	assert.Equal(t, 4, OrderStatusDelivered.Step())
	assert.Equal(t, -1, OrderStatusCancelled.Step())
	assert.True(t, OrderStatusCancelled.Terminal())
	assert.False(t, OrderStatusConfirmed.Terminal())
}

func TestOrderCloneDoesNotShareItems(t *testing.T) {
	o := Order{ID: "ORD-1234", Items: []CartItem{{MenuItem: MenuItem{ID: "m1", Price: 50}, Quantity: 2}}}
	c := o.Clone()
	c.Items[0].Quantity = 9

	assert.Equal(t, 2, o.Items[0].Quantity)
	assert.Equal(t, 2, o.ItemCount())
}

func TestActionQueueOrdersByTimeThenInsertion(t *testing.T) {
	q := NewActionQueue()
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	q.Enqueue(&Action{Time: base.Add(time.Minute), Type: ActionPartnerDeliver})
	q.Enqueue(&Action{Time: base, Type: ActionCustomerCheckout, ActorID: "first"})
	q.Enqueue(&Action{Time: base, Type: ActionCustomerCheckout, ActorID: "second"})

	require.Equal(t, 3, q.Len())
	assert.Equal(t, "first", q.Dequeue().ActorID)
	assert.Equal(t, "second", q.Peek().ActorID)
	assert.Equal(t, "second", q.Dequeue().ActorID)
	assert.Equal(t, ActionPartnerDeliver, q.Dequeue().Type)
	assert.Nil(t, q.Dequeue())
	assert.True(t, q.IsEmpty())
}

func TestCategoryGroups(t *testing.T) {
	assert.True(t, CategoryMeals.IsFood())
	assert.False(t, CategoryMeals.IsStationery())
	assert.True(t, CategoryPens.IsStationery())
	assert.False(t, Category("Toys").Valid())
}
