package orders

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/chrisdamba/pupulse/internal/events"
	"github.com/chrisdamba/pupulse/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 9, 1, 13, 30, 0, 0, time.UTC)

func newEngine(t *testing.T, rec *events.Recorder) *Engine {
	t.Helper()
	partners := []models.DeliveryPartner{
		{ID: "dp1", Name: "Rahul", Status: models.PartnerStatusAvailable},
		{ID: "dp2", Name: "Simran", Status: models.PartnerStatusBusy},
		{ID: "dp3", Name: "Aman", Status: models.PartnerStatusOffline},
		{ID: "dp4", Name: "Neha", Status: models.PartnerStatusAvailable},
	}
	opts := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithRand(rand.New(rand.NewSource(1))),
	}
	if rec != nil {
		opts = append(opts, WithPublisher(rec))
	}
	e, err := NewEngine(partners, opts...)
	require.NoError(t, err)
	return e
}

func cartLines() []models.CartItem {
	return []models.CartItem{
		{MenuItem: models.MenuItem{ID: "m1", Name: "Chicken Momos", Price: 80}, Quantity: 2},
		{MenuItem: models.MenuItem{ID: "s1", Name: "Gel Pen", Price: 10}, Quantity: 3},
	}
}

var checkout = Checkout{Hostel: "Boys Hostel 4", Room: "112", Name: "Kabir", Phone: "9876543210"}

func placeOrder(t *testing.T, e *Engine) models.Order {
	t.Helper()
	o, err := e.Create(cartLines(), checkout)
	require.NoError(t, err)
	return o
}

func TestCreate(t *testing.T) {
	rec := &events.Recorder{}
	e := newEngine(t, rec)

	o := placeOrder(t, e)

	assert.Regexp(t, `^ORD-[1-9]\d{3}$`, o.ID)
	assert.Equal(t, models.OrderStatusPlaced, o.Status)
	assert.Equal(t, 2*80+3*10+models.DefaultDeliveryFee, o.Total)
	assert.Equal(t, "Boys Hostel 4, Room 112", o.Address)
	assert.Equal(t, "Kabir", o.CustomerName)
	assert.Equal(t, fixedNow, o.CreatedAt)
	assert.False(t, o.HasPartner())

	placed := rec.OfType(events.OrderPlaced)
	require.Len(t, placed, 1)
	assert.Equal(t, o.ID, placed[0].OrderID)
	assert.Equal(t, int64(o.Total), placed[0].Total)
	assert.Equal(t, int32(5), placed[0].ItemCount)
}

func TestCreateSnapshotsItems(t *testing.T) {
	e := newEngine(t, nil)
	lines := cartLines()

	o, err := e.Create(lines, checkout)
	require.NoError(t, err)

	lines[0].Price = 9999
	lines[0].Quantity = 50

	stored, ok := e.Order(o.ID)
	require.True(t, ok)
	assert.Equal(t, 80, stored.Items[0].Price)
	assert.Equal(t, 2, stored.Items[0].Quantity)
	assert.Equal(t, o.Total, stored.Total)
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name     string
		checkout Checkout
		field    string
	}{
		{"missing hostel", Checkout{Room: "12"}, "hostel"},
		{"missing room", Checkout{Hostel: "Girls Hostel 1"}, "room"},
		{"blank room", Checkout{Hostel: "Girls Hostel 1", Room: "   "}, "room"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &events.Recorder{}
			e := newEngine(t, rec)

			_, err := e.Create(cartLines(), tt.checkout)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.True(t, errors.Is(err, ErrValidation))
			assert.Empty(t, e.Orders())
			assert.Empty(t, rec.Events)
		})
	}
}

func TestCreateRejectsEmptyCart(t *testing.T) {
	e := newEngine(t, nil)
	_, err := e.Create(nil, checkout)
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, e.Orders())
}

func TestOrderIDsAreUniqueAndNewestFirst(t *testing.T) {
	e := newEngine(t, nil)
	seen := make(map[string]bool)
	var last string
	for i := 0; i < 300; i++ {
		o := placeOrder(t, e)
		require.False(t, seen[o.ID], "duplicate id %s", o.ID)
		seen[o.ID] = true
		last = o.ID
	}
	assert.Equal(t, last, e.Orders()[0].ID)
}

func TestAssignPartner(t *testing.T) {
	rec := &events.Recorder{}
	e := newEngine(t, rec)
	o := placeOrder(t, e)

	got, err := e.AssignPartner(o.ID, "dp1")
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusConfirmed, got.Status)
	assert.Equal(t, "dp1", got.PartnerID)
	p, _ := e.Partner("dp1")
	assert.Equal(t, models.PartnerStatusBusy, p.Status)

	assigned := rec.OfType(events.PartnerAssigned)
	require.Len(t, assigned, 1)
	assert.Equal(t, "placed", assigned[0].PreviousStatus)
	assert.Equal(t, "confirmed", assigned[0].Status)
}

func TestAssignPartnerRejections(t *testing.T) {
	tests := []struct {
		name      string
		partnerID string
		want      error
	}{
		{"busy partner", "dp2", ErrPartnerUnavailable},
		{"offline partner", "dp3", ErrPartnerUnavailable},
		{"unknown partner", "dp9", ErrPartnerNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t, nil)
			o := placeOrder(t, e)
			before, _ := e.Partner(tt.partnerID)

			_, err := e.AssignPartner(o.ID, tt.partnerID)
			assert.ErrorIs(t, err, tt.want)

			stored, _ := e.Order(o.ID)
			assert.Equal(t, models.OrderStatusPlaced, stored.Status)
			assert.Empty(t, stored.PartnerID)
			after, _ := e.Partner(tt.partnerID)
			assert.Equal(t, before, after)
		})
	}
}

func TestAssignPartnerTwice(t *testing.T) {
	e := newEngine(t, nil)
	o := placeOrder(t, e)
	_, err := e.AssignPartner(o.ID, "dp1")
	require.NoError(t, err)

	_, err = e.AssignPartner(o.ID, "dp4")
	assert.ErrorIs(t, err, ErrAlreadyAssigned)

	// dp1 is busy now and cannot take a second order
	second := placeOrder(t, e)
	_, err = e.AssignPartner(second.ID, "dp1")
	assert.ErrorIs(t, err, ErrPartnerUnavailable)

	p, _ := e.Partner("dp4")
	assert.Equal(t, models.PartnerStatusAvailable, p.Status)
}

func TestAssignUnknownOrder(t *testing.T) {
	e := newEngine(t, nil)
	_, err := e.AssignPartner("ORD-0000", "dp1")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestAdvanceToDelivered(t *testing.T) {
	rec := &events.Recorder{}
	e := newEngine(t, rec)
	o := placeOrder(t, e)
	_, err := e.AssignPartner(o.ID, "dp1")
	require.NoError(t, err)
	before, _ := e.Partner("dp1")

	got, err := e.Advance("dp1", o.ID, models.OrderStatusOutForDelivery)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusOutForDelivery, got.Status)
	mid, _ := e.Partner("dp1")
	assert.Equal(t, models.PartnerStatusBusy, mid.Status)
	assert.Equal(t, before.Earnings, mid.Earnings)

	got, err = e.Advance("dp1", o.ID, models.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, got.Status)

	after, _ := e.Partner("dp1")
	assert.Equal(t, models.PartnerStatusAvailable, after.Status)
	assert.Equal(t, before.Earnings+models.DefaultPartnerDeliveryBonus, after.Earnings)
	assert.Equal(t, before.TotalDeliveries+1, after.TotalDeliveries)

	assert.Empty(t, e.PartnerOrders("dp1"))
	require.Len(t, e.PartnerHistory("dp1"), 1)

	delivered := rec.OfType(events.OrderDelivered)
	require.Len(t, delivered, 1)
	assert.Equal(t, int64(models.DefaultPartnerDeliveryBonus), delivered[0].Earnings)
	assert.Len(t, rec.OfType(events.OrderStatusChanged), 1)
}

func TestAdvanceRejectsSkippingStates(t *testing.T) {
	e := newEngine(t, nil)
	o := placeOrder(t, e)

	// nobody is assigned yet
	_, err := e.Advance("dp1", o.ID, models.OrderStatusDelivered)
	assert.ErrorIs(t, err, ErrNotAssignedToPartner)

	_, err = e.AssignPartner(o.ID, "dp1")
	require.NoError(t, err)

	_, err = e.Advance("dp1", o.ID, models.OrderStatusDelivered)
	var terr *TransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, models.OrderStatusConfirmed, terr.From)
	assert.Equal(t, models.OrderStatusDelivered, terr.To)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = e.Advance("dp1", o.ID, models.OrderStatusPreparing)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	stored, _ := e.Order(o.ID)
	assert.Equal(t, models.OrderStatusConfirmed, stored.Status)
	p, _ := e.Partner("dp1")
	assert.Equal(t, 0, p.TotalDeliveries)
}

func TestAdvanceFromPreparing(t *testing.T) {
	e := newEngine(t, nil)
	o := placeOrder(t, e)
	_, err := e.AssignPartner(o.ID, "dp1")
	require.NoError(t, err)
	// nothing in the app moves an order to preparing; set it as a restored
	// order would have it
	e.orderIndex[o.ID].Status = models.OrderStatusPreparing

	_, err = e.Advance("dp1", o.ID, models.OrderStatusDelivered)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	got, err := e.Advance("dp1", o.ID, models.OrderStatusOutForDelivery)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusOutForDelivery, got.Status)

	got, err = e.Advance("dp1", o.ID, models.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, got.Status)
}

func TestAdvanceByAnotherPartner(t *testing.T) {
	e := newEngine(t, nil)
	o := placeOrder(t, e)
	_, err := e.AssignPartner(o.ID, "dp1")
	require.NoError(t, err)

	_, err = e.Advance("dp4", o.ID, models.OrderStatusOutForDelivery)
	assert.ErrorIs(t, err, ErrNotAssignedToPartner)
}

func TestAdvanceAfterDelivered(t *testing.T) {
	e := newEngine(t, nil)
	o := placeOrder(t, e)
	_, _ = e.AssignPartner(o.ID, "dp1")
	_, _ = e.Advance("dp1", o.ID, models.OrderStatusOutForDelivery)
	_, err := e.Advance("dp1", o.ID, models.OrderStatusDelivered)
	require.NoError(t, err)

	_, err = e.Advance("dp1", o.ID, models.OrderStatusDelivered)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	p, _ := e.Partner("dp1")
	assert.Equal(t, 1, p.TotalDeliveries)
	assert.Equal(t, models.DefaultPartnerDeliveryBonus, p.Earnings)
}

func TestCancel(t *testing.T) {
	rec := &events.Recorder{}
	e := newEngine(t, rec)

	placed := placeOrder(t, e)
	got, err := e.Cancel(placed.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, got.Status)

	_, err = e.AssignPartner(placed.ID, "dp1")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	assigned := placeOrder(t, e)
	_, err = e.AssignPartner(assigned.ID, "dp1")
	require.NoError(t, err)
	_, err = e.Cancel(assigned.ID)
	require.NoError(t, err)

	p, _ := e.Partner("dp1")
	assert.Equal(t, models.PartnerStatusAvailable, p.Status)
	assert.Equal(t, 0, p.Earnings)
	assert.Equal(t, 0, p.TotalDeliveries)

	_, err = e.Cancel(assigned.ID)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	assert.Len(t, rec.OfType(events.OrderCancelled), 2)
}

func TestCancelDelivered(t *testing.T) {
	e := newEngine(t, nil)
	o := placeOrder(t, e)
	_, _ = e.AssignPartner(o.ID, "dp1")
	_, _ = e.Advance("dp1", o.ID, models.OrderStatusOutForDelivery)
	_, _ = e.Advance("dp1", o.ID, models.OrderStatusDelivered)

	_, err := e.Cancel(o.ID)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestSetPartnerStatus(t *testing.T) {
	e := newEngine(t, nil)

	p, err := e.SetPartnerStatus("dp3", models.PartnerStatusAvailable)
	require.NoError(t, err)
	assert.Equal(t, models.PartnerStatusAvailable, p.Status)
	assert.Len(t, e.AvailablePartners(), 3)

	_, err = e.SetPartnerStatus("dp2", models.PartnerStatusOffline)
	assert.ErrorIs(t, err, ErrPartnerBusy)

	_, err = e.SetPartnerStatus("dp1", models.PartnerStatusBusy)
	assert.ErrorIs(t, err, ErrInvalidPartnerStatus)
}

func TestCustomFeeAndBonus(t *testing.T) {
	e, err := NewEngine(
		[]models.DeliveryPartner{{ID: "dp1"}},
		WithDeliveryFee(35),
		WithDeliveryBonus(55),
	)
	require.NoError(t, err)

	o, err := e.Create(cartLines(), checkout)
	require.NoError(t, err)
	assert.Equal(t, 2*80+3*10+35, o.Total)

	_, err = e.AssignPartner(o.ID, "dp1")
	require.NoError(t, err)
	_, err = e.Advance("dp1", o.ID, models.OrderStatusOutForDelivery)
	require.NoError(t, err)
	_, err = e.Advance("dp1", o.ID, models.OrderStatusDelivered)
	require.NoError(t, err)

	p, _ := e.Partner("dp1")
	assert.Equal(t, 55, p.Earnings)
}

func TestNewEngineRejectsDuplicatePartners(t *testing.T) {
	_, err := NewEngine([]models.DeliveryPartner{{ID: "dp1"}, {ID: "dp1"}})
	assert.Error(t, err)
}
