// Package orders implements the order lifecycle shared by the customer,
// admin and delivery-partner views: checkout, partner assignment, delivery
// progress and cancellation, together with the partner bookkeeping each
// transition implies.
package orders

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/chrisdamba/pupulse/internal/events"
	"github.com/chrisdamba/pupulse/internal/models"
)

// Checkout carries the delivery details entered at checkout.
type Checkout struct {
	Hostel string
	Room   string
	Name   string
	Phone  string
}

func (c Checkout) Address() string {
	return fmt.Sprintf("%s, Room %s", strings.TrimSpace(c.Hostel), strings.TrimSpace(c.Room))
}

func (c Checkout) Validate() error {
	if strings.TrimSpace(c.Hostel) == "" {
		return &ValidationError{Field: "hostel"}
	}
	if strings.TrimSpace(c.Room) == "" {
		return &ValidationError{Field: "room"}
	}
	return nil
}

type Option func(*Engine)

func WithDeliveryFee(fee int) Option {
	return func(e *Engine) { e.deliveryFee = fee }
}

// WithDeliveryBonus sets the flat amount a partner earns per completed delivery.
func WithDeliveryBonus(bonus int) Option {
	return func(e *Engine) { e.deliveryBonus = bonus }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

func WithPublisher(p events.Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// Engine owns orders and delivery partners. It is not safe for concurrent
// use; callers serialise access.
type Engine struct {
	orders       []*models.Order // newest first
	orderIndex   map[string]*models.Order
	partners     []*models.DeliveryPartner
	partnerIndex map[string]*models.DeliveryPartner

	deliveryFee   int
	deliveryBonus int
	now           func() time.Time
	rng           *rand.Rand
	publisher     events.Publisher
}

func NewEngine(partners []models.DeliveryPartner, opts ...Option) (*Engine, error) {
	e := &Engine{
		orderIndex:    make(map[string]*models.Order),
		partnerIndex:  make(map[string]*models.DeliveryPartner, len(partners)),
		deliveryFee:   models.DefaultDeliveryFee,
		deliveryBonus: models.DefaultPartnerDeliveryBonus,
		now:           time.Now,
		publisher:     events.Discard,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(e.now().UnixNano()))
	}

	for i := range partners {
		p := partners[i]
		if _, exists := e.partnerIndex[p.ID]; exists {
			return nil, fmt.Errorf("duplicate delivery partner id %s", p.ID)
		}
		if p.Status == "" {
			p.Status = models.PartnerStatusAvailable
		}
		e.partners = append(e.partners, &p)
		e.partnerIndex[p.ID] = &p
	}
	return e, nil
}

func (e *Engine) DeliveryFee() int   { return e.deliveryFee }
func (e *Engine) DeliveryBonus() int { return e.deliveryBonus }

// Create turns a cart snapshot into a placed order. Nothing is recorded when
// the checkout details are incomplete or the cart is empty.
func (e *Engine) Create(items []models.CartItem, checkout Checkout) (models.Order, error) {
	if err := checkout.Validate(); err != nil {
		return models.Order{}, err
	}
	if len(items) == 0 {
		return models.Order{}, ErrEmptyCart
	}

	id, err := e.nextOrderID()
	if err != nil {
		return models.Order{}, err
	}

	snapshot := make([]models.CartItem, len(items))
	copy(snapshot, items)
	subtotal := 0
	for _, it := range snapshot {
		subtotal += it.LineTotal()
	}

	order := &models.Order{
		ID:            id,
		Items:         snapshot,
		Total:         subtotal + e.deliveryFee,
		Status:        models.OrderStatusPlaced,
		CreatedAt:     e.now(),
		Address:       checkout.Address(),
		CustomerName:  strings.TrimSpace(checkout.Name),
		CustomerPhone: strings.TrimSpace(checkout.Phone),
	}
	e.orders = append([]*models.Order{order}, e.orders...)
	e.orderIndex[id] = order

	ev := e.event(events.OrderPlaced, order)
	ev.Total = int64(order.Total)
	ev.ItemCount = int32(order.ItemCount())
	ev.Address = order.Address
	e.publisher.Publish(ev)

	return order.Clone(), nil
}

// nextOrderID draws ORD-1000..ORD-9999 and retries on collision.
func (e *Engine) nextOrderID() (string, error) {
	const lo, span = 1000, 9000
	if len(e.orderIndex) >= span {
		return "", ErrOrderIDsExhausted
	}
	for attempt := 0; attempt < 64; attempt++ {
		id := fmt.Sprintf("ORD-%d", lo+e.rng.Intn(span))
		if _, taken := e.orderIndex[id]; !taken {
			return id, nil
		}
	}
	start := e.rng.Intn(span)
	for i := 0; i < span; i++ {
		id := fmt.Sprintf("ORD-%d", lo+(start+i)%span)
		if _, taken := e.orderIndex[id]; !taken {
			return id, nil
		}
	}
	return "", ErrOrderIDsExhausted
}

// AssignPartner hands a placed, unassigned order to an available partner.
// The order becomes confirmed and the partner busy.
func (e *Engine) AssignPartner(orderID, partnerID string) (models.Order, error) {
	order, err := e.order(orderID)
	if err != nil {
		return models.Order{}, err
	}
	partner, err := e.partner(partnerID)
	if err != nil {
		return models.Order{}, err
	}
	if order.HasPartner() {
		return models.Order{}, fmt.Errorf("%w: %s has %s", ErrAlreadyAssigned, order.ID, order.PartnerID)
	}
	if !partner.IsAvailable() {
		return models.Order{}, fmt.Errorf("%w: %s is %s", ErrPartnerUnavailable, partner.ID, partner.Status)
	}
	if err := e.validate(order, models.OrderStatusConfirmed); err != nil {
		return models.Order{}, err
	}

	prev := order.Status
	order.PartnerID = partner.ID
	order.Status = models.OrderStatusConfirmed
	partner.Status = models.PartnerStatusBusy

	ev := e.event(events.PartnerAssigned, order)
	ev.PreviousStatus = string(prev)
	e.publisher.Publish(ev)

	return order.Clone(), nil
}

// partnerSteps are the only moves a delivery partner may make.
var partnerSteps = map[models.OrderStatus]models.OrderStatus{
	models.OrderStatusConfirmed:      models.OrderStatusOutForDelivery,
	models.OrderStatusPreparing:      models.OrderStatusOutForDelivery,
	models.OrderStatusOutForDelivery: models.OrderStatusDelivered,
}

// Advance moves an order one step along the delivery leg on behalf of the
// partner it is assigned to. Reaching delivered frees the partner and credits
// the delivery bonus.
func (e *Engine) Advance(partnerID, orderID string, to models.OrderStatus) (models.Order, error) {
	order, err := e.order(orderID)
	if err != nil {
		return models.Order{}, err
	}
	if order.PartnerID != partnerID {
		return models.Order{}, fmt.Errorf("%w: %s", ErrNotAssignedToPartner, order.ID)
	}
	partner, err := e.partner(partnerID)
	if err != nil {
		return models.Order{}, err
	}
	if next, ok := partnerSteps[order.Status]; !ok || next != to {
		return models.Order{}, &TransitionError{OrderID: order.ID, From: order.Status, To: to}
	}
	if err := e.validate(order, to); err != nil {
		return models.Order{}, err
	}

	prev := order.Status
	order.Status = to

	if to != models.OrderStatusDelivered {
		ev := e.event(events.OrderStatusChanged, order)
		ev.PreviousStatus = string(prev)
		e.publisher.Publish(ev)
		return order.Clone(), nil
	}

	partner.Status = models.PartnerStatusAvailable
	partner.TotalDeliveries++
	partner.Earnings += e.deliveryBonus

	ev := e.event(events.OrderDelivered, order)
	ev.PreviousStatus = string(prev)
	ev.Total = int64(order.Total)
	ev.Earnings = int64(e.deliveryBonus)
	e.publisher.Publish(ev)

	return order.Clone(), nil
}

// Cancel ends an order that has not been delivered. An assigned partner is
// released without earnings.
func (e *Engine) Cancel(orderID string) (models.Order, error) {
	order, err := e.order(orderID)
	if err != nil {
		return models.Order{}, err
	}
	if err := e.validate(order, models.OrderStatusCancelled); err != nil {
		return models.Order{}, err
	}

	prev := order.Status
	order.Status = models.OrderStatusCancelled
	if order.HasPartner() {
		if p, ok := e.partnerIndex[order.PartnerID]; ok && p.Status == models.PartnerStatusBusy {
			p.Status = models.PartnerStatusAvailable
		}
	}

	ev := e.event(events.OrderCancelled, order)
	ev.PreviousStatus = string(prev)
	e.publisher.Publish(ev)

	return order.Clone(), nil
}

// SetPartnerStatus lets a partner go online or offline. A partner on a
// delivery stays busy until it completes.
func (e *Engine) SetPartnerStatus(partnerID string, status models.PartnerStatus) (models.DeliveryPartner, error) {
	partner, err := e.partner(partnerID)
	if err != nil {
		return models.DeliveryPartner{}, err
	}
	if status != models.PartnerStatusAvailable && status != models.PartnerStatusOffline {
		return models.DeliveryPartner{}, fmt.Errorf("%w: %q", ErrInvalidPartnerStatus, status)
	}
	if partner.Status == models.PartnerStatusBusy {
		return models.DeliveryPartner{}, fmt.Errorf("%w: %s", ErrPartnerBusy, partner.ID)
	}
	if partner.Status == status {
		return *partner, nil
	}

	prev := partner.Status
	partner.Status = status

	ev := events.New(events.PartnerStatusChanged, e.now())
	ev.PartnerID = partner.ID
	ev.Status = string(status)
	ev.PreviousStatus = string(prev)
	e.publisher.Publish(ev)

	return *partner, nil
}

func (e *Engine) Orders() []models.Order {
	out := make([]models.Order, 0, len(e.orders))
	for _, o := range e.orders {
		out = append(out, o.Clone())
	}
	return out
}

func (e *Engine) Order(id string) (models.Order, bool) {
	o, ok := e.orderIndex[id]
	if !ok {
		return models.Order{}, false
	}
	return o.Clone(), true
}

func (e *Engine) Partners() []models.DeliveryPartner {
	out := make([]models.DeliveryPartner, 0, len(e.partners))
	for _, p := range e.partners {
		out = append(out, *p)
	}
	return out
}

func (e *Engine) Partner(id string) (models.DeliveryPartner, bool) {
	p, ok := e.partnerIndex[id]
	if !ok {
		return models.DeliveryPartner{}, false
	}
	return *p, true
}

func (e *Engine) AvailablePartners() []models.DeliveryPartner {
	var out []models.DeliveryPartner
	for _, p := range e.partners {
		if p.IsAvailable() {
			out = append(out, *p)
		}
	}
	return out
}

// PartnerOrders lists the partner's orders that are still on the road.
func (e *Engine) PartnerOrders(partnerID string) []models.Order {
	return e.partnerOrders(partnerID, func(s models.OrderStatus) bool { return !s.Terminal() })
}

// PartnerHistory lists the partner's delivered orders.
func (e *Engine) PartnerHistory(partnerID string) []models.Order {
	return e.partnerOrders(partnerID, func(s models.OrderStatus) bool { return s == models.OrderStatusDelivered })
}

func (e *Engine) partnerOrders(partnerID string, keep func(models.OrderStatus) bool) []models.Order {
	var out []models.Order
	for _, o := range e.orders {
		if o.PartnerID == partnerID && keep(o.Status) {
			out = append(out, o.Clone())
		}
	}
	return out
}

func (e *Engine) order(id string) (*models.Order, error) {
	o, ok := e.orderIndex[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	return o, nil
}

func (e *Engine) partner(id string) (*models.DeliveryPartner, error) {
	p, ok := e.partnerIndex[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPartnerNotFound, id)
	}
	return p, nil
}

func (e *Engine) validate(order *models.Order, to models.OrderStatus) error {
	if err := models.ValidateTransition(order.Status, to); err != nil {
		return &TransitionError{OrderID: order.ID, From: order.Status, To: to}
	}
	return nil
}

func (e *Engine) event(t events.Type, order *models.Order) events.Event {
	ev := events.New(t, e.now())
	ev.OrderID = order.ID
	ev.PartnerID = order.PartnerID
	ev.Status = string(order.Status)
	return ev
}
