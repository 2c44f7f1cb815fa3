// Package session owns the shared in-memory state of one ordering session and
// hands each role a view restricted to the operations that role may perform.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chrisdamba/pupulse/internal/cart"
	"github.com/chrisdamba/pupulse/internal/catalog"
	"github.com/chrisdamba/pupulse/internal/events"
	"github.com/chrisdamba/pupulse/internal/filter"
	"github.com/chrisdamba/pupulse/internal/models"
	"github.com/chrisdamba/pupulse/internal/orders"
)

// Store serialises every mutation behind one mutex. Views never hold state of
// their own.
type Store struct {
	mu sync.Mutex

	catalog   *catalog.Store
	cart      *cart.Cart
	favorites []string
	engine    *orders.Engine

	notifier  Notifier
	publisher events.Publisher
	now       func() time.Time
	logger    *slog.Logger
}

type Option func(*Store)

func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

// WithPublisher receives catalog events. Order events are published by the
// engine's own publisher.
func WithPublisher(p events.Publisher) Option {
	return func(s *Store) { s.publisher = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func New(cat *catalog.Store, engine *orders.Engine, opts ...Option) *Store {
	s := &Store{
		catalog:   cat,
		cart:      cart.New(),
		engine:    engine,
		publisher: events.Discard,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.notifier == nil {
		s.notifier = LogNotifier{Logger: s.logger}
	}
	return s
}

func (s *Store) Customer() CustomerView { return &customerView{s: s} }

func (s *Store) Admin() AdminView { return &adminView{s: s} }

// Partner returns the view bound to one delivery partner.
func (s *Store) Partner(partnerID string) (PartnerView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.engine.Partner(partnerID); !ok {
		return nil, fmt.Errorf("%w: %s", orders.ErrPartnerNotFound, partnerID)
	}
	return &partnerView{s: s, id: partnerID}, nil
}

func (s *Store) notify(kind NoticeKind, format string, args ...any) {
	s.notifier.Notify(Notice{Kind: kind, Message: fmt.Sprintf(format, args...)})
}

// CustomerView browses the catalog, manages the cart and favorites, and
// places and tracks orders.
type CustomerView interface {
	Restaurants() []models.Restaurant
	FoodCourts() []models.Restaurant
	Restaurant(id string) (models.Restaurant, bool)
	RestaurantMenu(restaurantID string, vegOnly bool) []filter.CategoryGroup
	Browse(q filter.Query) []models.MenuItem

	AddToCart(itemID string) (bool, error)
	UpdateQuantity(itemID string, delta int)
	ItemQuantity(itemID string) int
	Cart() []models.CartItem
	CartTotal() int
	CartCount() int
	DeliveryFee() int
	CheckoutTotal() int

	ToggleFavorite(itemID string) (bool, error)
	IsFavorite(itemID string) bool
	Favorites() []models.MenuItem

	PlaceOrder(checkout orders.Checkout) (models.Order, error)
	CancelOrder(orderID string) (models.Order, error)
	Orders() []models.Order
	Track(orderID string) (Progress, error)
}

// AdminView dispatches orders and curates the catalog.
type AdminView interface {
	Orders() []models.Order
	Partners() []models.DeliveryPartner
	AvailablePartners() []models.DeliveryPartner
	AssignPartner(orderID, partnerID string) (models.Order, error)
	MenuItems() []models.MenuItem
	DeleteMenuItem(itemID string) error
	Stats() Stats
}

// PartnerView acts for a single delivery partner.
type PartnerView interface {
	ID() string
	Profile() models.DeliveryPartner
	ActiveOrders() []models.Order
	PastDeliveries() []models.Order
	StartDelivery(orderID string) (models.Order, error)
	MarkDelivered(orderID string) (models.Order, error)
	SetOnline(online bool) error
}

// Stats summarises the session for the admin dashboard.
type Stats struct {
	TotalOrders    int
	Revenue        int
	ActivePartners int
}

type customerView struct{ s *Store }

func (c *customerView) Restaurants() []models.Restaurant {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.s.catalog.Restaurants()
}

// FoodCourts lists restaurants other than the stationery depot.
func (c *customerView) FoodCourts() []models.Restaurant {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.s.catalog.RestaurantsExcept(models.StationeryDepotName)
}

func (c *customerView) Restaurant(id string) (models.Restaurant, bool) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.s.catalog.Restaurant(id)
}

func (c *customerView) RestaurantMenu(restaurantID string, vegOnly bool) []filter.CategoryGroup {
	return filter.GroupByCategory(c.Browse(filter.Query{RestaurantID: restaurantID, VegOnly: vegOnly}))
}

func (c *customerView) Browse(q filter.Query) []models.MenuItem {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return filter.Apply(c.s.catalog.MenuItems(), c.s.catalog.Restaurants(), q)
}

// AddToCart adds one unit of a catalog item and reports whether a new cart
// line was created.
func (c *customerView) AddToCart(itemID string) (bool, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	item, ok := c.s.catalog.MenuItem(itemID)
	if !ok {
		return false, fmt.Errorf("%w: %s", catalog.ErrMenuItemNotFound, itemID)
	}
	added := c.s.cart.Add(item)
	if added {
		c.s.notify(NoticeSuccess, "Added %s to cart", item.Name)
	}
	return added, nil
}

func (c *customerView) UpdateQuantity(itemID string, delta int) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.s.cart.UpdateQuantity(itemID, delta)
}

func (c *customerView) ItemQuantity(itemID string) int {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.s.cart.ItemQuantity(itemID)
}

func (c *customerView) Cart() []models.CartItem {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.s.cart.Items()
}

func (c *customerView) CartTotal() int {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.s.cart.Total()
}

func (c *customerView) CartCount() int {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.s.cart.Count()
}

func (c *customerView) DeliveryFee() int {
	return c.s.engine.DeliveryFee()
}

func (c *customerView) CheckoutTotal() int {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.s.cart.Total() + c.s.engine.DeliveryFee()
}

// ToggleFavorite flips an item's favorite flag and returns the new state.
func (c *customerView) ToggleFavorite(itemID string) (bool, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	for i, id := range c.s.favorites {
		if id == itemID {
			c.s.favorites = append(c.s.favorites[:i], c.s.favorites[i+1:]...)
			c.s.notify(NoticeInfo, "Removed from favorites")
			return false, nil
		}
	}
	if _, ok := c.s.catalog.MenuItem(itemID); !ok {
		return false, fmt.Errorf("%w: %s", catalog.ErrMenuItemNotFound, itemID)
	}
	c.s.favorites = append(c.s.favorites, itemID)
	c.s.notify(NoticeSuccess, "Added to favorites")
	return true, nil
}

func (c *customerView) IsFavorite(itemID string) bool {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	for _, id := range c.s.favorites {
		if id == itemID {
			return true
		}
	}
	return false
}

// Favorites resolves favorite IDs against the catalog; deleted items drop out.
func (c *customerView) Favorites() []models.MenuItem {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	out := make([]models.MenuItem, 0, len(c.s.favorites))
	for _, id := range c.s.favorites {
		if item, ok := c.s.catalog.MenuItem(id); ok {
			out = append(out, item)
		}
	}
	return out
}

// PlaceOrder checks out the current cart. The cart is emptied only when the
// order is recorded.
func (c *customerView) PlaceOrder(checkout orders.Checkout) (models.Order, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	order, err := c.s.engine.Create(c.s.cart.Items(), checkout)
	if err != nil {
		if errors.Is(err, orders.ErrValidation) {
			c.s.notify(NoticeError, "Please fill in delivery details")
		}
		return models.Order{}, err
	}
	c.s.cart.Clear()
	c.s.notify(NoticeSuccess, "Order Placed Successfully!")
	c.s.logger.Debug("order placed", "orderId", order.ID, "total", order.Total, "items", order.ItemCount())
	return order, nil
}

func (c *customerView) CancelOrder(orderID string) (models.Order, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	order, err := c.s.engine.Cancel(orderID)
	if err != nil {
		return models.Order{}, err
	}
	c.s.notify(NoticeInfo, "Order %s cancelled", order.ID)
	return order, nil
}

func (c *customerView) Orders() []models.Order {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.s.engine.Orders()
}

func (c *customerView) Track(orderID string) (Progress, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	order, ok := c.s.engine.Order(orderID)
	if !ok {
		return Progress{}, fmt.Errorf("%w: %s", orders.ErrOrderNotFound, orderID)
	}
	return ProgressOf(order), nil
}

type adminView struct{ s *Store }

func (a *adminView) Orders() []models.Order {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	return a.s.engine.Orders()
}

func (a *adminView) Partners() []models.DeliveryPartner {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	return a.s.engine.Partners()
}

func (a *adminView) AvailablePartners() []models.DeliveryPartner {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	return a.s.engine.AvailablePartners()
}

func (a *adminView) AssignPartner(orderID, partnerID string) (models.Order, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	order, err := a.s.engine.AssignPartner(orderID, partnerID)
	if err != nil {
		return models.Order{}, err
	}
	a.s.notify(NoticeSuccess, "Partner assigned successfully")
	return order, nil
}

func (a *adminView) MenuItems() []models.MenuItem {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	return a.s.catalog.MenuItems()
}

// DeleteMenuItem removes an item from the catalog. Carts and placed orders
// keep their own copies.
func (a *adminView) DeleteMenuItem(itemID string) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	item, err := a.s.catalog.DeleteMenuItem(itemID)
	if err != nil {
		return err
	}
	ev := events.New(events.MenuItemDeleted, a.s.now())
	ev.MenuItemID = item.ID
	a.s.publisher.Publish(ev)
	a.s.notify(NoticeInfo, "Product deleted")
	return nil
}

func (a *adminView) Stats() Stats {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	var st Stats
	for _, o := range a.s.engine.Orders() {
		st.TotalOrders++
		st.Revenue += o.Total
	}
	for _, p := range a.s.engine.Partners() {
		if p.Status != models.PartnerStatusOffline {
			st.ActivePartners++
		}
	}
	return st
}

type partnerView struct {
	s  *Store
	id string
}

func (p *partnerView) ID() string { return p.id }

func (p *partnerView) Profile() models.DeliveryPartner {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	partner, _ := p.s.engine.Partner(p.id)
	return partner
}

func (p *partnerView) ActiveOrders() []models.Order {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	return p.s.engine.PartnerOrders(p.id)
}

func (p *partnerView) PastDeliveries() []models.Order {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	return p.s.engine.PartnerHistory(p.id)
}

func (p *partnerView) StartDelivery(orderID string) (models.Order, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	order, err := p.s.engine.Advance(p.id, orderID, models.OrderStatusOutForDelivery)
	if err != nil {
		return models.Order{}, err
	}
	p.s.notify(NoticeInfo, "Status updated to %s", order.Status)
	return order, nil
}

func (p *partnerView) MarkDelivered(orderID string) (models.Order, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	order, err := p.s.engine.Advance(p.id, orderID, models.OrderStatusDelivered)
	if err != nil {
		return models.Order{}, err
	}
	p.s.notify(NoticeSuccess, "Order Delivered! Earnings updated.")
	return order, nil
}

func (p *partnerView) SetOnline(online bool) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	status := models.PartnerStatusOffline
	if online {
		status = models.PartnerStatusAvailable
	}
	_, err := p.s.engine.SetPartnerStatus(p.id, status)
	return err
}
