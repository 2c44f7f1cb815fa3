package simulator

import (
	"errors"

	"github.com/chrisdamba/pupulse/internal/factories"
	"github.com/chrisdamba/pupulse/internal/filter"
	"github.com/chrisdamba/pupulse/internal/models"
	"github.com/chrisdamba/pupulse/internal/orders"
)

func (s *Simulator) processAction(action *models.Action) {
	switch action.Type {
	case models.ActionCustomerCheckout:
		s.handleCheckout(action)
	case models.ActionCustomerCancel:
		s.handleCancel(action)
	case models.ActionAdminAssign:
		s.handleAssign(action)
	case models.ActionAdminDeleteItem:
		s.handleDeleteItem()
	case models.ActionPartnerStart:
		s.handleStartDelivery(action)
	case models.ActionPartnerDeliver:
		s.handleDeliver(action)
	case models.ActionPartnerGoOffline:
		s.handlePartnerOnline(action.ActorID, false)
	case models.ActionPartnerGoOnline:
		s.handlePartnerOnline(action.ActorID, true)
	default:
		s.logger.Warn("unknown action", "type", action.Type)
	}
}

// browse picks what a customer sees before choosing: their section of the
// main listing, or now and then a single food court's menu.
func (s *Simulator) browse(c factories.Customer) []models.MenuItem {
	cv := s.store.Customer()
	if c.Section == models.SectionFood && s.Rng.Float64() < 0.3 {
		if courts := cv.FoodCourts(); len(courts) > 0 {
			court := courts[s.Rng.Intn(len(courts))]
			var items []models.MenuItem
			for _, group := range cv.RestaurantMenu(court.ID, c.VegOnly) {
				items = append(items, group.Items...)
			}
			if len(items) > 0 {
				return items
			}
		}
	}
	if items := cv.Browse(filter.Query{Section: c.Section, VegOnly: c.VegOnly}); len(items) > 0 {
		return items
	}
	return cv.Browse(filter.Query{})
}

func (s *Simulator) handleCheckout(action *models.Action) {
	c, ok := s.Customers[action.ActorID]
	if !ok {
		return
	}
	cv := s.store.Customer()

	items := s.browse(c)
	if len(items) == 0 {
		s.logger.Warn("nothing to order, catalog is empty", "customer", c.ID)
		s.orderSettled()
		return
	}
	picks := 1 + s.Rng.Intn(3)
	for i := 0; i < picks; i++ {
		item := items[s.Rng.Intn(len(items))]
		if _, err := cv.AddToCart(item.ID); err != nil {
			s.logger.Debug("could not add item", "item", item.ID, "error", err)
			continue
		}
		if s.Rng.Float64() < 0.1 {
			if _, err := cv.ToggleFavorite(item.ID); err != nil {
				s.logger.Debug("could not favorite item", "item", item.ID, "error", err)
			}
		}
	}

	checkout := c.Checkout()
	if c.Forgetful {
		checkout.Room = ""
	}
	order, err := cv.PlaceOrder(checkout)
	if errors.Is(err, orders.ErrValidation) {
		// The cart survives a rejected checkout, so the customer just fills in
		// the missing details and tries again.
		s.summary.ValidationRetries++
		order, err = cv.PlaceOrder(c.Checkout())
	}
	if err != nil {
		s.logger.Warn("checkout failed", "customer", c.ID, "error", err)
		for _, line := range cv.Cart() {
			cv.UpdateQuantity(line.ID, -line.Quantity)
		}
		s.orderSettled()
		return
	}

	s.logger.Debug("order placed", "orderId", order.ID, "customer", c.Name, "total", order.Total)
	s.picks[order.ID] = picks
	s.Actions.Enqueue(&models.Action{Time: s.after(1, 4), Type: models.ActionAdminAssign, OrderID: order.ID})
	if s.Rng.Float64() < s.Config.CancelRate {
		s.Actions.Enqueue(&models.Action{Time: s.after(1, 10), Type: models.ActionCustomerCancel, OrderID: order.ID, ActorID: c.ID})
	}
}

func (s *Simulator) handleCancel(action *models.Action) {
	order, err := s.store.Customer().CancelOrder(action.OrderID)
	if err != nil {
		// Most often the order was delivered first.
		s.logger.Debug("cancel rejected", "orderId", action.OrderID, "error", err)
		return
	}
	s.summary.Cancelled++
	s.orderSettled()
	s.logger.Debug("order cancelled", "orderId", order.ID)
}

func (s *Simulator) orderStatus(orderID string) (models.OrderStatus, bool) {
	for _, o := range s.store.Admin().Orders() {
		if o.ID == orderID {
			return o.Status, true
		}
	}
	return "", false
}

func (s *Simulator) handleAssign(action *models.Action) {
	status, ok := s.orderStatus(action.OrderID)
	if !ok || status != models.OrderStatusPlaced {
		return
	}

	av := s.store.Admin()
	available := av.AvailablePartners()
	if len(available) == 0 {
		s.retryAssign(action.OrderID)
		return
	}

	partner := available[s.Rng.Intn(len(available))]
	if _, err := av.AssignPartner(action.OrderID, partner.ID); err != nil {
		s.logger.Warn("assignment failed", "orderId", action.OrderID, "partner", partner.ID, "error", err)
		s.retryAssign(action.OrderID)
		return
	}
	delete(s.assignAttempts, action.OrderID)
	s.Actions.Enqueue(&models.Action{Time: s.after(2, 6), Type: models.ActionPartnerStart, OrderID: action.OrderID, ActorID: partner.ID})
}

// retryAssign tries again two minutes later. An order nobody picks up within
// maxAssignAttempts tries is cancelled.
func (s *Simulator) retryAssign(orderID string) {
	s.assignAttempts[orderID]++
	if s.assignAttempts[orderID] < maxAssignAttempts {
		s.Actions.Enqueue(&models.Action{Time: s.after(2, 2), Type: models.ActionAdminAssign, OrderID: orderID})
		return
	}
	delete(s.assignAttempts, orderID)
	s.logger.Warn("no partner became available, cancelling", "orderId", orderID)
	if _, err := s.store.Customer().CancelOrder(orderID); err == nil {
		s.summary.Cancelled++
		s.orderSettled()
	}
}

func (s *Simulator) handleStartDelivery(action *models.Action) {
	pv, err := s.store.Partner(action.ActorID)
	if err != nil {
		s.logger.Warn("unknown partner", "partner", action.ActorID, "error", err)
		return
	}
	if _, err := pv.StartDelivery(action.OrderID); err != nil {
		s.logger.Debug("could not start delivery", "orderId", action.OrderID, "error", err)
		return
	}
	s.Actions.Enqueue(&models.Action{Time: s.after(5, 15), Type: models.ActionPartnerDeliver, OrderID: action.OrderID, ActorID: action.ActorID})
}

func (s *Simulator) handleDeliver(action *models.Action) {
	pv, err := s.store.Partner(action.ActorID)
	if err != nil {
		s.logger.Warn("unknown partner", "partner", action.ActorID, "error", err)
		return
	}
	order, err := pv.MarkDelivered(action.OrderID)
	if err != nil {
		s.logger.Debug("could not mark delivered", "orderId", action.OrderID, "error", err)
		return
	}
	s.summary.Delivered++
	s.orderSettled()
	profile := pv.Profile()
	s.logger.Debug("order delivered", "orderId", order.ID, "partner", profile.Name, "earnings", profile.Earnings)
}

func (s *Simulator) handleDeleteItem() {
	av := s.store.Admin()
	items := av.MenuItems()
	if len(items) < 2 {
		return
	}
	item := items[s.Rng.Intn(len(items))]
	if err := av.DeleteMenuItem(item.ID); err != nil {
		s.logger.Warn("delete failed", "item", item.ID, "error", err)
	}
}

// handlePartnerOnline toggles a partner's shift. A busy partner cannot go
// offline, so the break is pushed back until the delivery is done. Every
// break ends with the partner coming back online.
func (s *Simulator) handlePartnerOnline(partnerID string, online bool) {
	pv, err := s.store.Partner(partnerID)
	if err != nil {
		s.logger.Warn("unknown partner", "partner", partnerID, "error", err)
		return
	}
	if !online && pv.Profile().Status == models.PartnerStatusBusy {
		s.Actions.Enqueue(&models.Action{Time: s.after(5, 5), Type: models.ActionPartnerGoOffline, ActorID: partnerID})
		return
	}
	if err := pv.SetOnline(online); err != nil {
		s.logger.Debug("status change rejected", "partner", partnerID, "error", err)
		return
	}
	if !online {
		s.Actions.Enqueue(&models.Action{Time: s.after(10, 30), Type: models.ActionPartnerGoOnline, ActorID: partnerID})
	}
}
