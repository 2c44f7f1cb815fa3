// Package catalog holds the session's restaurants and menu items.
package catalog

import (
	"errors"
	"fmt"

	"github.com/chrisdamba/pupulse/internal/models"
)

var (
	ErrMenuItemNotFound  = errors.New("menu item not found")
	ErrDuplicateID       = errors.New("duplicate catalog id")
	ErrUnknownRestaurant = errors.New("menu item references unknown restaurant")
)

// Store is read-mostly reference data. Items may only be removed, by an admin.
type Store struct {
	restaurants     []models.Restaurant
	restaurantIndex map[string]int
	items           []models.MenuItem
}

// New seeds a store. Identities must be unique and every item must belong to
// one of the given restaurants.
func New(restaurants []models.Restaurant, items []models.MenuItem) (*Store, error) {
	s := &Store{
		restaurants:     make([]models.Restaurant, 0, len(restaurants)),
		restaurantIndex: make(map[string]int, len(restaurants)),
		items:           make([]models.MenuItem, 0, len(items)),
	}

	for _, r := range restaurants {
		if _, exists := s.restaurantIndex[r.ID]; exists {
			return nil, fmt.Errorf("%w: restaurant %s", ErrDuplicateID, r.ID)
		}
		s.restaurantIndex[r.ID] = len(s.restaurants)
		s.restaurants = append(s.restaurants, r)
	}

	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, exists := seen[it.ID]; exists {
			return nil, fmt.Errorf("%w: menu item %s", ErrDuplicateID, it.ID)
		}
		if _, ok := s.restaurantIndex[it.RestaurantID]; !ok {
			return nil, fmt.Errorf("%w: item %s -> %s", ErrUnknownRestaurant, it.ID, it.RestaurantID)
		}
		seen[it.ID] = struct{}{}
		s.items = append(s.items, it)
	}

	return s, nil
}

func (s *Store) Restaurants() []models.Restaurant {
	out := make([]models.Restaurant, len(s.restaurants))
	copy(out, s.restaurants)
	return out
}

func (s *Store) Restaurant(id string) (models.Restaurant, bool) {
	i, ok := s.restaurantIndex[id]
	if !ok {
		return models.Restaurant{}, false
	}
	return s.restaurants[i], true
}

// RestaurantsExcept lists restaurants whose name differs from name, e.g. the
// food courts without the stationery depot.
func (s *Store) RestaurantsExcept(name string) []models.Restaurant {
	var out []models.Restaurant
	for _, r := range s.restaurants {
		if r.Name != name {
			out = append(out, r)
		}
	}
	return out
}

func (s *Store) MenuItems() []models.MenuItem {
	out := make([]models.MenuItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) MenuItem(id string) (models.MenuItem, bool) {
	for _, it := range s.items {
		if it.ID == id {
			return it, true
		}
	}
	return models.MenuItem{}, false
}

func (s *Store) RestaurantItems(restaurantID string) []models.MenuItem {
	var out []models.MenuItem
	for _, it := range s.items {
		if it.RestaurantID == restaurantID {
			out = append(out, it)
		}
	}
	return out
}

// RestaurantCategories returns the distinct categories of a restaurant's menu
// in first-seen order.
func (s *Store) RestaurantCategories(restaurantID string) []models.Category {
	seen := make(map[models.Category]bool)
	var out []models.Category
	for _, it := range s.items {
		if it.RestaurantID != restaurantID || seen[it.Category] {
			continue
		}
		seen[it.Category] = true
		out = append(out, it.Category)
	}
	return out
}

// DeleteMenuItem removes an item from the live catalog. Orders keep their own
// copies of the items they were placed with.
func (s *Store) DeleteMenuItem(id string) (models.MenuItem, error) {
	for i, it := range s.items {
		if it.ID == id {
			s.items = append(s.items[:i:i], s.items[i+1:]...)
			return it, nil
		}
	}
	return models.MenuItem{}, fmt.Errorf("%w: %s", ErrMenuItemNotFound, id)
}

func (s *Store) Len() int {
	return len(s.items)
}
