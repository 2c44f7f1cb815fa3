package repositories

import (
	"context"
	"fmt"

	"github.com/chrisdamba/pupulse/internal/models"
)

// Seed is the reference data a session starts from.
type Seed struct {
	Restaurants []models.Restaurant
	MenuItems   []models.MenuItem
	Partners    []models.DeliveryPartner
}

// SeedStore reads and writes seed data through the three repositories.
type SeedStore struct {
	Restaurants RestaurantRepository
	MenuItems   MenuItemRepository
	Partners    DeliveryPartnerRepository
}

// Empty reports whether no restaurants have been stored yet.
func (s SeedStore) Empty(ctx context.Context) (bool, error) {
	n, err := s.Restaurants.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to count restaurants: %w", err)
	}
	return n == 0, nil
}

// Save replaces the stored seed. Restaurants go first so that menu items
// always reference an existing row.
func (s SeedStore) Save(ctx context.Context, seed Seed) error {
	if err := s.MenuItems.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to clear menu items: %w", err)
	}
	if err := s.Restaurants.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to clear restaurants: %w", err)
	}
	if err := s.Partners.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to clear delivery partners: %w", err)
	}
	if err := s.Restaurants.BulkCreate(ctx, seed.Restaurants); err != nil {
		return fmt.Errorf("failed to store restaurants: %w", err)
	}
	if err := s.MenuItems.BulkCreate(ctx, seed.MenuItems); err != nil {
		return fmt.Errorf("failed to store menu items: %w", err)
	}
	if err := s.Partners.BulkCreate(ctx, seed.Partners); err != nil {
		return fmt.Errorf("failed to store delivery partners: %w", err)
	}
	return nil
}

func (s SeedStore) Load(ctx context.Context) (Seed, error) {
	var seed Seed
	var err error
	if seed.Restaurants, err = s.Restaurants.GetAll(ctx); err != nil {
		return Seed{}, fmt.Errorf("failed to load restaurants: %w", err)
	}
	if seed.MenuItems, err = s.MenuItems.GetAll(ctx); err != nil {
		return Seed{}, fmt.Errorf("failed to load menu items: %w", err)
	}
	if seed.Partners, err = s.Partners.GetAll(ctx); err != nil {
		return Seed{}, fmt.Errorf("failed to load delivery partners: %w", err)
	}
	return seed, nil
}
