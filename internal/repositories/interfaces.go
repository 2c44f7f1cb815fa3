// Package repositories describes where a session's seed catalog comes from.
package repositories

import (
	"context"

	"github.com/chrisdamba/pupulse/internal/models"
)

type RestaurantRepository interface {
	BulkCreate(ctx context.Context, restaurants []models.Restaurant) error
	GetAll(ctx context.Context) ([]models.Restaurant, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}

type MenuItemRepository interface {
	BulkCreate(ctx context.Context, items []models.MenuItem) error
	GetAll(ctx context.Context) ([]models.MenuItem, error)
	GetByRestaurantID(ctx context.Context, restaurantID string) ([]models.MenuItem, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}

type DeliveryPartnerRepository interface {
	BulkCreate(ctx context.Context, partners []models.DeliveryPartner) error
	GetAll(ctx context.Context) ([]models.DeliveryPartner, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}
