package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chrisdamba/pupulse/internal/repositories"
)

const schema = `
CREATE TABLE IF NOT EXISTS restaurants (
    id            TEXT PRIMARY KEY,
    seq           BIGSERIAL,
    name          TEXT NOT NULL,
    cuisine       TEXT NOT NULL DEFAULT '',
    rating        DOUBLE PRECISION NOT NULL DEFAULT 0,
    delivery_time TEXT NOT NULL DEFAULT '',
    location      TEXT NOT NULL DEFAULT '',
    image         TEXT NOT NULL DEFAULT '',
    cover_image   TEXT NOT NULL DEFAULT '',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS menu_items (
    id            TEXT PRIMARY KEY,
    seq           BIGSERIAL,
    restaurant_id TEXT NOT NULL REFERENCES restaurants(id) ON DELETE CASCADE,
    name          TEXT NOT NULL,
    description   TEXT NOT NULL DEFAULT '',
    price         INTEGER NOT NULL CHECK (price >= 0),
    image         TEXT NOT NULL DEFAULT '',
    category      TEXT NOT NULL,
    is_veg        BOOLEAN NOT NULL DEFAULT false,
    rating        DOUBLE PRECISION NOT NULL DEFAULT 0,
    votes         INTEGER NOT NULL DEFAULT 0,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS menu_items_restaurant_id_idx ON menu_items (restaurant_id);

CREATE TABLE IF NOT EXISTS delivery_partners (
    id               TEXT PRIMARY KEY,
    seq              BIGSERIAL,
    name             TEXT NOT NULL,
    phone            TEXT NOT NULL DEFAULT '',
    status           TEXT NOT NULL DEFAULT 'available',
    earnings         INTEGER NOT NULL DEFAULT 0,
    total_deliveries INTEGER NOT NULL DEFAULT 0,
    avatar           TEXT NOT NULL DEFAULT '',
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Connect opens a pool and makes sure the catalog tables exist.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error creating catalog schema: %w", err)
	}
	return pool, nil
}

// NewSeedStore wires the Postgres repositories into a SeedStore.
func NewSeedStore(pool *pgxpool.Pool) repositories.SeedStore {
	return repositories.SeedStore{
		Restaurants: NewRestaurantRepository(pool),
		MenuItems:   NewMenuItemRepository(pool),
		Partners:    NewDeliveryPartnerRepository(pool),
	}
}
