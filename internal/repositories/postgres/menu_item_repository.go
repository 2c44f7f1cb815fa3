package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chrisdamba/pupulse/internal/models"
)

const menuItemColumns = `id, restaurant_id, name, description, price, image, category, is_veg, rating, votes`

type MenuItemRepository struct {
	pool *pgxpool.Pool
}

func NewMenuItemRepository(pool *pgxpool.Pool) *MenuItemRepository {
	return &MenuItemRepository{pool: pool}
}

func (r *MenuItemRepository) BulkCreate(ctx context.Context, items []models.MenuItem) error {
	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"menu_items"},
		[]string{"id", "restaurant_id", "name", "description", "price", "image", "category", "is_veg", "rating", "votes"},
		pgx.CopyFromSlice(len(items), func(i int) ([]interface{}, error) {
			it := items[i]
			return []interface{}{
				it.ID,
				it.RestaurantID,
				it.Name,
				it.Description,
				it.Price,
				it.Image,
				string(it.Category),
				it.IsVeg,
				it.Rating,
				it.Votes,
			}, nil
		}),
	)
	return err
}

func (r *MenuItemRepository) GetAll(ctx context.Context) ([]models.MenuItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+menuItemColumns+` FROM menu_items ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	return scanMenuItems(rows)
}

func (r *MenuItemRepository) GetByRestaurantID(ctx context.Context, restaurantID string) ([]models.MenuItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+menuItemColumns+` FROM menu_items WHERE restaurant_id = $1 ORDER BY seq`, restaurantID)
	if err != nil {
		return nil, err
	}
	return scanMenuItems(rows)
}

func scanMenuItems(rows pgx.Rows) ([]models.MenuItem, error) {
	defer rows.Close()

	var items []models.MenuItem
	for rows.Next() {
		var it models.MenuItem
		var category string
		err := rows.Scan(
			&it.ID,
			&it.RestaurantID,
			&it.Name,
			&it.Description,
			&it.Price,
			&it.Image,
			&category,
			&it.IsVeg,
			&it.Rating,
			&it.Votes,
		)
		if err != nil {
			return nil, err
		}
		it.Category = models.Category(category)
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *MenuItemRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM menu_items").Scan(&count)
	return count, err
}

func (r *MenuItemRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "TRUNCATE TABLE menu_items CASCADE")
	return err
}
