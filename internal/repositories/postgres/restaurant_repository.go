package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chrisdamba/pupulse/internal/models"
)

type RestaurantRepository struct {
	pool *pgxpool.Pool
}

func NewRestaurantRepository(pool *pgxpool.Pool) *RestaurantRepository {
	return &RestaurantRepository{pool: pool}
}

func (r *RestaurantRepository) BulkCreate(ctx context.Context, restaurants []models.Restaurant) error {
	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"restaurants"},
		[]string{"id", "name", "cuisine", "rating", "delivery_time", "location", "image", "cover_image"},
		pgx.CopyFromSlice(len(restaurants), func(i int) ([]interface{}, error) {
			rs := restaurants[i]
			return []interface{}{
				rs.ID,
				rs.Name,
				rs.Cuisine,
				rs.Rating,
				rs.DeliveryTime,
				rs.Location,
				rs.Image,
				rs.CoverImage,
			}, nil
		}),
	)
	return err
}

// GetAll returns restaurants in the order they were stored.
func (r *RestaurantRepository) GetAll(ctx context.Context) ([]models.Restaurant, error) {
	query := `
        SELECT id, name, cuisine, rating, delivery_time, location, image, cover_image
        FROM restaurants
        ORDER BY seq
    `
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var restaurants []models.Restaurant
	for rows.Next() {
		var rs models.Restaurant
		err := rows.Scan(
			&rs.ID,
			&rs.Name,
			&rs.Cuisine,
			&rs.Rating,
			&rs.DeliveryTime,
			&rs.Location,
			&rs.Image,
			&rs.CoverImage,
		)
		if err != nil {
			return nil, err
		}
		restaurants = append(restaurants, rs)
	}
	return restaurants, rows.Err()
}

func (r *RestaurantRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM restaurants").Scan(&count)
	return count, err
}

func (r *RestaurantRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "TRUNCATE TABLE restaurants CASCADE")
	return err
}
