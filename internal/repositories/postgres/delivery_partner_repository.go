package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chrisdamba/pupulse/internal/models"
)

type DeliveryPartnerRepository struct {
	pool *pgxpool.Pool
}

func NewDeliveryPartnerRepository(pool *pgxpool.Pool) *DeliveryPartnerRepository {
	return &DeliveryPartnerRepository{pool: pool}
}

func (r *DeliveryPartnerRepository) BulkCreate(ctx context.Context, partners []models.DeliveryPartner) error {
	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"delivery_partners"},
		[]string{"id", "name", "phone", "status", "earnings", "total_deliveries", "avatar"},
		pgx.CopyFromSlice(len(partners), func(i int) ([]interface{}, error) {
			p := partners[i]
			return []interface{}{
				p.ID,
				p.Name,
				p.Phone,
				string(p.Status),
				p.Earnings,
				p.TotalDeliveries,
				p.Avatar,
			}, nil
		}),
	)
	return err
}

func (r *DeliveryPartnerRepository) GetAll(ctx context.Context) ([]models.DeliveryPartner, error) {
	query := `
        SELECT id, name, phone, status, earnings, total_deliveries, avatar
        FROM delivery_partners
        ORDER BY seq
    `
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var partners []models.DeliveryPartner
	for rows.Next() {
		var p models.DeliveryPartner
		var status string
		err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Phone,
			&status,
			&p.Earnings,
			&p.TotalDeliveries,
			&p.Avatar,
		)
		if err != nil {
			return nil, err
		}
		p.Status = models.PartnerStatus(status)
		partners = append(partners, p)
	}
	return partners, rows.Err()
}

func (r *DeliveryPartnerRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM delivery_partners").Scan(&count)
	return count, err
}

func (r *DeliveryPartnerRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "TRUNCATE TABLE delivery_partners")
	return err
}
