package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dosepilot/reminder-service/internal/domain"
)

type DeliveryRepository struct {
	pool *pgxpool.Pool
}

func NewDeliveryRepository(pool *pgxpool.Pool) *DeliveryRepository {
	return &DeliveryRepository{pool: pool}
}

func (r *DeliveryRepository) Record(ctx context.Context, d *domain.Delivery) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO deliveries (id, user_id, reminder_id, medication_id, channel, delivered, error, fired_at, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		d.ID, d.UserID, d.ReminderID, d.MedicationID, d.Channel, d.Delivered, d.Error, d.FiredAt, d.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("record delivery: %w", err)
	}
	return nil
}

func (r *DeliveryRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Delivery, error) {
	query := `
		SELECT id, user_id, reminder_id, medication_id, channel, delivered, error, fired_at, duration_ms
		FROM deliveries
		WHERE user_id = $1
		ORDER BY fired_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query deliveries: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Delivery, error) {
		var d domain.Delivery
		err := row.Scan(&d.ID, &d.UserID, &d.ReminderID, &d.MedicationID, &d.Channel, &d.Delivered, &d.Error, &d.FiredAt, &d.DurationMS)
		return &d, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan deliveries: %w", err)
	}
	return out, nil
}
