package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dosepilot/reminder-service/internal/domain"
)

type DeviceRepository struct {
	pool *pgxpool.Pool
}

func NewDeviceRepository(pool *pgxpool.Pool) *DeviceRepository {
	return &DeviceRepository{pool: pool}
}

func (r *DeviceRepository) Upsert(ctx context.Context, userID, token, platform string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO devices (user_id, token, platform)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, token) DO UPDATE SET
			platform     = EXCLUDED.platform,
			last_seen_at = NOW()`,
		userID, token, platform,
	)
	if err != nil {
		return fmt.Errorf("upsert device: %w", err)
	}
	return nil
}

func (r *DeviceRepository) FindByUser(ctx context.Context, userID string) (*domain.Device, error) {
	query := `
		SELECT id, user_id, token, platform, created_at, last_seen_at
		FROM devices
		WHERE user_id = $1
		ORDER BY last_seen_at DESC
		LIMIT 1`

	row := r.pool.QueryRow(ctx, query, userID)
	var d domain.Device
	err := row.Scan(&d.ID, &d.UserID, &d.Token, &d.Platform, &d.CreatedAt, &d.LastSeenAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNoDevice
		}
		return nil, fmt.Errorf("scan device: %w", err)
	}
	return &d, nil
}

func (r *DeviceRepository) DeleteStale(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM devices WHERE last_seen_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete stale devices: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
