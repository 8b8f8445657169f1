package repository

import (
	"context"
	"time"

	"github.com/dosepilot/reminder-service/internal/domain"
)

type DeviceRepository interface {
	Upsert(ctx context.Context, userID, token, platform string) error
	// FindByUser returns the most recently seen device for the user,
	// or domain.ErrNoDevice.
	FindByUser(ctx context.Context, userID string) (*domain.Device, error)
	// DeleteStale removes devices not seen since the cutoff, returning the count.
	DeleteStale(ctx context.Context, cutoff time.Time) (int, error)
}
