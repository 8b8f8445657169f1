package repository

import (
	"context"

	"github.com/dosepilot/reminder-service/internal/domain"
)

type DeliveryRepository interface {
	Record(ctx context.Context, d *domain.Delivery) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Delivery, error)
}
