package repository

import (
	"context"

	"github.com/dosepilot/reminder-service/internal/domain"
)

type UserRepository interface {
	// Upsert ensures the authenticated user exists so FK constraints on
	// reminders/devices/deliveries are always satisfied.
	Upsert(ctx context.Context, id, email string) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
}
