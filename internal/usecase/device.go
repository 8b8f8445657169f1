package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dosepilot/reminder-service/internal/domain"
	"github.com/dosepilot/reminder-service/internal/repository"
)

type DeviceUsecase struct {
	devices repository.DeviceRepository
	logger  *slog.Logger
}

func NewDeviceUsecase(devices repository.DeviceRepository, logger *slog.Logger) *DeviceUsecase {
	return &DeviceUsecase{
		devices: devices,
		logger:  logger.With("component", "device_usecase"),
	}
}

// Register stores or refreshes a push token for the user. Re-registering the
// same token only bumps its last-seen timestamp.
func (uc *DeviceUsecase) Register(ctx context.Context, userID, token, platform string) error {
	if userID == "" {
		return domain.ErrMissingUserID
	}
	if err := uc.devices.Upsert(ctx, userID, token, platform); err != nil {
		return fmt.Errorf("upsert device: %w", err)
	}
	uc.logger.InfoContext(ctx, "device registered", "user_id", userID, "platform", platform)
	return nil
}
