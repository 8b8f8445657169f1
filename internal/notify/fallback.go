package notify

import (
	"context"
	"log/slog"

	"github.com/dosepilot/reminder-service/internal/domain"
)

// FallbackDispatcher tries the primary channel and, only if it reports
// failure, the secondary. Best-effort chain, not transactional: a secondary
// failure is simply the final outcome.
type FallbackDispatcher struct {
	primary   Dispatcher
	secondary Dispatcher
	logger    *slog.Logger
}

func NewFallbackDispatcher(primary, secondary Dispatcher, logger *slog.Logger) *FallbackDispatcher {
	return &FallbackDispatcher{
		primary:   primary,
		secondary: secondary,
		logger:    logger.With("component", "fallback_dispatcher"),
	}
}

func (d *FallbackDispatcher) Deliver(ctx context.Context, userID string, med domain.Medication, rem domain.Reminder) Outcome {
	outcome := d.primary.Deliver(ctx, userID, med, rem)
	if outcome.Delivered || d.secondary == nil {
		return outcome
	}

	d.logger.WarnContext(ctx, "primary channel failed, trying fallback",
		"user_id", userID,
		"reminder_id", rem.ID,
		"channel", outcome.Channel,
		"error", outcome.Err,
	)
	return d.secondary.Deliver(ctx, userID, med, rem)
}
