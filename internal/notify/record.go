package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dosepilot/reminder-service/internal/domain"
	"github.com/dosepilot/reminder-service/internal/metrics"
	"github.com/dosepilot/reminder-service/internal/repository"
)

// RecordingDispatcher wraps another dispatcher and writes every attempt to the
// delivery history, plus the delivery metrics. A history write failure is
// logged and swallowed — bookkeeping must never block notifications.
type RecordingDispatcher struct {
	inner      Dispatcher
	deliveries repository.DeliveryRepository
	logger     *slog.Logger
}

func NewRecordingDispatcher(inner Dispatcher, deliveries repository.DeliveryRepository, logger *slog.Logger) *RecordingDispatcher {
	return &RecordingDispatcher{
		inner:      inner,
		deliveries: deliveries,
		logger:     logger.With("component", "recording_dispatcher"),
	}
}

func (d *RecordingDispatcher) Deliver(ctx context.Context, userID string, med domain.Medication, rem domain.Reminder) Outcome {
	firedAt := time.Now()
	outcome := d.inner.Deliver(ctx, userID, med, rem)
	duration := time.Since(firedAt)

	result := "delivered"
	if !outcome.Delivered {
		result = "failed"
	}
	metrics.DeliveriesTotal.WithLabelValues(outcome.Channel, result).Inc()
	metrics.DeliveryDuration.WithLabelValues(outcome.Channel).Observe(duration.Seconds())

	record := &domain.Delivery{
		ID:           uuid.NewString(),
		UserID:       userID,
		ReminderID:   rem.ID,
		MedicationID: med.ID,
		Channel:      outcome.Channel,
		Delivered:    outcome.Delivered,
		FiredAt:      firedAt,
		DurationMS:   duration.Milliseconds(),
	}
	if outcome.Err != nil {
		msg := outcome.Err.Error()
		record.Error = &msg
	}
	if err := d.deliveries.Record(ctx, record); err != nil {
		d.logger.ErrorContext(ctx, "record delivery", "user_id", userID, "reminder_id", rem.ID, "error", err)
	}
	return outcome
}
