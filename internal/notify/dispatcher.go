// Package notify abstracts the channels a fired reminder can reach the user
// on: push gateway, email, or plain logging for local dev. The concrete
// dispatcher is chosen once at startup, never per call.
package notify

import (
	"context"
	"log/slog"

	"github.com/dosepilot/reminder-service/internal/domain"
	"github.com/google/uuid"
)

const (
	ChannelPush  = "push"
	ChannelEmail = "email"
	ChannelLog   = "log"
)

// Outcome reports how a single delivery attempt went. Failure is data, not an
// error return — callers re-arm regardless.
type Outcome struct {
	Delivered bool
	Channel   string
	MessageID string
	Err       error
}

func failed(channel string, err error) Outcome {
	return Outcome{Channel: channel, Err: err}
}

type Dispatcher interface {
	Deliver(ctx context.Context, userID string, med domain.Medication, rem domain.Reminder) Outcome
}

// LogDispatcher writes reminders to the log instead of sending them — used in
// ENV=local.
type LogDispatcher struct {
	logger *slog.Logger
}

func NewLogDispatcher(logger *slog.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger.With("component", "log_dispatcher")}
}

func (d *LogDispatcher) Deliver(ctx context.Context, userID string, med domain.Medication, rem domain.Reminder) Outcome {
	id := uuid.NewString()
	d.logger.InfoContext(ctx, "reminder notification (local dev)",
		"user_id", userID,
		"reminder_id", rem.ID,
		"medication", med.Name,
		"dosage", med.Dosage+" "+med.Units,
		"message_id", id,
	)
	return Outcome{Delivered: true, Channel: ChannelLog, MessageID: id}
}
