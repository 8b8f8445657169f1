package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dosepilot/reminder-service/internal/domain"
	"github.com/dosepilot/reminder-service/internal/repository"
	"github.com/resend/resend-go/v2"
)

// EmailDispatcher sends reminders via the Resend API. It is the lower-priority
// fallback channel: slower than push, but reaches users whose device token is
// missing or revoked.
type EmailDispatcher struct {
	client *resend.Client
	users  repository.UserRepository
	from   string
	logger *slog.Logger
}

func NewEmailDispatcher(users repository.UserRepository, apiKey, from string, logger *slog.Logger) *EmailDispatcher {
	return &EmailDispatcher{
		client: resend.NewClient(apiKey),
		users:  users,
		from:   from,
		logger: logger.With("component", "email_dispatcher"),
	}
}

func (d *EmailDispatcher) Deliver(ctx context.Context, userID string, med domain.Medication, rem domain.Reminder) Outcome {
	user, err := d.users.FindByID(ctx, userID)
	if err != nil {
		return failed(ChannelEmail, fmt.Errorf("find user: %w", err))
	}
	if user.Email == "" {
		return failed(ChannelEmail, fmt.Errorf("user %s has no email on record", userID))
	}

	params := &resend.SendEmailRequest{
		From:    d.from,
		To:      []string{user.Email},
		Subject: "Medication reminder: " + med.Name,
		Html: fmt.Sprintf("<p>%s</p><p>Scheduled for %s.</p>",
			reminderBody(med, rem), rem.Time),
	}
	sent, err := d.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return failed(ChannelEmail, fmt.Errorf("send email: %w", err))
	}
	return Outcome{Delivered: true, Channel: ChannelEmail, MessageID: sent.Id}
}
