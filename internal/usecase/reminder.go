package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dosepilot/reminder-service/internal/domain"
	"github.com/dosepilot/reminder-service/internal/notify"
	"github.com/dosepilot/reminder-service/internal/repository"
)

const (
	defaultDeliveryLimit = 20
	maxDeliveryLimit     = 100
)

// jobScheduler is the slice of the scheduler this usecase needs.
type jobScheduler interface {
	ScheduleAll(userID string, meds []domain.Medication, rems []domain.Reminder) int
	CancelReminder(userID, reminderID string) int
	ClearUser(userID string) int
}

type ReminderUsecase struct {
	store      repository.ReminderRepository
	deliveries repository.DeliveryRepository
	scheduler  jobScheduler
	dispatcher notify.Dispatcher
	logger     *slog.Logger
}

func NewReminderUsecase(
	store repository.ReminderRepository,
	deliveries repository.DeliveryRepository,
	scheduler jobScheduler,
	dispatcher notify.Dispatcher,
	logger *slog.Logger,
) *ReminderUsecase {
	return &ReminderUsecase{
		store:      store,
		deliveries: deliveries,
		scheduler:  scheduler,
		dispatcher: dispatcher,
		logger:     logger.With("component", "reminder_usecase"),
	}
}

type ScheduleAllInput struct {
	UserID      string
	Medications []domain.Medication
	Reminders   []domain.Reminder
}

// ScheduleAll persists the user's full reminder set and replaces their live
// jobs with it. Persistence happens first: if the store rejects the set, the
// previously armed jobs stay as they were.
func (uc *ReminderUsecase) ScheduleAll(ctx context.Context, input ScheduleAllInput) (int, error) {
	if input.UserID == "" {
		return 0, domain.ErrMissingUserID
	}

	for i := range input.Medications {
		input.Medications[i].UserID = input.UserID
	}

	// Reminders whose medication_id doesn't resolve are dropped here, before
	// persistence: the reminders table FK-references medications, so letting
	// one through would roll back the whole set instead of skipping the one
	// bad entry.
	known := make(map[string]struct{}, len(input.Medications))
	for _, m := range input.Medications {
		known[m.ID] = struct{}{}
	}
	reminders := make([]domain.Reminder, 0, len(input.Reminders))
	for _, rem := range input.Reminders {
		if _, ok := known[rem.MedicationID]; !ok {
			uc.logger.WarnContext(ctx, "reminder references unknown medication, dropping",
				"user_id", input.UserID, "reminder_id", rem.ID, "medication_id", rem.MedicationID)
			continue
		}
		rem.UserID = input.UserID
		reminders = append(reminders, rem)
	}

	set := repository.ReminderSet{
		Medications: input.Medications,
		Reminders:   reminders,
	}
	if err := uc.store.ReplaceSet(ctx, input.UserID, set); err != nil {
		return 0, fmt.Errorf("persist reminder set: %w", err)
	}

	return uc.scheduler.ScheduleAll(input.UserID, input.Medications, reminders), nil
}

// CancelReminder removes one reminder everywhere: from storage and from the
// live schedule across all its weekdays.
func (uc *ReminderUsecase) CancelReminder(ctx context.Context, userID, reminderID string) error {
	if userID == "" {
		return domain.ErrMissingUserID
	}
	if err := uc.store.DeleteReminder(ctx, userID, reminderID); err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}
	uc.scheduler.CancelReminder(userID, reminderID)
	return nil
}

// ClearUser drops everything for the user — stored set and live jobs. Called
// on logout and when the user disables notifications.
func (uc *ReminderUsecase) ClearUser(ctx context.Context, userID string) error {
	if userID == "" {
		return domain.ErrMissingUserID
	}
	if err := uc.store.DeleteSet(ctx, userID); err != nil {
		return fmt.Errorf("delete reminder set: %w", err)
	}
	uc.scheduler.ClearUser(userID)
	return nil
}

// SendTest pushes a synthetic reminder through the real delivery chain so the
// user can verify their device setup end to end.
func (uc *ReminderUsecase) SendTest(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", domain.ErrMissingUserID
	}

	med := domain.Medication{
		ID:     "test",
		UserID: userID,
		Name:   "Test notification",
		Dosage: "1",
		Units:  "dose",
	}
	rem := domain.Reminder{
		ID:           "test",
		UserID:       userID,
		MedicationID: "test",
		Time:         time.Now().Format("15:04"),
		Enabled:      true,
	}

	outcome := uc.dispatcher.Deliver(ctx, userID, med, rem)
	if !outcome.Delivered {
		uc.logger.WarnContext(ctx, "test notification failed",
			"user_id", userID, "channel", outcome.Channel, "error", outcome.Err)
		return "", domain.ErrDeliveryFailed
	}
	return outcome.MessageID, nil
}

// Rehydrate rebuilds the live schedule from storage for every user with a
// persisted set. Run at boot and by the periodic sweep; per-user failures are
// logged and skipped so one broken set cannot block the rest.
func (uc *ReminderUsecase) Rehydrate(ctx context.Context) (int, error) {
	userIDs, err := uc.store.ListUserIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users with reminders: %w", err)
	}

	resynced := 0
	for _, userID := range userIDs {
		set, err := uc.store.GetSet(ctx, userID)
		if err != nil {
			uc.logger.ErrorContext(ctx, "failed to load reminder set, skipping user",
				"user_id", userID, "error", err)
			continue
		}
		uc.scheduler.ScheduleAll(userID, set.Medications, set.Reminders)
		resynced++
	}

	uc.logger.InfoContext(ctx, "schedule rehydrated", "users", resynced, "total", len(userIDs))
	return resynced, nil
}

// Deliveries returns the user's most recent delivery attempts, newest first.
func (uc *ReminderUsecase) Deliveries(ctx context.Context, userID string, limit int) ([]*domain.Delivery, error) {
	if userID == "" {
		return nil, domain.ErrMissingUserID
	}
	if limit <= 0 {
		limit = defaultDeliveryLimit
	}
	if limit > maxDeliveryLimit {
		limit = maxDeliveryLimit
	}
	return uc.deliveries.ListByUser(ctx, userID, limit)
}
