package repository

import (
	"context"

	"github.com/dosepilot/reminder-service/internal/domain"
)

// ReminderSet is one user's full submitted state. Replace-all is the only
// update path, so the store works in whole sets rather than row edits.
type ReminderSet struct {
	Medications []domain.Medication
	Reminders   []domain.Reminder
}

// Usecases depend on the interface, not the pgx implementation, so tests can
// inject fakes and the backing store can change without touching them.
type ReminderRepository interface {
	// ReplaceSet swaps the user's stored set atomically.
	ReplaceSet(ctx context.Context, userID string, set ReminderSet) error
	GetSet(ctx context.Context, userID string) (ReminderSet, error)
	DeleteReminder(ctx context.Context, userID, reminderID string) error
	DeleteSet(ctx context.Context, userID string) error
	// ListUserIDs returns every user with a stored set — rehydration input.
	ListUserIDs(ctx context.Context) ([]string, error)
}
