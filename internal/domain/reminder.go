package domain

import (
	"errors"
	"time"
)

var (
	ErrReminderNotFound = errors.New("reminder not found")
	ErrInvalidTime      = errors.New("time must be in HH:MM format")
	ErrInvalidWeekday   = errors.New("unknown weekday name")
)

// Reminder is a user-configured recurring alert: a time-of-day plus a set of
// weekdays on which a medication should be taken. MedicationID must resolve to
// one of the user's medications for the reminder to be schedulable.
type Reminder struct {
	ID           string
	UserID       string
	MedicationID string
	Time         string // "HH:MM", 24-hour
	Days         []string
	Enabled      bool
	Notes        *string
	CreatedAt    time.Time
}
