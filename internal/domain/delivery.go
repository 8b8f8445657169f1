package domain

import (
	"errors"
	"time"
)

var ErrDeliveryFailed = errors.New("notification delivery failed")

type Delivery struct {
	ID           string
	UserID       string
	ReminderID   string
	MedicationID string
	Channel      string
	Delivered    bool
	Error        *string
	FiredAt      time.Time
	DurationMS   int64
}
