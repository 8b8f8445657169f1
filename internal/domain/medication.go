package domain

import (
	"errors"
	"time"
)

var ErrMissingUserID = errors.New("user id is required")

type Medication struct {
	ID        string
	UserID    string
	Name      string
	Dosage    string
	Units     string
	Color     *string
	StartDate time.Time
	EndDate   *time.Time
	CreatedAt time.Time
}
