package domain

import (
	"errors"
	"time"
)

var ErrNoDevice = errors.New("no registered device for user")

// Device is a push registration: the token the push gateway needs to reach the
// user. One row per (user, token); LastSeenAt drives stale-token pruning.
type Device struct {
	ID         string
	UserID     string
	Token      string
	Platform   string
	CreatedAt  time.Time
	LastSeenAt time.Time
}
