package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dosepilot/reminder-service/internal/domain"
	"github.com/dosepilot/reminder-service/internal/metrics"
	"github.com/dosepilot/reminder-service/internal/notify"
	"github.com/dosepilot/reminder-service/internal/schedule"
)

type jobState int

const (
	stateArmed jobState = iota
	stateFiring
	stateCancelled
)

// Job is one firing obligation for a (reminder, weekday) pair. It owns its
// timer: after every fire it recomputes the next weekly occurrence and re-arms
// itself, whatever the delivery outcome — a missed notification must not
// disable future ones. Cancel is terminal and idempotent; a cancel that lands
// mid-delivery lets the delivery finish but suppresses the re-arm.
//
// The reminder and medication are captured at schedule time. Edits only take
// effect through the next replace-all pass.
type Job struct {
	userID     string
	reminder   domain.Reminder
	medication domain.Medication
	weekday    time.Weekday
	hour       int
	minute     int

	dispatcher notify.Dispatcher
	logger     *slog.Logger
	loc        *time.Location
	now        func() time.Time
	after      func(time.Duration, func()) *time.Timer

	mu     sync.Mutex
	state  jobState
	fireAt time.Time
	timer  *time.Timer
}

func (j *Job) ReminderID() string    { return j.reminder.ID }
func (j *Job) MedicationID() string  { return j.medication.ID }
func (j *Job) Weekday() time.Weekday { return j.weekday }

// FireAt returns the next scheduled firing instant.
func (j *Job) FireAt() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fireAt
}

// Live reports whether the job can still fire.
func (j *Job) Live() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state != stateCancelled
}

// arm computes the first fire time and starts the timer. Called exactly once,
// by the registry, before the job is visible to anyone else.
func (j *Job) arm() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.rearmLocked()
	metrics.JobsLive.Inc()
}

func (j *Job) rearmLocked() {
	now := j.now().In(j.loc)
	j.fireAt = schedule.NextOccurrence(j.weekday, j.hour, j.minute, now)
	j.timer = j.after(j.fireAt.Sub(now), j.fire)
	j.state = stateArmed
}

func (j *Job) fire() {
	j.mu.Lock()
	if j.state != stateArmed {
		j.mu.Unlock()
		return
	}
	j.state = stateFiring
	j.mu.Unlock()

	// No timeout here: the channel owns its own deadline behavior, and the
	// scheduler never retries within a firing — a miss waits for next week.
	outcome := j.dispatcher.Deliver(context.Background(), j.userID, j.medication, j.reminder)
	if outcome.Delivered {
		j.logger.Info("reminder delivered",
			"user_id", j.userID,
			"reminder_id", j.reminder.ID,
			"medication", j.medication.Name,
			"channel", outcome.Channel,
			"message_id", outcome.MessageID,
		)
	} else {
		j.logger.Warn("reminder delivery failed, will retry next week",
			"user_id", j.userID,
			"reminder_id", j.reminder.ID,
			"channel", outcome.Channel,
			"error", outcome.Err,
		)
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.state == stateCancelled {
		// Cancelled while delivering — do not resurrect.
		return
	}
	j.rearmLocked()
}

// Cancel releases the timer and retires the job. Safe to call more than once.
func (j *Job) Cancel() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.state == stateCancelled {
		return
	}
	if j.timer != nil {
		j.timer.Stop()
	}
	j.state = stateCancelled
	metrics.JobsLive.Dec()
}
