package scheduler

import (
	"log/slog"
	"time"

	"github.com/dosepilot/reminder-service/internal/domain"
	"github.com/dosepilot/reminder-service/internal/metrics"
	"github.com/dosepilot/reminder-service/internal/notify"
	"github.com/dosepilot/reminder-service/internal/schedule"
)

// Orchestrator is the façade the rest of the service schedules through: it
// turns a user's full reminder+medication set into registry jobs and owns the
// cancel and clear operations. Replace-all is the only update path.
type Orchestrator struct {
	registry   *Registry
	dispatcher notify.Dispatcher
	logger     *slog.Logger
	loc        *time.Location

	// swapped in tests
	now   func() time.Time
	after func(time.Duration, func()) *time.Timer
}

func NewOrchestrator(dispatcher notify.Dispatcher, loc *time.Location, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		registry:   NewRegistry(),
		dispatcher: dispatcher,
		logger:     logger.With("component", "orchestrator"),
		loc:        loc,
		now:        time.Now,
		after:      time.AfterFunc,
	}
}

// ScheduleAll replaces the user's jobs with one job per enabled reminder per
// selected weekday. Bad entries (unknown medication, unparsable time or
// weekday, expired course) are skipped and logged, never fatal — one bad
// reminder must not sink the rest of the batch. Returns the number of jobs
// armed.
func (o *Orchestrator) ScheduleAll(userID string, meds []domain.Medication, rems []domain.Reminder) int {
	metrics.SchedulePassesTotal.Inc()

	byID := make(map[string]domain.Medication, len(meds))
	for _, m := range meds {
		byID[m.ID] = m
	}

	now := o.now().In(o.loc)

	var jobs []*Job
	for _, rem := range rems {
		if !rem.Enabled {
			continue
		}
		med, ok := byID[rem.MedicationID]
		if !ok {
			o.logger.Warn("reminder references unknown medication, skipping",
				"user_id", userID, "reminder_id", rem.ID, "medication_id", rem.MedicationID)
			continue
		}
		if med.EndDate != nil && now.After(*med.EndDate) {
			o.logger.Info("medication course ended, skipping reminder",
				"user_id", userID, "reminder_id", rem.ID, "medication", med.Name)
			continue
		}
		hour, minute, err := schedule.ParseTimeOfDay(rem.Time)
		if err != nil {
			o.logger.Warn("reminder has invalid time, skipping",
				"user_id", userID, "reminder_id", rem.ID, "time", rem.Time)
			continue
		}
		for _, day := range rem.Days {
			wd, err := schedule.ParseWeekday(day)
			if err != nil {
				o.logger.Warn("reminder has invalid weekday, skipping day",
					"user_id", userID, "reminder_id", rem.ID, "day", day)
				continue
			}
			jobs = append(jobs, &Job{
				userID:     userID,
				reminder:   rem,
				medication: med,
				weekday:    wd,
				hour:       hour,
				minute:     minute,
				dispatcher: o.dispatcher,
				logger:     o.logger,
				loc:        o.loc,
				now:        o.now,
				after:      o.after,
			})
		}
	}

	o.registry.ReplaceAll(userID, jobs)
	metrics.JobsScheduledTotal.Add(float64(len(jobs)))
	o.logger.Info("reminders scheduled", "user_id", userID, "jobs", len(jobs))
	return len(jobs)
}

// CancelReminder cancels one reminder's jobs across all weekdays.
func (o *Orchestrator) CancelReminder(userID, reminderID string) int {
	n := o.registry.CancelReminder(userID, reminderID)
	o.logger.Info("reminder cancelled", "user_id", userID, "reminder_id", reminderID, "jobs", n)
	return n
}

// ClearUser drops every job for the user (logout / notifications disabled).
func (o *Orchestrator) ClearUser(userID string) int {
	n := o.registry.Clear(userID)
	o.logger.Info("user jobs cleared", "user_id", userID, "jobs", n)
	return n
}

// Live returns the number of armed jobs for the user.
func (o *Orchestrator) Live(userID string) int {
	return o.registry.Live(userID)
}

// Shutdown cancels all jobs across all users.
func (o *Orchestrator) Shutdown() {
	o.registry.Shutdown()
	o.logger.Info("scheduler shut down")
}
