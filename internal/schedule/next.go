// Package schedule computes when weekly recurring reminders fire.
package schedule

import (
	"strconv"
	"strings"
	"time"

	"github.com/dosepilot/reminder-service/internal/domain"
)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday maps a lowercase weekday name ("monday") to time.Weekday.
// Matching is case-insensitive; anything else is ErrInvalidWeekday.
func ParseWeekday(name string) (time.Weekday, error) {
	wd, ok := weekdays[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, domain.ErrInvalidWeekday
	}
	return wd, nil
}

// ParseTimeOfDay parses "HH:MM" (24-hour) into hour and minute.
func ParseTimeOfDay(s string) (hour, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, domain.ErrInvalidTime
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, domain.ErrInvalidTime
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, domain.ErrInvalidTime
	}
	return hour, minute, nil
}

// NextOccurrence returns the smallest instant strictly after now whose weekday
// is wd and whose wall-clock time is hour:minute:00 in now's location. An
// occurrence landing exactly on now counts as already passed and rolls over a
// full week.
func NextOccurrence(wd time.Weekday, hour, minute int, now time.Time) time.Time {
	daysAhead := (int(wd) - int(now.Weekday()) + 7) % 7
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	next = next.AddDate(0, 0, daysAhead)
	if !next.After(now) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}
