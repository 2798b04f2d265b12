package scheduler

import (
	"fmt"
	"time"

	"github.com/desertthunder/ytsnap/internal/shared"
	"github.com/robfig/cron/v3"
)

// specParser parses five-field recurrence expressions
// (minute hour day-of-month month day-of-week), evaluated in UTC.
var specParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule checks that expr is a parseable five-field cron
// expression. Returns [shared.ErrInvalidSchedule] when it is not.
func ValidateSchedule(expr string) error {
	if _, err := specParser.Parse(expr); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidSchedule, err)
	}
	return nil
}

// Frequency selects how often a generated schedule fires.
type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
)

// SchedulePicker is a friendly front-end for users who do not write cron.
// Weekday applies to weekly schedules, DayOfMonth to monthly ones.
type SchedulePicker struct {
	Frequency  Frequency
	Minute     int
	Hour       int
	Weekday    time.Weekday
	DayOfMonth int
}

// BuildSchedule converts a picker into a five-field cron expression.
//
// Generation is one-way: the expression becomes the task's single source of
// truth and is never parsed back into picker form.
func BuildSchedule(p SchedulePicker) (string, error) {
	if p.Minute < 0 || p.Minute > 59 {
		return "", fmt.Errorf("%w: minute %d out of range", shared.ErrInvalidSchedule, p.Minute)
	}
	if p.Hour < 0 || p.Hour > 23 {
		return "", fmt.Errorf("%w: hour %d out of range", shared.ErrInvalidSchedule, p.Hour)
	}

	switch p.Frequency {
	case Daily:
		return fmt.Sprintf("%d %d * * *", p.Minute, p.Hour), nil
	case Weekly:
		if p.Weekday < time.Sunday || p.Weekday > time.Saturday {
			return "", fmt.Errorf("%w: weekday %d out of range", shared.ErrInvalidSchedule, p.Weekday)
		}
		return fmt.Sprintf("%d %d * * %d", p.Minute, p.Hour, p.Weekday), nil
	case Monthly:
		if p.DayOfMonth < 1 || p.DayOfMonth > 31 {
			return "", fmt.Errorf("%w: day of month %d out of range", shared.ErrInvalidSchedule, p.DayOfMonth)
		}
		return fmt.Sprintf("%d %d %d * *", p.Minute, p.Hour, p.DayOfMonth), nil
	default:
		return "", fmt.Errorf("%w: unknown frequency %q", shared.ErrInvalidSchedule, p.Frequency)
	}
}
