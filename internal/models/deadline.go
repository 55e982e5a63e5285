package models

import (
	"fmt"
	"time"
)

// CalendarDate returns the calendar day of t, as seen in loc, anchored at
// midnight UTC. Deadlines are stored in this form.
func CalendarDate(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WallClock re-labels the wall clock of now in loc as UTC, so that it can be
// compared against stored deadlines.
func WallClock(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	l := now.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), l.Hour(), l.Minute(), l.Second(), l.Nanosecond(), time.UTC)
}

// DaysUntil counts whole calendar days from today (in loc) to the deadline.
// Negative values mean the deadline has passed.
func DaysUntil(deadline, now time.Time, loc *time.Location) int {
	due := CalendarDate(deadline, time.UTC)
	today := CalendarDate(now, loc)
	return int(due.Sub(today).Hours() / 24)
}

// RemainingDays renders the human-readable distance to a deadline. It is
// computed when a task is serialized and never stored.
func RemainingDays(deadline, now time.Time, loc *time.Location) string {
	days := DaysUntil(deadline, now, loc)
	switch {
	case days > 0:
		return fmt.Sprintf("%d %s remaining", days, pluralDays(days))
	case days == 0:
		return "today"
	default:
		return fmt.Sprintf("overdue by %d %s", -days, pluralDays(-days))
	}
}

func pluralDays(n int) string {
	if n == 1 {
		return "day"
	}
	return "days"
}

// Clock supplies the current instant and the application timezone used for
// calendar-day decisions.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return Clock{Now: time.Now, Location: loc}
}

func (c Clock) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// Today is the current calendar date in the clock's timezone.
func (c Clock) Today() time.Time {
	return CalendarDate(c.now(), c.Location)
}

// Instant is the current wall-clock time in the clock's timezone, in the
// form stored deadlines are compared against.
func (c Clock) Instant() time.Time {
	return WallClock(c.now(), c.Location)
}

func (c Clock) RemainingDays(deadline time.Time) string {
	return RemainingDays(deadline, c.now(), c.Location)
}
