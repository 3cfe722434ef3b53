package domain

import "time"

// DefaultEventDuration is applied when a timed event has no explicit end
const DefaultEventDuration = time.Hour

// CalendarEvent represents a stored calendar entry
type CalendarEvent struct {
	ID             int64
	Title          string
	Details        string
	Location       string
	StartAt        time.Time
	EndAt          time.Time // zero means "not set" until Normalize
	AllDay         bool
	ReminderOffset *int // minutes before StartAt; nil means no reminder
	ParticipantIDs []int64
	GroupID        *int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Normalize resolves optional fields to their documented defaults.
// A timed event without an end gets StartAt + one hour; all-day events
// keep a zero EndAt. Call sites must not re-implement these defaults.
func (e *CalendarEvent) Normalize() {
	if e.EndAt.IsZero() && !e.AllDay {
		e.EndAt = e.StartAt.Add(DefaultEventDuration)
	}
	if !e.AllDay && e.EndAt.Before(e.StartAt) {
		e.EndAt = e.StartAt
	}
}

// HasReminder returns true if a reminder offset is set
func (e *CalendarEvent) HasReminder() bool {
	return e.ReminderOffset != nil
}

// ReminderAt returns the instant the reminder should fire.
// The second return value is false when no reminder is set.
func (e *CalendarEvent) ReminderAt() (time.Time, bool) {
	if e.ReminderOffset == nil {
		return time.Time{}, false
	}
	return e.StartAt.Add(-time.Duration(*e.ReminderOffset) * time.Minute), true
}

// Duration returns the event length, defaulting to one hour
func (e *CalendarEvent) Duration() time.Duration {
	if e.EndAt.IsZero() || e.EndAt.Before(e.StartAt) {
		return DefaultEventDuration
	}
	return e.EndAt.Sub(e.StartAt)
}

// OnDay reports whether the event starts on the given calendar day,
// compared by local date regardless of the time component.
func (e *CalendarEvent) OnDay(day time.Time) bool {
	y1, m1, d1 := e.StartAt.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
