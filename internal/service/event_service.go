package service

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/kizunaapp/kizuna/internal/calendar"
	"github.com/kizunaapp/kizuna/internal/clients/caldav"
	"github.com/kizunaapp/kizuna/internal/domain"
	"github.com/kizunaapp/kizuna/internal/reminder"
	"github.com/kizunaapp/kizuna/internal/storage"
)

// EventService owns calendar event writes and keeps the reminder
// scheduler and the optional external calendar consistent with every
// edit. Reads hand snapshots to the aggregation functions; a store
// read failure degrades to an empty result with a logged warning.
type EventService struct {
	storage   *storage.Storage
	reminders *reminder.Scheduler
	external  *caldav.Client // nil or unconfigured means no push
}

func NewEventService(s *storage.Storage, r *reminder.Scheduler, external *caldav.Client) *EventService {
	return &EventService{
		storage:   s,
		reminders: r,
		external:  external,
	}
}

// Create stores a normalized event, schedules its reminder and pushes
// it to the external calendar when configured.
func (s *EventService) Create(event *domain.CalendarEvent) error {
	event.Title = strings.TrimSpace(event.Title)
	if event.Title == "" {
		return errors.New("event title cannot be empty")
	}
	if event.StartAt.IsZero() {
		return errors.New("event start is required")
	}
	event.Normalize()

	if err := s.storage.CreateEvent(event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}

	if err := s.reminders.Schedule(event); err != nil {
		log.Printf("Warning: schedule reminder for event %d: %v", event.ID, err)
	}

	s.pushExternal(event)
	return nil
}

// Update stores the edit and replaces the reminder. The pending
// request is swapped, never duplicated: an edit that moves the start
// moves the trigger, an edit that drops the offset cancels it.
func (s *EventService) Update(event *domain.CalendarEvent) error {
	event.Normalize()
	if err := s.storage.UpdateEvent(event); err != nil {
		return fmt.Errorf("update event: %w", err)
	}

	if err := s.reminders.Reschedule(event); err != nil {
		log.Printf("Warning: reschedule reminder for event %d: %v", event.ID, err)
	}

	s.pushExternal(event)
	return nil
}

// Delete removes the event and cancels its reminder so no
// notification outlives the event.
func (s *EventService) Delete(eventID int64) error {
	if err := s.reminders.Cancel(eventID); err != nil {
		log.Printf("Warning: cancel reminder for event %d: %v", eventID, err)
	}
	if err := s.storage.DeleteEvent(eventID); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	s.removeExternal(eventID)
	return nil
}

// DeleteAllForContact removes every event the contact participates
// in, cancelling all affected reminders first. Skipping the cancel
// here is how orphaned notifications happen.
func (s *EventService) DeleteAllForContact(contactID int64) error {
	events, err := s.storage.ListEventsForContact(contactID)
	if err != nil {
		return fmt.Errorf("list events for contact: %w", err)
	}

	ids := make([]int64, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	s.reminders.CancelAll(ids)

	for _, e := range events {
		if err := s.storage.DeleteEvent(e.ID); err != nil {
			return fmt.Errorf("delete event %d: %w", e.ID, err)
		}
		s.removeExternal(e.ID)
	}
	return nil
}

func (s *EventService) Get(eventID int64) (*domain.CalendarEvent, error) {
	return s.storage.GetEvent(eventID)
}

// Snapshot returns all events for one aggregation pass. Read failures
// are absorbed here: the calendar keeps rendering, just empty.
func (s *EventService) Snapshot() []*domain.CalendarEvent {
	events, err := s.storage.ListEvents()
	if err != nil {
		log.Printf("Warning: list events: %v", err)
		return nil
	}
	return events
}

// EventsForDay returns the selected day's events
func (s *EventService) EventsForDay(day time.Time) []*domain.CalendarEvent {
	return calendar.EventsOn(s.Snapshot(), day)
}

// Upcoming returns events in [from, from+windowDays)
func (s *EventService) Upcoming(windowDays int, from time.Time) []*domain.CalendarEvent {
	return calendar.Upcoming(s.Snapshot(), windowDays, from)
}

// Search filters the snapshot by optional day and search text
func (s *EventService) Search(day *time.Time, text string) []*domain.CalendarEvent {
	return calendar.Filter(s.Snapshot(), calendar.Predicate{Day: day, Search: text})
}

// MonthBuckets builds the 42-cell grid for the anchor month and
// annotates each cell with the day's events and birthdays.
func (s *EventService) MonthBuckets(anchor time.Time, weekStart time.Weekday, now, selected time.Time, birthdays []calendar.BirthdayOccurrence) []calendar.DayBucket {
	cells := calendar.BuildMonthGrid(anchor, weekStart, now, selected)
	return calendar.BucketsForGrid(cells, s.Snapshot(), birthdays)
}

func (s *EventService) pushExternal(event *domain.CalendarEvent) {
	if s.external == nil || !s.external.IsConfigured() {
		return
	}
	// One-way push: failures are logged, never read back or retried.
	pushed := &caldav.Event{
		UID:         fmt.Sprintf("event-%d@kizuna", event.ID),
		Summary:     event.Title,
		Description: event.Details,
		Location:    event.Location,
		StartTime:   event.StartAt,
		EndTime:     event.EndAt,
		AllDay:      event.AllDay,
	}
	if err := s.external.AddEvent(pushed); err != nil {
		log.Printf("Warning: push event %d to external calendar: %v", event.ID, err)
	}
}

func (s *EventService) removeExternal(eventID int64) {
	if s.external == nil || !s.external.IsConfigured() {
		return
	}
	uid := fmt.Sprintf("event-%d@kizuna", eventID)
	if err := s.external.RemoveEvent(uid); err != nil {
		log.Printf("Warning: remove event %d from external calendar: %v", eventID, err)
	}
}
