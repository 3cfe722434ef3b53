package reminder

import (
	"fmt"
	"log"
	"time"

	"github.com/kizunaapp/kizuna/internal/domain"
	"github.com/kizunaapp/kizuna/internal/notify"
)

// Scheduler keeps the pending-notification set consistent with event
// writes: at most one live request per event, replaced on edit and
// cancelled on delete. It holds no state of its own beyond the
// authorization flag; the notification service owns the pending set.
type Scheduler struct {
	service    notify.Service
	now        func() time.Time
	authorized bool
}

// New requests authorization once. A denial is not an error: the
// scheduler degrades to a permanent no-op and events stay visible.
func New(service notify.Service, now func() time.Time) *Scheduler {
	if now == nil {
		now = time.Now
	}
	s := &Scheduler{service: service, now: now}
	if err := service.RequestAuthorization(); err != nil {
		log.Printf("Warning: notifications unavailable, reminders disabled: %v", err)
		return s
	}
	s.authorized = true
	return s
}

// RequestID returns the deterministic notification ID for an event
func RequestID(eventID int64) string {
	return fmt.Sprintf("event_%d", eventID)
}

// Schedule registers a reminder for the event. It is a no-op when the
// event has no reminder offset or the trigger is already past; past
// due is policy, not an error. Any pending request for the same event
// is replaced.
func (s *Scheduler) Schedule(event *domain.CalendarEvent) error {
	if !s.authorized {
		return nil
	}

	triggerAt, ok := event.ReminderAt()
	if !ok || !triggerAt.After(s.now()) {
		return nil
	}

	body := event.Details
	if body == "" {
		body = "Reminder: " + event.Title
	}

	req := notify.Request{
		ID:        RequestID(event.ID),
		TriggerAt: triggerAt,
		Title:     event.Title,
		Body:      body,
	}
	if err := s.service.Submit(req); err != nil {
		return fmt.Errorf("submit reminder: %w", err)
	}
	return nil
}

// Cancel removes the event's pending reminder, if any
func (s *Scheduler) Cancel(eventID int64) error {
	if !s.authorized {
		return nil
	}
	if err := s.service.Cancel(RequestID(eventID)); err != nil {
		return fmt.Errorf("cancel reminder: %w", err)
	}
	return nil
}

// Reschedule replaces the event's reminder after an edit. When the
// edit removed the reminder or pushed the trigger into the past the
// old request is cancelled and nothing new is registered. Submit
// replaces by ID, so the usual edit path swaps the request in one
// step; only the cancel branch has the brief no-reminder window.
func (s *Scheduler) Reschedule(event *domain.CalendarEvent) error {
	if !s.authorized {
		return nil
	}

	if triggerAt, ok := event.ReminderAt(); !ok || !triggerAt.After(s.now()) {
		return s.Cancel(event.ID)
	}
	return s.Schedule(event)
}

// CancelAll removes reminders for every given event. Bulk deletes
// must go through here so no notification outlives its event.
func (s *Scheduler) CancelAll(eventIDs []int64) {
	for _, id := range eventIDs {
		if err := s.Cancel(id); err != nil {
			log.Printf("Warning: cancel reminder for event %d: %v", id, err)
		}
	}
}
