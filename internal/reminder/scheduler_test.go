package reminder

import (
	"errors"
	"testing"
	"time"

	"github.com/kizunaapp/kizuna/internal/domain"
	"github.com/kizunaapp/kizuna/internal/notify"
)

var testNow = time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)

func newTestScheduler() (*Scheduler, *notify.Memory) {
	mem := notify.NewMemory()
	return New(mem, func() time.Time { return testNow }), mem
}

func eventWithReminder(id int64, start time.Time, offsetMinutes int) *domain.CalendarEvent {
	return &domain.CalendarEvent{
		ID:             id,
		Title:          "Lunch",
		StartAt:        start,
		ReminderOffset: &offsetMinutes,
	}
}

func pendingCount(t *testing.T, mem *notify.Memory) int {
	t.Helper()
	pending, err := mem.ListPending()
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	return len(pending)
}

func TestScheduleRegistersOneRequest(t *testing.T) {
	s, mem := newTestScheduler()
	event := eventWithReminder(42, testNow.Add(2*time.Hour), 30)

	if err := s.Schedule(event); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	pending, _ := mem.ListPending()
	if len(pending) != 1 {
		t.Fatalf("got %d pending, want 1", len(pending))
	}
	req := pending[0]
	if req.ID != "event_42" {
		t.Errorf("ID = %q, want event_42", req.ID)
	}
	if want := testNow.Add(90 * time.Minute); !req.TriggerAt.Equal(want) {
		t.Errorf("TriggerAt = %s, want %s", req.TriggerAt, want)
	}
	if req.Body != "Reminder: Lunch" {
		t.Errorf("Body = %q, want default body from title", req.Body)
	}
}

func TestScheduleTwiceKeepsOneRequest(t *testing.T) {
	s, mem := newTestScheduler()
	event := eventWithReminder(42, testNow.Add(2*time.Hour), 30)

	if err := s.Schedule(event); err != nil {
		t.Fatalf("first Schedule: %v", err)
	}
	if err := s.Schedule(event); err != nil {
		t.Fatalf("second Schedule: %v", err)
	}

	if n := pendingCount(t, mem); n != 1 {
		t.Errorf("got %d pending after double schedule, want 1", n)
	}
}

func TestRescheduleReplacesTrigger(t *testing.T) {
	s, mem := newTestScheduler()
	event := eventWithReminder(7, testNow.Add(2*time.Hour), 30) // fires 09:30
	if err := s.Schedule(event); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	event.StartAt = testNow.Add(3 * time.Hour) // moved an hour later, now fires 10:30
	if err := s.Reschedule(event); err != nil {
		t.Fatalf("Reschedule: %v", err)
	}

	pending, _ := mem.ListPending()
	if len(pending) != 1 {
		t.Fatalf("got %d pending after reschedule, want 1", len(pending))
	}
	if want := testNow.Add(150 * time.Minute); !pending[0].TriggerAt.Equal(want) {
		t.Errorf("TriggerAt = %s, want %s", pending[0].TriggerAt, want)
	}
}

func TestRescheduleCancelsWhenReminderRemoved(t *testing.T) {
	s, mem := newTestScheduler()
	event := eventWithReminder(7, testNow.Add(2*time.Hour), 30)
	if err := s.Schedule(event); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	event.ReminderOffset = nil
	if err := s.Reschedule(event); err != nil {
		t.Fatalf("Reschedule: %v", err)
	}

	if n := pendingCount(t, mem); n != 0 {
		t.Errorf("got %d pending after removing reminder, want 0", n)
	}
}

func TestSchedulePastDueIsSilentNoop(t *testing.T) {
	s, mem := newTestScheduler()

	tests := []struct {
		name  string
		event *domain.CalendarEvent
	}{
		{"trigger already past", eventWithReminder(1, testNow.Add(10*time.Minute), 30)},
		{"trigger exactly now", eventWithReminder(2, testNow.Add(30*time.Minute), 30)},
		{"no reminder set", &domain.CalendarEvent{ID: 3, Title: "x", StartAt: testNow.Add(time.Hour)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Schedule(tt.event); err != nil {
				t.Fatalf("Schedule: %v", err)
			}
		})
	}

	if n := pendingCount(t, mem); n != 0 {
		t.Errorf("got %d pending, want 0", n)
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	s, mem := newTestScheduler()
	event := eventWithReminder(5, testNow.Add(2*time.Hour), 15)
	if err := s.Schedule(event); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	if err := s.Cancel(5); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if err := s.Cancel(5); err != nil {
		t.Fatalf("second Cancel: %v", err)
	}
	if err := s.Cancel(999); err != nil {
		t.Fatalf("Cancel of unknown event: %v", err)
	}

	if n := pendingCount(t, mem); n != 0 {
		t.Errorf("got %d pending, want 0", n)
	}
}

func TestCancelAll(t *testing.T) {
	s, mem := newTestScheduler()
	for i := int64(1); i <= 3; i++ {
		if err := s.Schedule(eventWithReminder(i, testNow.Add(time.Duration(i)*time.Hour), 10)); err != nil {
			t.Fatalf("Schedule %d: %v", i, err)
		}
	}

	s.CancelAll([]int64{1, 2, 3, 4})

	if n := pendingCount(t, mem); n != 0 {
		t.Errorf("got %d pending after CancelAll, want 0", n)
	}
}

// deniedService simulates a notification channel that refused
// authorization at startup.
type deniedService struct {
	*notify.Memory
}

func (d *deniedService) RequestAuthorization() error {
	return errors.New("authorization denied")
}

func TestDeniedAuthorizationDisablesScheduling(t *testing.T) {
	mem := notify.NewMemory()
	s := New(&deniedService{Memory: mem}, func() time.Time { return testNow })

	event := eventWithReminder(42, testNow.Add(2*time.Hour), 30)
	if err := s.Schedule(event); err != nil {
		t.Fatalf("Schedule after denial should be a no-op, got %v", err)
	}
	if err := s.Cancel(42); err != nil {
		t.Fatalf("Cancel after denial should be a no-op, got %v", err)
	}

	if n := pendingCount(t, mem); n != 0 {
		t.Errorf("got %d pending from a denied scheduler, want 0", n)
	}
}

func TestRequestID(t *testing.T) {
	if got := RequestID(42); got != "event_42" {
		t.Errorf("RequestID(42) = %q, want event_42", got)
	}
}
