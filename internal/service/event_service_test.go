package service

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/kizunaapp/kizuna/internal/domain"
	"github.com/kizunaapp/kizuna/internal/notify"
	"github.com/kizunaapp/kizuna/internal/reminder"
	"github.com/kizunaapp/kizuna/internal/storage"
)

var serviceNow = time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)

type fixture struct {
	events   *EventService
	contacts *ContactService
	comms    *CommunicationService
	notifier *notify.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := storage.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	notifier := notify.NewStore(store)
	reminders := reminder.New(notifier, func() time.Time { return serviceNow })
	events := NewEventService(store, reminders, nil)
	contacts := NewContactService(store, events)
	comms := NewCommunicationService(store)

	return &fixture{events: events, contacts: contacts, comms: comms, notifier: notifier}
}

func (f *fixture) pendingReminders(t *testing.T) []notify.Request {
	t.Helper()
	pending, err := f.notifier.ListPending()
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	return pending
}

func TestCreateEventSchedulesReminder(t *testing.T) {
	f := newFixture(t)

	offset := 30
	event := &domain.CalendarEvent{
		Title:          "Lunch",
		StartAt:        serviceNow.Add(2 * time.Hour),
		ReminderOffset: &offset,
	}
	if err := f.events.Create(event); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if event.EndAt.IsZero() {
		t.Error("Create should normalize the missing end time")
	}

	pending := f.pendingReminders(t)
	if len(pending) != 1 {
		t.Fatalf("got %d pending reminders, want 1", len(pending))
	}
	if want := serviceNow.Add(90 * time.Minute); !pending[0].TriggerAt.Equal(want) {
		t.Errorf("TriggerAt = %s, want %s", pending[0].TriggerAt, want)
	}
}

func TestCreateEventValidation(t *testing.T) {
	f := newFixture(t)

	if err := f.events.Create(&domain.CalendarEvent{Title: "  ", StartAt: serviceNow}); err == nil {
		t.Error("blank title should be rejected")
	}
	if err := f.events.Create(&domain.CalendarEvent{Title: "Lunch"}); err == nil {
		t.Error("missing start should be rejected")
	}
}

func TestUpdateEventReplacesReminder(t *testing.T) {
	f := newFixture(t)

	offset := 30
	event := &domain.CalendarEvent{
		Title:          "Lunch",
		StartAt:        serviceNow.Add(90 * time.Minute),
		ReminderOffset: &offset,
	}
	if err := f.events.Create(event); err != nil {
		t.Fatalf("Create: %v", err)
	}

	event.StartAt = serviceNow.Add(150 * time.Minute)
	event.EndAt = time.Time{}
	if err := f.events.Update(event); err != nil {
		t.Fatalf("Update: %v", err)
	}

	pending := f.pendingReminders(t)
	if len(pending) != 1 {
		t.Fatalf("got %d pending after update, want exactly 1", len(pending))
	}
	if want := serviceNow.Add(2 * time.Hour); !pending[0].TriggerAt.Equal(want) {
		t.Errorf("TriggerAt = %s, want moved trigger %s", pending[0].TriggerAt, want)
	}
}

func TestDeleteEventCancelsReminder(t *testing.T) {
	f := newFixture(t)

	offset := 15
	event := &domain.CalendarEvent{
		Title:          "Call",
		StartAt:        serviceNow.Add(time.Hour),
		ReminderOffset: &offset,
	}
	if err := f.events.Create(event); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := f.events.Delete(event.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if got, err := f.events.Get(event.ID); err != nil || got != nil {
		t.Errorf("Get after delete = %v, %v, want nil, nil", got, err)
	}
	if pending := f.pendingReminders(t); len(pending) != 0 {
		t.Errorf("got %d pending after delete, want 0", len(pending))
	}
}

func TestDeleteContactCancelsEventReminders(t *testing.T) {
	f := newFixture(t)

	contact := &domain.Contact{FirstName: "Aki"}
	if err := f.contacts.Create(contact); err != nil {
		t.Fatalf("Create contact: %v", err)
	}

	offset := 30
	event := &domain.CalendarEvent{
		Title:          "Lunch",
		StartAt:        serviceNow.Add(2 * time.Hour),
		ReminderOffset: &offset,
		ParticipantIDs: []int64{contact.ID},
	}
	if err := f.events.Create(event); err != nil {
		t.Fatalf("Create event: %v", err)
	}

	if err := f.contacts.Delete(contact.ID); err != nil {
		t.Fatalf("Delete contact: %v", err)
	}

	if got, err := f.events.Get(event.ID); err != nil || got != nil {
		t.Errorf("event should be gone with its contact, got %v, %v", got, err)
	}
	if pending := f.pendingReminders(t); len(pending) != 0 {
		t.Errorf("got %d pending after contact delete, want 0", len(pending))
	}
}

func TestUpcomingAndSearch(t *testing.T) {
	f := newFixture(t)

	titles := map[string]time.Time{
		"Dentist":  serviceNow.Add(2 * time.Hour),
		"Lunch":    serviceNow.AddDate(0, 0, 3),
		"Far away": serviceNow.AddDate(0, 0, 40),
	}
	for title, start := range titles {
		if err := f.events.Create(&domain.CalendarEvent{Title: title, StartAt: start}); err != nil {
			t.Fatalf("Create %q: %v", title, err)
		}
	}

	week := f.events.Upcoming(7, serviceNow)
	if len(week) != 2 {
		t.Errorf("Upcoming(7) = %d events, want 2", len(week))
	}

	found := f.events.Search(nil, "dent")
	if len(found) != 1 || found[0].Title != "Dentist" {
		t.Errorf("Search(dent) = %v", found)
	}

	day := serviceNow
	todays := f.events.Search(&day, "")
	if len(todays) != 1 || todays[0].Title != "Dentist" {
		t.Errorf("Search(today) = %v", todays)
	}
}

func TestBirthdayOccurrencesAndDigest(t *testing.T) {
	f := newFixture(t)

	today := time.Date(1990, 6, 10, 0, 0, 0, 0, time.UTC)
	later := time.Date(1985, 11, 1, 0, 0, 0, 0, time.UTC)
	if err := f.contacts.Create(&domain.Contact{FirstName: "Aki", Birthday: &today}); err != nil {
		t.Fatal(err)
	}
	if err := f.contacts.Create(&domain.Contact{FirstName: "Yui", Birthday: &later}); err != nil {
		t.Fatal(err)
	}
	if err := f.contacts.Create(&domain.Contact{FirstName: "Ken"}); err != nil {
		t.Fatal(err)
	}

	occurrences := f.contacts.BirthdayOccurrences(serviceNow)
	if len(occurrences) != 2 {
		t.Fatalf("got %d occurrences, want 2 (no projection without a birth date)", len(occurrences))
	}
	if occurrences[0].Name != "Aki" || occurrences[0].Age != 34 {
		t.Errorf("first occurrence = %+v, want Aki turning 34 today", occurrences[0])
	}

	if err := f.events.Create(&domain.CalendarEvent{Title: "Party", StartAt: serviceNow.Add(10 * time.Hour)}); err != nil {
		t.Fatal(err)
	}

	home := NewHomeService(f.events, f.contacts)
	digest := home.BuildDigest(serviceNow)
	if len(digest.TodayEvents) != 1 || digest.TodayEvents[0].Title != "Party" {
		t.Errorf("TodayEvents = %v", digest.TodayEvents)
	}
	if len(digest.TodayBirthdays) != 1 || digest.TodayBirthdays[0].Name != "Aki" {
		t.Errorf("TodayBirthdays = %v", digest.TodayBirthdays)
	}
	if digest.WeekEventCount != 1 {
		t.Errorf("WeekEventCount = %d, want 1", digest.WeekEventCount)
	}
}

func TestCommunicationLog(t *testing.T) {
	f := newFixture(t)

	contact := &domain.Contact{FirstName: "Aki"}
	if err := f.contacts.Create(contact); err != nil {
		t.Fatal(err)
	}

	comm, err := f.comms.Log(contact.ID, domain.CommCall, serviceNow, "caught up")
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if comm.ID == 0 {
		t.Error("Log did not assign an id")
	}

	if _, err := f.comms.Log(contact.ID, "carrier-pigeon", serviceNow, ""); err == nil {
		t.Error("unknown communication type should be rejected")
	}
	if _, err := f.comms.Log(999, domain.CommCall, serviceNow, ""); err == nil {
		t.Error("unknown contact should be rejected")
	}

	list, err := f.comms.ListForContact(contact.ID)
	if err != nil {
		t.Fatalf("ListForContact: %v", err)
	}
	if len(list) != 1 || list[0].Notes != "caught up" {
		t.Errorf("list = %v", list)
	}
}
