package service

import (
	"time"

	"github.com/kizunaapp/kizuna/internal/calendar"
	"github.com/kizunaapp/kizuna/internal/domain"
)

// Digest is the morning overview: what happens today, how busy the
// week looks, and whose birthday it is.
type Digest struct {
	TodayEvents     []*domain.CalendarEvent
	WeekEventCount  int
	TodayBirthdays  []calendar.BirthdayOccurrence
	UpcomingInMonth []*domain.CalendarEvent
}

type HomeService struct {
	events   *EventService
	contacts *ContactService
}

func NewHomeService(events *EventService, contacts *ContactService) *HomeService {
	return &HomeService{events: events, contacts: contacts}
}

// BuildDigest computes the overview for a single reference instant.
// Every window is derived from the same ref so a frozen clock yields
// a deterministic digest.
func (s *HomeService) BuildDigest(ref time.Time) Digest {
	snapshot := s.events.Snapshot()
	today := calendar.StartOfDay(ref)
	birthdays := s.contacts.BirthdayOccurrences(ref)

	return Digest{
		TodayEvents:     calendar.Upcoming(snapshot, 1, today),
		WeekEventCount:  len(calendar.Upcoming(snapshot, 7, today)),
		TodayBirthdays:  calendar.BirthdaysOn(birthdays, today),
		UpcomingInMonth: calendar.Upcoming(snapshot, 30, today),
	}
}
