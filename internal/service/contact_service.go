package service

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/kizunaapp/kizuna/internal/calendar"
	"github.com/kizunaapp/kizuna/internal/domain"
	"github.com/kizunaapp/kizuna/internal/storage"
)

type ContactService struct {
	storage *storage.Storage
	events  *EventService
}

func NewContactService(s *storage.Storage, events *EventService) *ContactService {
	return &ContactService{storage: s, events: events}
}

// Create creates a new contact
func (s *ContactService) Create(c *domain.Contact) error {
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	if c.FirstName == "" && c.LastName == "" {
		return errors.New("contact name cannot be empty")
	}
	if c.Category == "" {
		c.Category = domain.CategoryPrivate
	}
	return s.storage.CreateContact(c)
}

func (s *ContactService) Get(id int64) (*domain.Contact, error) {
	return s.storage.GetContact(id)
}

func (s *ContactService) Update(c *domain.Contact) error {
	return s.storage.UpdateContact(c)
}

// Delete removes the contact, its communications (cascaded in the
// store) and all events it participates in, reminders included.
func (s *ContactService) Delete(id int64) error {
	contact, err := s.storage.GetContact(id)
	if err != nil {
		return fmt.Errorf("get contact: %w", err)
	}
	if contact == nil {
		return errors.New("contact not found")
	}

	if err := s.events.DeleteAllForContact(id); err != nil {
		return fmt.Errorf("delete contact events: %w", err)
	}
	return s.storage.DeleteContact(id)
}

func (s *ContactService) List() ([]*domain.Contact, error) {
	return s.storage.ListContacts()
}

// Filter applies optional category and case-insensitive name/notes
// matching over the full contact list.
func (s *ContactService) Filter(category domain.ContactCategory, search string) ([]*domain.Contact, error) {
	contacts, err := s.storage.ListContacts()
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]*domain.Contact, 0, len(contacts))
	for _, c := range contacts {
		if category != "" && c.Category != category {
			continue
		}
		if needle != "" {
			haystack := strings.ToLower(c.FullName() + " " + c.Email + " " + c.Notes)
			if !strings.Contains(haystack, needle) {
				continue
			}
		}
		out = append(out, c)
	}
	return out, nil
}

// BirthdayOccurrences projects the next anniversary for every contact
// with a known birth date, relative to ref. Contacts without a birth
// date simply contribute nothing. Store failure degrades to an empty
// projection with a warning.
func (s *ContactService) BirthdayOccurrences(ref time.Time) []calendar.BirthdayOccurrence {
	contacts, err := s.storage.ListContactsWithBirthday()
	if err != nil {
		log.Printf("Warning: list contacts with birthday: %v", err)
		return nil
	}

	out := make([]calendar.BirthdayOccurrence, 0, len(contacts))
	for _, c := range contacts {
		if c.Birthday == nil {
			continue
		}
		date, age := calendar.NextBirthday(*c.Birthday, ref)
		out = append(out, calendar.BirthdayOccurrence{
			ContactID: c.ID,
			Name:      c.FullName(),
			Date:      date,
			Age:       age,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// UpcomingBirthdays returns projections within the next N days
func (s *ContactService) UpcomingBirthdays(ref time.Time, days int) []calendar.BirthdayOccurrence {
	until := calendar.StartOfDay(ref).AddDate(0, 0, days)
	all := s.BirthdayOccurrences(ref)
	out := make([]calendar.BirthdayOccurrence, 0, len(all))
	for _, b := range all {
		if b.Date.Before(until) {
			out = append(out, b)
		}
	}
	return out
}
