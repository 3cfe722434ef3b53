package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/kizunaapp/kizuna/internal/domain"
	"github.com/kizunaapp/kizuna/internal/storage"
)

type CommunicationService struct {
	storage *storage.Storage
}

func NewCommunicationService(s *storage.Storage) *CommunicationService {
	return &CommunicationService{storage: s}
}

// Log records one interaction with a contact
func (s *CommunicationService) Log(contactID int64, commType domain.CommunicationType, date time.Time, notes string) (*domain.Communication, error) {
	contact, err := s.storage.GetContact(contactID)
	if err != nil {
		return nil, fmt.Errorf("get contact: %w", err)
	}
	if contact == nil {
		return nil, errors.New("contact not found")
	}

	switch commType {
	case domain.CommCall, domain.CommEmail, domain.CommMeeting, domain.CommMessage:
	default:
		return nil, fmt.Errorf("unknown communication type: %s", commType)
	}

	comm := &domain.Communication{
		ContactID: contactID,
		Type:      commType,
		Date:      date,
		Notes:     notes,
	}
	if err := s.storage.CreateCommunication(comm); err != nil {
		return nil, fmt.Errorf("create communication: %w", err)
	}
	return comm, nil
}

func (s *CommunicationService) Delete(id int64) error {
	return s.storage.DeleteCommunication(id)
}

func (s *CommunicationService) ListForContact(contactID int64) ([]*domain.Communication, error) {
	return s.storage.ListCommunicationsByContact(contactID)
}

// RecentContacts returns the distinct contacts behind the latest
// communications, newest first, capped at limit.
func (s *CommunicationService) RecentContacts(limit int) ([]*domain.Contact, error) {
	comms, err := s.storage.ListRecentCommunications(limit * 2)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]bool)
	var contacts []*domain.Contact
	for _, comm := range comms {
		if seen[comm.ContactID] {
			continue
		}
		seen[comm.ContactID] = true

		contact, err := s.storage.GetContact(comm.ContactID)
		if err != nil {
			return nil, err
		}
		if contact == nil {
			continue
		}
		contacts = append(contacts, contact)
		if len(contacts) >= limit {
			break
		}
	}
	return contacts, nil
}
