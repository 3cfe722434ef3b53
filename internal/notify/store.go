package notify

import "fmt"

// Backend persists the pending set. The sqlite storage implements it;
// replace semantics (same ID overwrites) are the backend's job.
type Backend interface {
	SaveReminder(req Request) error
	DeleteReminder(id string) error
	ListReminders() ([]Request, error)
}

// Store is a Service over a persistent backend, so pending reminders
// survive restarts.
type Store struct {
	backend Backend
}

func NewStore(b Backend) *Store {
	return &Store{backend: b}
}

func (s *Store) RequestAuthorization() error { return nil }

func (s *Store) Submit(req Request) error {
	if err := s.backend.SaveReminder(req); err != nil {
		return fmt.Errorf("save reminder: %w", err)
	}
	return nil
}

func (s *Store) Cancel(id string) error {
	if err := s.backend.DeleteReminder(id); err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}
	return nil
}

func (s *Store) ListPending() ([]Request, error) {
	return s.backend.ListReminders()
}
