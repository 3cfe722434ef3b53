package notify

import "time"

// Request is one pending notification. The owning component creates,
// replaces and cancels requests; it never reads delivered ones back.
type Request struct {
	ID        string // deterministic per owner, e.g. "event_42"
	TriggerAt time.Time
	Title     string
	Body      string
}

// Service is the notification collaborator. Submit and Cancel are
// fire-and-forget: callers do not wait on delivery and do not retry.
type Service interface {
	// RequestAuthorization asks the backing channel for permission to
	// notify. An error means notifications are unavailable for the
	// lifetime of the process.
	RequestAuthorization() error

	// Submit registers a request, replacing any pending request with
	// the same ID.
	Submit(req Request) error

	// Cancel removes a pending request. Cancelling an unknown ID is
	// not an error.
	Cancel(id string) error

	// ListPending returns all requests that have not fired yet.
	ListPending() ([]Request, error)
}
