package domain

import "time"

// Group is a named set of contacts
type Group struct {
	ID          int64
	Name        string
	Category    ContactCategory
	Description string
	CreatedAt   time.Time
}
