package domain

import (
	"strings"
	"time"
)

// ContactCategory splits contacts into the two address-book halves.
type ContactCategory string

const (
	CategoryBusiness ContactCategory = "business"
	CategoryPrivate  ContactCategory = "private"
)

// Contact represents a person in the relationship book
type Contact struct {
	ID        int64
	FirstName string
	LastName  string
	Category  ContactCategory
	Birthday  *time.Time // nil if unknown
	Email     string
	Phone     string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName returns the display name
func (c *Contact) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Initials returns the uppercased first letters of both names
func (c *Contact) Initials() string {
	var sb strings.Builder
	if c.FirstName != "" {
		sb.WriteString(strings.ToUpper(c.FirstName[:1]))
	}
	if c.LastName != "" {
		sb.WriteString(strings.ToUpper(c.LastName[:1]))
	}
	return sb.String()
}

// HasBirthday returns true if the birth date is known
func (c *Contact) HasBirthday() bool {
	return c.Birthday != nil
}

// SortableName orders contacts by last name, then first name
func (c *Contact) SortableName() string {
	return c.LastName + c.FirstName
}
