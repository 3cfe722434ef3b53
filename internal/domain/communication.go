package domain

import "time"

// CommunicationType defines how a contact was reached
type CommunicationType string

const (
	CommCall    CommunicationType = "call"
	CommEmail   CommunicationType = "email"
	CommMeeting CommunicationType = "meeting"
	CommMessage CommunicationType = "message"
)

// Communication is one logged interaction with a contact
type Communication struct {
	ID        int64
	ContactID int64
	Type      CommunicationType
	Date      time.Time
	Notes     string
	CreatedAt time.Time
}

// DaysAgo returns whole days elapsed since the communication
func (c *Communication) DaysAgo(now time.Time) int {
	d := now.Sub(c.Date)
	if d < 0 {
		return 0
	}
	return int(d.Hours() / 24)
}
