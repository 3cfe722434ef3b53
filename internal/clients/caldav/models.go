package caldav

import "time"

// Event is the wire-side shape of a pushed calendar entry. The push
// is one-way: events are never queried back from the server.
type Event struct {
	UID         string // deterministic per local event, e.g. "event-42@kizuna"
	Summary     string
	Description string
	Location    string
	StartTime   time.Time
	EndTime     time.Time
	AllDay      bool
}
