package calendar

import (
	"sort"
	"strings"
	"time"

	"github.com/kizunaapp/kizuna/internal/domain"
)

// Aggregation works on snapshots the caller fetched from the store.
// Nothing here holds state or touches the clock: the same inputs give
// the same output, and the caller re-fetches and re-aggregates after
// any write.

// DayBucket holds everything attributed to one calendar day
type DayBucket struct {
	Date      time.Time
	Events    []*domain.CalendarEvent
	Birthdays []BirthdayOccurrence
}

// Predicate is a combinable event filter. A nil Day skips the day
// match; an empty Search skips the text match.
type Predicate struct {
	Day    *time.Time
	Search string
}

// EventsOn returns events starting on the given calendar day, in
// ascending start order. Time components are ignored for the match.
func EventsOn(events []*domain.CalendarEvent, day time.Time) []*domain.CalendarEvent {
	out := make([]*domain.CalendarEvent, 0)
	for _, e := range events {
		if e.OnDay(day) {
			out = append(out, e)
		}
	}
	sortByStart(out)
	return out
}

// BirthdaysOn returns projected birthdays falling on the given day
func BirthdaysOn(birthdays []BirthdayOccurrence, day time.Time) []BirthdayOccurrence {
	out := make([]BirthdayOccurrence, 0)
	for _, b := range birthdays {
		if sameDay(b.Date, day) {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Upcoming returns events with StartAt in [from, from+windowDays),
// ascending by start. The window length is the only knob: today is
// windowDays=1, the week view 7, the monthly digest 30.
func Upcoming(events []*domain.CalendarEvent, windowDays int, from time.Time) []*domain.CalendarEvent {
	until := from.AddDate(0, 0, windowDays)
	out := make([]*domain.CalendarEvent, 0)
	for _, e := range events {
		if !e.StartAt.Before(from) && e.StartAt.Before(until) {
			out = append(out, e)
		}
	}
	sortByStart(out)
	return out
}

// GroupByDay partitions events into per-day buckets keyed by the
// start-of-day of StartAt. Every event lands in exactly one bucket.
func GroupByDay(events []*domain.CalendarEvent) map[time.Time][]*domain.CalendarEvent {
	out := make(map[time.Time][]*domain.CalendarEvent)
	for _, e := range events {
		key := StartOfDay(e.StartAt)
		out[key] = append(out[key], e)
	}
	for _, bucket := range out {
		sortByStart(bucket)
	}
	return out
}

// Filter applies the predicate's enabled clauses. The day match is
// exact date equality; the search match is a case-insensitive
// substring test over title and details. Birthday projections are
// display-only and not searchable.
func Filter(events []*domain.CalendarEvent, p Predicate) []*domain.CalendarEvent {
	needle := strings.ToLower(p.Search)
	out := make([]*domain.CalendarEvent, 0)
	for _, e := range events {
		if p.Day != nil && !e.OnDay(*p.Day) {
			continue
		}
		if needle != "" {
			haystack := strings.ToLower(e.Title + " " + e.Details)
			if !strings.Contains(haystack, needle) {
				continue
			}
		}
		out = append(out, e)
	}
	sortByStart(out)
	return out
}

// BucketsForGrid annotates a month grid with events and birthdays,
// returning one bucket per cell in cell order.
func BucketsForGrid(cells []DayCell, events []*domain.CalendarEvent, birthdays []BirthdayOccurrence) []DayBucket {
	byDay := GroupByDay(events)
	out := make([]DayBucket, 0, len(cells))
	for _, cell := range cells {
		out = append(out, DayBucket{
			Date:      cell.Date,
			Events:    byDay[StartOfDay(cell.Date)],
			Birthdays: BirthdaysOn(birthdays, cell.Date),
		})
	}
	return out
}

// sortByStart orders ascending by StartAt; ties keep input order
func sortByStart(events []*domain.CalendarEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].StartAt.Before(events[j].StartAt)
	})
}
