package calendar

import "time"

// BirthdayOccurrence is the projected next anniversary of a contact's
// birth date. It is derived on every pass, never persisted: the
// projection depends on "today" and goes stale across day boundaries.
type BirthdayOccurrence struct {
	ContactID int64
	Name      string
	Date      time.Time // next occurrence, at or after start of the reference day
	Age       int       // age turned on Date, never negative
}

// NextBirthday projects the nearest future-or-today anniversary of
// birth relative to ref. A candidate is built in ref's year; if it
// falls strictly before the start of ref's day the year is advanced.
//
// Feb 29 births resolve to Mar 1 on non-leap years: time.Date
// normalizes the overflow day forward, and we keep that behavior
// rather than clamping to Feb 28.
func NextBirthday(birth time.Time, ref time.Time) (time.Time, int) {
	today := StartOfDay(ref)

	next := time.Date(today.Year(), birth.Month(), birth.Day(), 0, 0, 0, 0, ref.Location())
	if next.Before(today) {
		next = time.Date(today.Year()+1, birth.Month(), birth.Day(), 0, 0, 0, 0, ref.Location())
	}

	age := next.Year() - birth.Year()
	if age < 0 {
		age = 0
	}
	return next, age
}
