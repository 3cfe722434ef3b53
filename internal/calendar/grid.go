package calendar

import "time"

// GridSize is the fixed number of cells in a month grid: six rows of
// seven days. Short months are padded with overflow days from the
// adjacent months so the layout never changes height.
const GridSize = 42

// DayCell is one cell of the month grid
type DayCell struct {
	Date       time.Time
	InMonth    bool // belongs to the anchor month, not overflow
	IsToday    bool
	IsSelected bool
}

// BuildMonthGrid returns the 42-cell grid for the month containing
// anchor. Leading cells are trailing days of the previous month,
// positioned by the weekday offset of the 1st relative to weekStart;
// trailing cells are the first days of the next month. Cells are
// values; every navigation rebuilds the whole grid.
func BuildMonthGrid(anchor time.Time, weekStart time.Weekday, now, selected time.Time) []DayCell {
	year, month, _ := anchor.Date()
	loc := anchor.Location()
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)

	// Days of the previous month shown before the 1st.
	lead := (int(first.Weekday()) - int(weekStart) + 7) % 7

	cells := make([]DayCell, 0, GridSize)
	for i := 0; i < GridSize; i++ {
		date := first.AddDate(0, 0, i-lead)
		cells = append(cells, DayCell{
			Date:       date,
			InMonth:    date.Month() == month && date.Year() == year,
			IsToday:    sameDay(date, now),
			IsSelected: sameDay(date, selected),
		})
	}
	return cells
}

// DaysInMonth returns the number of days in the month containing t
func DaysInMonth(t time.Time) int {
	year, month, _ := t.Date()
	return time.Date(year, month+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// StartOfDay strips the time component in the instant's own location
func StartOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
