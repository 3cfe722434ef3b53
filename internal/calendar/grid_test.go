package calendar

import (
	"testing"
	"time"
)

func TestBuildMonthGridAlways42Cells(t *testing.T) {
	// Every month length (28-31) and every week start.
	months := []time.Time{
		time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC),  // 28 days
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),  // 29 days
		time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),  // 30 days
		time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),  // 31 days
		time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
	}
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	for _, anchor := range months {
		for ws := time.Sunday; ws <= time.Saturday; ws++ {
			cells := BuildMonthGrid(anchor, ws, now, now)
			if len(cells) != GridSize {
				t.Errorf("BuildMonthGrid(%s, %s) returned %d cells, want %d",
					anchor.Format("2006-01"), ws, len(cells), GridSize)
			}

			inMonth := 0
			for _, c := range cells {
				if c.InMonth {
					inMonth++
				}
			}
			if want := DaysInMonth(anchor); inMonth != want {
				t.Errorf("BuildMonthGrid(%s, %s): %d in-month cells, want %d",
					anchor.Format("2006-01"), ws, inMonth, want)
			}
		}
	}
}

func TestBuildMonthGridOverflowLayout(t *testing.T) {
	// June 2022 has 30 days and starts on a Wednesday. With a Sunday
	// week start the grid is 4 leading + 30 + 8 trailing overflow.
	anchor := time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2022, 6, 10, 8, 0, 0, 0, time.UTC)

	cells := BuildMonthGrid(anchor, time.Sunday, now, now)

	for i := 0; i < 4; i++ {
		if cells[i].InMonth {
			t.Errorf("cell %d should be previous-month overflow", i)
		}
		if cells[i].Date.Month() != time.May {
			t.Errorf("cell %d = %s, want a May date", i, cells[i].Date.Format("2006-01-02"))
		}
	}
	if got := cells[4].Date; got.Day() != 1 || got.Month() != time.June {
		t.Fatalf("cell 4 = %s, want June 1", got.Format("2006-01-02"))
	}
	for i := 4; i < 34; i++ {
		if !cells[i].InMonth {
			t.Errorf("cell %d should belong to June", i)
		}
	}
	for i := 34; i < 42; i++ {
		if cells[i].InMonth {
			t.Errorf("cell %d should be next-month overflow", i)
		}
		if cells[i].Date.Month() != time.July {
			t.Errorf("cell %d = %s, want a July date", i, cells[i].Date.Format("2006-01-02"))
		}
	}
}

func TestBuildMonthGridSixthRowOnShortMonths(t *testing.T) {
	// February 2021 fits in 4 rows (28 days starting on the week
	// start) but the contract still pads to 6.
	anchor := time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC)
	now := anchor

	cells := BuildMonthGrid(anchor, time.Monday, now, now)
	if len(cells) != GridSize {
		t.Fatalf("got %d cells, want %d", len(cells), GridSize)
	}
	if cells[0].Date.Day() != 1 || !cells[0].InMonth {
		t.Errorf("Feb 2021 starts on the week start, cell 0 should be Feb 1")
	}
	if cells[41].Date.Month() != time.March {
		t.Errorf("last cell = %s, want March overflow", cells[41].Date.Format("2006-01-02"))
	}
}

func TestBuildMonthGridFlags(t *testing.T) {
	anchor := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
	selected := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)

	cells := BuildMonthGrid(anchor, time.Monday, now, selected)

	var todays, selecteds int
	for _, c := range cells {
		if c.IsToday {
			todays++
			if c.Date.Day() != 15 {
				t.Errorf("IsToday on %s", c.Date.Format("2006-01-02"))
			}
		}
		if c.IsSelected {
			selecteds++
			if c.Date.Day() != 20 {
				t.Errorf("IsSelected on %s", c.Date.Format("2006-01-02"))
			}
		}
	}
	if todays != 1 || selecteds != 1 {
		t.Errorf("got %d today / %d selected cells, want 1/1", todays, selecteds)
	}
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2023, time.February, 28},
		{2024, time.February, 29},
		{2024, time.April, 30},
		{2024, time.January, 31},
		{2024, time.December, 31},
	}
	for _, tt := range tests {
		got := DaysInMonth(time.Date(tt.year, tt.month, 10, 0, 0, 0, 0, time.UTC))
		if got != tt.want {
			t.Errorf("DaysInMonth(%d-%d) = %d, want %d", tt.year, tt.month, got, tt.want)
		}
	}
}
