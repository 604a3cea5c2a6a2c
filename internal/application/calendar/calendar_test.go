package calendar

import (
	"testing"
	"time"

	"github.com/costlens/costlens-go/internal/domain/entity"
)

func fixedNow(t time.Time) Option {
	return WithNow(func() time.Time { return t })
}

// Wednesday, 2024-06-12 15:30 local.
var testNow = time.Date(2024, time.June, 12, 15, 30, 0, 0, time.Local)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.Local)
}

func TestCanonicalRanges(t *testing.T) {
	cal := New(fixedNow(testNow))

	tests := []struct {
		name      string
		got       entity.DateRange
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"today", cal.Today(), day(2024, time.June, 12), day(2024, time.June, 12)},
		{"this week starts Monday", cal.ThisWeek(), day(2024, time.June, 10), day(2024, time.June, 16)},
		{"last week", cal.LastWeek(), day(2024, time.June, 3), day(2024, time.June, 9)},
		{"this month", cal.ThisMonth(), day(2024, time.June, 1), day(2024, time.June, 30)},
		{"last month", cal.LastMonth(), day(2024, time.May, 1), day(2024, time.May, 31)},
		{"this quarter", cal.ThisQuarter(), day(2024, time.April, 1), day(2024, time.June, 30)},
		{"last quarter", cal.LastQuarter(), day(2024, time.January, 1), day(2024, time.March, 31)},
		{"this year", cal.ThisYear(), day(2024, time.January, 1), day(2024, time.December, 31)},
		{"last year", cal.LastYear(), day(2023, time.January, 1), day(2023, time.December, 31)},
		{"month to date", cal.MonthToDate(), day(2024, time.June, 1), day(2024, time.June, 12)},
		{"quarter to date", cal.QuarterToDate(), day(2024, time.April, 1), day(2024, time.June, 12)},
		{"year to date", cal.YearToDate(), day(2024, time.January, 1), day(2024, time.June, 12)},
		{"rolling 7", cal.RollingDays(7), day(2024, time.June, 6), day(2024, time.June, 12)},
		{"rolling clamps to 1", cal.RollingDays(0), day(2024, time.June, 12), day(2024, time.June, 12)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := entity.LocalDay(tc.got.Start); got != entity.LocalDay(tc.wantStart) {
				t.Errorf("start = %s, want %s", got, entity.LocalDay(tc.wantStart))
			}
			if got := entity.LocalDay(tc.got.End); got != entity.LocalDay(tc.wantEnd) {
				t.Errorf("end = %s, want %s", got, entity.LocalDay(tc.wantEnd))
			}
			if h, m, s := tc.got.Start.Clock(); h != 0 || m != 0 || s != 0 {
				t.Errorf("start is not start of day: %v", tc.got.Start)
			}
			if h, m, s := tc.got.End.Clock(); h != 23 || m != 59 || s != 59 {
				t.Errorf("end is not end of day: %v", tc.got.End)
			}
		})
	}
}

func TestFiscalYear(t *testing.T) {
	t.Run("after fiscal start", func(t *testing.T) {
		cal := New(fixedNow(testNow)) // June, fiscal start April
		fy := cal.FiscalYear()
		if got := entity.LocalDay(fy.Start); got != "2024-04-01" {
			t.Errorf("fiscal year start = %s, want 2024-04-01", got)
		}
		if got := entity.LocalDay(fy.End); got != "2025-03-31" {
			t.Errorf("fiscal year end = %s, want 2025-03-31", got)
		}
	})

	t.Run("before fiscal start month rolls back a year", func(t *testing.T) {
		feb := time.Date(2024, time.February, 10, 9, 0, 0, 0, time.Local)
		cal := New(fixedNow(feb))
		fy := cal.FiscalYear()
		if got := entity.LocalDay(fy.Start); got != "2023-04-01" {
			t.Errorf("fiscal year start = %s, want 2023-04-01", got)
		}
	})

	t.Run("configurable start", func(t *testing.T) {
		cal := New(fixedNow(testNow), WithFiscalYearStart(time.July, 1))
		fy := cal.FiscalYearToDate()
		if got := entity.LocalDay(fy.Start); got != "2023-07-01" {
			t.Errorf("fiscal YTD start = %s, want 2023-07-01", got)
		}
		if got := entity.LocalDay(fy.End); got != "2024-06-12" {
			t.Errorf("fiscal YTD end = %s, want 2024-06-12", got)
		}
	})
}

func TestDaysInRange(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{"single day", day(2024, time.January, 1), day(2024, time.January, 1), 1},
		{"january", day(2024, time.January, 1), day(2024, time.January, 31), 31},
		{"across months", day(2024, time.January, 15), day(2024, time.February, 14), 31},
		{"inverted collapses to 1", day(2024, time.March, 5), day(2024, time.March, 1), 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := entity.DateRange{Start: tc.start, End: tc.end}
			if got := DaysInRange(r); got != tc.want {
				t.Errorf("DaysInRange = %d, want %d", got, tc.want)
			}
			if DaysInRange(r) < 1 {
				t.Error("DaysInRange must never drop below 1")
			}
		})
	}
}

func TestPreviousPeriod(t *testing.T) {
	r := entity.DateRange{
		Start: day(2024, time.June, 1),
		End:   time.Date(2024, time.June, 12, 23, 59, 59, 0, time.Local),
		Label: "Month to Date",
	}

	prev := PreviousPeriod(r)
	if got := entity.LocalDay(prev.End); got != "2024-05-31" {
		t.Errorf("previous end = %s, want 2024-05-31", got)
	}
	if got := DaysInRange(prev); got != DaysInRange(r) {
		t.Errorf("previous length = %d, want %d", got, DaysInRange(r))
	}

	t.Run("round trip stays strictly earlier with same length", func(t *testing.T) {
		prev2 := PreviousPeriod(prev)
		if !prev2.End.Before(r.Start) {
			t.Errorf("double previous %v must end before original start %v", prev2.End, r.Start)
		}
		if DaysInRange(prev2) != DaysInRange(r) {
			t.Errorf("double previous length = %d, want %d", DaysInRange(prev2), DaysInRange(r))
		}
	})
}
