package calendar

import (
	"fmt"
	"math"
	"time"

	"github.com/costlens/costlens-go/internal/domain/entity"
)

// DefaultFiscalStartMonth and DefaultFiscalStartDay place the fiscal
// year boundary on April 1, the most common non-calendar fiscal year.
const (
	DefaultFiscalStartMonth = time.April
	DefaultFiscalStartDay   = 1
)

// Calendar produces the canonical date windows the dashboard offers.
// The clock is injectable so every window is reproducible in tests,
// and all boundaries are local time: starts at 00:00:00.000, ends at
// 23:59:59.999.
type Calendar struct {
	now              func() time.Time
	fiscalStartMonth time.Month
	fiscalStartDay   int
}

// Option configures a Calendar.
type Option func(*Calendar)

// WithNow replaces the system clock.
func WithNow(now func() time.Time) Option {
	return func(c *Calendar) {
		if now != nil {
			c.now = now
		}
	}
}

// WithFiscalYearStart moves the fiscal year boundary.
func WithFiscalYearStart(month time.Month, day int) Option {
	return func(c *Calendar) {
		if month >= time.January && month <= time.December && day >= 1 && day <= 31 {
			c.fiscalStartMonth = month
			c.fiscalStartDay = day
		}
	}
}

// New builds a Calendar on the system clock and the default fiscal year.
func New(opts ...Option) *Calendar {
	c := &Calendar{
		now:              time.Now,
		fiscalStartMonth: DefaultFiscalStartMonth,
		fiscalStartDay:   DefaultFiscalStartDay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999_000_000, t.Location())
}

// mondayOf returns the Monday of t's ISO week, local time.
func mondayOf(t time.Time) time.Time {
	shift := (int(t.Weekday()) + 6) % 7
	return startOfDay(t).AddDate(0, 0, -shift)
}

// Today is the current local calendar day.
func (c *Calendar) Today() entity.DateRange {
	now := c.now()
	return entity.DateRange{Start: startOfDay(now), End: endOfDay(now), Label: "Today"}
}

// ThisWeek runs Monday through Sunday of the current ISO week.
func (c *Calendar) ThisWeek() entity.DateRange {
	monday := mondayOf(c.now())
	return entity.DateRange{
		Start: monday,
		End:   endOfDay(monday.AddDate(0, 0, 6)),
		Label: "This Week",
	}
}

// LastWeek runs Monday through Sunday of the previous ISO week.
func (c *Calendar) LastWeek() entity.DateRange {
	monday := mondayOf(c.now()).AddDate(0, 0, -7)
	return entity.DateRange{
		Start: monday,
		End:   endOfDay(monday.AddDate(0, 0, 6)),
		Label: "Last Week",
	}
}

// ThisMonth covers the current calendar month in full.
func (c *Calendar) ThisMonth() entity.DateRange {
	now := c.now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return entity.DateRange{
		Start: first,
		End:   endOfDay(first.AddDate(0, 1, -1)),
		Label: "This Month",
	}
}

// LastMonth covers the previous calendar month in full.
func (c *Calendar) LastMonth() entity.DateRange {
	now := c.now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -1, 0)
	return entity.DateRange{
		Start: first,
		End:   endOfDay(first.AddDate(0, 1, -1)),
		Label: "Last Month",
	}
}

func quarterStart(t time.Time) time.Time {
	qMonth := time.Month((int(t.Month())-1)/3*3 + 1)
	return time.Date(t.Year(), qMonth, 1, 0, 0, 0, 0, t.Location())
}

// ThisQuarter covers the current calendar quarter in full.
func (c *Calendar) ThisQuarter() entity.DateRange {
	start := quarterStart(c.now())
	return entity.DateRange{
		Start: start,
		End:   endOfDay(start.AddDate(0, 3, -1)),
		Label: "This Quarter",
	}
}

// LastQuarter covers the previous calendar quarter in full.
func (c *Calendar) LastQuarter() entity.DateRange {
	start := quarterStart(c.now()).AddDate(0, -3, 0)
	return entity.DateRange{
		Start: start,
		End:   endOfDay(start.AddDate(0, 3, -1)),
		Label: "Last Quarter",
	}
}

// ThisYear covers the current calendar year in full.
func (c *Calendar) ThisYear() entity.DateRange {
	now := c.now()
	start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	return entity.DateRange{
		Start: start,
		End:   endOfDay(time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, now.Location())),
		Label: "This Year",
	}
}

// LastYear covers the previous calendar year in full.
func (c *Calendar) LastYear() entity.DateRange {
	now := c.now()
	year := now.Year() - 1
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, now.Location())
	return entity.DateRange{
		Start: start,
		End:   endOfDay(time.Date(year, time.December, 31, 0, 0, 0, 0, now.Location())),
		Label: "Last Year",
	}
}

// RollingDays is the trailing n-day window ending today, inclusive.
// n below 1 clamps to a single day.
func (c *Calendar) RollingDays(n int) entity.DateRange {
	if n < 1 {
		n = 1
	}
	now := c.now()
	return entity.DateRange{
		Start: startOfDay(now).AddDate(0, 0, -(n - 1)),
		End:   endOfDay(now),
		Label: fmt.Sprintf("Last %d Days", n),
	}
}

// MonthToDate runs from the first of the current month through today.
func (c *Calendar) MonthToDate() entity.DateRange {
	now := c.now()
	return entity.DateRange{
		Start: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()),
		End:   endOfDay(now),
		Label: "Month to Date",
	}
}

// QuarterToDate runs from the first day of the current quarter through today.
func (c *Calendar) QuarterToDate() entity.DateRange {
	now := c.now()
	return entity.DateRange{
		Start: quarterStart(now),
		End:   endOfDay(now),
		Label: "Quarter to Date",
	}
}

// YearToDate runs from January 1 through today.
func (c *Calendar) YearToDate() entity.DateRange {
	now := c.now()
	return entity.DateRange{
		Start: time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()),
		End:   endOfDay(now),
		Label: "Year to Date",
	}
}

// fiscalYearStart returns the start of the fiscal year containing t.
// When t falls before the configured start month/day, the fiscal year
// began in the previous calendar year.
func (c *Calendar) fiscalYearStart(t time.Time) time.Time {
	year := t.Year()
	if t.Month() < c.fiscalStartMonth ||
		(t.Month() == c.fiscalStartMonth && t.Day() < c.fiscalStartDay) {
		year--
	}
	return time.Date(year, c.fiscalStartMonth, c.fiscalStartDay, 0, 0, 0, 0, t.Location())
}

// FiscalYear covers the current fiscal year in full.
func (c *Calendar) FiscalYear() entity.DateRange {
	start := c.fiscalYearStart(c.now())
	return entity.DateRange{
		Start: start,
		End:   endOfDay(start.AddDate(1, 0, -1)),
		Label: fmt.Sprintf("FY%d", start.AddDate(1, 0, -1).Year()),
	}
}

// FiscalYearToDate runs from the fiscal year start through today.
func (c *Calendar) FiscalYearToDate() entity.DateRange {
	now := c.now()
	start := c.fiscalYearStart(now)
	return entity.DateRange{
		Start: start,
		End:   endOfDay(now),
		Label: "Fiscal Year to Date",
	}
}

// DaysInRange counts the inclusive calendar days a range spans. The
// result is never below 1. The count rounds over day boundaries rather
// than dividing raw durations, so DST transitions cannot shave a day.
func DaysInRange(r entity.DateRange) int {
	start := startOfDay(r.Start)
	end := startOfDay(r.End)
	if end.Before(start) {
		return 1
	}
	days := int(math.Round(end.Sub(start).Hours()/24)) + 1
	if days < 1 {
		days = 1
	}
	return days
}

// PreviousPeriod returns the window of the same day-length immediately
// preceding r, ending the day before r starts.
func PreviousPeriod(r entity.DateRange) entity.DateRange {
	length := DaysInRange(r)
	prevEnd := r.Start.AddDate(0, 0, -1)
	prevStart := r.Start.AddDate(0, 0, -length)
	return entity.DateRange{
		Start: startOfDay(prevStart),
		End:   endOfDay(prevEnd),
		Label: "Previous " + r.Label,
	}
}
