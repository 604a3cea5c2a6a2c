// Package compare computes period-over-period cost deltas. Everything
// reduces to Periods, which filters one record window into two ranges
// and diffs the sums; the named comparisons only pick the range pair.
package compare

import (
	"sort"
	"time"

	"github.com/costlens/costlens-go/internal/application/aggregate"
	"github.com/costlens/costlens-go/internal/application/calendar"
	"github.com/costlens/costlens-go/internal/application/filter"
	"github.com/costlens/costlens-go/internal/domain/entity"
)

// FlatThreshold is the absolute change below which a comparison is
// reported as flat rather than up or down.
const FlatThreshold = 0.01

// Granularity selects the bucket size for trend analysis.
type Granularity string

const (
	Daily   Granularity = "day"
	Weekly  Granularity = "week"
	Monthly Granularity = "month"
)

// Periods compares spend between two windows of the same record set.
func Periods(records []entity.CostRecord, current, previous entity.DateRange) entity.PeriodComparison {
	currentRecords := filter.ByDateRange(records, current)
	previousRecords := filter.ByDateRange(records, previous)

	currentTotal := aggregate.SumCosts(currentRecords)
	previousTotal := aggregate.SumCosts(previousRecords)

	return build(currentTotal, previousTotal, current.Label, previous.Label,
		len(currentRecords), len(previousRecords))
}

func build(currentTotal, previousTotal float64, currentLabel, previousLabel string, currentCount, previousCount int) entity.PeriodComparison {
	change := currentTotal - previousTotal

	var changePercent float64
	switch {
	case previousTotal > 0:
		changePercent = change / previousTotal * 100
	case currentTotal > 0:
		changePercent = 100
	}

	trend := entity.TrendFlat
	if change > FlatThreshold {
		trend = entity.TrendUp
	} else if change < -FlatThreshold {
		trend = entity.TrendDown
	}

	return entity.PeriodComparison{
		Current:       entity.PeriodSummary{Total: currentTotal, Label: currentLabel, RecordCount: currentCount},
		Previous:      entity.PeriodSummary{Total: previousTotal, Label: previousLabel, RecordCount: previousCount},
		Change:        change,
		ChangePercent: changePercent,
		Trend:         trend,
	}
}

// MonthOverMonth compares this calendar month against last.
func MonthOverMonth(cal *calendar.Calendar, records []entity.CostRecord) entity.PeriodComparison {
	return Periods(records, cal.ThisMonth(), cal.LastMonth())
}

// WeekOverWeek compares this ISO week against last.
func WeekOverWeek(cal *calendar.Calendar, records []entity.CostRecord) entity.PeriodComparison {
	return Periods(records, cal.ThisWeek(), cal.LastWeek())
}

// QuarterOverQuarter compares this calendar quarter against last.
func QuarterOverQuarter(cal *calendar.Calendar, records []entity.CostRecord) entity.PeriodComparison {
	return Periods(records, cal.ThisQuarter(), cal.LastQuarter())
}

// YearOverYear compares this calendar year against last.
func YearOverYear(cal *calendar.Calendar, records []entity.CostRecord) entity.PeriodComparison {
	return Periods(records, cal.ThisYear(), cal.LastYear())
}

// MonthToDateVsPrior compares the current MTD window against the same
// number of elapsed days at the start of the previous month, clamped
// to that month's length.
func MonthToDateVsPrior(cal *calendar.Calendar, records []entity.CostRecord) entity.PeriodComparison {
	current := cal.MonthToDate()
	elapsed := calendar.DaysInRange(current)

	prevStart := current.Start.AddDate(0, -1, 0)
	prevMonthEnd := prevStart.AddDate(0, 1, -1)
	prevEnd := prevStart.AddDate(0, 0, elapsed-1)
	if prevEnd.After(prevMonthEnd) {
		prevEnd = prevMonthEnd
	}

	previous := entity.DateRange{
		Start: prevStart,
		End:   endOfDay(prevEnd),
		Label: "Prior Month to Date",
	}
	return Periods(records, current, previous)
}

// YearToDateVsPrior compares the current YTD window against the same
// window one calendar year earlier.
func YearToDateVsPrior(cal *calendar.Calendar, records []entity.CostRecord) entity.PeriodComparison {
	current := cal.YearToDate()
	previous := entity.DateRange{
		Start: current.Start.AddDate(-1, 0, 0),
		End:   endOfDay(current.End.AddDate(-1, 0, 0)),
		Label: "Prior Year to Date",
	}
	return Periods(records, current, previous)
}

// LastDaysVsPrior compares the trailing n-day window against the n
// days immediately before it.
func LastDaysVsPrior(cal *calendar.Calendar, records []entity.CostRecord, n int) entity.PeriodComparison {
	current := cal.RollingDays(n)
	return Periods(records, current, calendar.PreviousPeriod(current))
}

// PeriodsByProvider computes an independent comparison for every
// provider seen in either window. The key set is the union, so a
// provider present only in one period still appears with a zero on the
// other side.
func PeriodsByProvider(records []entity.CostRecord, current, previous entity.DateRange) map[string]entity.PeriodComparison {
	return periodsByKey(records, current, previous, aggregate.GroupByProvider)
}

// PeriodsByCategory is PeriodsByProvider keyed by service category.
func PeriodsByCategory(records []entity.CostRecord, current, previous entity.DateRange) map[string]entity.PeriodComparison {
	return periodsByKey(records, current, previous, aggregate.GroupByCategory)
}

func periodsByKey(records []entity.CostRecord, current, previous entity.DateRange, group func([]entity.CostRecord) aggregate.Totals) map[string]entity.PeriodComparison {
	currentBuckets := group(filter.ByDateRange(records, current))
	previousBuckets := group(filter.ByDateRange(records, previous))

	keys := map[string]struct{}{}
	for k := range currentBuckets {
		keys[k] = struct{}{}
	}
	for k := range previousBuckets {
		keys[k] = struct{}{}
	}

	out := make(map[string]entity.PeriodComparison, len(keys))
	for k := range keys {
		cur := currentBuckets[k]
		prev := previousBuckets[k]
		out[k] = build(cur.Total, prev.Total, current.Label, previous.Label, cur.Records, prev.Records)
	}
	return out
}

// AnalyzeTrend classifies the direction of spend over the trailing
// lookback buckets of the given granularity. The average bucket-over-
// bucket percentage delta decides: above 5% is up, below -5% is down,
// anything else (including fewer than two buckets) is flat.
func AnalyzeTrend(records []entity.CostRecord, granularity Granularity, lookback int) entity.TrendAnalysis {
	var buckets aggregate.Totals
	switch granularity {
	case Daily:
		buckets = aggregate.GroupByDay(records)
	case Weekly:
		buckets = aggregate.GroupByWeek(records)
	default:
		buckets = aggregate.GroupByMonth(records)
	}

	points := totalsToSeries(buckets)
	if lookback > 0 && len(points) > lookback {
		points = points[len(points)-lookback:]
	}

	if len(points) < 2 {
		return entity.TrendAnalysis{Direction: entity.TrendFlat, Points: points}
	}

	var sum float64
	deltas := 0
	for i := 1; i < len(points); i++ {
		prev := points[i-1].Total
		cur := points[i].Total
		var pct float64
		if prev > 0 {
			pct = (cur - prev) / prev * 100
		} else if cur > 0 {
			pct = 100
		}
		sum += pct
		deltas++
	}
	avg := sum / float64(deltas)

	direction := entity.TrendFlat
	if avg > 5 {
		direction = entity.TrendUp
	} else if avg < -5 {
		direction = entity.TrendDown
	}

	return entity.TrendAnalysis{Direction: direction, AveragePercent: avg, Points: points}
}

func totalsToSeries(t aggregate.Totals) []entity.TimeSeriesPoint {
	out := make([]entity.TimeSeriesPoint, 0, len(t))
	for key, b := range t {
		out = append(out, entity.TimeSeriesPoint{Date: key, Total: b.Total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999_000_000, t.Location())
}
