// Package aggregate turns filtered record lists into the totals,
// percentage breakdowns and time series the dashboard charts consume.
package aggregate

import (
	"sort"
	"strings"

	"github.com/costlens/costlens-go/internal/application/filter"
	"github.com/costlens/costlens-go/internal/domain/entity"
)

// UnknownKey is where records with a blank provider, category or
// service land, so missing dimensions stay visible instead of
// silently dropping spend.
const UnknownKey = "Unknown"

// Bucket is one aggregation cell.
type Bucket struct {
	Total   float64
	Records int
}

// Totals is a key-to-bucket aggregation map.
type Totals map[string]Bucket

// SortOrder selects how ToGroupedArray orders its output.
type SortOrder string

const (
	SortByValue SortOrder = "value" // descending total
	SortByKey   SortOrder = "key"   // lexicographic key
)

// SumCosts totals the records' costs. Absent and non-finite costs
// count as 0, so the result is always finite.
func SumCosts(records []entity.CostRecord) float64 {
	var sum float64
	for _, rec := range records {
		sum += filter.Amount(rec)
	}
	return sum
}

// GroupByDay buckets records by local calendar day. Records without a
// usable date are skipped, not zero-filled.
func GroupByDay(records []entity.CostRecord) Totals {
	return groupByDate(records, func(r entity.CostRecord) string {
		return entity.LocalDay(r.ChargePeriodStart)
	})
}

// GroupByWeek buckets records by week, keyed by the local Monday of
// each record's ISO week.
func GroupByWeek(records []entity.CostRecord) Totals {
	return groupByDate(records, func(r entity.CostRecord) string {
		t := r.ChargePeriodStart
		shift := (int(t.Weekday()) + 6) % 7
		return entity.LocalDay(t.AddDate(0, 0, -shift))
	})
}

// GroupByMonth buckets records by local calendar month (YYYY-MM).
func GroupByMonth(records []entity.CostRecord) Totals {
	return groupByDate(records, func(r entity.CostRecord) string {
		return r.ChargePeriodStart.Format("2006-01")
	})
}

func groupByDate(records []entity.CostRecord, key func(entity.CostRecord) string) Totals {
	out := Totals{}
	for _, rec := range records {
		if rec.ChargePeriodStart.IsZero() {
			continue
		}
		add(out, key(rec), filter.Amount(rec))
	}
	return out
}

// GroupByProvider buckets records by service provider name.
func GroupByProvider(records []entity.CostRecord) Totals {
	return groupByDimension(records, func(r entity.CostRecord) string {
		return r.ServiceProviderName
	})
}

// GroupByCategory buckets records by service category.
func GroupByCategory(records []entity.CostRecord) Totals {
	return groupByDimension(records, func(r entity.CostRecord) string {
		return r.ServiceCategory
	})
}

// GroupByService buckets records by service name.
func GroupByService(records []entity.CostRecord) Totals {
	return groupByDimension(records, func(r entity.CostRecord) string {
		return r.ServiceName
	})
}

func groupByDimension(records []entity.CostRecord, dim func(entity.CostRecord) string) Totals {
	out := Totals{}
	for _, rec := range records {
		key := trimOrUnknown(dim(rec))
		add(out, key, filter.Amount(rec))
	}
	return out
}

func trimOrUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return UnknownKey
	}
	return s
}

func add(t Totals, key string, amount float64) {
	b := t[key]
	b.Total += amount
	b.Records++
	t[key] = b
}

// ToGroupedArray flattens an aggregation map into display rows with
// each bucket's share of the sibling total. When the grand total is 0
// every percentage is 0; otherwise percentages sum to ~100.
func ToGroupedArray(t Totals, sortBy SortOrder) []entity.GroupedCostData {
	var grand float64
	for _, b := range t {
		grand += b.Total
	}

	out := make([]entity.GroupedCostData, 0, len(t))
	for key, b := range t {
		pct := 0.0
		if grand > 0 {
			pct = b.Total / grand * 100
		}
		out = append(out, entity.GroupedCostData{
			Key:         key,
			Total:       b.Total,
			Percentage:  pct,
			RecordCount: b.Records,
		})
	}

	switch sortBy {
	case SortByKey:
		sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	default:
		sort.Slice(out, func(i, j int) bool {
			if out[i].Total != out[j].Total {
				return out[i].Total > out[j].Total
			}
			return out[i].Key < out[j].Key
		})
	}
	return out
}

// ToTimeSeries emits the records as chronologically sorted daily
// points. Records with invalid dates are skipped; missing days are not
// zero-filled.
func ToTimeSeries(records []entity.CostRecord) []entity.TimeSeriesPoint {
	daily := GroupByDay(records)
	out := make([]entity.TimeSeriesPoint, 0, len(daily))
	for day, b := range daily {
		out = append(out, entity.TimeSeriesPoint{Date: day, Total: b.Total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// ToTimeSeriesWithProviders is ToTimeSeries with a per-provider split
// inside each daily point.
func ToTimeSeriesWithProviders(records []entity.CostRecord) []entity.ProviderTimeSeriesPoint {
	type bucket struct {
		total     float64
		providers map[string]float64
	}
	daily := map[string]*bucket{}
	for _, rec := range records {
		if rec.ChargePeriodStart.IsZero() {
			continue
		}
		day := entity.LocalDay(rec.ChargePeriodStart)
		b, ok := daily[day]
		if !ok {
			b = &bucket{providers: map[string]float64{}}
			daily[day] = b
		}
		amount := filter.Amount(rec)
		b.total += amount
		b.providers[trimOrUnknown(rec.ServiceProviderName)] += amount
	}

	out := make([]entity.ProviderTimeSeriesPoint, 0, len(daily))
	for day, b := range daily {
		out = append(out, entity.ProviderTimeSeriesPoint{
			Date:      day,
			Total:     b.total,
			Providers: b.providers,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
