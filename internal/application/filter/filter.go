// Package filter holds the record-level predicates of the analytics
// core. Every function is pure: the input slice is never mutated, a
// nil or empty input yields an empty result, and nothing here returns
// an error.
package filter

import (
	"math"
	"strings"

	"github.com/costlens/costlens-go/internal/domain/entity"
)

// Options selects which predicates Apply conjoins. A nil field means
// "no constraint", never "match nothing".
type Options struct {
	DateRange  *entity.DateRange
	Providers  []string
	Categories []string
	MinAmount  *float64
	MaxAmount  *float64
}

// Amount resolves a record's cost: effective cost when present and
// finite, billed cost as fallback, 0 otherwise.
func Amount(r entity.CostRecord) float64 {
	if v, ok := finite(r.EffectiveCost); ok {
		return v
	}
	if v, ok := finite(r.BilledCost); ok {
		return v
	}
	return 0
}

func finite(v *float64) (float64, bool) {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, false
	}
	return *v, true
}

// ByDateRange keeps records whose local calendar day falls inside the
// range, bounds inclusive. Days are compared as YYYY-MM-DD strings in
// local time; comparing instants (or truncating via UTC) shifts
// records near midnight for users west of UTC, so both this filter and
// the granular-row filter use the same day-string comparison.
func ByDateRange(records []entity.CostRecord, r entity.DateRange) []entity.CostRecord {
	out := []entity.CostRecord{}
	startDay := entity.LocalDay(r.Start)
	endDay := entity.LocalDay(r.End)
	if startDay > endDay {
		return out
	}
	for _, rec := range records {
		if rec.ChargePeriodStart.IsZero() {
			continue
		}
		day := entity.LocalDay(rec.ChargePeriodStart)
		if day >= startDay && day <= endDay {
			out = append(out, rec)
		}
	}
	return out
}

// ByProvider keeps records whose provider matches any candidate,
// case-insensitively. An empty or all-blank candidate list is a no-op:
// with nothing selected the caller wants everything, not nothing.
func ByProvider(records []entity.CostRecord, providers []string) []entity.CostRecord {
	return byDimension(records, providers, func(r entity.CostRecord) string {
		return r.ServiceProviderName
	})
}

// ByCategory keeps records whose category matches any candidate,
// case-insensitively, with the same empty-list no-op as ByProvider.
func ByCategory(records []entity.CostRecord, categories []string) []entity.CostRecord {
	return byDimension(records, categories, func(r entity.CostRecord) string {
		return r.ServiceCategory
	})
}

func byDimension(records []entity.CostRecord, candidates []string, dim func(entity.CostRecord) string) []entity.CostRecord {
	wanted := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" {
			wanted[c] = struct{}{}
		}
	}
	if len(wanted) == 0 {
		if records == nil {
			return []entity.CostRecord{}
		}
		return records
	}
	out := []entity.CostRecord{}
	for _, rec := range records {
		if _, ok := wanted[strings.ToLower(strings.TrimSpace(dim(rec)))]; ok {
			out = append(out, rec)
		}
	}
	return out
}

// ByMinAmount keeps records costing at least min, inclusive.
func ByMinAmount(records []entity.CostRecord, min float64) []entity.CostRecord {
	out := []entity.CostRecord{}
	for _, rec := range records {
		if Amount(rec) >= min {
			out = append(out, rec)
		}
	}
	return out
}

// ByMaxAmount keeps records costing at most max, inclusive.
func ByMaxAmount(records []entity.CostRecord, max float64) []entity.CostRecord {
	out := []entity.CostRecord{}
	for _, rec := range records {
		if Amount(rec) <= max {
			out = append(out, rec)
		}
	}
	return out
}

// Apply conjoins whichever predicates the options carry, in sequence.
// Absent options are skipped.
func Apply(records []entity.CostRecord, opts Options) []entity.CostRecord {
	out := records
	if out == nil {
		out = []entity.CostRecord{}
	}
	if opts.DateRange != nil {
		out = ByDateRange(out, *opts.DateRange)
	}
	out = ByProvider(out, opts.Providers)
	out = ByCategory(out, opts.Categories)
	if opts.MinAmount != nil {
		out = ByMinAmount(out, *opts.MinAmount)
	}
	if opts.MaxAmount != nil {
		out = ByMaxAmount(out, *opts.MaxAmount)
	}
	return out
}
