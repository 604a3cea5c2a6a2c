package filter

import (
	"math"
	"testing"
	"time"

	"github.com/costlens/costlens-go/internal/domain/entity"
)

func f(v float64) *float64 { return &v }

func rec(day string, provider, category string, effective *float64) entity.CostRecord {
	t, _ := time.ParseInLocation(entity.DayFormat, day, time.Local)
	return entity.CostRecord{
		ChargePeriodStart:   t,
		ServiceProviderName: provider,
		ServiceCategory:     category,
		EffectiveCost:       effective,
	}
}

func rangeOf(startDay, endDay string) entity.DateRange {
	s, _ := time.ParseInLocation(entity.DayFormat, startDay, time.Local)
	e, _ := time.ParseInLocation(entity.DayFormat, endDay, time.Local)
	return entity.DateRange{
		Start: s,
		End:   time.Date(e.Year(), e.Month(), e.Day(), 23, 59, 59, 0, time.Local),
	}
}

func TestAmount(t *testing.T) {
	tests := []struct {
		name string
		rec  entity.CostRecord
		want float64
	}{
		{"effective wins", entity.CostRecord{EffectiveCost: f(12.5), BilledCost: f(99)}, 12.5},
		{"billed fallback", entity.CostRecord{BilledCost: f(7)}, 7},
		{"both absent", entity.CostRecord{}, 0},
		{"NaN effective falls through", entity.CostRecord{EffectiveCost: f(math.NaN()), BilledCost: f(3)}, 3},
		{"infinite billed is zero", entity.CostRecord{BilledCost: f(math.Inf(1))}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Amount(tc.rec); got != tc.want {
				t.Errorf("Amount = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestByDateRange(t *testing.T) {
	records := []entity.CostRecord{
		rec("2024-01-01", "aws", "compute", f(100)),
		rec("2024-01-31", "aws", "compute", f(50)),
		rec("2024-02-01", "aws", "compute", f(25)),
	}

	t.Run("bounds are inclusive", func(t *testing.T) {
		got := ByDateRange(records, rangeOf("2024-01-01", "2024-01-31"))
		if len(got) != 2 {
			t.Fatalf("got %d records, want 2", len(got))
		}
	})

	t.Run("late evening record stays on its local day", func(t *testing.T) {
		lateNight := entity.CostRecord{
			ChargePeriodStart: time.Date(2024, time.January, 31, 23, 30, 0, 0, time.Local),
			EffectiveCost:     f(10),
		}
		got := ByDateRange([]entity.CostRecord{lateNight}, rangeOf("2024-01-01", "2024-01-31"))
		if len(got) != 1 {
			t.Fatalf("record at 23:30 local on Jan 31 must be inside a Jan range")
		}
	})

	t.Run("zero dates are skipped", func(t *testing.T) {
		got := ByDateRange([]entity.CostRecord{{EffectiveCost: f(5)}}, rangeOf("2024-01-01", "2024-12-31"))
		if len(got) != 0 {
			t.Fatalf("records without dates must not match, got %d", len(got))
		}
	})

	t.Run("nil input yields empty", func(t *testing.T) {
		got := ByDateRange(nil, rangeOf("2024-01-01", "2024-01-31"))
		if got == nil || len(got) != 0 {
			t.Fatalf("want empty non-nil result, got %v", got)
		}
	})

	t.Run("disjoint ranges partition the sum", func(t *testing.T) {
		first := ByDateRange(records, rangeOf("2024-01-01", "2024-01-15"))
		second := ByDateRange(records, rangeOf("2024-01-16", "2024-02-28"))
		whole := ByDateRange(records, rangeOf("2024-01-01", "2024-02-28"))
		if len(first)+len(second) != len(whole) {
			t.Errorf("partitioned filters: %d + %d != %d", len(first), len(second), len(whole))
		}
	})
}

func TestDimensionFilters(t *testing.T) {
	records := []entity.CostRecord{
		rec("2024-01-01", "AWS", "Compute", f(1)),
		rec("2024-01-02", "gcp", "Storage", f(2)),
		rec("2024-01-03", "Azure", "Compute", f(3)),
	}

	t.Run("case insensitive multi-value OR", func(t *testing.T) {
		got := ByProvider(records, []string{"aws", "AZURE"})
		if len(got) != 2 {
			t.Fatalf("got %d records, want 2", len(got))
		}
	})

	t.Run("empty candidate list is a no-op", func(t *testing.T) {
		if got := ByProvider(records, nil); len(got) != len(records) {
			t.Errorf("nil candidates filtered records: %d", len(got))
		}
		if got := ByCategory(records, []string{"", "  "}); len(got) != len(records) {
			t.Errorf("blank candidates filtered records: %d", len(got))
		}
	})

	t.Run("category match", func(t *testing.T) {
		got := ByCategory(records, []string{"compute"})
		if len(got) != 2 {
			t.Fatalf("got %d records, want 2", len(got))
		}
	})
}

func TestAmountBounds(t *testing.T) {
	records := []entity.CostRecord{
		rec("2024-01-01", "aws", "c", f(10)),
		rec("2024-01-02", "aws", "c", f(20)),
		rec("2024-01-03", "aws", "c", f(30)),
	}

	if got := ByMinAmount(records, 20); len(got) != 2 {
		t.Errorf("min bound must be inclusive, got %d records", len(got))
	}
	if got := ByMaxAmount(records, 20); len(got) != 2 {
		t.Errorf("max bound must be inclusive, got %d records", len(got))
	}
}

func TestApply(t *testing.T) {
	records := []entity.CostRecord{
		rec("2024-01-01", "aws", "compute", f(100)),
		rec("2024-01-02", "gcp", "compute", f(5)),
		rec("2024-02-01", "aws", "compute", f(40)),
	}

	r := rangeOf("2024-01-01", "2024-01-31")
	min := 50.0
	got := Apply(records, Options{DateRange: &r, Providers: []string{"aws"}, MinAmount: &min})
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1", len(got))
	}
	if Amount(got[0]) != 100 {
		t.Errorf("wrong record survived: %v", got[0])
	}

	t.Run("absent options are skipped", func(t *testing.T) {
		if got := Apply(records, Options{}); len(got) != len(records) {
			t.Errorf("empty options filtered records: %d", len(got))
		}
	})

	t.Run("input is never mutated", func(t *testing.T) {
		before := records[0]
		Apply(records, Options{Providers: []string{"gcp"}})
		if records[0] != before {
			t.Error("Apply mutated its input")
		}
	})
}
