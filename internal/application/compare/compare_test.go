package compare

import (
	"reflect"
	"testing"
	"time"

	"github.com/costlens/costlens-go/internal/application/calendar"
	"github.com/costlens/costlens-go/internal/domain/entity"
)

func f(v float64) *float64 { return &v }

func rec(day string, provider string, cost float64) entity.CostRecord {
	t, _ := time.ParseInLocation(entity.DayFormat, day, time.Local)
	return entity.CostRecord{
		ChargePeriodStart:   t,
		ServiceProviderName: provider,
		EffectiveCost:       f(cost),
	}
}

func rangeOf(startDay, endDay, label string) entity.DateRange {
	s, _ := time.ParseInLocation(entity.DayFormat, startDay, time.Local)
	e, _ := time.ParseInLocation(entity.DayFormat, endDay, time.Local)
	return entity.DateRange{
		Start: s,
		End:   time.Date(e.Year(), e.Month(), e.Day(), 23, 59, 59, 0, time.Local),
		Label: label,
	}
}

func TestPeriods(t *testing.T) {
	records := []entity.CostRecord{
		rec("2024-05-10", "aws", 100),
		rec("2024-06-10", "aws", 150),
	}
	current := rangeOf("2024-06-01", "2024-06-30", "June")
	previous := rangeOf("2024-05-01", "2024-05-31", "May")

	got := Periods(records, current, previous)
	if got.Change != 50 {
		t.Errorf("change = %v, want 50", got.Change)
	}
	if got.ChangePercent != 50 {
		t.Errorf("changePercent = %v, want 50", got.ChangePercent)
	}
	if got.Trend != entity.TrendUp {
		t.Errorf("trend = %s, want up", got.Trend)
	}
	if got.Current.RecordCount != 1 || got.Previous.RecordCount != 1 {
		t.Errorf("record counts = %d/%d, want 1/1", got.Current.RecordCount, got.Previous.RecordCount)
	}

	t.Run("idempotent", func(t *testing.T) {
		again := Periods(records, current, previous)
		if !reflect.DeepEqual(got, again) {
			t.Error("identical inputs produced different comparisons")
		}
	})
}

func TestPeriodsEdgeCases(t *testing.T) {
	current := rangeOf("2024-06-01", "2024-06-30", "June")
	previous := rangeOf("2024-05-01", "2024-05-31", "May")

	t.Run("previous zero and current positive is a 100 percent rise", func(t *testing.T) {
		records := []entity.CostRecord{rec("2024-06-05", "aws", 200)}
		got := Periods(records, current, previous)
		if got.ChangePercent != 100 {
			t.Errorf("changePercent = %v, want 100", got.ChangePercent)
		}
		if got.Trend != entity.TrendUp {
			t.Errorf("trend = %s, want up", got.Trend)
		}
	})

	t.Run("both zero is flat", func(t *testing.T) {
		got := Periods(nil, current, previous)
		if got.ChangePercent != 0 {
			t.Errorf("changePercent = %v, want 0", got.ChangePercent)
		}
		if got.Trend != entity.TrendFlat {
			t.Errorf("trend = %s, want flat", got.Trend)
		}
	})

	t.Run("change inside the cent threshold is flat", func(t *testing.T) {
		records := []entity.CostRecord{
			rec("2024-05-10", "aws", 100),
			rec("2024-06-10", "aws", 100.005),
		}
		got := Periods(records, current, previous)
		if got.Trend != entity.TrendFlat {
			t.Errorf("trend = %s, want flat for |change| <= 0.01", got.Trend)
		}
	})
}

func TestPeriodsByProvider(t *testing.T) {
	records := []entity.CostRecord{
		rec("2024-05-10", "aws", 100),
		rec("2024-06-10", "gcp", 40),
	}
	current := rangeOf("2024-06-01", "2024-06-30", "June")
	previous := rangeOf("2024-05-01", "2024-05-31", "May")

	got := PeriodsByProvider(records, current, previous)
	if len(got) != 2 {
		t.Fatalf("got %d providers, want union of 2", len(got))
	}
	aws := got["aws"]
	if aws.Current.Total != 0 || aws.Previous.Total != 100 {
		t.Errorf("aws one-sided totals = %v/%v", aws.Current.Total, aws.Previous.Total)
	}
	if aws.Trend != entity.TrendDown {
		t.Errorf("aws trend = %s, want down", aws.Trend)
	}
	gcp := got["gcp"]
	if gcp.ChangePercent != 100 {
		t.Errorf("gcp changePercent = %v, want 100", gcp.ChangePercent)
	}
}

func TestConvenienceComparisons(t *testing.T) {
	now := time.Date(2024, time.June, 12, 12, 0, 0, 0, time.Local)
	cal := calendar.New(calendar.WithNow(func() time.Time { return now }))
	records := []entity.CostRecord{
		rec("2024-06-05", "aws", 90),
		rec("2024-05-05", "aws", 60),
		rec("2023-06-05", "aws", 30),
	}

	t.Run("month over month", func(t *testing.T) {
		got := MonthOverMonth(cal, records)
		if got.Current.Total != 90 || got.Previous.Total != 60 {
			t.Errorf("totals = %v/%v, want 90/60", got.Current.Total, got.Previous.Total)
		}
	})

	t.Run("mtd vs prior clamps to elapsed days", func(t *testing.T) {
		got := MonthToDateVsPrior(cal, records)
		if got.Current.Total != 90 || got.Previous.Total != 60 {
			t.Errorf("totals = %v/%v, want 90/60", got.Current.Total, got.Previous.Total)
		}
	})

	t.Run("ytd vs prior year", func(t *testing.T) {
		got := YearToDateVsPrior(cal, records)
		if got.Current.Total != 150 || got.Previous.Total != 30 {
			t.Errorf("totals = %v/%v, want 150/30", got.Current.Total, got.Previous.Total)
		}
	})

	t.Run("last 7 days vs prior window", func(t *testing.T) {
		got := LastDaysVsPrior(cal, records, 7)
		if got.Current.Total != 0 {
			t.Errorf("current total = %v, want 0 (no records in window)", got.Current.Total)
		}
	})
}

func TestAnalyzeTrend(t *testing.T) {
	t.Run("rising months classify up", func(t *testing.T) {
		records := []entity.CostRecord{
			rec("2024-01-15", "aws", 100),
			rec("2024-02-15", "aws", 120),
			rec("2024-03-15", "aws", 150),
		}
		got := AnalyzeTrend(records, Monthly, 6)
		if got.Direction != entity.TrendUp {
			t.Errorf("direction = %s, want up", got.Direction)
		}
		if len(got.Points) != 3 {
			t.Errorf("got %d points, want 3", len(got.Points))
		}
	})

	t.Run("falling months classify down", func(t *testing.T) {
		records := []entity.CostRecord{
			rec("2024-01-15", "aws", 150),
			rec("2024-02-15", "aws", 100),
		}
		got := AnalyzeTrend(records, Monthly, 6)
		if got.Direction != entity.TrendDown {
			t.Errorf("direction = %s, want down", got.Direction)
		}
	})

	t.Run("single point is stable", func(t *testing.T) {
		records := []entity.CostRecord{rec("2024-01-15", "aws", 150)}
		got := AnalyzeTrend(records, Monthly, 6)
		if got.Direction != entity.TrendFlat || got.AveragePercent != 0 {
			t.Errorf("got %s/%v, want flat/0", got.Direction, got.AveragePercent)
		}
	})

	t.Run("lookback trims to trailing buckets", func(t *testing.T) {
		records := []entity.CostRecord{
			rec("2024-01-15", "aws", 1),
			rec("2024-02-15", "aws", 2),
			rec("2024-03-15", "aws", 3),
			rec("2024-04-15", "aws", 4),
		}
		got := AnalyzeTrend(records, Monthly, 2)
		if len(got.Points) != 2 {
			t.Fatalf("got %d points, want 2", len(got.Points))
		}
		if got.Points[0].Date != "2024-03" {
			t.Errorf("first trailing bucket = %s, want 2024-03", got.Points[0].Date)
		}
	})
}
