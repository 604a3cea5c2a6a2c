package forecast

import (
	"math"
	"testing"
	"time"
)

func TestDailyRate(t *testing.T) {
	tests := []struct {
		name  string
		total float64
		days  int
		want  float64
	}{
		{"simple division", 150, 31, 150.0 / 31},
		{"zero days", 100, 0, 0},
		{"negative days", 100, -5, 0},
		{"NaN total", math.NaN(), 10, 0},
		{"infinite total", math.Inf(1), 10, 0},
		{"negative total clamps to zero", -50, 10, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := DailyRate(tc.total, tc.days)
			if got != tc.want {
				t.Errorf("DailyRate(%v, %d) = %v, want %v", tc.total, tc.days, got, tc.want)
			}
			if math.IsNaN(got) || math.IsInf(got, 0) || got < 0 {
				t.Errorf("DailyRate produced a non-finite or negative value: %v", got)
			}
		})
	}
}

func TestThirtyDayStandard(t *testing.T) {
	t.Run("monthly forecast is rate times 30 regardless of the month", func(t *testing.T) {
		if got := Monthly(10); got != 300 {
			t.Errorf("Monthly(10) = %v, want 300", got)
		}
	})

	t.Run("annual forecast is twelve standard months", func(t *testing.T) {
		if got := Annual(10); got != 3600 {
			t.Errorf("Annual(10) = %v, want 3600", got)
		}
	})

	t.Run("project bundles all three rates", func(t *testing.T) {
		got := Project(310, 31)
		if got.DailyRate != 10 {
			t.Errorf("daily rate = %v, want 10", got.DailyRate)
		}
		if got.MonthlyForecast != 300 {
			t.Errorf("monthly = %v, want 300 (30-day standard, not 31)", got.MonthlyForecast)
		}
		if got.AnnualForecast != 3600 {
			t.Errorf("annual = %v, want 3600", got.AnnualForecast)
		}
	})

	t.Run("invalid input produces all zeros", func(t *testing.T) {
		got := Project(math.NaN(), 0)
		if got.DailyRate != 0 || got.MonthlyForecast != 0 || got.AnnualForecast != 0 {
			t.Errorf("want zero forecast, got %+v", got)
		}
	})
}

func TestYearEnd(t *testing.T) {
	t.Run("uses actual elapsed days", func(t *testing.T) {
		// Day 100 of a leap year, $1000 spent so far.
		now := time.Date(2024, time.April, 9, 12, 0, 0, 0, time.Local)
		got := YearEnd(1000, now)
		want := 1000.0 / 100 * 366
		if math.Abs(got-want) > 0.01 {
			t.Errorf("YearEnd = %v, want %v", got, want)
		}
	})

	t.Run("non-leap year divides by 365", func(t *testing.T) {
		now := time.Date(2023, time.January, 10, 12, 0, 0, 0, time.Local)
		got := YearEnd(100, now)
		want := 100.0 / 10 * 365
		if math.Abs(got-want) > 0.01 {
			t.Errorf("YearEnd = %v, want %v", got, want)
		}
	})

	t.Run("invalid spend is zero", func(t *testing.T) {
		now := time.Date(2024, time.April, 9, 0, 0, 0, 0, time.Local)
		if got := YearEnd(math.Inf(1), now); got != 0 {
			t.Errorf("YearEnd(+Inf) = %v, want 0", got)
		}
	})
}
