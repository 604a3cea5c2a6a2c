// Package forecast projects run rates from partial-period spend.
//
// Forward projections use the FinOps 30-day-month / 12-month-year
// standard so that forecasts made in February and March are directly
// comparable; the actual length of the current month never enters the
// calculation. Year-end projection is the one exception: tracking a
// year to its end needs real calendar days, so it divides by actual
// elapsed days. The two conventions serve different goals and are
// deliberately not unified.
package forecast

import (
	"math"
	"time"

	"github.com/costlens/costlens-go/internal/domain/entity"
)

// StandardMonthDays and MonthsPerYear define the FinOps forecasting
// unit: a standardized 30-day month, 12 of them per year.
const (
	StandardMonthDays = 30
	MonthsPerYear     = 12
)

// DailyRate is the average daily spend over a partial period. Invalid
// inputs (non-positive day counts, non-finite or negative totals)
// yield 0, never NaN or Infinity.
func DailyRate(totalCost float64, daysInPeriod int) float64 {
	if daysInPeriod <= 0 {
		return 0
	}
	return clamp(totalCost / float64(daysInPeriod))
}

// Monthly projects a daily rate across the standard 30-day month.
func Monthly(dailyRate float64) float64 {
	return clamp(dailyRate) * StandardMonthDays
}

// Annual projects a daily rate across 12 standard months.
func Annual(dailyRate float64) float64 {
	return Monthly(dailyRate) * MonthsPerYear
}

// Project bundles the three run rates for a partial-period total.
func Project(totalCost float64, daysInPeriod int) entity.Forecast {
	rate := DailyRate(totalCost, daysInPeriod)
	return entity.Forecast{
		DailyRate:       rate,
		MonthlyForecast: Monthly(rate),
		AnnualForecast:  Annual(rate),
	}
}

// YearEnd projects the full-year total from year-to-date spend using
// actual elapsed calendar days, not the 30-day standard: YTD tracking
// wants calendar accuracy where forward forecasts want a stable unit.
func YearEnd(ytdCost float64, now time.Time) float64 {
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	elapsed := int(now.Sub(yearStart).Hours()/24) + 1
	if elapsed <= 0 {
		return 0
	}
	daysInYear := 365
	if isLeapYear(now.Year()) {
		daysInYear = 366
	}
	return clamp(ytdCost / float64(elapsed) * float64(daysInYear))
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func clamp(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
