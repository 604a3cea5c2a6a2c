package entity

import "time"

// CostRecord is a single billing line as delivered by the backing cost API.
// Cost fields are pointers because the upstream payload may carry null for
// either of them; a nil or non-finite cost is treated as 0 at point of use.
type CostRecord struct {
	ChargePeriodStart   time.Time `json:"charge_period_start"`
	ServiceProviderName string    `json:"service_provider_name"`
	ServiceCategory     string    `json:"service_category"`
	ServiceName         string    `json:"service_name"`
	EffectiveCost       *float64  `json:"effective_cost,omitempty"`
	BilledCost          *float64  `json:"billed_cost,omitempty"`
}

// DateRange is an inclusive window of local calendar days. Start is a
// start-of-day instant, End an end-of-day instant, and Start <= End.
// Label is a display caption and never participates in comparisons.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Label string    `json:"label"`
}

// DayFormat is the canonical local calendar-day layout. All date
// inclusion tests in the analytics core compare days in this form
// rather than comparing instants, so a record logged at 23:30 local
// never drifts into the neighbouring day through UTC conversion.
const DayFormat = "2006-01-02"

// LocalDay truncates an instant to its local calendar day.
func LocalDay(t time.Time) string {
	return t.Format(DayFormat)
}
