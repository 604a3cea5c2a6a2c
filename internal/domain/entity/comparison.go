package entity

// TrendDirection classifies a period-over-period change.
type TrendDirection string

const (
	TrendUp   TrendDirection = "up"
	TrendDown TrendDirection = "down"
	TrendFlat TrendDirection = "flat"
)

// PeriodSummary is one side of a period comparison.
type PeriodSummary struct {
	Total       float64 `json:"total"`
	Label       string  `json:"label"`
	RecordCount int     `json:"record_count"`
}

// PeriodComparison is the result of comparing spend across two windows.
// ChangePercent is 100 when the previous total is 0 and the current is
// positive, and 0 when both are 0.
type PeriodComparison struct {
	Current       PeriodSummary  `json:"current"`
	Previous      PeriodSummary  `json:"previous"`
	Change        float64        `json:"change"`
	ChangePercent float64        `json:"change_percent"`
	Trend         TrendDirection `json:"trend"`
}

// TrendAnalysis summarises the direction of spend over trailing buckets.
type TrendAnalysis struct {
	Direction      TrendDirection    `json:"direction"`
	AveragePercent float64           `json:"average_percent"`
	Points         []TimeSeriesPoint `json:"points"`
}
