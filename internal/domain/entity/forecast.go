package entity

// Forecast carries projected run rates derived from a partial-period
// total. Monthly and annual projections use the FinOps 30-day month and
// 12-month year standard rather than calendar month lengths, so values
// stay comparable across months. All values are finite and non-negative.
type Forecast struct {
	DailyRate       float64 `json:"daily_rate"`
	MonthlyForecast float64 `json:"monthly_forecast"`
	AnnualForecast  float64 `json:"annual_forecast"`
}
