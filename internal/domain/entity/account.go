package entity

// AccountData is everything the dashboard collects and computes for a
// single billing profile: the raw comparison inputs plus the formatted
// strings the table and exports consume.
type AccountData struct {
	Profile               string            `json:"profile"`
	AccountID             string            `json:"account_id"`
	PreviousPeriod        float64           `json:"previous_period"`
	CurrentPeriod         float64           `json:"current_period"`
	Comparison            PeriodComparison  `json:"comparison"`
	Forecast              Forecast          `json:"forecast"`
	ServiceCosts          []GroupedCostData `json:"service_costs"`
	ServiceCostsFormatted []string          `json:"service_costs_formatted"`
	BudgetInfo            []string          `json:"budget_info"`
	Budgets               []BudgetInfo      `json:"budgets,omitempty"`
	Success               bool              `json:"success"`
	Error                 string            `json:"error,omitempty"`
	CurrentPeriodName     string            `json:"current_period_name"`
	PreviousPeriodName    string            `json:"previous_period_name"`
}
