package entity

// GroupedCostData is one bucket of an aggregation, with its share of the
// sibling total. Percentages across a group sum to ~100 when the group
// total is positive, and are all 0 otherwise.
type GroupedCostData struct {
	Key         string  `json:"key"`
	Total       float64 `json:"total"`
	Percentage  float64 `json:"percentage"`
	RecordCount int     `json:"record_count"`
}

// TimeSeriesPoint is a chronological cost total for one local day,
// week or month key.
type TimeSeriesPoint struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
}

// ProviderTimeSeriesPoint is a TimeSeriesPoint with a per-provider
// breakdown of the same bucket.
type ProviderTimeSeriesPoint struct {
	Date      string             `json:"date"`
	Total     float64            `json:"total"`
	Providers map[string]float64 `json:"providers"`
}
