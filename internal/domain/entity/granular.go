package entity

// GranularCostRow is a cost total pre-aggregated server-side by day,
// provider, category and organizational hierarchy entity. Date is a
// YYYY-MM-DD string rather than a parsed timestamp: granular rows are
// filtered by local calendar day and keeping the wire form avoids any
// timezone round trip.
type GranularCostRow struct {
	Date                string   `json:"date"`
	Provider            string   `json:"provider"`
	Category            string   `json:"category"`
	HierarchyEntityID   string   `json:"hierarchy_entity_id"`
	HierarchyEntityName string   `json:"hierarchy_entity_name"`
	HierarchyLevelCode  string   `json:"hierarchy_level_code"`
	HierarchyPath       string   `json:"hierarchy_path"`
	HierarchyPathNames  []string `json:"hierarchy_path_names,omitempty"`
	TotalCost           float64  `json:"total_cost"`
	RecordCount         int      `json:"record_count"`
}
