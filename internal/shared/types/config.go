package types

// Config represents the application configuration that can be loaded from a file.
type Config struct {
	Profiles     []string `json:"profiles" yaml:"profiles" toml:"profiles"`
	ReportName   string   `json:"report_name" yaml:"report_name" toml:"report_name"`
	ReportType   []string `json:"report_type" yaml:"report_type" toml:"report_type"`
	Dir          string   `json:"dir" yaml:"dir" toml:"dir"`
	TimeRange    int      `json:"time_range" yaml:"time_range" toml:"time_range"`
	Tag          []string `json:"tag" yaml:"tag" toml:"tag"`
	Trend        bool     `json:"trend" yaml:"trend" toml:"trend"`
	HierarchyTag string   `json:"hierarchy_tag" yaml:"hierarchy_tag" toml:"hierarchy_tag"`
	FiscalMonth  int      `json:"fiscal_month" yaml:"fiscal_month" toml:"fiscal_month"`
	FiscalDay    int      `json:"fiscal_day" yaml:"fiscal_day" toml:"fiscal_day"`
	Locale       string   `json:"locale" yaml:"locale" toml:"locale"`
	CacheDir     string   `json:"cache_dir" yaml:"cache_dir" toml:"cache_dir"`
	ListenAddr   string   `json:"listen_addr" yaml:"listen_addr" toml:"listen_addr"`
}
