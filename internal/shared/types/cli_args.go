package types

// CLIArgs represents the command-line arguments.
type CLIArgs struct {
	ConfigFile     string
	Profiles       []string
	All            bool
	ReportName     string
	ReportType     []string
	Dir            string
	TimeRange      *int
	Tag            []string
	Trend          bool
	Forecast       bool
	Providers      []string
	Categories     []string
	MinAmount      *float64
	MaxAmount      *float64
	HierarchyTag   string
	EntityID       string
	LevelCode      string
	PathPrefix     string
	FiscalMonth    int
	FiscalDay      int
	Locale         string
	NoCache        bool
	ListenAddr     string
}
