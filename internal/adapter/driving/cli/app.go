package cli

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/costlens/costlens-go/internal/application/usecase"
	"github.com/costlens/costlens-go/internal/shared/types"
	"github.com/costlens/costlens-go/pkg/version"
)

// APIServer is the surface the serve subcommand needs from the HTTP
// adapter.
type APIServer interface {
	Run(addr string) error
}

// CLIApp represents the command-line interface application. The
// dashboard stack is built per invocation so flags like locale, fiscal
// year start and no-cache can shape it.
type CLIApp struct {
	rootCmd      *cobra.Command
	newDashboard func(*types.CLIArgs) (*usecase.DashboardUseCase, error)
	newAPIServer func(*types.CLIArgs) (APIServer, error)
	version      string
}

// NewCLIApp creates a new CLI application.
func NewCLIApp(versionStr string) *CLIApp {
	app := &CLIApp{
		version: versionStr,
	}

	formattedVersion := version.FormatVersion()

	rootCmd := &cobra.Command{
		Use:     "costlens",
		Short:   "CostLens cost analytics dashboard CLI",
		Version: formattedVersion,
		RunE:    app.runCommand,
	}

	rootCmd.SetVersionTemplate(`{{printf "CostLens version: %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringP("config-file", "C", "", "Path to a TOML, YAML, or JSON configuration file")
	rootCmd.PersistentFlags().StringSliceP("profiles", "p", nil, "Specific billing profiles to use (comma-separated)")
	rootCmd.PersistentFlags().BoolP("all", "a", false, "Use all available billing profiles")
	rootCmd.PersistentFlags().StringP("report-name", "n", "", "Specify the base name for the report file (without extension)")
	rootCmd.PersistentFlags().StringSliceP("report-type", "y", []string{"csv"}, "Specify report types: csv, json, pdf")
	rootCmd.PersistentFlags().StringP("dir", "d", "", "Directory to save the report files (default: current directory)")
	rootCmd.PersistentFlags().IntP("time-range", "t", 0, "Time range for cost data in days (default: current month)")
	rootCmd.PersistentFlags().StringSliceP("tag", "g", nil, "Cost allocation tag to filter records, e.g., --tag Team=DevOps")
	rootCmd.PersistentFlags().Bool("trend", false, "Display a trend report as bars for the past 6 months")
	rootCmd.PersistentFlags().Bool("forecast", false, "Display year-to-date spend with run-rate and year-end projections")
	rootCmd.PersistentFlags().StringSlice("provider", nil, "Only include records from these providers")
	rootCmd.PersistentFlags().StringSlice("category", nil, "Only include records from these service categories")
	rootCmd.PersistentFlags().Float64("min-amount", 0, "Only include records with at least this cost")
	rootCmd.PersistentFlags().Float64("max-amount", 0, "Only include records with at most this cost")
	rootCmd.PersistentFlags().String("hierarchy-tag", "", "Cost allocation tag carrying the org hierarchy; enables the granular report")
	rootCmd.PersistentFlags().String("entity", "", "Restrict the granular report to one hierarchy entity id")
	rootCmd.PersistentFlags().String("level", "", "Restrict the granular report to one hierarchy level")
	rootCmd.PersistentFlags().String("path-prefix", "", "Restrict the granular report to a hierarchy subtree, e.g. /acme/platform")
	rootCmd.PersistentFlags().Int("fiscal-month", 0, "First month of the fiscal year, 1-12 (default: April)")
	rootCmd.PersistentFlags().Int("fiscal-day", 1, "First day of the fiscal year")
	rootCmd.PersistentFlags().String("locale", "", "BCP 47 locale for money formatting (default en-US)")
	rootCmd.PersistentFlags().Bool("no-cache", false, "Bypass the local record cache")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard as a JSON API",
		RunE:  app.serveCommand,
	}
	serveCmd.Flags().String("listen", ":8080", "Address to listen on")
	rootCmd.AddCommand(serveCmd)

	app.rootCmd = rootCmd
	return app
}

// Execute runs the CLI application.
func (app *CLIApp) Execute() error {
	return app.rootCmd.Execute()
}

// parseArgs parses command-line flags into a CLIArgs struct.
func (app *CLIApp) parseArgs() (*types.CLIArgs, error) {
	flags := app.rootCmd.Flags()

	configFile, _ := flags.GetString("config-file")
	profiles, _ := flags.GetStringSlice("profiles")
	all, _ := flags.GetBool("all")
	reportName, _ := flags.GetString("report-name")
	reportType, _ := flags.GetStringSlice("report-type")
	dir, _ := flags.GetString("dir")
	timeRange, _ := flags.GetInt("time-range")
	tag, _ := flags.GetStringSlice("tag")
	trend, _ := flags.GetBool("trend")
	forecastFlag, _ := flags.GetBool("forecast")
	providers, _ := flags.GetStringSlice("provider")
	categories, _ := flags.GetStringSlice("category")
	hierarchyTag, _ := flags.GetString("hierarchy-tag")
	entityID, _ := flags.GetString("entity")
	levelCode, _ := flags.GetString("level")
	pathPrefix, _ := flags.GetString("path-prefix")
	fiscalMonth, _ := flags.GetInt("fiscal-month")
	fiscalDay, _ := flags.GetInt("fiscal-day")
	locale, _ := flags.GetString("locale")
	noCache, _ := flags.GetBool("no-cache")

	// Left empty here so a config file directory can still apply; the
	// composition root falls back to the working directory.
	if dir != "" {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		dir = absDir
	}

	timeRangePtr := &timeRange
	if timeRange == 0 {
		timeRangePtr = nil
	}

	var minAmount, maxAmount *float64
	if flags.Changed("min-amount") {
		v, _ := flags.GetFloat64("min-amount")
		minAmount = &v
	}
	if flags.Changed("max-amount") {
		v, _ := flags.GetFloat64("max-amount")
		maxAmount = &v
	}

	args := &types.CLIArgs{
		ConfigFile:   configFile,
		Profiles:     profiles,
		All:          all,
		ReportName:   reportName,
		ReportType:   reportType,
		Dir:          dir,
		TimeRange:    timeRangePtr,
		Tag:          tag,
		Trend:        trend,
		Forecast:     forecastFlag,
		Providers:    providers,
		Categories:   categories,
		MinAmount:    minAmount,
		MaxAmount:    maxAmount,
		HierarchyTag: hierarchyTag,
		EntityID:     entityID,
		LevelCode:    levelCode,
		PathPrefix:   pathPrefix,
		FiscalMonth:  fiscalMonth,
		FiscalDay:    fiscalDay,
		Locale:       locale,
		NoCache:      noCache,
	}

	return args, nil
}

// runCommand is the main entry point for the root command.
func (app *CLIApp) runCommand(cmd *cobra.Command, args []string) error {
	displayWelcomeBanner(app.version)

	go version.CheckLatestVersion(app.version)

	cliArgs, err := app.parseArgs()
	if err != nil {
		return err
	}

	dashboard, err := app.newDashboard(cliArgs)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return dashboard.RunDashboard(ctx, cliArgs)
}

// serveCommand starts the JSON API server.
func (app *CLIApp) serveCommand(cmd *cobra.Command, args []string) error {
	cliArgs, err := app.parseArgs()
	if err != nil {
		return err
	}

	server, err := app.newAPIServer(cliArgs)
	if err != nil {
		return err
	}

	addr, _ := cmd.Flags().GetString("listen")
	if !cmd.Flags().Changed("listen") && cliArgs.ListenAddr != "" {
		addr = cliArgs.ListenAddr
	}
	return server.Run(addr)
}

// SetDashboardFactory sets the constructor for the dashboard use case.
func (app *CLIApp) SetDashboardFactory(factory func(*types.CLIArgs) (*usecase.DashboardUseCase, error)) {
	app.newDashboard = factory
}

// SetAPIServerFactory sets the constructor for the serve subcommand.
func (app *CLIApp) SetAPIServerFactory(factory func(*types.CLIArgs) (APIServer, error)) {
	app.newAPIServer = factory
}
