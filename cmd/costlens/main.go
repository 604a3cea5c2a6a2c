package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/costlens/costlens-go/internal/adapter/driven/aws"
	"github.com/costlens/costlens-go/internal/adapter/driven/cache"
	"github.com/costlens/costlens-go/internal/adapter/driven/config"
	"github.com/costlens/costlens-go/internal/adapter/driven/export"
	"github.com/costlens/costlens-go/internal/adapter/driving/api"
	"github.com/costlens/costlens-go/internal/adapter/driving/cli"
	"github.com/costlens/costlens-go/internal/application/calendar"
	"github.com/costlens/costlens-go/internal/application/usecase"
	"github.com/costlens/costlens-go/internal/domain/repository"
	"github.com/costlens/costlens-go/internal/shared/types"
	"github.com/costlens/costlens-go/pkg/console"
	"github.com/costlens/costlens-go/pkg/format"
	"github.com/costlens/costlens-go/pkg/version"
)

func main() {
	_ = godotenv.Load()

	app := cli.NewCLIApp(version.Version)
	app.SetDashboardFactory(newDashboard)
	app.SetAPIServerFactory(newAPIServer)

	if err := app.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newDashboard builds the full dashboard stack for one CLI invocation.
func newDashboard(args *types.CLIArgs) (*usecase.DashboardUseCase, error) {
	configRepo := config.NewConfigRepository()

	var cacheDir string
	if args.ConfigFile != "" {
		cfg, err := configRepo.LoadConfigFile(args.ConfigFile)
		if err != nil {
			return nil, err
		}
		mergeConfig(args, cfg)
		cacheDir = cfg.CacheDir
	}

	if args.Dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		args.Dir = cwd
	}

	costRepo := newCostRepository(args.NoCache, cacheDir)

	return usecase.NewDashboardUseCase(
		costRepo,
		export.NewExportRepository(),
		configRepo,
		console.NewConsole(),
		newCalendar(args),
		format.New(args.Locale),
	), nil
}

// newAPIServer builds the HTTP stack for the serve subcommand.
func newAPIServer(args *types.CLIArgs) (cli.APIServer, error) {
	var cacheDir string
	if args.ConfigFile != "" {
		cfg, err := config.NewConfigRepository().LoadConfigFile(args.ConfigFile)
		if err != nil {
			return nil, err
		}
		mergeConfig(args, cfg)
		cacheDir = cfg.CacheDir
	}

	return api.NewServer(newCostRepository(args.NoCache, cacheDir), newCalendar(args)), nil
}

func newCalendar(args *types.CLIArgs) *calendar.Calendar {
	opts := []calendar.Option{}
	if args.FiscalMonth > 0 {
		opts = append(opts, calendar.WithFiscalYearStart(time.Month(args.FiscalMonth), args.FiscalDay))
	}
	return calendar.New(opts...)
}

// newCostRepository wraps the billing client in the local record cache
// unless caching is disabled. A broken cache never blocks the
// dashboard; the uncached client is used instead.
func newCostRepository(noCache bool, cacheDir string) repository.CostRepository {
	costRepo := aws.NewCostRepository()
	if noCache {
		return costRepo
	}

	if cacheDir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return costRepo
		}
		cacheDir = filepath.Join(base, "costlens")
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return costRepo
	}

	cached, err := cache.New(costRepo, filepath.Join(cacheDir, "records.db"), cache.DefaultTTL)
	if err != nil {
		return costRepo
	}
	return cached
}

// mergeConfig fills in CLI args left unset from the config file.
func mergeConfig(args *types.CLIArgs, cfg *types.Config) {
	if len(args.Profiles) == 0 {
		args.Profiles = cfg.Profiles
	}
	if args.ReportName == "" {
		args.ReportName = cfg.ReportName
	}
	if len(cfg.ReportType) > 0 && len(args.ReportType) == 1 && args.ReportType[0] == "csv" {
		args.ReportType = cfg.ReportType
	}
	if args.Dir == "" {
		args.Dir = cfg.Dir
	}
	if args.TimeRange == nil && cfg.TimeRange > 0 {
		timeRange := cfg.TimeRange
		args.TimeRange = &timeRange
	}
	if len(args.Tag) == 0 {
		args.Tag = cfg.Tag
	}
	if cfg.Trend {
		args.Trend = true
	}
	if args.HierarchyTag == "" {
		args.HierarchyTag = cfg.HierarchyTag
	}
	if args.FiscalMonth == 0 && cfg.FiscalMonth > 0 {
		args.FiscalMonth = cfg.FiscalMonth
		args.FiscalDay = cfg.FiscalDay
	}
	if args.Locale == "" {
		args.Locale = cfg.Locale
	}
	if args.ListenAddr == "" {
		args.ListenAddr = cfg.ListenAddr
	}
}
