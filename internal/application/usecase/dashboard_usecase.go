package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"golang.org/x/sync/errgroup"

	"github.com/costlens/costlens-go/internal/application/aggregate"
	"github.com/costlens/costlens-go/internal/application/calendar"
	"github.com/costlens/costlens-go/internal/application/compare"
	"github.com/costlens/costlens-go/internal/application/filter"
	"github.com/costlens/costlens-go/internal/application/forecast"
	"github.com/costlens/costlens-go/internal/application/hierarchy"
	"github.com/costlens/costlens-go/internal/domain/entity"
	"github.com/costlens/costlens-go/internal/domain/repository"
	"github.com/costlens/costlens-go/internal/shared/types"
	"github.com/costlens/costlens-go/pkg/format"
)

// DashboardUseCase drives the cost dashboard: it fetches one wide
// record window per profile and computes every view client-side with
// the calendar, filter, aggregate, compare and forecast packages.
type DashboardUseCase struct {
	costRepo   repository.CostRepository
	exportRepo repository.ExportRepository
	configRepo repository.ConfigRepository
	console    types.ConsoleInterface
	cal        *calendar.Calendar
	fmtr       *format.Formatter
}

// NewDashboardUseCase creates a new dashboard use case.
func NewDashboardUseCase(
	costRepo repository.CostRepository,
	exportRepo repository.ExportRepository,
	configRepo repository.ConfigRepository,
	console types.ConsoleInterface,
	cal *calendar.Calendar,
	fmtr *format.Formatter,
) *DashboardUseCase {
	return &DashboardUseCase{
		costRepo:   costRepo,
		exportRepo: exportRepo,
		configRepo: configRepo,
		console:    console,
		cal:        cal,
		fmtr:       fmtr,
	}
}

// InitializeProfiles determines which billing profiles to use based on CLI args.
func (uc *DashboardUseCase) InitializeProfiles(args *types.CLIArgs) ([]string, int, error) {
	availableProfiles := uc.costRepo.GetProfiles()
	if len(availableProfiles) == 0 {
		return nil, 0, types.ErrNoProfilesFound
	}

	profilesToUse := []string{}

	if len(args.Profiles) > 0 {
		for _, profile := range args.Profiles {
			found := false
			for _, availProfile := range availableProfiles {
				if profile == availProfile {
					profilesToUse = append(profilesToUse, profile)
					found = true
					break
				}
			}
			if !found {
				uc.console.LogWarning("Profile '%s' not found in AWS configuration", profile)
			}
		}
		if len(profilesToUse) == 0 {
			return nil, 0, types.ErrNoValidProfilesFound
		}
	} else if args.All {
		profilesToUse = availableProfiles
	} else {
		defaultExists := false
		for _, profile := range availableProfiles {
			if profile == "default" {
				profilesToUse = []string{"default"}
				defaultExists = true
				break
			}
		}

		if !defaultExists {
			profilesToUse = availableProfiles
			uc.console.LogWarning("No default profile found. Using all available profiles.")
		}
	}

	var timeRange int
	if args.TimeRange != nil {
		timeRange = *args.TimeRange
	}

	return profilesToUse, timeRange, nil
}

// resolveWindows picks the current and previous comparison windows.
// A positive timeRange selects rolling windows of that many days;
// otherwise the current window is month to date against the same
// number of elapsed days in the prior month.
func (uc *DashboardUseCase) resolveWindows(timeRange int) (current, previous entity.DateRange, currentName, previousName string) {
	if timeRange > 0 {
		current = uc.cal.RollingDays(timeRange)
		previous = calendar.PreviousPeriod(current)
		currentName = fmt.Sprintf("Current %d days cost", timeRange)
		previousName = fmt.Sprintf("Previous %d days cost", timeRange)
		return
	}

	current = uc.cal.MonthToDate()
	elapsed := calendar.DaysInRange(current)

	lastMonth := uc.cal.LastMonth()
	prevEnd := lastMonth.Start.AddDate(0, 0, elapsed-1)
	if prevEnd.After(lastMonth.End) {
		prevEnd = lastMonth.End
	}
	previous = entity.DateRange{
		Start: lastMonth.Start,
		End:   prevEnd,
		Label: "Last month to date",
	}
	currentName = "Current month's cost"
	previousName = "Last month's cost"
	return
}

// fetchWindow is the single wide window covering both comparison
// periods; every view slices it locally.
func fetchWindow(current, previous entity.DateRange) entity.DateRange {
	window := entity.DateRange{Start: previous.Start, End: current.End, Label: "fetch"}
	if current.Start.Before(window.Start) {
		window.Start = current.Start
	}
	return window
}

func filterOptionsFromArgs(args *types.CLIArgs) filter.Options {
	return filter.Options{
		Providers:  args.Providers,
		Categories: args.Categories,
		MinAmount:  args.MinAmount,
		MaxAmount:  args.MaxAmount,
	}
}

// RunDashboard executes the main dashboard flow.
func (uc *DashboardUseCase) RunDashboard(ctx context.Context, args *types.CLIArgs) error {
	profilesToUse, timeRange, err := uc.InitializeProfiles(args)
	if err != nil {
		return err
	}

	if args.Trend {
		return uc.RunTrendAnalysis(ctx, profilesToUse, args)
	}

	if args.Forecast {
		return uc.RunForecastReport(ctx, profilesToUse, args)
	}

	if args.HierarchyTag != "" {
		return uc.RunGranularReport(ctx, profilesToUse, args, timeRange)
	}

	status := uc.console.Status("Initializing dashboard...")

	current, previous, currentName, previousName := uc.resolveWindows(timeRange)
	previousPeriodDates := fmt.Sprintf("%s to %s",
		previous.Start.Format(entity.DayFormat), previous.End.Format(entity.DayFormat))
	currentPeriodDates := fmt.Sprintf("%s to %s",
		current.Start.Format(entity.DayFormat), current.End.Format(entity.DayFormat))

	table := uc.createDisplayTable(previousPeriodDates, currentPeriodDates, previousName, currentName)

	exportData := uc.generateDashboardData(ctx, profilesToUse, current, previous, currentName, previousName, args, table, status)

	status.Stop()

	uc.console.Print(table.Render())

	if args.ReportName != "" && len(args.ReportType) > 0 {
		for _, reportType := range args.ReportType {
			switch reportType {
			case "csv":
				csvPath, err := uc.exportRepo.ExportToCSV(exportData, args.ReportName, args.Dir, previousPeriodDates, currentPeriodDates)
				if err != nil {
					uc.console.LogError("Failed to export to CSV: %s", err)
				} else {
					uc.console.LogSuccess("Successfully exported to CSV: %s", csvPath)
				}
			case "json":
				jsonPath, err := uc.exportRepo.ExportToJSON(exportData, args.ReportName, args.Dir)
				if err != nil {
					uc.console.LogError("Failed to export to JSON: %s", err)
				} else {
					uc.console.LogSuccess("Successfully exported to JSON: %s", jsonPath)
				}
			case "pdf":
				pdfPath, err := uc.exportRepo.ExportToPDF(exportData, args.ReportName, args.Dir, previousPeriodDates, currentPeriodDates)
				if err != nil {
					uc.console.LogError("Failed to export to PDF: %s", err)
				} else {
					uc.console.LogSuccess("\nSuccessfully exported to PDF: %s", pdfPath)
				}
			}
		}
	}

	return nil
}

// generateDashboardData processes every profile into a table row plus
// export payload, with incremental progress updates.
func (uc *DashboardUseCase) generateDashboardData(
	ctx context.Context,
	profilesToUse []string,
	current, previous entity.DateRange,
	currentName, previousName string,
	args *types.CLIArgs,
	table types.TableInterface,
	status types.StatusHandle,
) []entity.AccountData {
	exportData := []entity.AccountData{}

	progressTotal := len(profilesToUse) * 5
	progress := uc.console.ProgressWithTotal(progressTotal)

	for _, profile := range profilesToUse {
		status.Update(fmt.Sprintf("Processing profile %s...", profile))

		accountData := uc.ProcessSingleProfileWithProgress(ctx, profile, current, previous, currentName, previousName, args, progress, status)
		exportData = append(exportData, accountData)
		uc.addAccountToTable(table, accountData)
	}

	progress.Stop()
	return exportData
}

// ProcessSingleProfileWithProgress fetches and analyzes one profile.
func (uc *DashboardUseCase) ProcessSingleProfileWithProgress(
	ctx context.Context,
	profile string,
	current, previous entity.DateRange,
	currentName, previousName string,
	args *types.CLIArgs,
	progress types.ProgressHandle,
	status types.StatusHandle,
) entity.AccountData {
	accountData := entity.AccountData{
		Profile:            profile,
		Success:            false,
		CurrentPeriodName:  currentName,
		PreviousPeriodName: previousName,
	}

	skipRemaining := func(done int) {
		for i := done; i < 5; i++ {
			progress.Increment()
		}
	}

	// Step 1: account identity.
	status.Update(fmt.Sprintf("Getting account data for %s...", profile))
	if accountID, err := uc.costRepo.GetAccountID(ctx, profile); err == nil {
		accountData.AccountID = accountID
	}
	progress.Increment()

	// Step 2: records and budgets, fetched concurrently.
	status.Update(fmt.Sprintf("Getting cost data for %s...", profile))
	var records []entity.CostRecord
	var budgets []entity.BudgetInfo

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = uc.costRepo.FetchRecords(gctx, profile, fetchWindow(current, previous), args.Tag)
		return err
	})
	g.Go(func() error {
		var err error
		budgets, err = uc.costRepo.GetBudgets(gctx, profile)
		return err
	})
	if err := g.Wait(); err != nil {
		accountData.Error = err.Error()
		skipRemaining(1)
		return accountData
	}
	progress.Increment()

	// Step 3: dimension and amount filters.
	status.Update(fmt.Sprintf("Filtering records for %s...", profile))
	records = filter.Apply(records, filterOptionsFromArgs(args))
	progress.Increment()

	// Step 4: comparison and service breakdown.
	status.Update(fmt.Sprintf("Aggregating costs for %s...", profile))
	comparison := compare.Periods(records, current, previous)

	currentRecords := filter.ByDateRange(records, current)
	serviceCosts := aggregate.ToGroupedArray(aggregate.GroupByService(currentRecords), aggregate.SortByValue)
	progress.Increment()

	// Step 5: forecast and display formatting.
	status.Update(fmt.Sprintf("Processing data for %s...", profile))
	accountData.PreviousPeriod = comparison.Previous.Total
	accountData.CurrentPeriod = comparison.Current.Total
	accountData.Comparison = comparison
	accountData.Forecast = forecast.Project(comparison.Current.Total, calendar.DaysInRange(current))
	accountData.ServiceCosts = serviceCosts
	accountData.ServiceCostsFormatted = uc.formatServiceCosts(serviceCosts)
	accountData.Budgets = budgets
	accountData.BudgetInfo = uc.formatBudgetInfo(budgets)
	accountData.Success = true
	progress.Increment()

	return accountData
}

// RunTrendAnalysis renders a monthly trend chart per profile.
func (uc *DashboardUseCase) RunTrendAnalysis(ctx context.Context, profilesToUse []string, args *types.CLIArgs) error {
	uc.console.LogInfo("Analysing cost trends...")

	const lookbackMonths = 6

	today := uc.cal.Today()
	firstOfMonth := time.Date(today.Start.Year(), today.Start.Month(), 1, 0, 0, 0, 0, today.Start.Location())
	window := entity.DateRange{
		Start: firstOfMonth.AddDate(0, -(lookbackMonths - 1), 0),
		End:   today.End,
		Label: "trend window",
	}

	for _, profile := range profilesToUse {
		records, err := uc.costRepo.FetchRecords(ctx, profile, window, args.Tag)
		if err != nil {
			uc.console.LogError("Error getting trend for profile %s: %s", profile, err)
			continue
		}
		records = filter.Apply(records, filterOptionsFromArgs(args))

		analysis := compare.AnalyzeTrend(records, compare.Monthly, lookbackMonths)
		if len(analysis.Points) == 0 {
			uc.console.LogWarning("No trend data available for profile %s", profile)
			continue
		}

		accountID, _ := uc.costRepo.GetAccountID(ctx, profile)
		if accountID == "" {
			accountID = "Unknown"
		}

		uc.console.Printf("\n%s\n",
			pterm.FgYellow.Sprintf("Account: %s (Profile: %s)", accountID, profile))
		uc.console.DisplayTrendBars(trendPoints(analysis))

		uc.console.LogInfo("Overall direction: %s (avg %s per period)",
			analysis.Direction, uc.fmtr.Percent(analysis.AveragePercent))
	}

	return nil
}

// trendPoints converts a trend analysis to chart points with
// period-over-period change percentages.
func trendPoints(analysis entity.TrendAnalysis) []types.TrendPoint {
	points := make([]types.TrendPoint, len(analysis.Points))
	for i, p := range analysis.Points {
		points[i] = types.TrendPoint{Period: p.Date, Cost: p.Total}
		if i > 0 {
			prev := analysis.Points[i-1].Total
			var pct float64
			switch {
			case prev > 0:
				pct = (p.Total - prev) / prev * 100
			case p.Total > 0:
				pct = 100
			}
			points[i].ChangePercent = &pct
		}
	}
	return points
}

// RunForecastReport renders year-to-date spend with run-rate and
// year-end projections per profile.
func (uc *DashboardUseCase) RunForecastReport(ctx context.Context, profilesToUse []string, args *types.CLIArgs) error {
	uc.console.LogInfo("Projecting year-end spend...")

	ytd := uc.cal.YearToDate()

	table := uc.console.CreateTable()
	table.AddColumn("Account Profile")
	table.AddColumn(fmt.Sprintf("YTD Spend\n(%s to %s)",
		ytd.Start.Format(entity.DayFormat), ytd.End.Format(entity.DayFormat)))
	table.AddColumn("Daily Run Rate")
	table.AddColumn("30-Day Forecast")
	table.AddColumn("Annual Forecast")
	table.AddColumn("Projected Year-End")

	for _, profile := range profilesToUse {
		records, err := uc.costRepo.FetchRecords(ctx, profile, ytd, args.Tag)
		if err != nil {
			uc.console.LogError("Error getting forecast data for profile %s: %s", profile, err)
			continue
		}
		records = filter.Apply(records, filterOptionsFromArgs(args))

		total := aggregate.SumCosts(records)
		projection := forecast.Project(total, calendar.DaysInRange(ytd))
		yearEnd := forecast.YearEnd(total, ytd.End)

		accountID, _ := uc.costRepo.GetAccountID(ctx, profile)

		table.AddRow(
			pterm.FgMagenta.Sprintf("Profile: %s\nAccount: %s", profile, accountID),
			pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint(uc.fmtr.Cost(total)),
			uc.fmtr.Cost(projection.DailyRate),
			uc.fmtr.Cost(projection.MonthlyForecast),
			uc.fmtr.Cost(projection.AnnualForecast),
			pterm.FgYellow.Sprint(uc.fmtr.Cost(yearEnd)),
		)
	}

	uc.console.Print(table.Render())
	return nil
}

// RunGranularReport renders the org-hierarchy cost drill-down.
func (uc *DashboardUseCase) RunGranularReport(ctx context.Context, profilesToUse []string, args *types.CLIArgs, timeRange int) error {
	uc.console.LogInfo("Preparing granular cost report...")

	current, _, _, _ := uc.resolveWindows(timeRange)

	opts := hierarchy.Options{
		EntityID:   args.EntityID,
		LevelCode:  args.LevelCode,
		PathPrefix: args.PathPrefix,
		DateRange:  &current,
		Providers:  args.Providers,
		Categories: args.Categories,
	}

	if args.EntityID != "" && !hierarchy.ValidEntityID(args.EntityID) {
		uc.console.LogWarning("Entity id %q is not valid; no rows will match", args.EntityID)
	}
	if args.PathPrefix != "" && !hierarchy.ValidPathPrefix(args.PathPrefix) {
		uc.console.LogWarning("Path prefix %q is not valid and will be ignored", args.PathPrefix)
	}

	table := uc.console.CreateTable()
	table.AddColumn("Date")
	table.AddColumn("Provider")
	table.AddColumn("Category")
	table.AddColumn("Entity")
	table.AddColumn("Level")
	table.AddColumn("Path")
	table.AddColumn("Cost")

	var allRows []entity.GranularCostRow
	for _, profile := range profilesToUse {
		rows, err := uc.costRepo.FetchGranularRows(ctx, profile, current, args.HierarchyTag)
		if err != nil {
			uc.console.LogError("Error getting granular rows for profile %s: %s", profile, err)
			continue
		}

		rows = hierarchy.ApplyGranularFilters(rows, opts)
		allRows = append(allRows, rows...)

		for _, row := range rows {
			entityCell := row.HierarchyEntityID
			if row.HierarchyEntityName != "" {
				entityCell = fmt.Sprintf("%s (%s)", row.HierarchyEntityName, row.HierarchyEntityID)
			}
			table.AddRow(
				row.Date,
				row.Provider,
				row.Category,
				pterm.FgMagenta.Sprint(entityCell),
				row.HierarchyLevelCode,
				row.HierarchyPath,
				uc.fmtr.Cost(row.TotalCost),
			)
		}
	}

	uc.console.Print(table.Render())
	uc.console.LogInfo("Total: %s across %d rows", uc.fmtr.Cost(hierarchy.SumRows(allRows)), len(allRows))

	if args.ReportName != "" && len(args.ReportType) > 0 {
		for _, reportType := range args.ReportType {
			switch reportType {
			case "csv":
				path, err := uc.exportRepo.ExportGranularToCSV(allRows, args.ReportName, args.Dir)
				uc.logExportResult("CSV", path, err)
			case "json":
				path, err := uc.exportRepo.ExportGranularToJSON(allRows, args.ReportName, args.Dir)
				uc.logExportResult("JSON", path, err)
			case "pdf":
				path, err := uc.exportRepo.ExportGranularToPDF(allRows, args.ReportName, args.Dir)
				uc.logExportResult("PDF", path, err)
			}
		}
	}

	return nil
}

func (uc *DashboardUseCase) logExportResult(kind, path string, err error) {
	if err != nil {
		uc.console.LogError("Failed to export granular report to %s: %s", kind, err)
	} else {
		uc.console.LogSuccess("Successfully exported granular report to %s: %s", kind, path)
	}
}

// formatServiceCosts renders the per-service breakdown for display.
func (uc *DashboardUseCase) formatServiceCosts(serviceCosts []entity.GroupedCostData) []string {
	if len(serviceCosts) == 0 {
		return []string{"No costs associated with this account"}
	}

	formatted := make([]string, 0, len(serviceCosts))
	for _, sc := range serviceCosts {
		formatted = append(formatted, fmt.Sprintf("%s: %s (%.1f%%)", sc.Key, uc.fmtr.Cost(sc.Total), sc.Percentage))
	}
	return formatted
}

// formatBudgetInfo renders budget status lines for display.
func (uc *DashboardUseCase) formatBudgetInfo(budgets []entity.BudgetInfo) []string {
	budgetInfo := []string{}

	for _, budget := range budgets {
		budgetInfo = append(budgetInfo, fmt.Sprintf("%s limit: %s", budget.Name, uc.fmtr.Cost(budget.Limit)))
		budgetInfo = append(budgetInfo, fmt.Sprintf("%s actual: %s", budget.Name, uc.fmtr.Cost(budget.Actual)))
		if budget.Forecast > 0 {
			budgetInfo = append(budgetInfo, fmt.Sprintf("%s forecast: %s", budget.Name, uc.fmtr.Cost(budget.Forecast)))
		}
	}

	if len(budgetInfo) == 0 {
		budgetInfo = append(budgetInfo, "No budgets found;\nCreate a budget for this account")
	}

	return budgetInfo
}

// createDisplayTable builds the dashboard table with period columns.
func (uc *DashboardUseCase) createDisplayTable(
	previousPeriodDates string,
	currentPeriodDates string,
	previousPeriodName string,
	currentPeriodName string,
) types.TableInterface {
	table := uc.console.CreateTable()

	table.AddColumn("Account Profile")
	table.AddColumn(fmt.Sprintf("%s\n(%s)", previousPeriodName, previousPeriodDates))
	table.AddColumn(fmt.Sprintf("%s\n(%s)", currentPeriodName, currentPeriodDates))
	table.AddColumn("Forecast\n(30-day / annual)")
	table.AddColumn("Cost By Service")
	table.AddColumn("Budget Status")

	return table
}

// addAccountToTable adds one profile's results to the display table.
func (uc *DashboardUseCase) addAccountToTable(table types.TableInterface, accountData entity.AccountData) {
	if !accountData.Success {
		table.AddRow(
			pterm.FgMagenta.Sprintf("%s", accountData.Profile),
			pterm.FgRed.Sprint("Error"),
			pterm.FgRed.Sprint("Error"),
			pterm.FgRed.Sprint("N/A"),
			pterm.FgRed.Sprintf("Failed to process profile: %s", accountData.Error),
			pterm.FgRed.Sprint("N/A"),
		)
		return
	}

	var changeText string
	switch accountData.Comparison.Trend {
	case entity.TrendUp:
		changeText = fmt.Sprintf("\n\n%s", pterm.FgRed.Sprintf("⬆ %s", uc.fmtr.Percent(accountData.Comparison.ChangePercent)))
	case entity.TrendDown:
		changeText = fmt.Sprintf("\n\n%s", pterm.FgGreen.Sprintf("⬇ %s", uc.fmtr.Percent(accountData.Comparison.ChangePercent)))
	default:
		changeText = fmt.Sprintf("\n\n%s", pterm.FgYellow.Sprint("➡ 0.0%"))
	}

	currentWithChange := fmt.Sprintf("%s%s",
		pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint(uc.fmtr.Cost(accountData.CurrentPeriod)),
		changeText)

	forecastText := fmt.Sprintf("%s / %s",
		uc.fmtr.Cost(accountData.Forecast.MonthlyForecast),
		uc.fmtr.Cost(accountData.Forecast.AnnualForecast))

	profileText := pterm.FgMagenta.Sprintf("Profile: %s\nAccount: %s", accountData.Profile, accountData.AccountID)
	previousText := pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint(uc.fmtr.Cost(accountData.PreviousPeriod))
	servicesText := pterm.FgGreen.Sprintf("%s", strings.Join(accountData.ServiceCostsFormatted, "\n"))
	budgetText := pterm.FgYellow.Sprintf("%s", strings.Join(accountData.BudgetInfo, "\n\n"))

	table.AddRow(
		profileText,
		previousText,
		currentWithChange,
		forecastText,
		servicesText,
		budgetText,
	)
}
