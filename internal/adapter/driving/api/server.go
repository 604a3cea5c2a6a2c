// Package api serves the dashboard views as a JSON API. Every endpoint
// fetches one wide record window for the requested profile and computes
// its view client-side with the same analytics packages the CLI uses.
package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/costlens/costlens-go/internal/application/aggregate"
	"github.com/costlens/costlens-go/internal/application/calendar"
	"github.com/costlens/costlens-go/internal/application/compare"
	"github.com/costlens/costlens-go/internal/application/filter"
	"github.com/costlens/costlens-go/internal/application/forecast"
	"github.com/costlens/costlens-go/internal/application/hierarchy"
	"github.com/costlens/costlens-go/internal/domain/entity"
	"github.com/costlens/costlens-go/internal/domain/repository"
	"github.com/costlens/costlens-go/pkg/format"
)

// Server exposes cost analytics over HTTP.
type Server struct {
	costRepo repository.CostRepository
	cal      *calendar.Calendar
	engine   *gin.Engine
}

// NewServer creates the API server and registers its routes.
func NewServer(costRepo repository.CostRepository, cal *calendar.Calendar) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		costRepo: costRepo,
		cal:      cal,
		engine:   gin.New(),
	}
	s.engine.Use(gin.Recovery())

	s.engine.GET("/healthz", s.HandleHealth)

	v1 := s.engine.Group("/api/v1")
	v1.GET("/profiles", s.HandleProfiles)
	v1.GET("/summary", s.HandleSummary)
	v1.GET("/trends", s.HandleTrends)
	v1.GET("/breakdown", s.HandleBreakdown)
	v1.GET("/forecast", s.HandleForecast)
	v1.GET("/compare", s.HandleCompare)
	v1.GET("/granular", s.HandleGranular)

	return s
}

// Run starts the HTTP server on addr and blocks.
func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

// Handler returns the underlying HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// HandleHealth reports liveness.
func (s *Server) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleProfiles lists the available billing profiles.
func (s *Server) HandleProfiles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"profiles": s.costRepo.GetProfiles()})
}

// windows resolves the current and previous comparison windows from the
// optional days query parameter, mirroring the CLI behaviour.
func (s *Server) windows(c *gin.Context) (current, previous entity.DateRange, ok bool) {
	days, ok := intParam(c, "days", 0)
	if !ok {
		return entity.DateRange{}, entity.DateRange{}, false
	}

	if days > 0 {
		current = s.cal.RollingDays(days)
		previous = calendar.PreviousPeriod(current)
		return current, previous, true
	}

	current = s.cal.MonthToDate()
	elapsed := calendar.DaysInRange(current)

	lastMonth := s.cal.LastMonth()
	prevEnd := lastMonth.Start.AddDate(0, 0, elapsed-1)
	if prevEnd.After(lastMonth.End) {
		prevEnd = lastMonth.End
	}
	previous = entity.DateRange{Start: lastMonth.Start, End: prevEnd, Label: "Last month to date"}
	return current, previous, true
}

// fetch pulls one record window for the requested profile and applies
// the dimension and amount filters from the query string.
func (s *Server) fetch(c *gin.Context, window entity.DateRange) (string, []entity.CostRecord, bool) {
	profile := c.DefaultQuery("profile", "default")

	records, err := s.costRepo.FetchRecords(c.Request.Context(), profile, window, c.QueryArray("tag"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return profile, nil, false
	}

	opts := filter.Options{
		Providers:  c.QueryArray("provider"),
		Categories: c.QueryArray("category"),
	}
	if v, set, valid := floatParam(c, "min"); valid {
		if set {
			opts.MinAmount = &v
		}
	} else {
		return profile, nil, false
	}
	if v, set, valid := floatParam(c, "max"); valid {
		if set {
			opts.MaxAmount = &v
		}
	} else {
		return profile, nil, false
	}

	return profile, filter.Apply(records, opts), true
}

// HandleSummary returns the period comparison, service breakdown and
// forecast for one profile in a single payload.
func (s *Server) HandleSummary(c *gin.Context) {
	current, previous, ok := s.windows(c)
	if !ok {
		return
	}

	profile, records, ok := s.fetch(c, fetchWindow(current, previous))
	if !ok {
		return
	}

	comparison := compare.Periods(records, current, previous)
	currentRecords := filter.ByDateRange(records, current)
	services := aggregate.ToGroupedArray(aggregate.GroupByService(currentRecords), aggregate.SortByValue)

	accountID, _ := s.costRepo.GetAccountID(c.Request.Context(), profile)
	budgets, _ := s.costRepo.GetBudgets(c.Request.Context(), profile)

	fmtr := format.New(requestLocale(c))
	c.JSON(http.StatusOK, gin.H{
		"profile":    profile,
		"accountId":  accountID,
		"comparison": comparison,
		"services":   services,
		"forecast":   forecast.Project(comparison.Current.Total, calendar.DaysInRange(current)),
		"budgets":    budgets,
		"display": gin.H{
			"current":       fmtr.Cost(comparison.Current.Total),
			"previous":      fmtr.Cost(comparison.Previous.Total),
			"changePercent": fmtr.Percent(comparison.ChangePercent),
		},
	})
}

// HandleTrends returns bucketed cost totals with the overall direction.
func (s *Server) HandleTrends(c *gin.Context) {
	months, ok := intParam(c, "months", 6)
	if !ok {
		return
	}
	if months < 1 {
		months = 1
	}

	granularity := compare.Monthly
	defaultLookback := months
	switch c.DefaultQuery("granularity", "month") {
	case "day":
		granularity = compare.Daily
		defaultLookback = 30
	case "week":
		granularity = compare.Weekly
		defaultLookback = 12
	case "month":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "granularity must be day, week or month"})
		return
	}
	lookback, ok := intParam(c, "lookback", defaultLookback)
	if !ok {
		return
	}

	today := s.cal.Today()
	first := firstOfMonth(today)
	window := entity.DateRange{
		Start: first.Start.AddDate(0, -(months - 1), 0),
		End:   today.End,
		Label: "trend window",
	}

	profile, records, ok := s.fetch(c, window)
	if !ok {
		return
	}

	analysis := compare.AnalyzeTrend(records, granularity, lookback)
	c.JSON(http.StatusOK, gin.H{
		"profile": profile,
		"trend":   analysis,
	})
}

// HandleBreakdown returns grouped totals for one dimension.
func (s *Server) HandleBreakdown(c *gin.Context) {
	current, previous, ok := s.windows(c)
	if !ok {
		return
	}

	profile, records, ok := s.fetch(c, fetchWindow(current, previous))
	if !ok {
		return
	}
	records = filter.ByDateRange(records, current)

	var totals aggregate.Totals
	by := c.DefaultQuery("by", "service")
	switch by {
	case "service":
		totals = aggregate.GroupByService(records)
	case "provider":
		totals = aggregate.GroupByProvider(records)
	case "category":
		totals = aggregate.GroupByCategory(records)
	case "day":
		totals = aggregate.GroupByDay(records)
	case "month":
		totals = aggregate.GroupByMonth(records)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "by must be service, provider, category, day or month"})
		return
	}

	order := aggregate.SortByValue
	if by == "day" || by == "month" {
		order = aggregate.SortByKey
	}

	c.JSON(http.StatusOK, gin.H{
		"profile":   profile,
		"by":        by,
		"window":    current,
		"breakdown": aggregate.ToGroupedArray(totals, order),
	})
}

// HandleForecast returns run-rate projections for the current window.
func (s *Server) HandleForecast(c *gin.Context) {
	current, previous, ok := s.windows(c)
	if !ok {
		return
	}

	profile, records, ok := s.fetch(c, fetchWindow(current, previous))
	if !ok {
		return
	}

	total := aggregate.SumCosts(filter.ByDateRange(records, current))

	ytd := s.cal.YearToDate()
	ytdRecords, err := s.costRepo.FetchRecords(c.Request.Context(), profile, ytd, c.QueryArray("tag"))
	var yearEnd float64
	if err == nil {
		yearEnd = forecast.YearEnd(aggregate.SumCosts(ytdRecords), ytd.End)
	}

	c.JSON(http.StatusOK, gin.H{
		"profile":  profile,
		"window":   current,
		"total":    total,
		"forecast": forecast.Project(total, calendar.DaysInRange(current)),
		"yearEnd":  yearEnd,
	})
}

// HandleCompare returns one of the canned period comparisons. The
// fetch window always covers both periods so the comparison functions
// can slice it locally.
func (s *Server) HandleCompare(c *gin.Context) {
	mode := c.DefaultQuery("mode", "mtd")

	days := 7
	var current, previous entity.DateRange
	switch mode {
	case "mtd", "mom":
		current = s.cal.ThisMonth()
		previous = s.cal.LastMonth()
	case "wow":
		current = s.cal.ThisWeek()
		previous = s.cal.LastWeek()
	case "qoq":
		current = s.cal.ThisQuarter()
		previous = s.cal.LastQuarter()
	case "yoy", "ytd":
		current = s.cal.ThisYear()
		previous = s.cal.LastYear()
	case "days":
		var ok bool
		days, ok = intParam(c, "days", 7)
		if !ok {
			return
		}
		current = s.cal.RollingDays(days)
		previous = calendar.PreviousPeriod(current)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be mtd, mom, wow, qoq, yoy, ytd or days"})
		return
	}

	profile, records, ok := s.fetch(c, fetchWindow(current, previous))
	if !ok {
		return
	}

	var comparison entity.PeriodComparison
	switch mode {
	case "mtd":
		comparison = compare.MonthToDateVsPrior(s.cal, records)
	case "mom":
		comparison = compare.MonthOverMonth(s.cal, records)
	case "wow":
		comparison = compare.WeekOverWeek(s.cal, records)
	case "qoq":
		comparison = compare.QuarterOverQuarter(s.cal, records)
	case "yoy":
		comparison = compare.YearOverYear(s.cal, records)
	case "ytd":
		comparison = compare.YearToDateVsPrior(s.cal, records)
	case "days":
		comparison = compare.LastDaysVsPrior(s.cal, records, days)
	}

	c.JSON(http.StatusOK, gin.H{
		"profile":    profile,
		"mode":       mode,
		"comparison": comparison,
	})
}

// HandleGranular returns the org-hierarchy drill-down rows.
func (s *Server) HandleGranular(c *gin.Context) {
	tag := c.Query("hierarchyTag")
	if tag == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "hierarchyTag is required"})
		return
	}

	current, _, ok := s.windows(c)
	if !ok {
		return
	}

	profile := c.DefaultQuery("profile", "default")
	rows, err := s.costRepo.FetchGranularRows(c.Request.Context(), profile, current, tag)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	opts := hierarchy.Options{
		EntityID:   c.Query("entity"),
		LevelCode:  c.Query("level"),
		PathPrefix: c.Query("pathPrefix"),
		DateRange:  &current,
		Providers:  c.QueryArray("provider"),
		Categories: c.QueryArray("category"),
	}
	rows = hierarchy.ApplyGranularFilters(rows, opts)

	c.JSON(http.StatusOK, gin.H{
		"profile": profile,
		"window":  current,
		"rows":    rows,
		"total":   hierarchy.SumRows(rows),
	})
}

// fetchWindow is the single wide window covering both comparison periods.
func fetchWindow(current, previous entity.DateRange) entity.DateRange {
	window := entity.DateRange{Start: previous.Start, End: current.End, Label: "fetch"}
	if current.Start.Before(window.Start) {
		window.Start = current.Start
	}
	return window
}

func firstOfMonth(today entity.DateRange) entity.DateRange {
	start := today.Start
	return entity.DateRange{
		Start: start.AddDate(0, 0, -(start.Day() - 1)),
		End:   today.End,
	}
}

// requestLocale picks the display locale from the lang query parameter
// or the first Accept-Language entry. format.New falls back to en-US
// on anything unparseable.
func requestLocale(c *gin.Context) string {
	if lang := c.Query("lang"); lang != "" {
		return lang
	}
	accept := c.GetHeader("Accept-Language")
	if i := strings.IndexAny(accept, ",;"); i >= 0 {
		accept = accept[:i]
	}
	return strings.TrimSpace(accept)
}

// intParam parses an optional integer query parameter. A malformed
// value writes a 400 response and reports !ok.
func intParam(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be an integer"})
		return 0, false
	}
	return v, true
}

// floatParam parses an optional float query parameter. It reports
// whether the parameter was set and whether it parsed; a malformed
// value writes a 400 response.
func floatParam(c *gin.Context, name string) (v float64, set, valid bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, false, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a number"})
		return 0, true, false
	}
	return v, true, true
}
