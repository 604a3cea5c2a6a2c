package console

import (
	"fmt"
	"math"
	"strings"

	"github.com/costlens/costlens-go/internal/shared/types"
	"github.com/fatih/color"
	"github.com/pterm/pterm"
)

// Console is the pterm-backed implementation of ConsoleInterface.
type Console struct{}

// NewConsole creates a new Console.
func NewConsole() *Console {
	return &Console{}
}

// Predefined colors for consistent use across the dashboard.
var (
	BrightMagenta = color.New(color.FgMagenta, color.Bold).SprintFunc()
	BoldRed       = color.New(color.FgRed, color.Bold).SprintFunc()
	BrightGreen   = color.New(color.FgGreen, color.Bold).SprintFunc()
	BrightYellow  = color.New(color.FgYellow, color.Bold).SprintFunc()
	BrightRed     = color.New(color.FgRed, color.Bold).SprintFunc()
	BrightCyan    = color.New(color.FgCyan, color.Bold).SprintFunc()
)

func (c *Console) Print(a ...interface{}) {
	fmt.Print(a...)
}

func (c *Console) Printf(format string, a ...interface{}) {
	fmt.Printf(format, a...)
}

func (c *Console) Println(a ...interface{}) {
	fmt.Println(a...)
}

func (c *Console) LogInfo(format string, a ...interface{}) {
	pterm.Info.Printfln(format, a...)
}

func (c *Console) LogWarning(format string, a ...interface{}) {
	pterm.Warning.Printfln(format, a...)
}

func (c *Console) LogError(format string, a ...interface{}) {
	pterm.Error.Printfln(format, a...)
}

func (c *Console) LogSuccess(format string, a ...interface{}) {
	pterm.Success.Printfln(format, a...)
}

type statusHandle struct {
	spinner *pterm.SpinnerPrinter
}

// Status starts a spinner with the given message.
func (c *Console) Status(message string) types.StatusHandle {
	spinner, _ := pterm.DefaultSpinner.Start(message)
	return &statusHandle{spinner: spinner}
}

func (h *statusHandle) Update(message string) {
	if h.spinner != nil {
		h.spinner.UpdateText(message)
	}
}

func (h *statusHandle) Stop() {
	if h.spinner != nil {
		h.spinner.Stop()
	}
}

type progressHandle struct {
	bar *pterm.ProgressbarPrinter
}

// Progress starts a progress bar sized to the given items.
func (c *Console) Progress(items []string) types.ProgressHandle {
	bar, _ := pterm.DefaultProgressbar.WithTotal(len(items)).Start()
	return &progressHandle{bar: bar}
}

func (c *Console) ProgressWithTotal(total int) types.ProgressHandle {
	bar, _ := pterm.DefaultProgressbar.
		WithTotal(total).
		WithTitle("Processing cost data").
		WithShowElapsedTime(true).
		WithShowCount(true).
		WithRemoveWhenDone(false).
		Start()
	return &progressHandle{bar: bar}
}

func (h *progressHandle) Increment() {
	if h.bar != nil {
		h.bar.Increment()
	}
}

func (h *progressHandle) Stop() {
	if h.bar != nil {
		h.bar.Stop()
	}
}

// Table is a pterm-backed implementation of TableInterface.
type Table struct {
	columns []string
	rows    [][]string
}

// CreateTable creates a new empty table.
func (c *Console) CreateTable() types.TableInterface {
	return &Table{
		columns: []string{},
		rows:    [][]string{},
	}
}

func (t *Table) AddColumn(name string, options ...interface{}) {
	t.columns = append(t.columns, name)
}

func (t *Table) AddRow(cells ...interface{}) {
	processedCells := make([]string, len(cells))
	for i, cell := range cells {
		processedCells[i] = fmt.Sprint(cell)
	}
	t.rows = append(t.rows, processedCells)
}

func (t *Table) Render() string {
	tableData := pterm.TableData{t.columns}
	for _, row := range t.rows {
		tableData = append(tableData, row)
	}

	table := pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithHeaderStyle(pterm.NewStyle(pterm.FgLightCyan)).
		WithData(tableData)

	renderedTable, _ := table.Srender()
	return renderedTable
}

// DisplayTrendBars renders a bar chart of period costs. The change
// percentages arrive precomputed; this function only colors and scales.
func (c *Console) DisplayTrendBars(points []types.TrendPoint) {
	maxCost := 0.0
	for _, p := range points {
		if p.Cost > maxCost {
			maxCost = p.Cost
		}
	}

	if maxCost == 0 {
		pterm.Warning.Println("All costs are $0.00 for this period")
		return
	}

	tableData := pterm.TableData{
		{"Period", "Cost", "", "Change"},
	}

	for _, p := range points {
		barLength := int((p.Cost / maxCost) * 40)
		bar := strings.Repeat("█", barLength)

		barColor := pterm.FgBlue.Sprint(bar)
		change := ""

		if p.ChangePercent != nil {
			pct := *p.ChangePercent
			switch {
			case math.Abs(pct) < 0.01:
				change = pterm.FgYellow.Sprint("0%")
				barColor = pterm.FgYellow.Sprint(bar)
			case pct > 999:
				change = pterm.FgRed.Sprint(">+999%")
				barColor = pterm.FgRed.Sprint(bar)
			case pct < -999:
				change = pterm.FgGreen.Sprint(">-999%")
				barColor = pterm.FgGreen.Sprint(bar)
			case pct > 0:
				change = pterm.FgRed.Sprintf("+%.2f%%", pct)
				barColor = pterm.FgRed.Sprint(bar)
			default:
				change = pterm.FgGreen.Sprintf("%.2f%%", pct)
				barColor = pterm.FgGreen.Sprint(bar)
			}
		}

		tableData = append(tableData, []string{
			p.Period,
			fmt.Sprintf("$%.2f", p.Cost),
			barColor,
			change,
		})
	}

	table := pterm.DefaultTable.WithHasHeader().WithData(tableData)
	renderedTable, _ := table.Srender()

	panel := pterm.DefaultBox.WithTitle("Cost Trend Analysis").WithBoxStyle(pterm.NewStyle(pterm.FgCyan)).Sprint(renderedTable)

	fmt.Println("\n" + panel)
}
