package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/costlens/costlens-go/internal/domain/entity"
	"github.com/costlens/costlens-go/internal/domain/repository"
	"github.com/jung-kurt/gofpdf"
)

// ExportRepositoryImpl implements ExportRepository.
type ExportRepositoryImpl struct{}

// NewExportRepository creates a new ExportRepository implementation.
func NewExportRepository() repository.ExportRepository {
	return &ExportRepositoryImpl{}
}

// --- Dashboard exports ---

func (r *ExportRepositoryImpl) ExportToCSV(data []entity.AccountData, filename, outputDir, previousPeriodDates, currentPeriodDates string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	headers := []string{
		"Profile", "Account ID",
		fmt.Sprintf("Cost for period (%s)", previousPeriodDates),
		fmt.Sprintf("Cost for period (%s)", currentPeriodDates),
		"Change %", "Trend", "Monthly Forecast", "Annual Forecast",
		"Cost By Service", "Budget Status",
	}
	writer.Write(headers)

	for _, row := range data {
		servicesData := ""
		for _, sc := range row.ServiceCosts {
			servicesData += fmt.Sprintf("%s: $%.2f (%.1f%%)\n", sc.Key, sc.Total, sc.Percentage)
		}

		record := []string{
			row.Profile,
			row.AccountID,
			fmt.Sprintf("$%.2f", row.PreviousPeriod),
			fmt.Sprintf("$%.2f", row.CurrentPeriod),
			fmt.Sprintf("%.2f%%", row.Comparison.ChangePercent),
			string(row.Comparison.Trend),
			fmt.Sprintf("$%.2f", row.Forecast.MonthlyForecast),
			fmt.Sprintf("$%.2f", row.Forecast.AnnualForecast),
			strings.TrimSpace(servicesData),
			cleanRichTags(strings.Join(row.BudgetInfo, "\n")),
		}
		writer.Write(record)
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportToJSON(data []entity.AccountData, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "json")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return "", fmt.Errorf("error encoding JSON data: %w", err)
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportToPDF(data []entity.AccountData, filename, outputDir, previousPeriodDates, currentPeriodDates string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "pdf")
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	headerColor := [3]int{40, 40, 40}
	headerTextColor := [3]int{255, 255, 255}
	sectionTitleColor := [3]int{0, 0, 0}
	bodyTextColor := [3]int{50, 50, 50}
	lineColor := [3]int{200, 200, 200}

	drawSection := func(title string, content string) {
		if content == "" {
			return
		}
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(sectionTitleColor[0], sectionTitleColor[1], sectionTitleColor[2])
		pdf.Cell(0, 8, title)
		pdf.Ln(7)

		pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
		pdf.Ln(4)

		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		pdf.MultiCell(190, 5, tr(content), "", "L", false)
		pdf.Ln(8)
	}

	for i, rowData := range data {
		pdf.AddPage()

		pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
		pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
		pdf.SetFont("Arial", "B", 14)
		profileName := rowData.Profile
		if len(profileName) > 80 {
			profileName = profileName[:77] + "..."
		}
		pdf.CellFormat(0, 12, tr(fmt.Sprintf("  %s", profileName)), "", 1, "L", true, 0, "")

		pdf.SetFont("Arial", "", 10)
		pdf.SetFillColor(240, 240, 240)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		pdf.CellFormat(0, 8, tr(fmt.Sprintf("  Account ID: %s", rowData.AccountID)), "", 1, "L", true, 0, "")
		pdf.Ln(10)

		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(sectionTitleColor[0], sectionTitleColor[1], sectionTitleColor[2])
		pdf.Cell(0, 8, "Cost Summary")
		pdf.Ln(7)
		pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
		pdf.Ln(4)

		costTableWidth := 95.0
		pdf.SetFont("Arial", "B", 10)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		pdf.CellFormat(costTableWidth, 7, tr(rowData.PreviousPeriodName), "B", 0, "L", false, 0, "")
		pdf.CellFormat(costTableWidth, 7, tr(rowData.CurrentPeriodName), "B", 1, "L", false, 0, "")

		pdf.SetFont("Arial", "", 8)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(costTableWidth, 5, tr(previousPeriodDates), "", 0, "L", false, 0, "")
		pdf.CellFormat(costTableWidth, 5, tr(currentPeriodDates), "", 1, "L", false, 0, "")
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])

		pdf.SetFont("Arial", "B", 16)
		pdf.CellFormat(costTableWidth, 12, tr(fmt.Sprintf("$%.2f", rowData.PreviousPeriod)), "", 0, "L", false, 0, "")

		changeText := ""
		originalTextColorR, originalTextColorG, originalTextColorB := pdf.GetTextColor()
		switch rowData.Comparison.Trend {
		case entity.TrendUp:
			pdf.SetTextColor(192, 0, 0)
			changeText = fmt.Sprintf("  (▲ +%.2f%%)", rowData.Comparison.ChangePercent)
		case entity.TrendDown:
			pdf.SetTextColor(0, 128, 0)
			changeText = fmt.Sprintf("  (▼ %.2f%%)", rowData.Comparison.ChangePercent)
		default:
			changeText = "  (0.00%)"
		}

		pdf.SetFont("Arial", "B", 16)
		valueStr := fmt.Sprintf("$%.2f", rowData.CurrentPeriod)
		pdf.Cell(pdf.GetStringWidth(valueStr), 12, tr(valueStr))

		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(costTableWidth-pdf.GetStringWidth(valueStr), 12, tr(changeText), "", 1, "L", false, 0, "")

		pdf.SetTextColor(originalTextColorR, originalTextColorG, originalTextColorB)
		pdf.Ln(10)

		forecastStr := fmt.Sprintf(
			"Daily run rate: $%.2f\n30-day forecast: $%.2f\nAnnual forecast: $%.2f",
			rowData.Forecast.DailyRate, rowData.Forecast.MonthlyForecast, rowData.Forecast.AnnualForecast,
		)
		drawSection("Forecast", forecastStr)

		serviceCostsStr := ""
		for _, sc := range rowData.ServiceCosts {
			serviceCostsStr += fmt.Sprintf("%s: $%.2f (%.1f%%)\n", sc.Key, sc.Total, sc.Percentage)
		}
		drawSection("Cost By Service", strings.TrimSpace(serviceCostsStr))
		drawSection("Budget Status", cleanRichTags(strings.Join(rowData.BudgetInfo, "\n\n")))

		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		footerText := fmt.Sprintf("Generated by CostLens | %s", time.Now().Format("2006-01-02"))
		pdf.CellFormat(0, 10, tr(footerText), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("Page %d", i+1)), "", 0, "R", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(outputFilename); err != nil {
		return "", fmt.Errorf("error writing PDF file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// --- Granular exports ---

func (r *ExportRepositoryImpl) ExportGranularToCSV(rows []entity.GranularCostRow, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating granular CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	headers := []string{
		"Date", "Provider", "Category",
		"Entity ID", "Entity Name", "Level", "Path",
		"Total Cost", "Record Count",
	}
	if err := writer.Write(headers); err != nil {
		return "", fmt.Errorf("error writing CSV header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.Date,
			row.Provider,
			row.Category,
			row.HierarchyEntityID,
			row.HierarchyEntityName,
			row.HierarchyLevelCode,
			row.HierarchyPath,
			fmt.Sprintf("%.2f", row.TotalCost),
			fmt.Sprintf("%d", row.RecordCount),
		}
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("error writing CSV record: %w", err)
		}
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportGranularToJSON(rows []entity.GranularCostRow, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "json")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating granular JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(rows); err != nil {
		return "", fmt.Errorf("error encoding granular JSON data: %w", err)
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportGranularToPDF(rows []entity.GranularCostRow, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "pdf")
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFillColor(40, 40, 40)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, tr("  Granular Cost Report"), "", 1, "L", true, 0, "")
	pdf.Ln(4)

	widths := []float64{22, 20, 55, 30, 35, 25, 60, 25}
	headers := []string{"Date", "Provider", "Category", "Entity ID", "Entity Name", "Level", "Path", "Cost"}

	drawHeader := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		pdf.SetTextColor(0, 0, 0)
		for i, h := range headers {
			pdf.CellFormat(widths[i], 7, tr(h), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
	}
	drawHeader()

	pdf.SetFont("Arial", "", 8)
	pdf.SetTextColor(50, 50, 50)
	var total float64
	for _, row := range rows {
		if pdf.GetY() > 180 {
			pdf.AddPage()
			drawHeader()
			pdf.SetFont("Arial", "", 8)
			pdf.SetTextColor(50, 50, 50)
		}
		cells := []string{
			row.Date,
			row.Provider,
			truncate(row.Category, 38),
			truncate(row.HierarchyEntityID, 20),
			truncate(row.HierarchyEntityName, 24),
			truncate(row.HierarchyLevelCode, 16),
			truncate(row.HierarchyPath, 42),
			fmt.Sprintf("$%.2f", row.TotalCost),
		}
		for i, cell := range cells {
			pdf.CellFormat(widths[i], 6, tr(cell), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
		total += row.TotalCost
	}

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("Total: $%.2f across %d rows", total, len(rows))), "", 1, "R", false, 0, "")

	pdf.SetY(-15)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(128, 128, 128)
	pdf.CellFormat(0, 10, tr(fmt.Sprintf("Generated by CostLens | %s", time.Now().Format("2006-01-02"))), "", 0, "L", false, 0, "")

	if err := pdf.OutputFileAndClose(outputFilename); err != nil {
		return "", fmt.Errorf("error writing granular PDF file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// --- Helpers ---

// generateFilename builds a timestamped file name and makes sure the
// output directory exists.
func generateFilename(base, dir, ext string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("could not get current working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory '%s': %w", dir, err)
	}
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.%s", base, timestamp, ext)
	return filepath.Join(dir, filename), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

// Regexes to strip pterm rich tags and ANSI color sequences from
// strings that passed through the terminal renderer.
var richTagRegex = regexp.MustCompile(`\[/?([a-zA-Z]+|#[0-9a-fA-F]{6})\]`)
var ansiRegex = regexp.MustCompile(`\x1B\[[0-9;]*[A-Za-z]`)

func cleanRichTags(text string) string {
	text = richTagRegex.ReplaceAllString(text, "")
	text = ansiRegex.ReplaceAllString(text, "")
	return text
}
