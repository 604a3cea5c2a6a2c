package repository

import (
	"github.com/costlens/costlens-go/internal/domain/entity"
)

// ExportRepository writes dashboard and granular views to report files.
type ExportRepository interface {
	ExportToCSV(data []entity.AccountData, filename string, outputDir string, previousPeriodDates, currentPeriodDates string) (string, error)
	ExportToJSON(data []entity.AccountData, filename string, outputDir string) (string, error)
	ExportToPDF(data []entity.AccountData, filename string, outputDir string, previousPeriodDates, currentPeriodDates string) (string, error)

	ExportGranularToCSV(rows []entity.GranularCostRow, filename, outputDir string) (string, error)
	ExportGranularToJSON(rows []entity.GranularCostRow, filename, outputDir string) (string, error)
	ExportGranularToPDF(rows []entity.GranularCostRow, filename, outputDir string) (string, error)
}
