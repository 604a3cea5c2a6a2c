package repository

import (
	"context"

	"github.com/costlens/costlens-go/internal/domain/entity"
)

// CostRepository defines the interface for fetching cost data from the
// billing backend. Implementations fetch a wide window once; all
// slicing, grouping and forecasting happens client-side in the
// analytics core.
type CostRepository interface {
	// Profile Operations
	GetProfiles() []string
	GetAccountID(ctx context.Context, profile string) (string, error)

	// Record Operations
	FetchRecords(ctx context.Context, profile string, window entity.DateRange, tags []string) ([]entity.CostRecord, error)
	FetchGranularRows(ctx context.Context, profile string, window entity.DateRange, hierarchyTag string) ([]entity.GranularCostRow, error)

	// Budget Operations
	GetBudgets(ctx context.Context, profile string) ([]entity.BudgetInfo, error)
}
