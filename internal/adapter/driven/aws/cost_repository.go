package aws

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/budgets"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	ceTypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/costlens/costlens-go/internal/domain/entity"
	"github.com/costlens/costlens-go/internal/domain/repository"
)

const providerName = "AWS"

// CostRepositoryImpl implements CostRepository against Cost Explorer,
// with per-profile config and client caches.
type CostRepositoryImpl struct {
	cfgCache    map[string]aws.Config
	clientCache map[string]interface{}
	mu          sync.Mutex
}

// NewCostRepository creates a new Cost Explorer backed repository.
func NewCostRepository() repository.CostRepository {
	return &CostRepositoryImpl{
		cfgCache:    make(map[string]aws.Config),
		clientCache: make(map[string]interface{}),
	}
}

func (r *CostRepositoryImpl) getAWSConfig(ctx context.Context, profile string) (aws.Config, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cfg, ok := r.cfgCache[profile]; ok {
		return cfg, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithSharedConfigProfile(profile))
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config for profile %s: %w", profile, err)
	}

	r.cfgCache[profile] = cfg
	return cfg, nil
}

func (r *CostRepositoryImpl) getServiceClient(ctx context.Context, profile, service string) (interface{}, error) {
	cacheKey := fmt.Sprintf("%s-%s", profile, service)

	r.mu.Lock()
	if client, ok := r.clientCache[cacheKey]; ok {
		r.mu.Unlock()
		return client, nil
	}
	r.mu.Unlock()

	cfg, err := r.getAWSConfig(ctx, profile)
	if err != nil {
		return nil, err
	}

	regionalCfg := cfg.Copy()

	var client interface{}
	switch service {
	case "sts":
		client = sts.NewFromConfig(regionalCfg)
	case "costexplorer":
		// Cost Explorer is a global service served from us-east-1.
		regionalCfg.Region = "us-east-1"
		client = costexplorer.NewFromConfig(regionalCfg)
	case "budgets":
		regionalCfg.Region = "us-east-1"
		client = budgets.NewFromConfig(regionalCfg)
	default:
		return nil, fmt.Errorf("unsupported service: %s", service)
	}

	r.mu.Lock()
	r.clientCache[cacheKey] = client
	r.mu.Unlock()

	return client, nil
}

// GetProfiles lists the profiles configured in the shared AWS files.
func (r *CostRepositoryImpl) GetProfiles() []string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return []string{"default"}
	}

	credentialsPath := filepath.Join(homeDir, ".aws", "credentials")
	configPath := filepath.Join(homeDir, ".aws", "config")

	profiles := make(map[string]bool)
	profileRegex := regexp.MustCompile(`\[([^]]+)\]`)

	parseFile := func(path string, isConfig bool) {
		content, err := os.ReadFile(path)
		if err != nil {
			return
		}
		matches := profileRegex.FindAllStringSubmatch(string(content), -1)
		for _, match := range matches {
			profileName := match[1]
			if isConfig {
				profileName = strings.TrimPrefix(profileName, "profile ")
			}
			profiles[profileName] = true
		}
	}

	parseFile(credentialsPath, false)
	parseFile(configPath, true)

	if len(profiles) == 0 {
		profiles["default"] = true
	}

	result := make([]string, 0, len(profiles))
	for profile := range profiles {
		result = append(result, profile)
	}
	sort.Strings(result)
	return result
}

func (r *CostRepositoryImpl) GetAccountID(ctx context.Context, profile string) (string, error) {
	client, err := r.getServiceClient(ctx, profile, "sts")
	if err != nil {
		return "", err
	}
	stsClient := client.(*sts.Client)

	result, err := stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("error getting account ID for profile %s: %w", profile, err)
	}
	return *result.Account, nil
}

// FetchRecords pulls daily per-service costs for the window as flat
// cost records. Slicing and aggregation happen client-side.
func (r *CostRepositoryImpl) FetchRecords(ctx context.Context, profile string, window entity.DateRange, tags []string) ([]entity.CostRecord, error) {
	client, err := r.getServiceClient(ctx, profile, "costexplorer")
	if err != nil {
		return nil, err
	}
	ceClient := client.(*costexplorer.Client)

	filter, err := parseTagFilter(tags)
	if err != nil {
		return nil, err
	}

	input := &costexplorer.GetCostAndUsageInput{
		TimePeriod:  dateInterval(window),
		Granularity: ceTypes.GranularityDaily,
		Metrics:     []string{"UnblendedCost", "AmortizedCost"},
		GroupBy: []ceTypes.GroupDefinition{
			{Type: ceTypes.GroupDefinitionTypeDimension, Key: aws.String("SERVICE")},
		},
		Filter: filter,
	}

	var records []entity.CostRecord
	for {
		result, err := ceClient.GetCostAndUsage(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to get cost and usage for profile %s: %w", profile, err)
		}

		for _, period := range result.ResultsByTime {
			day, err := time.ParseInLocation(entity.DayFormat, aws.ToString(period.TimePeriod.Start), time.Local)
			if err != nil {
				continue
			}
			for _, group := range period.Groups {
				if len(group.Keys) == 0 {
					continue
				}
				rec := entity.CostRecord{
					ChargePeriodStart:   day,
					ServiceProviderName: providerName,
					ServiceName:         group.Keys[0],
				}
				if billed := metricAmount(group.Metrics, "UnblendedCost"); billed != nil {
					rec.BilledCost = billed
				}
				if effective := metricAmount(group.Metrics, "AmortizedCost"); effective != nil {
					rec.EffectiveCost = effective
				}
				records = append(records, rec)
			}
		}

		if result.NextPageToken == nil {
			break
		}
		input.NextPageToken = result.NextPageToken
	}

	return records, nil
}

// FetchGranularRows pulls daily per-service costs grouped by the given
// cost allocation tag. The tag value carries the org placement as
// "levelCode:entityId:/path/of/names"; rows with untagged spend keep
// empty hierarchy fields.
func (r *CostRepositoryImpl) FetchGranularRows(ctx context.Context, profile string, window entity.DateRange, hierarchyTag string) ([]entity.GranularCostRow, error) {
	if hierarchyTag == "" {
		return nil, fmt.Errorf("hierarchy tag is required for granular rows")
	}

	client, err := r.getServiceClient(ctx, profile, "costexplorer")
	if err != nil {
		return nil, err
	}
	ceClient := client.(*costexplorer.Client)

	input := &costexplorer.GetCostAndUsageInput{
		TimePeriod:  dateInterval(window),
		Granularity: ceTypes.GranularityDaily,
		Metrics:     []string{"UnblendedCost"},
		GroupBy: []ceTypes.GroupDefinition{
			{Type: ceTypes.GroupDefinitionTypeDimension, Key: aws.String("SERVICE")},
			{Type: ceTypes.GroupDefinitionTypeTag, Key: aws.String(hierarchyTag)},
		},
	}

	var rows []entity.GranularCostRow
	for {
		result, err := ceClient.GetCostAndUsage(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to get granular costs for profile %s: %w", profile, err)
		}

		for _, period := range result.ResultsByTime {
			day := aws.ToString(period.TimePeriod.Start)
			for _, group := range period.Groups {
				if len(group.Keys) < 2 {
					continue
				}
				cost := metricAmount(group.Metrics, "UnblendedCost")
				if cost == nil {
					continue
				}
				row := entity.GranularCostRow{
					Date:        day,
					Provider:    providerName,
					Category:    group.Keys[0],
					TotalCost:   *cost,
					RecordCount: 1,
				}
				applyHierarchyTag(&row, hierarchyTag, group.Keys[1])
				rows = append(rows, row)
			}
		}

		if result.NextPageToken == nil {
			break
		}
		input.NextPageToken = result.NextPageToken
	}

	return rows, nil
}

func (r *CostRepositoryImpl) GetBudgets(ctx context.Context, profile string) ([]entity.BudgetInfo, error) {
	client, err := r.getServiceClient(ctx, profile, "budgets")
	if err != nil {
		return nil, err
	}
	budgetsClient := client.(*budgets.Client)

	accountID, err := r.GetAccountID(ctx, profile)
	if err != nil {
		return nil, err
	}

	result, err := budgetsClient.DescribeBudgets(ctx, &budgets.DescribeBudgetsInput{
		AccountId: aws.String(accountID),
	})
	if err != nil {
		return nil, nil // Not a fatal error
	}

	budgetsData := []entity.BudgetInfo{}
	for _, budget := range result.Budgets {
		b := entity.BudgetInfo{Name: *budget.BudgetName}
		if budget.BudgetLimit != nil {
			b.Limit, _ = strconv.ParseFloat(*budget.BudgetLimit.Amount, 64)
		}
		if budget.CalculatedSpend != nil && budget.CalculatedSpend.ActualSpend != nil {
			b.Actual, _ = strconv.ParseFloat(*budget.CalculatedSpend.ActualSpend.Amount, 64)
		}
		if budget.CalculatedSpend != nil && budget.CalculatedSpend.ForecastedSpend != nil {
			b.Forecast, _ = strconv.ParseFloat(*budget.CalculatedSpend.ForecastedSpend.Amount, 64)
		}
		budgetsData = append(budgetsData, b)
	}

	return budgetsData, nil
}

// dateInterval converts a range to the half-open interval Cost
// Explorer expects. End is exclusive, so it advances one day past the
// range's last day.
func dateInterval(window entity.DateRange) *ceTypes.DateInterval {
	return &ceTypes.DateInterval{
		Start: aws.String(window.Start.Format(entity.DayFormat)),
		End:   aws.String(window.End.AddDate(0, 0, 1).Format(entity.DayFormat)),
	}
}

func metricAmount(metrics map[string]ceTypes.MetricValue, name string) *float64 {
	val, ok := metrics[name]
	if !ok || val.Amount == nil {
		return nil
	}
	amount, err := strconv.ParseFloat(*val.Amount, 64)
	if err != nil {
		return nil
	}
	return &amount
}

// applyHierarchyTag parses a "levelCode:entityId:/path/of/names" tag
// value into the row's hierarchy fields. Cost Explorer reports
// untagged spend as "<tagKey>$"; those rows keep empty fields. Partial
// values fill what they carry.
func applyHierarchyTag(row *entity.GranularCostRow, tagKey, tagValue string) {
	value := strings.TrimPrefix(tagValue, tagKey+"$")
	if value == "" {
		return
	}

	parts := strings.SplitN(value, ":", 3)
	if len(parts) > 0 {
		row.HierarchyLevelCode = strings.TrimSpace(parts[0])
	}
	if len(parts) > 1 {
		row.HierarchyEntityID = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		row.HierarchyPath = strings.TrimSpace(parts[2])
		segments := strings.Split(strings.TrimPrefix(row.HierarchyPath, "/"), "/")
		names := make([]string, 0, len(segments))
		for _, s := range segments {
			if s != "" {
				names = append(names, s)
			}
		}
		row.HierarchyPathNames = names
		if len(names) > 0 {
			row.HierarchyEntityName = names[len(names)-1]
		}
	}
}

func parseTagFilter(tags []string) (*ceTypes.Expression, error) {
	if len(tags) == 0 {
		return nil, nil
	}

	var expressions []ceTypes.Expression
	for _, t := range tags {
		parts := strings.SplitN(t, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid tag format: %s", t)
		}
		expressions = append(expressions, ceTypes.Expression{
			Tags: &ceTypes.TagValues{
				Key:    aws.String(parts[0]),
				Values: []string{parts[1]},
			},
		})
	}

	if len(expressions) == 1 {
		return &expressions[0], nil
	}

	return &ceTypes.Expression{And: expressions}, nil
}
