package cache

import (
	"context"
	"testing"
	"time"

	"github.com/costlens/costlens-go/internal/domain/entity"
)

type fakeRepo struct {
	fetchCalls    int
	granularCalls int
}

func (f *fakeRepo) GetProfiles() []string { return []string{"default"} }

func (f *fakeRepo) GetAccountID(ctx context.Context, profile string) (string, error) {
	return "123456789012", nil
}

func (f *fakeRepo) FetchRecords(ctx context.Context, profile string, window entity.DateRange, tags []string) ([]entity.CostRecord, error) {
	f.fetchCalls++
	cost := 10.0
	return []entity.CostRecord{{
		ChargePeriodStart:   window.Start,
		ServiceProviderName: "AWS",
		ServiceName:         "Amazon EC2",
		EffectiveCost:       &cost,
	}}, nil
}

func (f *fakeRepo) FetchGranularRows(ctx context.Context, profile string, window entity.DateRange, hierarchyTag string) ([]entity.GranularCostRow, error) {
	f.granularCalls++
	return []entity.GranularCostRow{{Date: "2024-06-01", Provider: "AWS", TotalCost: 10}}, nil
}

func (f *fakeRepo) GetBudgets(ctx context.Context, profile string) ([]entity.BudgetInfo, error) {
	return nil, nil
}

func testWindow() entity.DateRange {
	return entity.DateRange{
		Start: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.Local),
		End:   time.Date(2024, time.June, 30, 23, 59, 59, 0, time.Local),
	}
}

func newTestCache(t *testing.T, inner *fakeRepo) *CachingCostRepository {
	t.Helper()
	c, err := New(inner, ":memory:", DefaultTTL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestFetchRecordsCaching(t *testing.T) {
	inner := &fakeRepo{}
	c := newTestCache(t, inner)
	ctx := context.Background()

	first, err := c.FetchRecords(ctx, "default", testWindow(), nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.FetchRecords(ctx, "default", testWindow(), nil)
	if err != nil {
		t.Fatal(err)
	}

	if inner.fetchCalls != 1 {
		t.Errorf("inner called %d times, want 1", inner.fetchCalls)
	}
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("record counts = %d/%d, want 1/1", len(first), len(second))
	}
	if second[0].ServiceName != "Amazon EC2" || *second[0].EffectiveCost != 10 {
		t.Errorf("cached record mangled: %+v", second[0])
	}
}

func TestCacheKeyIncludesTags(t *testing.T) {
	inner := &fakeRepo{}
	c := newTestCache(t, inner)
	ctx := context.Background()

	c.FetchRecords(ctx, "default", testWindow(), nil)
	c.FetchRecords(ctx, "default", testWindow(), []string{"Team=platform"})

	if inner.fetchCalls != 2 {
		t.Errorf("inner called %d times, want 2 (distinct tag sets)", inner.fetchCalls)
	}
}

func TestExpiryRefetches(t *testing.T) {
	inner := &fakeRepo{}
	c := newTestCache(t, inner)
	ctx := context.Background()

	base := time.Now()
	c.now = func() time.Time { return base }
	c.FetchRecords(ctx, "default", testWindow(), nil)

	c.now = func() time.Time { return base.Add(DefaultTTL + time.Second) }
	c.FetchRecords(ctx, "default", testWindow(), nil)

	if inner.fetchCalls != 2 {
		t.Errorf("inner called %d times, want 2 after expiry", inner.fetchCalls)
	}
}

func TestGranularRowsCaching(t *testing.T) {
	inner := &fakeRepo{}
	c := newTestCache(t, inner)
	ctx := context.Background()

	c.FetchGranularRows(ctx, "default", testWindow(), "org-unit")
	rows, err := c.FetchGranularRows(ctx, "default", testWindow(), "org-unit")
	if err != nil {
		t.Fatal(err)
	}

	if inner.granularCalls != 1 {
		t.Errorf("inner called %d times, want 1", inner.granularCalls)
	}
	if len(rows) != 1 || rows[0].TotalCost != 10 {
		t.Errorf("cached rows mangled: %+v", rows)
	}
}

func TestClear(t *testing.T) {
	inner := &fakeRepo{}
	c := newTestCache(t, inner)
	ctx := context.Background()

	c.FetchRecords(ctx, "default", testWindow(), nil)
	if err := c.Clear(false); err != nil {
		t.Fatal(err)
	}
	c.FetchRecords(ctx, "default", testWindow(), nil)

	if inner.fetchCalls != 2 {
		t.Errorf("inner called %d times, want 2 after clear", inner.fetchCalls)
	}
}
