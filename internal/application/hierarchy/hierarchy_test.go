package hierarchy

import (
	"testing"
	"time"

	"github.com/costlens/costlens-go/internal/domain/entity"
)

func row(date, provider, entityID, level, path string, cost float64) entity.GranularCostRow {
	return entity.GranularCostRow{
		Date:               date,
		Provider:           provider,
		HierarchyEntityID:  entityID,
		HierarchyLevelCode: level,
		HierarchyPath:      path,
		TotalCost:          cost,
		RecordCount:        1,
	}
}

var rows = []entity.GranularCostRow{
	row("2024-06-01", "aws", "DEPT-1", "department", "/acme/platform", 100),
	row("2024-06-02", "aws", "BU-7", "business_unit", "/acme/platform/data", 50),
	row("2024-06-03", "gcp", "TEAM-9", "squad", "/acme/platform/data/ml", 25),
	row("2024-06-04", "aws", "DEPT-1", "", "/acme/sales", 10),
}

func TestValidation(t *testing.T) {
	t.Run("invalid entity id fails closed", func(t *testing.T) {
		got := Filter(rows, "bad id!", "", "")
		if len(got) != 0 {
			t.Fatalf("invalid entity id must yield empty result, got %d rows", len(got))
		}
	})

	t.Run("invalid path prefix is dropped, entity scope survives", func(t *testing.T) {
		got := Filter(rows, "DEPT-1", "", "../etc")
		if len(got) != 2 {
			t.Fatalf("got %d rows, want 2 (entity-scoped, prefix dropped)", len(got))
		}
		for _, r := range got {
			if r.HierarchyEntityID != "DEPT-1" {
				t.Errorf("unexpected row %+v", r)
			}
		}
	})

	t.Run("traversal and relative prefixes rejected", func(t *testing.T) {
		for _, p := range []string{"../etc", "acme", "/a/../b", "/a b", ""} {
			if ValidPathPrefix(p) {
				t.Errorf("ValidPathPrefix(%q) = true, want false", p)
			}
		}
		if !ValidPathPrefix("/acme/platform") {
			t.Error("ValidPathPrefix rejected a well-formed prefix")
		}
	})

	t.Run("entity id charset and length", func(t *testing.T) {
		if !ValidEntityID("DEPT_1-a") {
			t.Error("ValidEntityID rejected a well-formed id")
		}
		long := make([]byte, 101)
		for i := range long {
			long[i] = 'a'
		}
		if ValidEntityID(string(long)) {
			t.Error("ValidEntityID accepted an id over 100 chars")
		}
		if ValidEntityID("") {
			t.Error("ValidEntityID accepted an empty id")
		}
	})
}

func TestLevelAliases(t *testing.T) {
	t.Run("legacy code matches newer spelling", func(t *testing.T) {
		got := Filter(rows, "", "project", "")
		if len(got) != 1 || got[0].HierarchyEntityID != "BU-7" {
			t.Fatalf("project filter must match business_unit rows, got %+v", got)
		}
	})

	t.Run("newer code matches legacy spelling", func(t *testing.T) {
		got := Filter(rows, "", "C_SUITE", "")
		if len(got) != 1 || got[0].HierarchyEntityID != "DEPT-1" {
			t.Fatalf("c_suite filter must match department rows, got %+v", got)
		}
	})

	t.Run("team aliases", func(t *testing.T) {
		got := Filter(rows, "", "function", "")
		if len(got) != 1 || got[0].HierarchyEntityID != "TEAM-9" {
			t.Fatalf("function filter must match squad rows, got %+v", got)
		}
	})

	t.Run("missing level code never matches a level filter", func(t *testing.T) {
		got := Filter(rows, "", "department", "")
		for _, r := range got {
			if r.HierarchyLevelCode == "" {
				t.Error("row with empty level code matched a level filter")
			}
		}
	})
}

func TestApplyGranularFilters(t *testing.T) {
	dr := entity.DateRange{
		Start: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.Local),
		End:   time.Date(2024, time.June, 2, 23, 59, 59, 0, time.Local),
	}

	t.Run("single pass combines all predicates", func(t *testing.T) {
		got := ApplyGranularFilters(rows, Options{
			PathPrefix: "/acme/platform",
			DateRange:  &dr,
			Providers:  []string{"AWS"},
		})
		if len(got) != 2 {
			t.Fatalf("got %d rows, want 2", len(got))
		}
	})

	t.Run("rows with malformed dates are skipped when a range is set", func(t *testing.T) {
		bad := append([]entity.GranularCostRow{}, rows...)
		bad = append(bad, row("June 1", "aws", "X-1", "team", "/x", 5))
		got := ApplyGranularFilters(bad, Options{DateRange: &dr})
		for _, r := range got {
			if r.HierarchyEntityID == "X-1" {
				t.Error("row with unparseable date matched a date filter")
			}
		}
	})

	t.Run("empty options pass everything through", func(t *testing.T) {
		got := ApplyGranularFilters(rows, Options{})
		if len(got) != len(rows) {
			t.Errorf("got %d rows, want %d", len(got), len(rows))
		}
	})

	t.Run("nil input yields empty result", func(t *testing.T) {
		got := ApplyGranularFilters(nil, Options{EntityID: "DEPT-1"})
		if got == nil || len(got) != 0 {
			t.Errorf("want empty non-nil result, got %v", got)
		}
	})
}

func TestSumRows(t *testing.T) {
	if got := SumRows(rows); got != 185 {
		t.Errorf("SumRows = %v, want 185", got)
	}
}
