// Package hierarchy filters pre-aggregated granular cost rows by
// organizational entity, level and path, tolerating the historical
// renames the org hierarchy has been through.
package hierarchy

import (
	"math"
	"regexp"
	"strings"

	"github.com/costlens/costlens-go/internal/domain/entity"
)

// levelAliasClasses enumerates every known spelling of each hierarchy
// level. Older data uses department/project/team; newer exports use
// c_suite/business_unit/function and a few intermediate schemes.
// Adding another naming scheme is an edit to this table, not to the
// matching logic.
var levelAliasClasses = [][]string{
	{"department", "c_suite", "division"},
	{"project", "business_unit", "portfolio"},
	{"team", "function", "squad"},
}

// levelAliases maps each lowercase spelling to its full alias class.
var levelAliases = func() map[string][]string {
	m := make(map[string][]string)
	for _, class := range levelAliasClasses {
		for _, code := range class {
			m[code] = class
		}
	}
	return m
}()

var (
	entityIDPattern   = regexp.MustCompile(`^[A-Za-z0-9_-]{1,100}$`)
	pathPrefixPattern = regexp.MustCompile(`^/[A-Za-z0-9_\-/]*$`)
)

// ValidEntityID reports whether id is a well-formed hierarchy entity id.
func ValidEntityID(id string) bool {
	return entityIDPattern.MatchString(id)
}

// ValidPathPrefix reports whether p is a well-formed hierarchy path
// prefix: absolute, no traversal, limited charset.
func ValidPathPrefix(p string) bool {
	return !strings.Contains(p, "..") && pathPrefixPattern.MatchString(p)
}

// expandLevel returns the lowercase alias set for a requested level
// code, or just the code itself when it is not in the alias table.
func expandLevel(code string) map[string]struct{} {
	lower := strings.ToLower(strings.TrimSpace(code))
	set := map[string]struct{}{}
	if lower == "" {
		return set
	}
	if class, ok := levelAliases[lower]; ok {
		for _, alias := range class {
			set[alias] = struct{}{}
		}
		return set
	}
	set[lower] = struct{}{}
	return set
}

// Options carries every predicate ApplyGranularFilters evaluates.
// Empty fields are skipped.
type Options struct {
	EntityID   string
	LevelCode  string
	PathPrefix string
	DateRange  *entity.DateRange
	Providers  []string
	Categories []string
}

// Filter scopes rows by entity id, level code and/or path prefix.
//
// Validation is deliberately asymmetric: an invalid entity id fails
// closed (empty result, it points at a tampered or buggy caller),
// while an invalid path prefix is dropped so a caller combining a good
// entity id with a malformed prefix still gets entity-scoped results.
// Keep the asymmetry; callers rely on the partial filtering.
func Filter(rows []entity.GranularCostRow, entityID, levelCode, pathPrefix string) []entity.GranularCostRow {
	return ApplyGranularFilters(rows, Options{
		EntityID:   entityID,
		LevelCode:  levelCode,
		PathPrefix: pathPrefix,
	})
}

// ApplyGranularFilters evaluates all requested predicates in a single
// pass over the rows. Date inclusion uses the same local-day string
// comparison as the record filter: row dates are already YYYY-MM-DD,
// so no timestamp parsing happens here at all.
func ApplyGranularFilters(rows []entity.GranularCostRow, opts Options) []entity.GranularCostRow {
	out := []entity.GranularCostRow{}

	entityID := strings.TrimSpace(opts.EntityID)
	if entityID != "" && !ValidEntityID(entityID) {
		return out
	}

	pathPrefix := strings.TrimSpace(opts.PathPrefix)
	if pathPrefix != "" && !ValidPathPrefix(pathPrefix) {
		pathPrefix = ""
	}

	levelSet := expandLevel(opts.LevelCode)

	var startDay, endDay string
	if opts.DateRange != nil {
		startDay = entity.LocalDay(opts.DateRange.Start)
		endDay = entity.LocalDay(opts.DateRange.End)
	}

	providers := lowerSet(opts.Providers)
	categories := lowerSet(opts.Categories)

	for _, row := range rows {
		if entityID != "" && !strings.EqualFold(row.HierarchyEntityID, entityID) {
			continue
		}
		if len(levelSet) > 0 {
			code := strings.ToLower(strings.TrimSpace(row.HierarchyLevelCode))
			if code == "" {
				continue
			}
			if _, ok := levelSet[code]; !ok {
				continue
			}
		}
		if pathPrefix != "" && !strings.HasPrefix(row.HierarchyPath, pathPrefix) {
			continue
		}
		if opts.DateRange != nil {
			if !validDay(row.Date) || row.Date < startDay || row.Date > endDay {
				continue
			}
		}
		if len(providers) > 0 {
			if _, ok := providers[strings.ToLower(strings.TrimSpace(row.Provider))]; !ok {
				continue
			}
		}
		if len(categories) > 0 {
			if _, ok := categories[strings.ToLower(strings.TrimSpace(row.Category))]; !ok {
				continue
			}
		}
		out = append(out, row)
	}
	return out
}

var dayPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func validDay(s string) bool {
	return dayPattern.MatchString(s)
}

func lowerSet(values []string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}

// SumRows totals the granular rows' costs, treating non-finite values
// as 0 like the record-level sum.
func SumRows(rows []entity.GranularCostRow) float64 {
	var sum float64
	for _, row := range rows {
		if !math.IsNaN(row.TotalCost) && !math.IsInf(row.TotalCost, 0) {
			sum += row.TotalCost
		}
	}
	return sum
}
