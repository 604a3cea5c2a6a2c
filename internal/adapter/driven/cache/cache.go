// Package cache decorates a CostRepository with a short-lived SQLite
// record cache, so repeated dashboard renders within a few minutes
// reuse the last billing fetch instead of calling the API again.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/costlens/costlens-go/internal/domain/entity"
	"github.com/costlens/costlens-go/internal/domain/repository"
)

// DefaultTTL is how long a fetched window stays fresh.
const DefaultTTL = 5 * time.Minute

const createCacheTable = `
CREATE TABLE IF NOT EXISTS record_cache (
	window_hash TEXT NOT NULL,
	kind TEXT NOT NULL,
	payload BLOB NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	ttl_seconds INTEGER NOT NULL,
	PRIMARY KEY (window_hash, kind)
);
`

// CachingCostRepository wraps a CostRepository, caching FetchRecords
// and FetchGranularRows results. All other calls pass through.
type CachingCostRepository struct {
	inner repository.CostRepository
	db    *sql.DB
	ttl   time.Duration
	now   func() time.Time
}

// New opens (or creates) the cache database at dbPath and wraps inner.
func New(inner repository.CostRepository, dbPath string, ttl time.Duration) (*CachingCostRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	if _, err := db.Exec(createCacheTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate cache db: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &CachingCostRepository{inner: inner, db: db, ttl: ttl, now: time.Now}, nil
}

// hashWindow computes a SHA-256 key over the profile, window and tags.
func hashWindow(profile string, window entity.DateRange, tags []string) string {
	h := sha256.New()
	h.Write([]byte(profile))
	h.Write([]byte(window.Start.Format(entity.DayFormat)))
	h.Write([]byte(window.End.Format(entity.DayFormat)))
	h.Write([]byte(strings.Join(tags, "\x00")))
	return fmt.Sprintf("%x", h.Sum(nil))
}

func (c *CachingCostRepository) get(hash, kind string) ([]byte, bool) {
	var payload []byte
	var createdAt time.Time
	var ttlSeconds int64

	err := c.db.QueryRow(
		`SELECT payload, created_at, ttl_seconds FROM record_cache WHERE window_hash = ? AND kind = ?`,
		hash, kind,
	).Scan(&payload, &createdAt, &ttlSeconds)
	if err != nil {
		return nil, false
	}

	if c.now().UTC().Sub(createdAt) > time.Duration(ttlSeconds)*time.Second {
		return nil, false
	}
	return payload, true
}

func (c *CachingCostRepository) put(hash, kind string, payload []byte) {
	c.db.Exec(
		`INSERT OR REPLACE INTO record_cache (window_hash, kind, payload, created_at, ttl_seconds)
		 VALUES (?, ?, ?, ?, ?)`,
		hash, kind, payload, c.now().UTC(), int64(c.ttl.Seconds()),
	)
}

func (c *CachingCostRepository) GetProfiles() []string {
	return c.inner.GetProfiles()
}

func (c *CachingCostRepository) GetAccountID(ctx context.Context, profile string) (string, error) {
	return c.inner.GetAccountID(ctx, profile)
}

func (c *CachingCostRepository) FetchRecords(ctx context.Context, profile string, window entity.DateRange, tags []string) ([]entity.CostRecord, error) {
	hash := hashWindow(profile, window, tags)
	if payload, ok := c.get(hash, "records"); ok {
		var records []entity.CostRecord
		if err := json.Unmarshal(payload, &records); err == nil {
			return records, nil
		}
	}

	records, err := c.inner.FetchRecords(ctx, profile, window, tags)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(records); err == nil {
		c.put(hash, "records", payload)
	}
	return records, nil
}

func (c *CachingCostRepository) FetchGranularRows(ctx context.Context, profile string, window entity.DateRange, hierarchyTag string) ([]entity.GranularCostRow, error) {
	hash := hashWindow(profile, window, []string{hierarchyTag})
	if payload, ok := c.get(hash, "granular"); ok {
		var rows []entity.GranularCostRow
		if err := json.Unmarshal(payload, &rows); err == nil {
			return rows, nil
		}
	}

	rows, err := c.inner.FetchGranularRows(ctx, profile, window, hierarchyTag)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(rows); err == nil {
		c.put(hash, "granular", payload)
	}
	return rows, nil
}

func (c *CachingCostRepository) GetBudgets(ctx context.Context, profile string) ([]entity.BudgetInfo, error) {
	return c.inner.GetBudgets(ctx, profile)
}

// Clear removes expired entries, or everything when expiredOnly is false.
func (c *CachingCostRepository) Clear(expiredOnly bool) error {
	var query string
	if expiredOnly {
		query = `DELETE FROM record_cache WHERE (julianday('now') - julianday(created_at)) * 86400 > ttl_seconds`
	} else {
		query = `DELETE FROM record_cache`
	}
	if _, err := c.db.Exec(query); err != nil {
		return fmt.Errorf("cache clear: %w", err)
	}
	return nil
}

// Close releases the database connection.
func (c *CachingCostRepository) Close() error {
	return c.db.Close()
}
