// Package cache holds query results for a bounded time so repeated reads
// can skip the database.
package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/asaidimu/sqlhandle/pkg/clock"
	"github.com/asaidimu/sqlhandle/pkg/core"
)

// DefaultMaxEntries bounds a Cache created with a non-positive size.
const DefaultMaxEntries = 1024

type entry struct {
	rows     []core.Row
	rowCount int64
	expires  time.Time
}

// Cache is a TTL cache of result sets. It is safe for concurrent use.
type Cache struct {
	mu         sync.Mutex
	clock      clock.Clock
	maxEntries int
	entries    map[string]entry
}

// New returns an empty Cache. A nil clock means clock.Real().
func New(c clock.Clock, maxEntries int) *Cache {
	if c == nil {
		c = clock.Real()
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Cache{clock: c, maxEntries: maxEntries, entries: make(map[string]entry)}
}

// Key derives the cache key for a statement and its parameters.
func Key(sql string, params []any) (string, error) {
	b, err := json.Marshal(struct {
		SQL    string `json:"sql"`
		Params []any  `json:"params"`
	}{sql, params})
	if err != nil {
		return "", fmt.Errorf("encoding cache key: %w", err)
	}
	return string(b), nil
}

// Get returns a copy of the cached rows for key and their row count.
func (c *Cache) Get(key string) ([]core.Row, int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, 0, false
	}
	if !c.clock.Now().Before(e.expires) {
		delete(c.entries, key)
		return nil, 0, false
	}
	return core.CloneRows(e.rows), e.rowCount, true
}

// Set stores a copy of rows under key for ttl. Non-positive TTLs are
// ignored.
func (c *Cache) Set(key string, rows []core.Row, rowCount int64, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictLocked(now)
	}
	c.entries[key] = entry{rows: core.CloneRows(rows), rowCount: rowCount, expires: now.Add(ttl)}
}

// evictLocked drops expired entries, or the soonest-expiring one if none
// have expired.
func (c *Cache) evictLocked(now time.Time) {
	var soonestKey string
	var soonest time.Time
	removed := false
	for k, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, k)
			removed = true
			continue
		}
		if soonestKey == "" || e.expires.Before(soonest) {
			soonestKey, soonest = k, e.expires
		}
	}
	if !removed && soonestKey != "" {
		delete(c.entries, soonestKey)
	}
}

// Purge removes every entry.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Len returns the number of stored entries, including expired ones not yet
// evicted.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
