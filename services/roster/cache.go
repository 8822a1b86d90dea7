package roster

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"rosterwatch/lib/scrapers/chichi"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed-permanently"
)

// CacheEntry wraps the last-known record for a player together with
// how the last fetch went. Entries are never deleted automatically;
// only an explicit rebuild clears them.
type CacheEntry struct {
	Record    chichi.ProfileRecord `json:"fields"`
	Complete  bool                 `json:"complete"`
	Status    Status               `json:"status"`
	Attempts  int                  `json:"attempts"`
	FetchedAt time.Time            `json:"fetched_at"`
}

// Cache is the persistent nickname -> CacheEntry store. Within a run
// each key has exactly one writer (the fetch task the coordinator
// assigned it), so the mutex only guards the map structure and file
// I/O, not per-key consistency.
type Cache struct {
	path       string
	flushEvery int

	mu      sync.Mutex
	entries map[string]CacheEntry
	dirty   int
}

// NewCache creates an empty cache that will persist to path, flushing
// every flushEvery upserts and on Flush.
func NewCache(path string, flushEvery int) *Cache {
	if flushEvery <= 0 {
		flushEvery = 25
	}
	return &Cache{
		path:       path,
		flushEvery: flushEvery,
		entries:    map[string]CacheEntry{},
	}
}

// LoadCache reads a previously persisted cache to seed resumption.
// A missing file yields an empty cache; an unreadable or corrupt file
// is an error, which callers treat as fatal at startup.
func LoadCache(path string, flushEvery int) (*Cache, error) {
	cache := NewCache(path, flushEvery)

	contents, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cache, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	err = json.Unmarshal(contents, &cache.entries)
	if err != nil {
		return nil, fmt.Errorf("failed to parse cache file %s: %w", path, err)
	}

	slog.Info("loaded cache", "path", path, "entries", len(cache.entries))
	return cache, nil
}

func (c *Cache) Get(nickname string) (CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[nickname]
	return entry, ok
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Upsert records the latest entry for a player, last-write-wins by
// fetch timestamp. Every flushEvery writes the cache is persisted;
// a failed periodic flush is logged and retried on the next cadence
// rather than aborting the run.
func (c *Cache) Upsert(nickname string, entry CacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	existing, ok := c.entries[nickname]
	if ok && existing.FetchedAt.After(entry.FetchedAt) {
		return
	}
	c.entries[nickname] = entry
	c.dirty++

	if c.dirty >= c.flushEvery {
		err := c.flushLocked()
		if err != nil {
			slog.Warn("periodic cache flush failed", "path", c.path, "err", err)
		}
	}
}

// Flush persists the cache unconditionally. Called at normal run
// termination; an abrupt termination loses at most the writes since
// the previous flush.
func (c *Cache) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flushLocked()
}

func (c *Cache) flushLocked() error {
	contents, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return err
	}

	// write-then-rename so a crash mid-write can't corrupt the
	// previous snapshot
	tmp := c.path + ".tmp"
	err = os.MkdirAll(filepath.Dir(c.path), 0755)
	if err != nil {
		return err
	}
	err = os.WriteFile(tmp, contents, 0644)
	if err != nil {
		return err
	}
	err = os.Rename(tmp, c.path)
	if err != nil {
		return err
	}

	c.dirty = 0
	slog.Debug("flushed cache", "path", c.path, "entries", len(c.entries))
	return nil
}

// Snapshot returns a copy of the store for the report generator.
func (c *Cache) Snapshot() map[string]CacheEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]CacheEntry, len(c.entries))
	for nickname, entry := range c.entries {
		out[nickname] = entry
	}
	return out
}
