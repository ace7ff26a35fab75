package table

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gatebot/internal/logger"
	"gatebot/internal/symbol"
)

// Cache holds the current dataset snapshot and refreshes it lazily.
// The snapshot is replaced wholesale on refresh, never mutated in place,
// so readers may hold a returned slice across a refresh safely.
type Cache struct {
	src  Source
	syms *symbol.Interner
	now  func() time.Time

	mu       sync.RWMutex
	rows     []Row
	loadedAt time.Time
}

// NewCache creates a cache over src. Loaded values for the Key, Option1
// and Option2 columns are interned into syms on every successful load;
// Terminal values are never encoded into payloads and stay uninterned.
func NewCache(src Source, syms *symbol.Interner) *Cache {
	return &Cache{src: src, syms: syms, now: time.Now}
}

// Load performs the initial dataset load. A failure here is fatal: the
// process must not serve traffic without data.
func (c *Cache) Load() error {
	rows, err := c.src.Load()
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("%w: dataset is empty", ErrFormat)
	}
	c.install(rows)
	logger.Table.Info("dataset loaded",
		slog.String("event", "table.load"),
		slog.Int("rows", len(rows)),
		slog.Int("symbols", c.syms.Len()),
	)
	return nil
}

// RefreshIfStale reloads the dataset when the cache age exceeds ttl.
// A reload failure keeps the stale snapshot and logs a warning; serving
// stale data beats serving none.
func (c *Cache) RefreshIfStale(ttl time.Duration) {
	c.mu.RLock()
	age := c.now().Sub(c.loadedAt)
	c.mu.RUnlock()
	if age <= ttl {
		return
	}

	rows, err := c.src.Load()
	if err == nil && len(rows) == 0 {
		err = fmt.Errorf("%w: dataset is empty", ErrFormat)
	}
	if err != nil {
		logger.Table.Warn("dataset refresh failed, keeping stale snapshot",
			slog.String("event", "table.refresh"),
			slog.String("status", "fail"),
			slog.Duration("age", logger.RoundMS(age)),
			slog.String("err", err.Error()),
		)
		return
	}
	c.install(rows)
	logger.Table.Info("dataset refreshed",
		slog.String("event", "table.refresh"),
		slog.String("status", "ok"),
		slog.Int("rows", len(rows)),
	)
}

// Snapshot returns the current immutable dataset snapshot.
func (c *Cache) Snapshot() []Row {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rows
}

// Age reports how old the current snapshot is.
func (c *Cache) Age() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.loadedAt.IsZero() {
		return time.Duration(1<<62 - 1)
	}
	return c.now().Sub(c.loadedAt)
}

func (c *Cache) install(rows []Row) {
	for _, r := range rows {
		c.syms.IDOf(r.Key)
		c.syms.IDOf(r.Option1)
		c.syms.IDOf(r.Option2)
	}
	c.mu.Lock()
	c.rows = rows
	c.loadedAt = c.now()
	c.mu.Unlock()
}
