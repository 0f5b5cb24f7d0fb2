package checktable

import "sync"

type cacheKey struct {
	hostname       string
	filterMode     FilterMode
	skipAutochecks bool
	skipIgnored    bool
}

// Cache holds computed check tables for the lifetime of one configuration.
type Cache struct {
	mu     sync.RWMutex
	tables map[cacheKey]*CheckTable
}

func NewCache() *Cache {
	return &Cache{tables: make(map[cacheKey]*CheckTable)}
}

func (c *Cache) get(key cacheKey) (*CheckTable, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.tables[key]

	return t, ok
}

func (c *Cache) put(key cacheKey, table *CheckTable) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tables[key] = table
}

// Len returns the number of cached tables.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.tables)
}

// InvalidateHost drops every table of hostname.
func (c *Cache) InvalidateHost(hostname string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.tables {
		if key.hostname == hostname {
			delete(c.tables, key)
		}
	}
}

// Clear drops all tables.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tables = make(map[cacheKey]*CheckTable)
}
