package catalog

import (
	"sync"
	"time"
)

// SchemaCacheConfig holds configuration for the schema reader cache
type SchemaCacheConfig struct {
	MaxEntries int           // Maximum number of cached locations
	DefaultTTL time.Duration // TTL for cached entries; <= 0 never expires
	Enabled    bool
}

// CachingSchemaReader wraps a SchemaReader with an LRU cache keyed by
// location. Footer reads against remote parquet files are the slow path of
// table registration and ANALYZE; repeated reads of the same location come
// out of memory until the entry expires.
type CachingSchemaReader struct {
	inner    SchemaReader
	config   SchemaCacheConfig
	entries  map[string]*schemaCacheEntry
	keyOrder []string // LRU order, least recently used first
	mutex    sync.Mutex
	stats    SchemaCacheStats
}

type schemaCacheEntry struct {
	columns    []ColumnMetadata
	statistics *TableStatistics
	createdAt  time.Time
}

// SchemaCacheStats tracks cache performance metrics
type SchemaCacheStats struct {
	Hits      int64
	Misses    int64
	Evictions int64
}

// NewCachingSchemaReader wraps a schema reader with the given cache
// configuration
func NewCachingSchemaReader(inner SchemaReader, config SchemaCacheConfig) *CachingSchemaReader {
	return &CachingSchemaReader{
		inner:   inner,
		config:  config,
		entries: make(map[string]*schemaCacheEntry),
	}
}

// ReadSchema returns the cached schema for a location, reading through on a
// miss. Errors from the inner reader are never cached.
func (c *CachingSchemaReader) ReadSchema(location string) ([]ColumnMetadata, *TableStatistics, error) {
	if !c.config.Enabled {
		return c.inner.ReadSchema(location)
	}

	c.mutex.Lock()
	if entry, ok := c.entries[location]; ok && !c.expired(entry) {
		c.stats.Hits++
		c.moveToEnd(location)
		columns, stats := entry.snapshot()
		c.mutex.Unlock()
		return columns, stats, nil
	}
	c.stats.Misses++
	c.mutex.Unlock()

	columns, stats, err := c.inner.ReadSchema(location)
	if err != nil {
		return nil, nil, err
	}

	c.mutex.Lock()
	c.put(location, columns, stats)
	c.mutex.Unlock()
	return columns, stats, nil
}

// Invalidate drops the cached entry for a location, e.g. after a write.
func (c *CachingSchemaReader) Invalidate(location string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.removeEntry(location)
}

// Stats returns current cache statistics
func (c *CachingSchemaReader) Stats() SchemaCacheStats {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.stats
}

func (e *schemaCacheEntry) snapshot() ([]ColumnMetadata, *TableStatistics) {
	columns := append([]ColumnMetadata(nil), e.columns...)
	var stats *TableStatistics
	if e.statistics != nil {
		statsCopy := *e.statistics
		stats = &statsCopy
	}
	return columns, stats
}

// put stores an entry; callers hold the lock.
func (c *CachingSchemaReader) put(location string, columns []ColumnMetadata, stats *TableStatistics) {
	if _, exists := c.entries[location]; exists {
		c.removeEntry(location)
	}

	entry := &schemaCacheEntry{
		columns:   append([]ColumnMetadata(nil), columns...),
		createdAt: time.Now(),
	}
	if stats != nil {
		statsCopy := *stats
		entry.statistics = &statsCopy
	}
	c.entries[location] = entry
	c.keyOrder = append(c.keyOrder, location)

	for c.config.MaxEntries > 0 && len(c.keyOrder) > c.config.MaxEntries {
		c.removeEntry(c.keyOrder[0])
		c.stats.Evictions++
	}
}

func (c *CachingSchemaReader) expired(entry *schemaCacheEntry) bool {
	if c.config.DefaultTTL <= 0 {
		return false
	}
	return time.Since(entry.createdAt) > c.config.DefaultTTL
}

// moveToEnd marks a location most recently used; callers hold the lock.
func (c *CachingSchemaReader) moveToEnd(location string) {
	for i, k := range c.keyOrder {
		if k == location {
			c.keyOrder = append(c.keyOrder[:i], c.keyOrder[i+1:]...)
			break
		}
	}
	c.keyOrder = append(c.keyOrder, location)
}

// removeEntry removes an entry; callers hold the lock.
func (c *CachingSchemaReader) removeEntry(location string) {
	if _, exists := c.entries[location]; !exists {
		return
	}
	delete(c.entries, location)
	for i, k := range c.keyOrder {
		if k == location {
			c.keyOrder = append(c.keyOrder[:i], c.keyOrder[i+1:]...)
			break
		}
	}
}
