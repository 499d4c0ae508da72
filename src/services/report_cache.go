package services

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// ReportCache is the go-cache shared by the upload and dashboard services.
// Every Flush starts a new generation; results computed from an older
// generation are not stored.
type ReportCache struct {
	*cache.Cache
	mu         sync.Mutex
	generation uint64
}

func NewReportCache(defaultExpiration, cleanupInterval time.Duration) *ReportCache {
	return &ReportCache{Cache: cache.New(defaultExpiration, cleanupInterval)}
}

// Generation must be read before the data behind a cached value is loaded.
func (c *ReportCache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

func (c *ReportCache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.Cache.Flush()
}

// SetIfCurrent stores the value only when no Flush happened since generation was read.
func (c *ReportCache) SetIfCurrent(key string, value interface{}, generation uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generation {
		return false
	}
	c.Cache.Set(key, value, cache.DefaultExpiration)
	return true
}
