package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReportCacheDropsStaleResults(t *testing.T) {
	c := NewReportCache(DefaultCacheExpiration, CacheCleanupInterval)

	generation := c.Generation()
	assert.True(t, c.SetIfCurrent("k", 1, generation))
	v, found := c.Get("k")
	assert.True(t, found)
	assert.Equal(t, 1, v)

	// a value read before a flush must not outlive it
	stale := c.Generation()
	c.Flush()
	assert.False(t, c.SetIfCurrent("k", 2, stale))
	_, found = c.Get("k")
	assert.False(t, found)

	assert.True(t, c.SetIfCurrent("k", 3, c.Generation()))
	v, _ = c.Get("k")
	assert.Equal(t, 3, v)
}
