package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceCacheBasic(t *testing.T) {
	c := NewServiceCache(10, time.Minute)
	c.Set("u1", "YouTube")

	service, ok := c.Get("u1")
	require.True(t, ok)
	assert.Equal(t, "YouTube", service)

	_, ok = c.Get("u2")
	assert.False(t, ok)
}

func TestServiceCacheTTLExpiry(t *testing.T) {
	c := NewServiceCache(10, time.Second)
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set("u1", "X")
	now = now.Add(1100 * time.Millisecond)

	_, ok := c.Get("u1")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestServiceCacheEntryExactlyAtTTL(t *testing.T) {
	c := NewServiceCache(10, time.Second)
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set("u1", "X")
	now = now.Add(time.Second)
	_, ok := c.Get("u1")
	assert.False(t, ok, "entry at exactly ttl age must be a miss")
}

func TestServiceCacheCapacityEviction(t *testing.T) {
	c := NewServiceCache(200, time.Hour)
	for i := 0; i < 200; i++ {
		c.Set(fmt.Sprintf("u%d", i), "X")
	}
	require.Equal(t, 200, c.Len())

	c.Set("overflow", "X")
	// eviction frees an overshoot margin, not a single slot
	assert.Equal(t, 200-evictionOvershoot+1, c.Len())

	// oldest-inserted entries are the ones gone
	_, ok := c.Get("u0")
	assert.False(t, ok)
	_, ok = c.Get("u199")
	assert.True(t, ok)
	_, ok = c.Get("overflow")
	assert.True(t, ok)
}

func TestServiceCacheExpiredSweepBeforeEviction(t *testing.T) {
	c := NewServiceCache(100, time.Second)
	now := time.Now()
	c.now = func() time.Time { return now }

	for i := 0; i < 100; i++ {
		c.Set(fmt.Sprintf("old%d", i), "X")
	}
	now = now.Add(2 * time.Second)
	c.Set("fresh", "Y")
	// all stale entries were dropped, no live entry had to be evicted
	assert.Equal(t, 1, c.Len())
	service, ok := c.Get("fresh")
	require.True(t, ok)
	assert.Equal(t, "Y", service)
}

func TestServiceCacheUpdateResetsTimestamp(t *testing.T) {
	c := NewServiceCache(10, time.Second)
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set("u1", "X")
	now = now.Add(900 * time.Millisecond)
	c.Set("u1", "Y")
	now = now.Add(900 * time.Millisecond)

	service, ok := c.Get("u1")
	require.True(t, ok)
	assert.Equal(t, "Y", service)
}
