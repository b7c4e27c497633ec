package cache

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"
)

// CacheStats reports cache occupancy.
type CacheStats struct {
	TotalEntries   int `json:"total_entries"`
	ExpiredEntries int `json:"expired_entries"`
	ApproxMemory   int `json:"memory_usage"`
}

type entry struct {
	v    any
	exp  time.Time
	size int
}

// SeriesCache is a time-boxed memoization store shared by all acquisition
// workers. All access is mutex-serialized; an expired entry found by Get is
// removed and reported absent, so no stale value is ever returned.
type SeriesCache struct {
	mu sync.Mutex
	m  map[string]entry
}

func NewSeriesCache() *SeriesCache {
	return &SeriesCache{m: make(map[string]entry)}
}

// Key derives a deterministic cache key from an operation identity and its
// argument tuple. Identical calls collide, distinct calls never do.
func Key(op string, args ...any) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprintf("%v", a)
	}
	sum := md5.Sum([]byte(strings.Join(parts, "|")))
	return op + ":" + hex.EncodeToString(sum[:])
}

// Get returns the cached value for key, or absent if missing or expired.
func (c *SeriesCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.m[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.exp) {
		delete(c.m, key)
		return nil, false
	}
	return e.v, true
}

// Set stores value under key for ttl.
func (c *SeriesCache) Set(key string, v any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = entry{
		v:    v,
		exp:  time.Now().Add(ttl),
		size: approxSize(v),
	}
}

// Clear drops every entry.
func (c *SeriesCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m = make(map[string]entry)
}

// ClearExpired sweeps expired entries and returns how many were removed.
func (c *SeriesCache) ClearExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for k, e := range c.m {
		if now.After(e.exp) {
			delete(c.m, k)
			removed++
		}
	}
	return removed
}

// Stats reports entry counts and an approximate memory footprint.
func (c *SeriesCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	st := CacheStats{TotalEntries: len(c.m)}
	for _, e := range c.m {
		if now.After(e.exp) {
			st.ExpiredEntries++
		}
		st.ApproxMemory += e.size
	}
	return st
}

func approxSize(v any) int {
	switch t := v.(type) {
	case []byte:
		return len(t)
	case string:
		return len(t)
	default:
		return len(fmt.Sprintf("%v", v))
	}
}
