package services

import (
	"encoding/json"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	defaultCacheSize = 64
	defaultCacheTTL  = 30 * time.Second
)

// readCache is a small TTL cache for hot read endpoints. Values are stored
// as JSON so cached entries cannot alias caller-visible slices.
type readCache struct {
	lru *expirable.LRU[string, []byte]
}

func newReadCache(size int, ttl time.Duration) *readCache {
	if size <= 0 {
		size = defaultCacheSize
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &readCache{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

func (c *readCache) get(key string, out any) bool {
	raw, ok := c.lru.Get(key)
	if !ok {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

func (c *readCache) put(key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.lru.Add(key, raw)
}

func (c *readCache) invalidate(key string) {
	c.lru.Remove(key)
}
