package cache

import (
	"strings"
	"sync"
	"time"
)

// MemoryCache is the in-process L1. Values are stored as given; callers
// that need isolation copy on read.
type MemoryCache struct {
	store     sync.Map
	stop      chan struct{}
	closeOnce sync.Once
}

type cacheItem struct {
	value      interface{}
	expiration time.Time
}

func NewMemoryCache() *MemoryCache {
	return NewMemoryCacheWithCleanup(time.Minute)
}

func NewMemoryCacheWithCleanup(interval time.Duration) *MemoryCache {
	c := &MemoryCache{stop: make(chan struct{})}
	go c.cleanup(interval)
	return c
}

func (c *MemoryCache) Set(key string, value interface{}, ttl time.Duration) {
	c.store.Store(key, &cacheItem{
		value:      value,
		expiration: time.Now().Add(ttl),
	})
}

func (c *MemoryCache) Get(key string) (interface{}, bool) {
	item, ok := c.store.Load(key)
	if !ok {
		return nil, false
	}

	ci := item.(*cacheItem)
	if time.Now().After(ci.expiration) {
		c.store.Delete(key)
		return nil, false
	}
	return ci.value, true
}

func (c *MemoryCache) Delete(key string) {
	c.store.Delete(key)
}

func (c *MemoryCache) DeletePattern(pattern string) {
	c.store.Range(func(key, _ interface{}) bool {
		if matchPattern(key.(string), pattern) {
			c.store.Delete(key)
		}
		return true
	})
}

func (c *MemoryCache) Clear() {
	c.DeletePattern("*")
}

func (c *MemoryCache) Len() int {
	count := 0
	c.store.Range(func(_, _ interface{}) bool {
		count++
		return true
	})
	return count
}

func (c *MemoryCache) Stats() map[string]interface{} {
	return map[string]interface{}{
		"items": c.Len(),
		"type":  "memory",
	}
}

func (c *MemoryCache) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case now := <-ticker.C:
			c.store.Range(func(key, value interface{}) bool {
				if now.After(value.(*cacheItem).expiration) {
					c.store.Delete(key)
				}
				return true
			})
		}
	}
}

func (c *MemoryCache) Close() error {
	c.closeOnce.Do(func() { close(c.stop) })
	return nil
}

// matchPattern supports exact keys and a single trailing '*'.
func matchPattern(text, pattern string) bool {
	if pattern == "*" {
		return true
	}
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(text, prefix)
	}
	return text == pattern
}
