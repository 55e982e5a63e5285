package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"reflect"
	"time"
)

type Cache interface {
	Set(key string, value interface{}, ttl time.Duration) error
	Get(key string, dest interface{}) error
	Delete(key string) error
	DeletePattern(pattern string) error
	Exists(key string) (bool, error)
	Stats() map[string]interface{}
	Health() error
	Close() error
}

const defaultL1TTL = time.Minute

// MultiLevelCache keeps values in memory when no Redis is configured. With
// Redis it reads and writes Redis only, so an invalidation by one instance
// is seen by every instance. Redis calls go through a circuit breaker; while
// Redis is unavailable every read is a miss.
type MultiLevelCache struct {
	l1             *MemoryCache
	l2             *RedisCache
	l1TTL          time.Duration
	metrics        *CacheMetrics
	circuitBreaker *CircuitBreaker
}

// NewMultiLevelCache accepts a nil redisCache for memory-only operation.
func NewMultiLevelCache(redisCache *RedisCache) *MultiLevelCache {
	return &MultiLevelCache{
		l1:             NewMemoryCache(),
		l2:             redisCache,
		l1TTL:          defaultL1TTL,
		metrics:        NewCacheMetrics(),
		circuitBreaker: NewCircuitBreaker(DefaultCircuitBreakerConfig()),
	}
}

// Shared reports whether values live in Redis rather than process memory.
func (c *MultiLevelCache) Shared() bool {
	return c.l2 != nil
}

// Set encodes value once; later changes to value by the caller do not reach
// the cache.
func (c *MultiLevelCache) Set(key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		c.metrics.RecordError()
		return fmt.Errorf("cache marshal error: %w", err)
	}
	raw := json.RawMessage(data)

	if !c.Shared() {
		c.l1.Set(key, raw, c.localTTL(ttl))
		c.metrics.RecordSet()
		return nil
	}

	err = c.circuitBreaker.Execute(func() error {
		return c.l2.Set(key, raw, ttl)
	})
	if err != nil {
		c.metrics.RecordError()
		log.Printf("⚠️  Redis cache set failed for %s: %v", key, err)
		return nil
	}
	c.metrics.RecordSet()
	return nil
}

func (c *MultiLevelCache) Get(key string, dest interface{}) error {
	if !c.Shared() {
		if value, found := c.l1.Get(key); found {
			c.metrics.RecordHit()
			return copyValue(value, dest)
		}
		c.metrics.RecordMiss()
		return ErrCacheMiss
	}

	err := c.circuitBreaker.Execute(func() error {
		return c.l2.Get(key, dest)
	})
	if err == nil {
		c.metrics.RecordHit()
		return nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		c.metrics.RecordError()
	}
	c.metrics.RecordMiss()
	return ErrCacheMiss
}

func (c *MultiLevelCache) Delete(key string) error {
	c.metrics.RecordDelete()
	if !c.Shared() {
		c.l1.Delete(key)
		return nil
	}

	err := c.circuitBreaker.Execute(func() error {
		return c.l2.Delete(key)
	})
	if err != nil {
		c.metrics.RecordError()
	}
	return err
}

func (c *MultiLevelCache) DeletePattern(pattern string) error {
	c.metrics.RecordDelete()
	if !c.Shared() {
		c.l1.DeletePattern(pattern)
		return nil
	}

	err := c.circuitBreaker.Execute(func() error {
		return c.l2.DeletePattern(pattern)
	})
	if err != nil {
		c.metrics.RecordError()
	}
	return err
}

func (c *MultiLevelCache) Exists(key string) (bool, error) {
	if !c.Shared() {
		_, found := c.l1.Get(key)
		return found, nil
	}

	var exists bool
	err := c.circuitBreaker.Execute(func() error {
		var err error
		exists, err = c.l2.Exists(key)
		return err
	})
	return exists, err
}

func (c *MultiLevelCache) Stats() map[string]interface{} {
	stats := map[string]interface{}{
		"shared":           c.Shared(),
		"l1":               c.l1.Stats(),
		"metrics":          c.metrics.GetStats(),
		"hit_rate_percent": c.metrics.HitRate(),
		"circuit_breaker":  c.circuitBreaker.GetStats(),
	}
	if c.l2 != nil {
		stats["l2"] = c.l2.Stats()
	}
	return stats
}

func (c *MultiLevelCache) Health() error {
	if c.l2 == nil {
		return nil
	}
	return c.l2.Health()
}

func (c *MultiLevelCache) Close() error {
	c.l1.Close()
	if c.l2 != nil {
		return c.l2.Close()
	}
	return nil
}

func (c *MultiLevelCache) GetMetrics() *CacheMetrics {
	return c.metrics
}

func (c *MultiLevelCache) GetCircuitBreaker() *CircuitBreaker {
	return c.circuitBreaker
}

// localTTL caps how long a memory-only entry lives.
func (c *MultiLevelCache) localTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 || ttl > c.l1TTL {
		return c.l1TTL
	}
	return ttl
}

// copyValue deep-copies src into dest through JSON so cached values are
// never shared with callers.
func copyValue(src, dest interface{}) error {
	destValue := reflect.ValueOf(dest)
	if destValue.Kind() != reflect.Ptr {
		return fmt.Errorf("destination must be a pointer, got %T", dest)
	}
	if destValue.IsNil() {
		return fmt.Errorf("destination pointer is nil")
	}

	data, err := json.Marshal(src)
	if err != nil {
		return fmt.Errorf("failed to marshal source value: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal to destination: %w", err)
	}
	return nil
}
