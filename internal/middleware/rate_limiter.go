package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/marwanhaqiqi/be-task-management-system-new/internal/cache"
)

// visitorTTL is how long an idle client keeps its token bucket.
const visitorTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per-IP token bucket kept in process memory.
func RateLimiter(r rate.Limit, b int) gin.HandlerFunc {
	var (
		visitors  = make(map[string]*visitor)
		mu        sync.Mutex
		lastSweep = time.Now()
	)

	getVisitor := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()

		now := time.Now()
		if now.Sub(lastSweep) > visitorTTL {
			for key, v := range visitors {
				if now.Sub(v.lastSeen) > visitorTTL {
					delete(visitors, key)
				}
			}
			lastSweep = now
		}

		v, exists := visitors[ip]
		if !exists {
			v = &visitor{limiter: rate.NewLimiter(r, b)}
			visitors[ip] = v
		}
		v.lastSeen = now
		return v.limiter
	}

	return func(c *gin.Context) {
		if !getVisitor(c.ClientIP()).Allow() {
			respondTooManyAttempts(c)
			return
		}
		c.Next()
	}
}

// DistributedRateLimiter counts requests in a Redis sliding window so the
// limit holds across instances.
type DistributedRateLimiter struct {
	redis   *redis.Client
	limits  map[string]*RateLimit
	breaker *cache.CircuitBreaker
	mu      sync.Mutex
}

type RateLimit struct {
	Rate    int
	Window  time.Duration
	KeyFunc func(*gin.Context) string
	OnLimit func(*gin.Context)
}

func NewDistributedRateLimiter(redisClient *redis.Client) *DistributedRateLimiter {
	return &DistributedRateLimiter{
		redis:   redisClient,
		limits:  make(map[string]*RateLimit),
		breaker: cache.NewCircuitBreaker(cache.DefaultCircuitBreakerConfig()),
	}
}

// CreateMiddleware fails open: when Redis is unavailable requests pass with
// an X-RateLimit-Error header.
func (rl *DistributedRateLimiter) CreateMiddleware(name string, limit *RateLimit) gin.HandlerFunc {
	rl.mu.Lock()
	rl.limits[name] = limit
	rl.mu.Unlock()

	return func(c *gin.Context) {
		key := fmt.Sprintf("rate_limit:%s:%s", name, limit.KeyFunc(c))

		var allowed bool
		err := rl.breaker.Execute(func() error {
			var err error
			allowed, err = rl.checkLimit(c.Request.Context(), key, limit)
			return err
		})
		if err != nil {
			log.Printf("⚠️  Rate limit check failed for %s: %v", name, err)
			c.Header("X-RateLimit-Error", "true")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit.Rate))
		c.Header("X-RateLimit-Window", limit.Window.String())

		if !allowed {
			if limit.OnLimit != nil {
				limit.OnLimit(c)
				c.Abort()
				return
			}
			c.Header("Retry-After", strconv.Itoa(int(limit.Window.Seconds())))
			respondTooManyAttempts(c)
			return
		}

		c.Next()
	}
}

func (rl *DistributedRateLimiter) checkLimit(ctx context.Context, key string, limit *RateLimit) (bool, error) {
	now := time.Now().UnixNano()
	windowStart := now - limit.Window.Nanoseconds()

	pipe := rl.redis.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))
	countCmd := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: now})
	pipe.Expire(ctx, key, limit.Window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to execute rate limit pipeline: %w", err)
	}

	return countCmd.Val() < int64(limit.Rate), nil
}

func respondTooManyAttempts(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"success": false,
		"message": "Too Many Attempts.",
	})
}

func IPKeyFunc(c *gin.Context) string {
	return c.ClientIP()
}

// UserKeyFunc keys by the authenticated caller, falling back to the IP.
func UserKeyFunc(c *gin.Context) string {
	userID, ok := CurrentUserID(c)
	if !ok {
		return c.ClientIP()
	}
	return fmt.Sprintf("user:%s", userID)
}
