package server

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

// RateLimiter keeps one token bucket per client IP. Each bucket holds
// perMinute tokens and refills at perMinute per minute.
type RateLimiter struct {
	perMinute int
	buckets   sync.Map // map[string]*clientBucket
	stop      chan struct{}
	stopOnce  sync.Once
	now       func() time.Time
}

type clientBucket struct {
	limiter *rate.Limiter

	mu       sync.Mutex
	lastSeen time.Time
}

// NewRateLimiter starts a background sweep of idle buckets every
// cleanupInterval. Call Stop on shutdown.
func NewRateLimiter(perMinute int, cleanupInterval time.Duration) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	rl := &RateLimiter{
		perMinute: perMinute,
		stop:      make(chan struct{}),
		now:       time.Now,
	}
	go rl.cleanup(cleanupInterval)
	return rl
}

func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// Allow consumes one token for key.
func (rl *RateLimiter) Allow(key string) bool {
	now := rl.now()
	b := rl.bucket(key, now)
	b.mu.Lock()
	b.lastSeen = now
	b.mu.Unlock()
	return b.limiter.AllowN(now, 1)
}

// Limit rejects requests over the per-client budget with 429 and a
// Retry-After hint in seconds.
func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			c.Header("Retry-After", strconv.Itoa(rl.retryAfterSeconds()))
			writeError(c, http.StatusTooManyRequests, "Rate limit exceeded. Try again later.")
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) retryAfterSeconds() int {
	return int(math.Ceil(60.0 / float64(rl.perMinute)))
}

func (rl *RateLimiter) bucket(key string, now time.Time) *clientBucket {
	if existing, ok := rl.buckets.Load(key); ok {
		return existing.(*clientBucket)
	}
	fresh := &clientBucket{
		limiter:  rate.NewLimiter(rate.Limit(float64(rl.perMinute)/60.0), rl.perMinute),
		lastSeen: now,
	}
	actual, _ := rl.buckets.LoadOrStore(key, fresh)
	return actual.(*clientBucket)
}

func (rl *RateLimiter) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.sweep(rl.now())
		}
	}
}

func (rl *RateLimiter) sweep(now time.Time) {
	rl.buckets.Range(func(key, value any) bool {
		b := value.(*clientBucket)
		b.mu.Lock()
		idle := now.Sub(b.lastSeen)
		b.mu.Unlock()
		if idle > limiterIdleTTL {
			rl.buckets.Delete(key)
		}
		return true
	})
}
