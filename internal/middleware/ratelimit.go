package middleware

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"

	"github.com/packagehub/hub-web/internal/safego"
	"github.com/packagehub/hub-web/internal/session"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	// RequestsPerMinute is the sustained number of requests allowed per minute
	RequestsPerMinute int
	// BurstSize is the maximum burst of requests allowed
	BurstSize int
	// CleanupInterval is how often idle in-memory buckets are dropped
	CleanupInterval time.Duration
}

// DefaultRateLimitConfig returns the limits applied to page views. A page
// view fans out into several hub API calls, so the budget is per page.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 200,
		BurstSize:         50,
		CleanupInterval:   5 * time.Minute,
	}
}

// AuthRateLimitConfig returns stricter limits for the login and sign up forms.
func AuthRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 10,
		BurstSize:         5,
		CleanupInterval:   5 * time.Minute,
	}
}

// LimitResult is the outcome of one rate limit check.
type LimitResult struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	Limit(ctx context.Context, key string) (LimitResult, error)
}

// ---------------------------------------------------------------------------
// In-memory token bucket
// ---------------------------------------------------------------------------

type rateLimitEntry struct {
	tokens     float64
	lastUpdate time.Time
}

// RateLimiter is a per-instance token bucket limiter.
type RateLimiter struct {
	config  RateLimitConfig
	entries map[string]*rateLimitEntry
	mu      sync.Mutex
	stopCh  chan struct{}
	once    sync.Once
}

// NewRateLimiter creates a limiter and starts its cleanup goroutine. Call
// Stop when done.
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		config:  config,
		entries: make(map[string]*rateLimitEntry),
		stopCh:  make(chan struct{}),
	}
	safego.Go(rl.cleanup)
	return rl
}

func (rl *RateLimiter) cleanup() {
	interval := rl.config.CleanupInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			now := time.Now()
			for key, entry := range rl.entries {
				if now.Sub(entry.lastUpdate) > 10*time.Minute {
					delete(rl.entries, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

// Stop stops the cleanup goroutine. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stopCh) })
}

func (rl *RateLimiter) refill(entry *rateLimitEntry, now time.Time) float64 {
	tokensPerSecond := float64(rl.config.RequestsPerMinute) / 60.0
	return math.Min(float64(rl.config.BurstSize), entry.tokens+now.Sub(entry.lastUpdate).Seconds()*tokensPerSecond)
}

// Allow checks if a request from the given key should be allowed.
func (rl *RateLimiter) Allow(key string) bool {
	res, _ := rl.Limit(context.Background(), key)
	return res.Allowed
}

// Limit implements Limiter.
func (rl *RateLimiter) Limit(_ context.Context, key string) (LimitResult, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	res := LimitResult{Limit: rl.config.RequestsPerMinute}
	now := time.Now()
	entry, exists := rl.entries[key]
	if !exists {
		entry = &rateLimitEntry{tokens: float64(rl.config.BurstSize), lastUpdate: now}
		rl.entries[key] = entry
	} else {
		entry.tokens = rl.refill(entry, now)
		entry.lastUpdate = now
	}

	if entry.tokens >= 1 {
		entry.tokens--
		res.Allowed = true
	} else if rl.config.RequestsPerMinute > 0 {
		missing := 1 - entry.tokens
		res.RetryAfter = time.Duration(missing / (float64(rl.config.RequestsPerMinute) / 60.0) * float64(time.Second))
	} else {
		res.RetryAfter = time.Minute
	}
	res.Remaining = int(entry.tokens)
	return res, nil
}

// RemainingTokens returns how many tokens are left for a key.
func (rl *RateLimiter) RemainingTokens(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, exists := rl.entries[key]
	if !exists {
		return rl.config.BurstSize
	}
	return int(rl.refill(entry, time.Now()))
}

// ---------------------------------------------------------------------------
// Redis (GCRA) limiter shared by every instance
// ---------------------------------------------------------------------------

// RedisRateLimiter enforces the limits across instances using redis_rate.
type RedisRateLimiter struct {
	limiter *redis_rate.Limiter
	limit   redis_rate.Limit
	prefix  string
}

// NewRedisRateLimiter creates a limiter storing its state in rdb. prefix
// namespaces the keys of one limiter (e.g. "pages:", "auth:").
func NewRedisRateLimiter(rdb redis.UniversalClient, config RateLimitConfig, prefix string) *RedisRateLimiter {
	return &RedisRateLimiter{
		limiter: redis_rate.NewLimiter(rdb),
		limit: redis_rate.Limit{
			Rate:   config.RequestsPerMinute,
			Burst:  config.BurstSize,
			Period: time.Minute,
		},
		prefix: prefix,
	}
}

// Limit implements Limiter.
func (rl *RedisRateLimiter) Limit(ctx context.Context, key string) (LimitResult, error) {
	res, err := rl.limiter.Allow(ctx, rl.prefix+key, rl.limit)
	if err != nil {
		return LimitResult{}, err
	}
	return LimitResult{
		Allowed:    res.Allowed > 0,
		Limit:      rl.limit.Rate,
		Remaining:  res.Remaining,
		RetryAfter: res.RetryAfter,
	}, nil
}

// ---------------------------------------------------------------------------
// Middleware
// ---------------------------------------------------------------------------

// RateLimitMiddleware rejects requests over the limit with 429. When the
// limiter itself fails (e.g. Redis is unreachable) the request is let through.
func RateLimitMiddleware(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := getRateLimitKey(c)

		res, err := limiter.Limit(c.Request.Context(), key)
		if err != nil {
			slog.Warn("rate limiter unavailable, allowing request",
				"error", err, "request_id", RequestID(c))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))

		if !res.Allowed {
			retry := int(math.Ceil(res.RetryAfter.Seconds()))
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			c.String(http.StatusTooManyRequests, "Too many requests, please try again in %d seconds.", retry)
			c.Abort()
			return
		}

		c.Next()
	}
}

// getRateLimitKey keys signed-in visitors by session and everyone else by
// client IP. The session middleware must run first.
func getRateLimitKey(c *gin.Context) string {
	if sc := session.FromGin(c); sc.IsLoggedIn() {
		return "session:" + sc.Session.ID
	}
	ip := c.ClientIP()
	if ip == "" {
		ip = c.Request.RemoteAddr
	}
	return "ip:" + ip
}
