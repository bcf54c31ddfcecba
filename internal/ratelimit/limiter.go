package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"golang.org/x/time/rate"

	"github.com/sustaina/shipping-risk-brain/internal/monitoring"
)

// Config holds rate limiter configuration
type Config struct {
	IPLimitPerMin          int           // all routes, per client IP
	CertificateLimitPerMin int           // document rendering, per client IP
	BurstMultiplier        int           // in-memory burst as a multiple of the limit
	CleanupInterval        time.Duration // idle in-memory limiters are dropped after this
}

// DefaultConfig returns default rate limiting configuration
func DefaultConfig() Config {
	return Config{
		IPLimitPerMin:          60,
		CertificateLimitPerMin: 10,
		BurstMultiplier:        1,
		CleanupInterval:        time.Hour,
	}
}

// Rate is a number of requests per period
type Rate struct {
	Limit  int
	Period time.Duration
}

// Result represents the result of a rate limit check
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

type fallbackEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter provides distributed rate limiting with Redis and in-memory fallback
type RateLimiter struct {
	redisLimiter *redis_rate.Limiter
	redisClient  *RedisClient
	breaker      *circuitBreaker
	config       Config
	metrics      *monitoring.Metrics

	fallbackLimiters map[string]*fallbackEntry
	fallbackMutex    sync.Mutex

	stop chan struct{}
	once sync.Once
}

// NewRateLimiter creates a new rate limiter with Redis and in-memory fallback
func NewRateLimiter(redisClient *RedisClient, config Config, metrics *monitoring.Metrics) *RateLimiter {
	if config.BurstMultiplier < 1 {
		config.BurstMultiplier = 1
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = time.Hour
	}

	rl := &RateLimiter{
		redisClient:      redisClient,
		breaker:          newCircuitBreaker(DefaultBreakerConfig()),
		config:           config,
		metrics:          metrics,
		fallbackLimiters: make(map[string]*fallbackEntry),
		stop:             make(chan struct{}),
	}

	if redisClient.IsEnabled() {
		rl.redisLimiter = redis_rate.NewLimiter(redisClient.GetClient())
		slog.Info("Redis rate limiter initialized")
	} else {
		slog.Warn("Redis unavailable, using in-memory rate limiting only")
	}

	go rl.cleanupFallbackLimiters()

	return rl
}

// Close stops the background cleanup
func (rl *RateLimiter) Close() {
	rl.once.Do(func() { close(rl.stop) })
}

// AllowIP checks the per-minute limit shared by all routes
func (rl *RateLimiter) AllowIP(ctx context.Context, ip string) (*Result, error) {
	return rl.Allow(ctx, "ratelimit:ip:"+ip, Rate{Limit: rl.config.IPLimitPerMin, Period: time.Minute})
}

// AllowCertificate checks the per-minute document rendering limit
func (rl *RateLimiter) AllowCertificate(ctx context.Context, ip string) (*Result, error) {
	return rl.Allow(ctx, "ratelimit:certificate:"+ip, Rate{Limit: rl.config.CertificateLimitPerMin, Period: time.Minute})
}

// Allow checks key against r using Redis when healthy, memory otherwise
func (rl *RateLimiter) Allow(ctx context.Context, key string, r Rate) (*Result, error) {
	if r.Limit <= 0 {
		return &Result{Allowed: true, Limit: 0, Remaining: 0}, nil
	}

	if rl.redisClient.IsEnabled() && rl.redisLimiter != nil {
		var result *Result
		err := rl.breaker.Call(func() error {
			var err error
			result, err = rl.allowRedis(ctx, key, r)
			return err
		})
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, ErrBreakerOpen) {
			slog.Warn("Redis rate limit check failed, using fallback", "key", key, "error", err)
			if rl.metrics != nil {
				rl.metrics.IncrementRateLimitRedisError()
			}
		}
	}

	if rl.metrics != nil {
		rl.metrics.IncrementRateLimitFallback()
	}
	return rl.allowFallback(key, r), nil
}

// allowRedis uses the GCRA limiter in Redis
func (rl *RateLimiter) allowRedis(ctx context.Context, key string, r Rate) (*Result, error) {
	res, err := rl.redisLimiter.Allow(ctx, key, redis_rate.Limit{
		Rate:   r.Limit,
		Burst:  r.Limit,
		Period: r.Period,
	})
	if err != nil {
		return nil, fmt.Errorf("redis rate limit check failed: %w", err)
	}

	return &Result{
		Allowed:    res.Allowed > 0,
		Limit:      res.Limit.Rate,
		Remaining:  res.Remaining,
		ResetAt:    time.Now().Add(res.ResetAfter),
		RetryAfter: res.RetryAfter,
	}, nil
}

// allowFallback uses an in-memory token bucket per key
func (rl *RateLimiter) allowFallback(key string, r Rate) *Result {
	now := time.Now()

	rl.fallbackMutex.Lock()
	entry, exists := rl.fallbackLimiters[key]
	if !exists {
		perSecond := rate.Limit(float64(r.Limit) / r.Period.Seconds())
		entry = &fallbackEntry{limiter: rate.NewLimiter(perSecond, r.Limit*rl.config.BurstMultiplier)}
		rl.fallbackLimiters[key] = entry
	}
	entry.lastSeen = now
	rl.fallbackMutex.Unlock()

	allowed := entry.limiter.AllowN(now, 1)
	remaining := int(entry.limiter.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}

	refill := time.Duration(float64(time.Second) / float64(entry.limiter.Limit()))
	result := &Result{
		Allowed:   allowed,
		Limit:     r.Limit,
		Remaining: remaining,
		ResetAt:   now.Add(r.Period),
	}
	if !allowed {
		result.RetryAfter = refill
		result.ResetAt = now.Add(refill)
	}
	return result
}

// InvalidateIP removes all limits recorded for ip
func (rl *RateLimiter) InvalidateIP(ctx context.Context, ip string) error {
	keys := []string{"ratelimit:ip:" + ip, "ratelimit:certificate:" + ip}

	if rl.redisClient.IsEnabled() && rl.redisLimiter != nil {
		for _, key := range keys {
			if err := rl.redisLimiter.Reset(ctx, key); err != nil {
				return fmt.Errorf("failed to reset %s: %w", key, err)
			}
		}
	}

	rl.fallbackMutex.Lock()
	for _, key := range keys {
		delete(rl.fallbackLimiters, key)
	}
	rl.fallbackMutex.Unlock()

	slog.Info("Invalidated IP rate limits", "ip", ip)
	return nil
}

// cleanupFallbackLimiters drops in-memory limiters idle for a full interval
func (rl *RateLimiter) cleanupFallbackLimiters() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.pruneIdle(time.Now().Add(-rl.config.CleanupInterval))
		case <-rl.stop:
			return
		}
	}
}

func (rl *RateLimiter) pruneIdle(cutoff time.Time) int {
	rl.fallbackMutex.Lock()
	defer rl.fallbackMutex.Unlock()

	removed := 0
	for key, entry := range rl.fallbackLimiters {
		if entry.lastSeen.Before(cutoff) {
			delete(rl.fallbackLimiters, key)
			removed++
		}
	}
	if removed > 0 {
		slog.Info("Cleaned up fallback rate limiters", "removed", removed)
	}
	return removed
}

// GetStats returns rate limiter statistics
func (rl *RateLimiter) GetStats() map[string]interface{} {
	rl.fallbackMutex.Lock()
	fallbackCount := len(rl.fallbackLimiters)
	rl.fallbackMutex.Unlock()

	stats := map[string]interface{}{
		"redis_enabled":             rl.redisClient.IsEnabled(),
		"fallback_limiters":         fallbackCount,
		"ip_limit_per_min":          rl.config.IPLimitPerMin,
		"certificate_limit_per_min": rl.config.CertificateLimitPerMin,
		"redis_breaker":             rl.breaker.Stats(),
	}

	if rl.redisClient.IsEnabled() {
		stats["redis_pool"] = rl.redisClient.GetPoolStats()
	}

	return stats
}
