package ratelimit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/sustaina/shipping-risk-brain/internal/errors"
	"github.com/sustaina/shipping-risk-brain/internal/monitoring"
)

func newFallbackLimiter(t *testing.T, cfg Config) (*RateLimiter, *monitoring.Metrics) {
	t.Helper()
	metrics := monitoring.NewMetrics()
	limiter := NewRateLimiter(DisabledRedisClient(), cfg, metrics)
	t.Cleanup(limiter.Close)
	return limiter, metrics
}

func TestRateLimiterFallbackMode(t *testing.T) {
	limiter, metrics := newFallbackLimiter(t, DefaultConfig())

	ctx := context.Background()
	r := Rate{Limit: 5, Period: time.Minute}

	for i := 0; i < 5; i++ {
		result, err := limiter.Allow(ctx, "test:key", r)
		require.NoError(t, err)
		assert.True(t, result.Allowed, "request %d should be allowed", i+1)
		assert.Equal(t, 5, result.Limit)
		assert.Equal(t, 4-i, result.Remaining)
	}

	result, err := limiter.Allow(ctx, "test:key", r)
	require.NoError(t, err)
	assert.False(t, result.Allowed, "6th request should be blocked")
	assert.Greater(t, result.RetryAfter, time.Duration(0))

	// other keys are independent
	result, err = limiter.Allow(ctx, "other:key", r)
	require.NoError(t, err)
	assert.True(t, result.Allowed)

	assert.Equal(t, int64(7), metrics.RateLimitFallbackCount)
}

func TestRateLimiterBurstMultiplier(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BurstMultiplier = 2
	limiter, _ := newFallbackLimiter(t, cfg)

	allowed := 0
	for i := 0; i < 10; i++ {
		result, err := limiter.Allow(context.Background(), "burst", Rate{Limit: 3, Period: time.Minute})
		require.NoError(t, err)
		if result.Allowed {
			allowed++
		}
	}
	assert.Equal(t, 6, allowed)
}

func TestRateLimiterZeroLimitDisables(t *testing.T) {
	limiter, _ := newFallbackLimiter(t, DefaultConfig())

	for i := 0; i < 100; i++ {
		result, err := limiter.Allow(context.Background(), "k", Rate{Limit: 0, Period: time.Minute})
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	}
}

func TestRateLimiterInvalidateAndPrune(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CertificateLimitPerMin = 1
	limiter, _ := newFallbackLimiter(t, cfg)
	ctx := context.Background()

	result, err := limiter.AllowCertificate(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, result.Allowed)

	result, err = limiter.AllowCertificate(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, result.Allowed)

	require.NoError(t, limiter.InvalidateIP(ctx, "10.0.0.1"))

	result, err = limiter.AllowCertificate(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, result.Allowed)

	assert.Equal(t, 0, limiter.pruneIdle(time.Now().Add(-time.Hour)))
	assert.Equal(t, 1, limiter.pruneIdle(time.Now().Add(time.Second)))
	assert.Equal(t, 0, limiter.GetStats()["fallback_limiters"])
}

func TestIPRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := DefaultConfig()
	cfg.IPLimitPerMin = 2
	limiter, metrics := newFallbackLimiter(t, cfg)

	router := gin.New()
	router.Use(apperrors.ErrorHandler(), limiter.IPRateLimitMiddleware())
	router.GET("/api/v1/reference", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reference", nil))
		codes = append(codes, w.Code)
		last = w
	}

	assert.Equal(t, []int{200, 200, 429}, codes)
	assert.Equal(t, "2", last.Header().Get("X-RateLimit-Limit"))
	assert.NotEmpty(t, last.Header().Get("Retry-After"))

	var body apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(last.Body.Bytes(), &body))
	assert.Equal(t, apperrors.CategoryRateLimit, body.Category)
	assert.Equal(t, int64(1), metrics.RateLimitIPBlocks)
}

func TestCertificateRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := DefaultConfig()
	cfg.CertificateLimitPerMin = 1
	limiter, metrics := newFallbackLimiter(t, cfg)

	router := gin.New()
	router.Use(apperrors.ErrorHandler())
	router.POST("/api/v1/certificate", limiter.CertificateRateLimitMiddleware("certificate"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/certificate", nil))
		assert.Equal(t, want, w.Code, "request %d", i+1)
	}

	assert.Equal(t, int64(1), metrics.GetRateLimitStats()["endpoint_blocks"].(map[string]int64)["certificate"])
}

func TestHandleRateLimitStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter, _ := newFallbackLimiter(t, DefaultConfig())

	router := gin.New()
	router.GET("/status", limiter.HandleRateLimitStatus())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "memory", body["backend"])
}
