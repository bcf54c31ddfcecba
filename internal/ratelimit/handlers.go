package ratelimit

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HandleRateLimitStatus returns the limits that apply to the requesting IP
func (rl *RateLimiter) HandleRateLimitStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ip": c.ClientIP(),
			"limits": gin.H{
				"requests_per_minute": gin.H{
					"limit":  rl.config.IPLimitPerMin,
					"period": "1 minute",
				},
				"certificates_per_minute": gin.H{
					"limit":  rl.config.CertificateLimitPerMin,
					"period": "1 minute",
				},
			},
			"backend":   rl.backend(),
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

// HandleRateLimitMetrics returns limiter and block statistics
func (rl *RateLimiter) HandleRateLimitMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		var rateLimitMetrics map[string]interface{}
		if rl.metrics != nil {
			rateLimitMetrics = rl.metrics.GetRateLimitStats()
		}

		c.JSON(http.StatusOK, gin.H{
			"limiter_stats": rl.GetStats(),
			"metrics":       rateLimitMetrics,
			"timestamp":     time.Now().Format(time.RFC3339),
		})
	}
}

func (rl *RateLimiter) backend() string {
	if rl.redisClient.IsEnabled() {
		return "redis"
	}
	return "memory"
}
