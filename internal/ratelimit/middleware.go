package ratelimit

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/sustaina/shipping-risk-brain/internal/errors"
)

type checkFunc func(ctx context.Context, ip string) (*Result, error)

// IPRateLimitMiddleware enforces the per-IP limit on every route
func (rl *RateLimiter) IPRateLimitMiddleware() gin.HandlerFunc {
	return rl.middleware("ip", "X-RateLimit", rl.AllowIP, func() {
		if rl.metrics != nil {
			rl.metrics.IncrementRateLimitIPBlock()
		}
	})
}

// CertificateRateLimitMiddleware enforces the rendering limit on document routes
func (rl *RateLimiter) CertificateRateLimitMiddleware(endpoint string) gin.HandlerFunc {
	return rl.middleware("certificate", "X-RateLimit-Endpoint", rl.AllowCertificate, func() {
		if rl.metrics != nil {
			rl.metrics.IncrementRateLimitIPBlock()
			rl.metrics.IncrementRateLimitEndpoint(endpoint)
		}
	})
}

func (rl *RateLimiter) middleware(scope, headerPrefix string, check checkFunc, onBlock func()) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		result, err := check(c.Request.Context(), ip)
		if err != nil {
			// never block a request because the limiter failed
			slog.Error("Rate limit check failed", "scope", scope, "ip", ip, "error", err)
			c.Next()
			return
		}

		c.Header(headerPrefix+"-Limit", strconv.Itoa(result.Limit))
		c.Header(headerPrefix+"-Remaining", strconv.Itoa(result.Remaining))
		c.Header(headerPrefix+"-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			onBlock()

			retryAfter := int(result.RetryAfter.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			_ = c.Error(apperrors.NewRateLimitError(strconv.Itoa(retryAfter) + "s"))
			c.Abort()
			return
		}

		c.Next()
	}
}
