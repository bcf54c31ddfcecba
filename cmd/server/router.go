package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/sustaina/shipping-risk-brain/docs"
	"github.com/sustaina/shipping-risk-brain/internal/errors"
	"github.com/sustaina/shipping-risk-brain/internal/monitoring"
	"github.com/sustaina/shipping-risk-brain/internal/security"
	"github.com/sustaina/shipping-risk-brain/internal/session"
)

const certificatePath = "/api/v1/certificate"

func setupRouter(a *app) (*gin.Engine, error) {
	r := gin.New()

	// Add monitoring middleware first (to capture all requests)
	r.Use(monitoring.RequestIDMiddleware())
	r.Use(monitoring.MonitoringMiddleware(a.metrics, a.logger))
	r.Use(monitoring.SecurityMonitoringMiddleware(a.logger, a.cfg.Security.MaxBodyBytes))

	// Add error handling middleware
	r.Use(errors.ErrorHandler())
	r.Use(errors.RecoveryHandler())

	r.Use(monitoring.HealthMonitoringMiddleware(a.metrics, a.cfg.Version))

	// Add security middleware
	r.Use(a.guard.SecurityHeaders)
	r.Use(a.guard.RequestTimeout)
	r.Use(a.guard.ValidateContentType)
	r.Use(a.guard.CORSConfig())
	r.Use(limitBody(a.cfg.Security.MaxBodyBytes))
	r.Use(a.limiter.IPRateLimitMiddleware())
	r.Use(session.Middleware(a.sessions))

	// Swagger documentation routes
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Metrics endpoints
	r.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, a.metrics.GetStats())
	})
	r.GET("/metrics/prometheus", gin.WrapH(a.prom.Handler()))

	// Cache stats endpoint
	r.GET("/cache/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, a.certCache.Stats())
	})

	// Database pool stats endpoint
	r.GET("/pools/database", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"pool":  "database",
			"stats": a.db.GetPoolStats(),
		})
	})
	r.GET("/pools/redis", func(c *gin.Context) {
		status := "disabled"
		if a.redis.IsEnabled() {
			status = "healthy"
			if err := a.redis.HealthCheck(c.Request.Context()); err != nil {
				status = "unhealthy"
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"pool":   "redis",
			"status": status,
			"stats":  a.redis.GetPoolStats(),
		})
	})

	r.GET("/ratelimit/status", a.limiter.HandleRateLimitStatus())
	r.GET("/ratelimit/metrics", a.limiter.HandleRateLimitMetrics())

	r.GET("/verify/:id", a.handleVerify)

	api := r.Group("/api/v1")
	{
		api.POST("/session", session.LoginHandler(a.sessions, a.issuances))
		api.DELETE("/session", session.LogoutHandler())
		api.GET("/reference", a.handleReference)
		api.POST("/evaluate", a.handleEvaluate)
		api.POST("/certificate",
			a.certCache.Middleware(a.metrics, a.logger, certificatePath),
			a.limiter.CertificateRateLimitMiddleware("certificate"),
			a.handleCertificate,
		)
		api.POST("/certificate/preview", a.handlePreview)
		api.GET("/issuances", session.RequireSession(), a.handleIssuances)
	}

	pages := r.Group("/", security.CSPMiddleware(a.cfg.Security.CSPReportURI))
	if err := a.pages.Register(pages, a.limiter.CertificateRateLimitMiddleware("certificate_form")); err != nil {
		return nil, err
	}

	return r, nil
}

// limitBody caps request bodies; reads past the limit fail
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

// parseAsOf accepts a calendar date or an RFC 3339 timestamp; empty means now
func parseAsOf(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
