package security

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/sustaina/shipping-risk-brain/internal/riskmodel"
)

// SecurityConfig holds security configuration
type SecurityConfig struct {
	MaxInputLength int           `json:"max_input_length" yaml:"max_input_length"`
	EnableCORS     bool          `json:"enable_cors" yaml:"enable_cors"`
	AllowedOrigins []string      `json:"allowed_origins" yaml:"allowed_origins"`
	TrustedProxies []string      `json:"trusted_proxies" yaml:"trusted_proxies"`
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout"`
	EnableHSTS     bool          `json:"enable_hsts" yaml:"enable_hsts"`
}

// DefaultSecurityConfig returns secure defaults
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		MaxInputLength: 120,
		EnableCORS:     true,
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		TrustedProxies: []string{"127.0.0.1", "::1", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"},
		RequestTimeout: 30 * time.Second,
	}
}

var (
	scriptPattern      = regexp.MustCompile(`(?i)<script[^>]*>.*?</script>`)
	htmlTagPattern     = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern  = regexp.MustCompile(`\s+`)
	eventHandlerRegexp = regexp.MustCompile(`(?i)\bon\w+\s*=`)

	suspiciousPatterns = []string{
		`<script`, `</script>`, `javascript:`,
		`union select`, `drop table`, `alter table`,
	}
)

// SecurityMiddleware bundles the request hardening middlewares
type SecurityMiddleware struct {
	config SecurityConfig
}

// NewSecurityMiddleware creates a new security middleware instance
func NewSecurityMiddleware(config SecurityConfig) *SecurityMiddleware {
	if config.MaxInputLength <= 0 {
		config.MaxInputLength = DefaultSecurityConfig().MaxInputLength
	}
	return &SecurityMiddleware{config: config}
}

// Config returns the active configuration
func (sm *SecurityMiddleware) Config() SecurityConfig {
	return sm.config
}

// ValidateInput checks one free-text value
func (sm *SecurityMiddleware) ValidateInput(input string) error {
	if len(input) > sm.config.MaxInputLength {
		return fmt.Errorf("input exceeds maximum length of %d characters", sm.config.MaxInputLength)
	}

	// null bytes
	if strings.Contains(input, "\x00") {
		return fmt.Errorf("input contains invalid characters")
	}

	if !utf8.ValidString(input) {
		return fmt.Errorf("input contains invalid UTF-8 encoding")
	}

	inputLower := strings.ToLower(input)
	for _, pattern := range suspiciousPatterns {
		if strings.Contains(inputLower, pattern) {
			return fmt.Errorf("input contains suspicious patterns")
		}
	}
	if eventHandlerRegexp.MatchString(input) {
		return fmt.Errorf("input contains suspicious patterns")
	}

	return nil
}

// SanitizeInput strips markup and collapses whitespace
func (sm *SecurityMiddleware) SanitizeInput(input string) string {
	input = strings.TrimSpace(input)
	input = scriptPattern.ReplaceAllString(input, "")
	input = htmlTagPattern.ReplaceAllString(input, "")
	input = whitespacePattern.ReplaceAllString(input, " ")

	htmlEntities := map[string]string{
		"&lt;":   "<",
		"&gt;":   ">",
		"&quot;": "\"",
		"&#x27;": "'",
		"&#39;":  "'",
	}
	for entity, char := range htmlEntities {
		input = strings.ReplaceAll(input, entity, char)
	}
	// last so "&amp;lt;" cannot turn into a tag
	input = strings.ReplaceAll(input, "&amp;", "&")

	return strings.TrimSpace(input)
}

// textFields lists the free-text fields of a profile by JSON name
func textFields(p *riskmodel.VesselProfile) map[string]*string {
	route := string(p.RouteRegion)
	fields := map[string]*string{
		"organization":     &p.Organization,
		"vessel_name":      &p.VesselName,
		"imo":              &p.IMO,
		"voyage.last_port": &p.Voyage.LastPort,
		"voyage.next_port": &p.Voyage.NextPort,
		"voyage.cargo":     &p.Voyage.Cargo,
	}
	if route != "" {
		fields["route_region"] = &route
	}
	return fields
}

// SanitizeProfile returns a copy of p with every free-text field sanitized
func (sm *SecurityMiddleware) SanitizeProfile(p riskmodel.VesselProfile) riskmodel.VesselProfile {
	out := p
	out.Organization = sm.SanitizeInput(p.Organization)
	out.VesselName = sm.SanitizeInput(p.VesselName)
	out.IMO = sm.SanitizeInput(p.IMO)
	out.RouteRegion = riskmodel.RouteRegion(sm.SanitizeInput(string(p.RouteRegion)))
	out.Voyage = riskmodel.VoyageSnapshot{
		LastPort: sm.SanitizeInput(p.Voyage.LastPort),
		NextPort: sm.SanitizeInput(p.Voyage.NextPort),
		Cargo:    sm.SanitizeInput(p.Voyage.Cargo),
	}
	return out
}

// ValidateProfileText validates every free-text field of p. The result maps
// field names to problems and is empty when all fields pass.
func (sm *SecurityMiddleware) ValidateProfileText(p riskmodel.VesselProfile) map[string]string {
	problems := make(map[string]string)
	for name, value := range textFields(&p) {
		if err := sm.ValidateInput(*value); err != nil {
			problems[name] = err.Error()
		}
	}
	return problems
}

// SecurityHeaders adds security headers to responses
func (sm *SecurityMiddleware) SecurityHeaders(c *gin.Context) {
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("X-Frame-Options", "DENY")
	c.Header("X-XSS-Protection", "1; mode=block")
	c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
	c.Header("Permissions-Policy", "geolocation=(), microphone=(), camera=()")

	if sm.config.EnableHSTS || c.Request.TLS != nil {
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
	}

	// HTML pages replace this with a nonce policy via CSPMiddleware
	c.Header("Content-Security-Policy", "default-src 'self'; img-src 'self' data:; frame-ancestors 'none'")

	c.Next()
}

// ValidateContentType validates request content type
func (sm *SecurityMiddleware) ValidateContentType(c *gin.Context) {
	contentType := c.GetHeader("Content-Type")

	allowedTypes := []string{
		"application/json",
		"application/x-www-form-urlencoded",
		"multipart/form-data",
	}

	if contentType != "" {
		found := false
		for _, allowed := range allowedTypes {
			if strings.Contains(strings.ToLower(contentType), allowed) {
				found = true
				break
			}
		}

		if !found {
			c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
				"error": "unsupported content type",
			})
			return
		}
	}

	c.Next()
}

// RequestTimeout bounds the request context
func (sm *SecurityMiddleware) RequestTimeout(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), sm.config.RequestTimeout)
	defer cancel()

	c.Request = c.Request.WithContext(ctx)
	c.Header("X-Timeout", strconv.Itoa(int(sm.config.RequestTimeout.Seconds())))

	c.Next()
}

// CORSConfig builds the CORS middleware for the configured origins
func (sm *SecurityMiddleware) CORSConfig() gin.HandlerFunc {
	if !sm.config.EnableCORS || len(sm.config.AllowedOrigins) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return cors.New(cors.Config{
		AllowOrigins:     sm.config.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Disposition", "X-Certificate-ID", "X-Cache", "X-Request-ID", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
