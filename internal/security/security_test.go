package security

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sustaina/shipping-risk-brain/internal/riskmodel"
)

func TestSecurityConfig(t *testing.T) {
	config := DefaultSecurityConfig()

	assert.Equal(t, 120, config.MaxInputLength)
	assert.True(t, config.EnableCORS)
	assert.Contains(t, config.AllowedOrigins, "http://localhost:3000")
	assert.Equal(t, 30*time.Second, config.RequestTimeout)
	assert.False(t, config.EnableHSTS)
}

func TestValidateInput(t *testing.T) {
	sm := NewSecurityMiddleware(DefaultSecurityConfig())

	tests := []struct {
		name        string
		input       string
		expectError bool
		errorMsg    string
	}{
		{
			name:        "valid vessel name",
			input:       "MV Example",
			expectError: false,
		},
		{
			name:        "valid organization with punctuation",
			input:       "Nordic Bulk A/S (Oslo)",
			expectError: false,
		},
		{
			name:        "double hyphen in a company name",
			input:       "Sea--Star Shipping",
			expectError: false,
		},
		{
			name:        "slash and asterisk in a vessel name",
			input:       "MV Star */ North /* II",
			expectError: false,
		},
		{
			name:        "input too long",
			input:       strings.Repeat("a", 121),
			expectError: true,
			errorMsg:    "input exceeds maximum length",
		},
		{
			name:        "null bytes",
			input:       "test\x00input",
			expectError: true,
			errorMsg:    "input contains invalid characters",
		},
		{
			name:        "invalid UTF-8",
			input:       "test\xff\xfeinput",
			expectError: true,
			errorMsg:    "input contains invalid UTF-8 encoding",
		},
		{
			name:        "XSS attempt",
			input:       "<script>alert('xss')</script>",
			expectError: true,
			errorMsg:    "input contains suspicious patterns",
		},
		{
			name:        "event handler attribute",
			input:       "img onerror=alert(1)",
			expectError: true,
			errorMsg:    "input contains suspicious patterns",
		},
		{
			name:        "SQL injection attempt",
			input:       "'; DROP TABLE certificates; --",
			expectError: true,
			errorMsg:    "input contains suspicious patterns",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := sm.ValidateInput(tt.input)

			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSanitizeInput(t *testing.T) {
	sm := NewSecurityMiddleware(DefaultSecurityConfig())

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "trim whitespace",
			input:    "  MV Example  ",
			expected: "MV Example",
		},
		{
			name:     "remove script block",
			input:    "<script>alert('test')</script>Rotterdam",
			expected: "Rotterdam",
		},
		{
			name:     "remove tags keep content",
			input:    "<b>Steel</b> coils",
			expected: "Steel coils",
		},
		{
			name:     "collapse whitespace",
			input:    "Demo   Shipping \t Ltd",
			expected: "Demo Shipping Ltd",
		},
		{
			name:     "decode ampersand",
			input:    "Smith &amp; Sons",
			expected: "Smith & Sons",
		},
		{
			name:     "normal input unchanged",
			input:    "IMO1234567",
			expected: "IMO1234567",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sm.SanitizeInput(tt.input))
		})
	}
}

func TestSanitizeAndValidateProfile(t *testing.T) {
	sm := NewSecurityMiddleware(DefaultSecurityConfig())

	profile := riskmodel.DefaultProfile()
	profile.VesselName = "  <i>MV</i>   Example "
	profile.Voyage.Cargo = "<script>x</script>Containers"

	clean := sm.SanitizeProfile(profile)
	assert.Equal(t, "MV Example", clean.VesselName)
	assert.Equal(t, "Containers", clean.Voyage.Cargo)
	assert.Equal(t, profile.DWT, clean.DWT)
	assert.Empty(t, sm.ValidateProfileText(clean))

	profile.Organization = strings.Repeat("x", 200)
	profile.RouteRegion = "javascript:alert(1)"
	problems := sm.ValidateProfileText(profile)
	assert.Contains(t, problems, "organization")
	assert.Contains(t, problems, "route_region")
}

func TestSecurityHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		enableHSTS bool
	}{
		{name: "without HSTS", enableHSTS: false},
		{name: "with HSTS", enableHSTS: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultSecurityConfig()
			config.EnableHSTS = tt.enableHSTS
			sm := NewSecurityMiddleware(config)

			r := gin.New()
			r.Use(sm.SecurityHeaders)
			r.GET("/test", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"message": "test"})
			})

			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/test", nil)
			r.ServeHTTP(w, req)

			headers := w.Header()
			assert.Equal(t, "nosniff", headers.Get("X-Content-Type-Options"))
			assert.Equal(t, "DENY", headers.Get("X-Frame-Options"))
			assert.Equal(t, "1; mode=block", headers.Get("X-XSS-Protection"))
			assert.Equal(t, "strict-origin-when-cross-origin", headers.Get("Referrer-Policy"))
			assert.Contains(t, headers.Get("Content-Security-Policy"), "default-src 'self'")
			assert.Equal(t, tt.enableHSTS, headers.Get("Strict-Transport-Security") != "")
		})
	}
}

func TestCSPMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(CSPMiddleware("/csp-report"))
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, GetNonce(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	nonce := w.Body.String()
	require.NotEmpty(t, nonce)
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "'nonce-"+nonce+"'")
	assert.Contains(t, w.Header().Get("Content-Security-Policy-Report-Only"), "report-uri /csp-report")
}

func TestNoStoreAndAttachment(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(NoStoreMiddleware())
	r.GET("/file", func(c *gin.Context) {
		SetAttachment(c, "Sustaina_Certificate.pdf")
		c.Data(http.StatusOK, "application/pdf", []byte("%PDF"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/file", nil))

	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Equal(t, "attachment; filename=Sustaina_Certificate.pdf", w.Header().Get("Content-Disposition"))
}

func TestValidateContentType(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sm := NewSecurityMiddleware(DefaultSecurityConfig())

	r := gin.New()
	r.Use(sm.ValidateContentType)

	r.POST("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	tests := []struct {
		name           string
		contentType    string
		expectedStatus int
	}{
		{
			name:           "valid JSON",
			contentType:    "application/json",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "valid form data",
			contentType:    "application/x-www-form-urlencoded",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid content type",
			contentType:    "text/plain",
			expectedStatus: http.StatusUnsupportedMediaType,
		},
		{
			name:           "no content type",
			contentType:    "",
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("POST", "/test", bytes.NewBufferString(`{"test": "data"}`))

			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}

			r.ServeHTTP(w, req)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestCORSConfig(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sm := NewSecurityMiddleware(DefaultSecurityConfig())

	r := gin.New()
	r.Use(sm.CORSConfig())

	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "test"})
	})

	tests := []struct {
		name           string
		origin         string
		method         string
		expectedStatus int
		checkCORS      bool
	}{
		{
			name:           "allowed origin",
			origin:         "http://localhost:3000",
			method:         "GET",
			expectedStatus: http.StatusOK,
			checkCORS:      true,
		},
		{
			name:           "disallowed origin",
			origin:         "http://evil.com",
			method:         "GET",
			expectedStatus: http.StatusForbidden,
			checkCORS:      false,
		},
		{
			name:           "OPTIONS preflight",
			origin:         "http://localhost:3000",
			method:         "OPTIONS",
			expectedStatus: http.StatusNoContent,
			checkCORS:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(tt.method, "/test", nil)
			req.Header.Set("Origin", tt.origin)

			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.checkCORS {
				headers := w.Header()
				assert.Equal(t, tt.origin, headers.Get("Access-Control-Allow-Origin"))
				assert.Equal(t, "true", headers.Get("Access-Control-Allow-Credentials"))
			}
		})
	}
}

func TestCORSDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	config := DefaultSecurityConfig()
	config.EnableCORS = false
	sm := NewSecurityMiddleware(config)

	r := gin.New()
	r.Use(sm.CORSConfig())
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Origin", "http://evil.com")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestTimeout(t *testing.T) {
	gin.SetMode(gin.TestMode)

	config := DefaultSecurityConfig()
	config.RequestTimeout = 5 * time.Millisecond

	sm := NewSecurityMiddleware(config)

	r := gin.New()
	r.Use(sm.RequestTimeout)

	var ctxErr error
	r.GET("/test", func(c *gin.Context) {
		<-c.Request.Context().Done()
		ctxErr = c.Request.Context().Err()
		c.Status(http.StatusGatewayTimeout)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)

	start := time.Now()
	r.ServeHTTP(w, req)

	assert.Less(t, time.Since(start), time.Second)
	assert.Error(t, ctxErr)
	assert.Equal(t, "0", w.Header().Get("X-Timeout"))
}
