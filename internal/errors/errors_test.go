package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sustaina/shipping-risk-brain/internal/report"
	"github.com/sustaina/shipping-risk-brain/internal/riskmodel"
)

func TestToAppError_Mapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		category ErrorCategory
		status   int
	}{
		{
			name:     "profile validation",
			err:      &riskmodel.ValidationError{Fields: map[string]string{"dwt": "must be between 1000 and 400000"}},
			category: CategoryValidation,
			status:   http.StatusBadRequest,
		},
		{
			name:     "invalid key",
			err:      fmt.Errorf("evaluate: %w", &riskmodel.InvalidKeyError{Table: "fuel_emission_factor", Key: "coal"}),
			category: CategoryValidation,
			status:   http.StatusBadRequest,
		},
		{
			name:     "rendering",
			err:      &report.RenderError{Op: "output", Err: errors.New("broken pipe")},
			category: CategoryRendering,
			status:   http.StatusInternalServerError,
		},
		{
			name:     "deadline",
			err:      context.DeadlineExceeded,
			category: CategoryTimeout,
			status:   http.StatusGatewayTimeout,
		},
		{
			name:     "anything else",
			err:      errors.New("boom"),
			category: CategoryInternal,
			status:   http.StatusInternalServerError,
		},
		{
			name:     "already an app error",
			err:      NewRateLimitError("60s"),
			category: CategoryRateLimit,
			status:   http.StatusTooManyRequests,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := ToAppError(tt.err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.category, appErr.Category)
			assert.Equal(t, tt.status, appErr.HTTPStatus)
		})
	}

	assert.Nil(t, ToAppError(nil))
}

func TestValidationErrorCarriesFields(t *testing.T) {
	appErr := ToAppError(&riskmodel.ValidationError{Fields: map[string]string{
		"dwt":        "must be between 1000 and 400000",
		"year_built": "must be between 1970 and 2024",
	}})

	assert.Equal(t, "VALIDATION_ERROR", appErr.Code())
	assert.Equal(t, "[VALIDATION_ERROR] Invalid vessel profile", appErr.Error())
	assert.Len(t, appErr.Fields, 2)
	assert.Equal(t, "must be between 1000 and 400000", appErr.Fields["dwt"])
}

func TestInvalidKeyErrorNamesTable(t *testing.T) {
	appErr := ToAppError(&riskmodel.InvalidKeyError{Table: "engine_risk_factor", Key: "steam"})

	assert.Equal(t, map[string]string{"engine_risk_factor": `unknown value "steam"`}, appErr.Fields)
	assert.True(t, errors.Is(appErr, riskmodel.ErrInvalidKey))
}

func TestRenderingErrorKeepsCause(t *testing.T) {
	cause := &report.RenderError{Op: "qr", Err: errors.New("payload too long")}
	appErr := ToAppError(cause)

	var renderErr *report.RenderError
	require.True(t, errors.As(appErr, &renderErr))
	assert.Equal(t, "qr", renderErr.Op)
	assert.Equal(t, "RENDERING_ERROR", appErr.Code())
}

func TestAppErrorJSON(t *testing.T) {
	appErr := NewValidationErrorWithMap(map[string]string{"imo": "is required"})
	appErr.StackTrace = "secret"

	body, err := json.Marshal(appErr)
	require.NoError(t, err)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, "VALIDATION_ERROR", resp["error"])
	assert.Equal(t, "validation", resp["category"])
	assert.Equal(t, map[string]interface{}{"imo": "is required"}, resp["fields"])
	assert.NotContains(t, string(body), "secret")
}

func TestCustomBuilder(t *testing.T) {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg("Custom error message")

	customErr := NewAppError(builder, CategoryValidation, http.StatusBadRequest)
	assert.Equal(t, "Custom error message", customErr.Msg)
	assert.Equal(t, CategoryInternal, ToAppError(builder).Category)
}

func TestErrorHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(ErrorHandler())
	router.GET("/invalid", func(c *gin.Context) {
		_ = c.Error(&riskmodel.InvalidKeyError{Table: "ship_type_multiplier", Key: "yacht"})
	})
	router.GET("/render", func(c *gin.Context) {
		_ = c.Error(&report.RenderError{Op: "layout", Err: errors.New("font missing")})
	})
	router.GET("/missing", func(c *gin.Context) {
		_ = c.Error(NewNotFoundError("certificate", "SUS-0000000000"))
	})

	tests := []struct {
		path     string
		status   int
		category string
	}{
		{"/invalid", http.StatusBadRequest, "validation"},
		{"/render", http.StatusInternalServerError, "rendering"},
		{"/missing", http.StatusNotFound, "not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set("X-Request-ID", "req-1")
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, ErrorCategory(tt.category), resp.Category)
			assert.Equal(t, "req-1", resp.RequestID)
		})
	}
}

func TestRecoveryHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RecoveryHandler())
	router.GET("/panic", func(c *gin.Context) {
		panic("unexpected")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}

func TestWrapError(t *testing.T) {
	assert.Nil(t, WrapError(nil, "context"))

	base := errors.New("base")
	wrapped := WrapError(base, "loading %s", "config")
	assert.EqualError(t, wrapped, "loading config: base")
	assert.True(t, errors.Is(wrapped, base))
}
