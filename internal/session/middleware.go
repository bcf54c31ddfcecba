package session

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sustaina/shipping-risk-brain/internal/cache"
	apperrors "github.com/sustaina/shipping-risk-brain/internal/errors"
)

const (
	// ClaimsKey holds *Claims in the gin context
	ClaimsKey = "session_claims"
	// CookieName carries the token for the HTML pages
	CookieName = "sustaina_session"

	invalidKey = "session_invalid"
)

// Recorder stores opened sessions
type Recorder interface {
	RecordSession(ctx context.Context, organization, user, ipAddress, userAgent string, expiresAt time.Time) (string, error)
}

// Middleware attaches session claims when a token is presented. Requests
// without a valid token continue anonymously; an unreadable cookie is cleared
// and RequireSession reports the parse failure.
func Middleware(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, fromCookie := tokenFrom(c)
		if token == "" {
			c.Next()
			return
		}

		claims, err := m.Parse(token)
		if err != nil {
			c.Set(invalidKey, err)
			if fromCookie {
				clearCookie(c)
			}
			c.Next()
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(cache.ScopeKey, claims.Scope())
		c.Next()
	}
}

// RequireSession rejects requests that carry no valid session
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := ClaimsFrom(c); !ok {
			if value, exists := c.Get(invalidKey); exists {
				err, _ := value.(error)
				_ = c.Error(apperrors.NewUnauthorizedError("Invalid session token", err))
				c.Abort()
				return
			}
			_ = c.Error(apperrors.NewUnauthorizedError("Session required", nil))
			c.Abort()
			return
		}
		c.Next()
	}
}

// ClaimsFrom returns the claims set by Middleware
func ClaimsFrom(c *gin.Context) (*Claims, bool) {
	value, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*Claims)
	return claims, ok
}

// UserFrom returns "user (organization)" for the current session, or ""
func UserFrom(c *gin.Context) string {
	claims, ok := ClaimsFrom(c)
	if !ok {
		return ""
	}
	return claims.User + " (" + claims.Organization + ")"
}

// tokenFrom reads a Bearer header first, then the session cookie. Other
// Authorization schemes are ignored.
func tokenFrom(c *gin.Context) (token string, fromCookie bool) {
	header := c.GetHeader("Authorization")
	if scheme, value, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(value), false
	}
	if cookie, err := c.Cookie(CookieName); err == nil && cookie != "" {
		return cookie, true
	}
	return "", false
}

func clearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CookieName, "", -1, "/", "", c.Request.TLS != nil, true)
}

// LogoutHandler clears the session cookie. Tokens are stateless, so a
// bearer token stays valid until it expires.
//
//	@Summary		Close a session
//	@Description	Clears the session cookie.
//	@Tags			session
//	@Success		204
//	@Router			/api/v1/session [delete]
func LogoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		clearCookie(c)
		c.Status(http.StatusNoContent)
	}
}

// LoginRequest is the body of the session endpoint
type LoginRequest struct {
	Organization string `json:"organization" form:"organization"`
	User         string `json:"user" form:"user"`
}

// LoginResponse carries the signed token
type LoginResponse struct {
	Token        string    `json:"token"`
	Organization string    `json:"organization"`
	User         string    `json:"user"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// LoginHandler opens a session for any organization and user pair
//
//	@Summary		Open a session
//	@Description	Issues a signed session token. Credentials are not checked.
//	@Tags			session
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginRequest	true	"Organization and user"
//	@Success		200		{object}	LoginResponse
//	@Failure		400		{object}	apperrors.ErrorResponse
//	@Router			/api/v1/session [post]
func LoginHandler(m *Manager, recorder Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBind(&req); err != nil {
			_ = c.Error(apperrors.NewValidationError("Invalid login request", err))
			return
		}

		fields := make(map[string]string)
		if strings.TrimSpace(req.Organization) == "" {
			fields["organization"] = "is required"
		}
		if strings.TrimSpace(req.User) == "" {
			fields["user"] = "is required"
		}
		if len(fields) > 0 {
			appErr := apperrors.NewValidationError("Organization and user are required", nil)
			appErr.Fields = fields
			_ = c.Error(appErr)
			return
		}

		token, claims, err := m.Issue(req.Organization, req.User)
		if err != nil {
			_ = c.Error(apperrors.NewInternalError("Failed to issue session token", err))
			return
		}

		expiresAt := claims.ExpiresAt.Time
		if recorder != nil {
			if _, err := recorder.RecordSession(c.Request.Context(), claims.Organization, claims.User, c.ClientIP(), c.GetHeader("User-Agent"), expiresAt); err != nil {
				_ = c.Error(apperrors.NewInternalError("Failed to record session", err))
				return
			}
		}

		c.SetSameSite(http.SameSiteStrictMode)
		c.SetCookie(CookieName, token, int(m.Expiration().Seconds()), "/", "", c.Request.TLS != nil, true)

		c.JSON(http.StatusOK, LoginResponse{
			Token:        token,
			Organization: claims.Organization,
			User:         claims.User,
			ExpiresAt:    expiresAt,
		})
	}
}
