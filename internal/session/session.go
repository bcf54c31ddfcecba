package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultExpiration is the lifetime of a session token
const DefaultExpiration = 24 * time.Hour

// Claims identify the organization and user a session was opened for.
// Neither is checked against any directory.
type Claims struct {
	jwt.RegisteredClaims
	Organization string `json:"organization"`
	User         string `json:"user"`
}

// Scope is the cache partition key of the session. The organization is
// length-prefixed so no two (organization, user) pairs share a scope.
func (c *Claims) Scope() string {
	return fmt.Sprintf("%d:%s|%s", len(c.Organization), c.Organization, c.User)
}

// Config holds token settings
type Config struct {
	Secret     string
	Issuer     string
	Expiration time.Duration
}

// Manager issues and validates session tokens
type Manager struct {
	config Config
	now    func() time.Time
}

// NewManager creates a manager signing with HMAC-SHA256
func NewManager(cfg Config) (*Manager, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, errors.New("session secret must not be empty")
	}
	if cfg.Expiration <= 0 {
		cfg.Expiration = DefaultExpiration
	}
	return &Manager{config: cfg, now: time.Now}, nil
}

// Issue signs a token for organization and user
func (m *Manager) Issue(organization, user string) (string, *Claims, error) {
	organization = strings.TrimSpace(organization)
	user = strings.TrimSpace(user)
	if organization == "" || user == "" {
		return "", nil, errors.New("organization and user are required")
	}

	now := m.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.config.Issuer,
			Subject:   user,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.Expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
		Organization: organization,
		User:         user,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.config.Secret))
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, claims, nil
}

// Parse validates tokenString and returns its claims
func (m *Manager) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.config.Secret), nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	if m.config.Issuer != "" && claims.Issuer != m.config.Issuer {
		return nil, fmt.Errorf("invalid issuer: got %q, want %q", claims.Issuer, m.config.Issuer)
	}
	if claims.Organization == "" || claims.User == "" {
		return nil, errors.New("token carries no organization or user")
	}

	return claims, nil
}

// Expiration returns the configured token lifetime
func (m *Manager) Expiration() time.Duration {
	return m.config.Expiration
}
