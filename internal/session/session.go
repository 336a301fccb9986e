// Package session keeps the customer's account-service access token in a signed
// cookie and exposes it to handlers through the request context.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "storefront"

// ErrInvalidSession is returned when a session cookie cannot be trusted.
var ErrInvalidSession = errors.New("invalid session")

// Claims carries the customer access token inside the session JWT.
type Claims struct {
	AccessToken string `json:"act"`
	jwt.RegisteredClaims
}

// Manager issues and verifies HS256 session cookies.
type Manager struct {
	secret     []byte
	cookieName string
	secure     bool
}

// NewManager creates a session manager.
func NewManager(secret, cookieName string, secure bool) *Manager {
	return &Manager{
		secret:     []byte(secret),
		cookieName: cookieName,
		secure:     secure,
	}
}

// Issue signs a session value carrying token that expires after ttl.
func (m *Manager) Issue(token string, ttl time.Duration) (string, error) {
	if token == "" {
		return "", fmt.Errorf("issue session: empty access token")
	}
	now := time.Now().UTC()
	claims := &Claims{
		AccessToken: token,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

// Parse verifies a session value and returns the access token it carries.
func (m *Manager) Parse(value string) (string, error) {
	token, err := jwt.ParseWithClaims(value, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.AccessToken == "" {
		return "", ErrInvalidSession
	}
	return claims.AccessToken, nil
}

// Cookie builds the session cookie for value.
func (m *Manager) Cookie(value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie builds a cookie that removes the session.
func (m *Manager) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

type contextKey struct{}

// WithToken returns a context carrying the customer access token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, contextKey{}, token)
}

// TokenFromContext returns the customer access token, or "" when the request is anonymous.
func TokenFromContext(ctx context.Context) string {
	if t, ok := ctx.Value(contextKey{}).(string); ok {
		return t
	}
	return ""
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Middleware resolves the customer token from the Authorization header, then the
// session cookie. Anonymous requests pass through; rejecting them is up to the handler.
func (m *Manager) Middleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				if c, err := r.Cookie(m.cookieName); err == nil && c.Value != "" {
					parsed, err := m.Parse(c.Value)
					if err != nil {
						logger.DebugContext(r.Context(), "ignoring session cookie", slog.String("error", err.Error()))
					}
					token = parsed
				}
			}
			if token != "" {
				r = r.WithContext(WithToken(r.Context(), token))
			}
			next.ServeHTTP(w, r)
		})
	}
}
