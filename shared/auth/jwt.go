// shared/auth/jwt.go
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ctfarena/arena-services/shared/api"
	"github.com/ctfarena/arena-services/shared/models"
)

// Claims are the JWT claims carried by admin bearer tokens.
type Claims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Name     string `json:"name"`
	jwt.RegisteredClaims
}

// Authenticator issues and verifies admin bearer tokens.
type Authenticator struct {
	secret   []byte
	validity time.Duration
}

// NewAuthenticator creates an Authenticator with the given signing secret and
// token validity.
func NewAuthenticator(secret string, validity time.Duration) *Authenticator {
	return &Authenticator{
		secret:   []byte(secret),
		validity: validity,
	}
}

// IssueToken signs a token for the given admin user.
func (a *Authenticator) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		Name:     user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.validity)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token for user %s: %w", user.Username, err)
	}
	return signed, nil
}

// VerifyToken parses and validates a bearer token string.
func (a *Authenticator) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

type contextKey string

const claimsContextKey contextKey = "authClaims"

// ClaimsFromContext returns the verified claims stored by Middleware, if any.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*Claims)
	return claims, ok
}

// Middleware validates the Authorization bearer token and stores its claims
// in the request context. Applied once to the admin subrouter.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			api.WriteUnauthorized(w, "Missing bearer token")
			return
		}
		claims, err := a.VerifyToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			api.WriteUnauthorized(w, "Invalid or expired token")
			return
		}
		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Require wraps a handler so it only runs when the authenticated role holds
// the given capability. Role gating lives here, at the API boundary, instead
// of being re-checked inside each handler.
func Require(cap Capability, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			api.WriteUnauthorized(w, "Missing bearer token")
			return
		}
		if !RoleHas(claims.Role, cap) {
			api.WriteForbidden(w, "Access denied.")
			return
		}
		next.ServeHTTP(w, r)
	}
}
