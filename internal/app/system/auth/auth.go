// internal/app/system/auth/auth.go

// Package auth resolves bearer credentials to user identities and injects
// them into the request context for the rest of the application.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/taskhub/taskhub/internal/app/system/apierr"
	"go.uber.org/zap"
)

// SessionUser is what we resolve from a bearer token & inject into r.Context().
type SessionUser struct {
	ID    string
	Name  string
	Email string
	Role  string
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// UserFetcher loads fresh user data for a token subject on each request.
// Returning (nil, nil) means the account does not exist or is disabled.
type UserFetcher interface {
	FetchSessionUser(ctx context.Context, userID string) (*SessionUser, error)
}

// TokenManager issues and verifies the signed bearer tokens that identify
// API callers.
type TokenManager struct {
	secret  []byte
	ttl     time.Duration
	fetcher UserFetcher
	log     *zap.Logger
}

// NewTokenManager builds a TokenManager with the given signing secret and
// token lifetime.
func NewTokenManager(secret string, ttl time.Duration, logger *zap.Logger) (*TokenManager, error) {
	if len(secret) < 32 {
		return nil, errors.New("auth: token secret must be at least 32 bytes")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, log: logger}, nil
}

// SetUserFetcher wires the store that resolves token subjects to users.
// Fetching fresh data per request means role changes and disabled accounts
// take effect immediately, without waiting for token expiry.
func (tm *TokenManager) SetUserFetcher(f UserFetcher) { tm.fetcher = f }

// Issue signs a bearer token for the given user id.
func (tm *TokenManager) Issue(userID string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies a bearer token and returns its subject (the user id).
func (tm *TokenManager) Parse(token string) (string, error) {
	claims := jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return tm.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

// LoadSessionUser injects the user into context if the request carries a
// valid bearer token. Requests without (or with invalid) credentials pass
// through anonymously; RequireSignedIn decides whether that is fatal.
func (tm *TokenManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" || tm.fetcher == nil {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := tm.Parse(token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		u, err := tm.fetcher.FetchSessionUser(r.Context(), userID)
		if err != nil {
			tm.log.Warn("session user fetch failed", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}
		if u != nil {
			r = WithUser(r, u)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn ensures there is a user in context (set by LoadSessionUser).
// API callers get a 401 with the standard error envelope.
func (tm *TokenManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		apierr.Write(w, tm.log, apierr.Unauthorized("authentication required"))
	})
}

// WithUser returns a request whose context carries the given user.
// Tests use this directly to simulate an authenticated caller.
func WithUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	return ""
}
