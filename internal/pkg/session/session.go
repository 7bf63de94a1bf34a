// Package session carries the authenticated caller explicitly through the
// console. The bearer token is issued by the HCCC API; the console only
// decodes its claims for routing decisions and forwards it upstream.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrMalformed    = errors.New("malformed bearer token")
	ErrExpired      = errors.New("token expired")
)

const (
	RoleUser    = "user"
	RoleCashier = "cashier"
	RoleAdmin   = "admin"
)

// Claims is the subset of the HCCC token the console reads.
type Claims struct {
	UserID string `json:"id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Session is one authenticated caller.
type Session struct {
	Token     string
	UserID    string
	Role      string
	ExpiresAt time.Time
}

// Key identifies the session without exposing the token.
func (s *Session) Key() string {
	sum := sha256.Sum256([]byte(s.Token))
	return hex.EncodeToString(sum[:12])
}

func (s *Session) HasRole(roles ...string) bool {
	for _, r := range roles {
		if strings.EqualFold(s.Role, r) {
			return true
		}
	}
	return false
}

func (s *Session) IsAdmin() bool { return s.HasRole(RoleAdmin) }

var parser = jwt.NewParser(jwt.WithoutClaimsValidation())

// FromToken decodes the token claims without verifying the signature. The
// HCCC API verifies every forwarded call; the decoded role only gates
// which console routes are reachable.
func FromToken(token string, now time.Time) (*Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}

	var claims Claims
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return nil, ErrMalformed
	}

	s := &Session{Token: token, UserID: claims.UserID, Role: claims.Role}
	if s.UserID == "" {
		s.UserID = claims.Subject
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
		if now.After(s.ExpiresAt) {
			return nil, ErrExpired
		}
	}
	return s, nil
}

// FromHeader parses an "Authorization: Bearer <token>" value.
func FromHeader(header string, now time.Time) (*Session, error) {
	if header == "" {
		return nil, ErrMissingToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil, ErrMalformed
	}
	return FromToken(parts[1], now)
}

type contextKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session placed by the session middleware, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(contextKey{}).(*Session)
	return s
}
