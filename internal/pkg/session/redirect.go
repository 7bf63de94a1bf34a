package session

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrInvalidRedirect = errors.New("redirect must be a relative path")

// RedirectStore keeps the post-login redirect path per session. It is a
// convenience value: losing it only sends the user to the home page.
type RedirectStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedirectStore(rdb *redis.Client, prefix string, ttl time.Duration) *RedirectStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedirectStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *RedirectStore) key(sessionKey string) string {
	return s.prefix + ":redirect:" + sessionKey
}

// Save stores a same-origin path such as "/games/42?location=downtown".
func (s *RedirectStore) Save(ctx context.Context, sessionKey, target string) error {
	if err := ValidateRedirect(target); err != nil {
		return err
	}
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Set(ctx, s.key(sessionKey), target, s.ttl).Err()
}

// Take returns the stored path and deletes it. Empty when nothing is stored.
func (s *RedirectStore) Take(ctx context.Context, sessionKey string) (string, error) {
	if s == nil || s.rdb == nil {
		return "", nil
	}
	target, err := s.rdb.GetDel(ctx, s.key(sessionKey)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return target, err
}

func ValidateRedirect(target string) error {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return ErrInvalidRedirect
	}
	u, err := url.Parse(target)
	if err != nil || u.IsAbs() || u.Host != "" {
		return ErrInvalidRedirect
	}
	return nil
}
