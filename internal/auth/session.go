package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// LoginTTL is the lifetime granted at login.
	LoginTTL = 7 * 24 * time.Hour
	// inactivityTTL is the sliding window applied on every authenticated
	// request; an idle session expires well before the login lifetime.
	inactivityTTL = 30 * time.Minute
)

// SessionStore tracks one active token per user in Redis. A login rewrites
// the slot, so issuing a new token invalidates the previous one.
type SessionStore struct {
	rdb *redis.Client
}

func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb}
}

func sessionKey(userID uint) string {
	return fmt.Sprintf("authsession:%d", userID)
}

// Put stores the user's active token with the full login lifetime.
func (s *SessionStore) Put(ctx context.Context, userID uint, token string) error {
	return s.rdb.Set(ctx, sessionKey(userID), token, LoginTTL).Err()
}

// Token returns the user's active token; an error means no live session.
func (s *SessionStore) Token(ctx context.Context, userID uint) (string, error) {
	return s.rdb.Get(ctx, sessionKey(userID)).Result()
}

// Touch resets the remaining lifetime to the inactivity window.
func (s *SessionStore) Touch(ctx context.Context, userID uint, token string) error {
	return s.rdb.Set(ctx, sessionKey(userID), token, inactivityTTL).Err()
}

// Drop ends the user's session.
func (s *SessionStore) Drop(ctx context.Context, userID uint) error {
	return s.rdb.Del(ctx, sessionKey(userID)).Err()
}
