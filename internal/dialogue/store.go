package dialogue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyFmt = "conv:%d:%s"
	sessionTTL    = 48 * time.Hour
)

// SessionStore keeps conversation sessions in Redis, one per user and kind.
type SessionStore struct {
	rdb *redis.Client
}

func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb}
}

func sessionKey(userID uint, kind Kind) string {
	return fmt.Sprintf(sessionKeyFmt, userID, kind)
}

// Load fetches the user's session for a kind, or a fresh empty session when
// none is stored yet.
func (st *SessionStore) Load(ctx context.Context, userID uint, kind Kind) (*ConversationSession, error) {
	raw, err := st.rdb.Get(ctx, sessionKey(userID, kind)).Result()
	if errors.Is(err, redis.Nil) {
		return NewSession(kind), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var s ConversationSession
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		// Unreadable state is discarded rather than wedging the user.
		return NewSession(kind), nil
	}
	return &s, nil
}

// Save persists the session, refreshing its TTL.
func (st *SessionStore) Save(ctx context.Context, userID uint, s *ConversationSession) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return st.rdb.Set(ctx, sessionKey(userID, s.Kind), raw, sessionTTL).Err()
}

// Clear deletes the stored session.
func (st *SessionStore) Clear(ctx context.Context, userID uint, kind Kind) error {
	return st.rdb.Del(ctx, sessionKey(userID, kind)).Err()
}
