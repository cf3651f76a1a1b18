package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"

	"stallpoint/api/database"
)

const sessionKeyPrefix = "session:"

// SessionStore keeps login sessions in redis, keyed by session ID with a
// TTL. Sessions are dashboard bookkeeping next to the JWT cookie; expiry is
// handled by redis itself.
type SessionStore struct {
	redis  *database.RedisClient
	ttl    time.Duration
	logger *zap.SugaredLogger
}

func NewSessionStore(redisClient *database.RedisClient, ttl time.Duration, logger *zap.SugaredLogger) *SessionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionStore{redis: redisClient, ttl: ttl, logger: logger}
}

// StoreSession associates a session ID with a user for the store's TTL.
func (s *SessionStore) StoreSession(sessionID string, userID int) error {
	conn := s.redis.Pool.Get()
	defer conn.Close()

	_, err := conn.Do("SETEX", sessionKeyPrefix+sessionID, int(s.ttl.Seconds()), userID)
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// GetSessionUser resolves a session ID to the user it belongs to.
func (s *SessionStore) GetSessionUser(sessionID string) (int, error) {
	conn := s.redis.Pool.Get()
	defer conn.Close()

	userID, err := redis.Int(conn.Do("GET", sessionKeyPrefix+sessionID))
	if err != nil {
		if errors.Is(err, redis.ErrNil) {
			return 0, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
		}
		return 0, fmt.Errorf("failed to get session: %w", err)
	}
	return userID, nil
}

// DeleteSession removes a session. Deleting an unknown session is a no-op.
func (s *SessionStore) DeleteSession(sessionID string) error {
	conn := s.redis.Pool.Get()
	defer conn.Close()

	if _, err := conn.Do("DEL", sessionKeyPrefix+sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
