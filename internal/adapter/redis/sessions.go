// Package redis stores conversation sessions in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"bodytrack/internal/domain"
	"bodytrack/internal/logger"
)

const sessionKeyPrefix = "bodytrack:session:"

var _ domain.SessionStore = (*SessionStore)(nil)

// NewClient connects to Redis and verifies the connection.
func NewClient(addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// SessionStore keeps one JSON blob per user, refreshed with a TTL on every save.
type SessionStore struct {
	rdb *goredis.Client
	ttl time.Duration
	log *logger.Logger
}

// NewSessionStore creates a store. A ttl <= 0 keeps sessions until cleared.
func NewSessionStore(rdb *goredis.Client, ttl time.Duration, log *logger.Logger) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl, log: log}
}

func sessionKey(userID int64) string {
	return sessionKeyPrefix + strconv.FormatInt(userID, 10)
}

// Load returns the stored session. Missing or unreadable blobs yield a fresh
// idle session.
func (s *SessionStore) Load(ctx context.Context, userID int64) (*domain.Session, error) {
	raw, err := s.rdb.Get(ctx, sessionKey(userID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return &domain.Session{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var sess domain.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		s.log.Warn("discarding unreadable session", "user_id", userID, "error", err)
		return &domain.Session{UserID: userID}, nil
	}
	sess.UserID = userID
	return &sess, nil
}

// Save writes the session and resets its TTL.
func (s *SessionStore) Save(ctx context.Context, sess *domain.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.rdb.Set(ctx, sessionKey(sess.UserID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}

// Clear deletes the user's session.
func (s *SessionStore) Clear(ctx context.Context, userID int64) error {
	if err := s.rdb.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
