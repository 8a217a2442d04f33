package memory

import (
	"context"
	"sync"
	"time"

	"bodytrack/internal/domain"
)

var _ domain.SessionStore = (*SessionStore)(nil)

// SessionStore keeps conversation state in process memory. Sessions idle for
// longer than the TTL are dropped on the next Load; a TTL <= 0 never expires.
type SessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[int64]domain.Session
}

// NewSessionStore creates a new session store.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[int64]domain.Session),
	}
}

// Load returns the stored session or a fresh idle one.
func (s *SessionStore) Load(ctx context.Context, userID int64) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return &domain.Session{UserID: userID}, nil
	}
	if s.ttl > 0 && s.now().Sub(sess.UpdatedAt) > s.ttl {
		delete(s.sessions, userID)
		return &domain.Session{UserID: userID}, nil
	}
	sess.Entries = append([]domain.Entry(nil), sess.Entries...)
	return &sess, nil
}

// Save stores a copy of sess.
func (s *SessionStore) Save(ctx context.Context, sess *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *sess
	c.Entries = append([]domain.Entry(nil), sess.Entries...)
	s.sessions[sess.UserID] = c
	return nil
}

// Clear deletes the user's session.
func (s *SessionStore) Clear(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}
