package session

import (
	"context"
	"time"

	"finance/internal/cache"
)

const defaultMaxSessions = 10000

// MemoryStore keeps sessions in an LRU with a fixed lifetime.
type MemoryStore struct {
	sessions *cache.LRUCache[int64]
}

func NewMemoryStore(ttl time.Duration, maxSessions int) *MemoryStore {
	if maxSessions <= 0 {
		maxSessions = defaultMaxSessions
	}
	return &MemoryStore{sessions: cache.NewLRUCache[int64](maxSessions, ttl)}
}

// Cleaner exposes the underlying cache for a cache.Manager sweep.
func (s *MemoryStore) Cleaner() cache.Cleaner {
	return s.sessions
}

func (s *MemoryStore) Create(_ context.Context, userID int64) (string, error) {
	token := newToken()
	s.sessions.Set(token, userID)
	return token, nil
}

func (s *MemoryStore) Lookup(_ context.Context, token string) (int64, error) {
	id, ok := s.sessions.Get(token)
	if !ok {
		return 0, ErrNotFound
	}
	return id, nil
}

func (s *MemoryStore) Delete(_ context.Context, token string) error {
	s.sessions.Delete(token)
	return nil
}
