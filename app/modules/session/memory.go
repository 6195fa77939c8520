package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// sweepThreshold is the minimum map size before an expiry sweep runs inline.
const sweepThreshold = 1000

// MemoryStore is the in-process Store. Sessions die with the process;
// production deployments with more than one instance replace it behind the
// Store interface.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	now      func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

func (m *MemoryStore) Create(ctx context.Context, userID string, ttl time.Duration) (Session, error) {
	now := m.now()
	s := Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sessions) > sweepThreshold {
		for id, sess := range m.sessions {
			if sess.Expired(now) {
				delete(m.sessions, id)
			}
		}
	}
	m.sessions[s.ID] = s
	return s, nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return Session{}, ErrNotFound
	}
	if s.Expired(m.now()) {
		m.mu.Lock()
		delete(m.sessions, id)
		m.mu.Unlock()
		return Session{}, ErrNotFound
	}
	return s, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
