package repository

import (
	"context"
	"sync"
	"time"

	"trip-quote-agent/internal/domain"
)

type memoryEntry struct {
	session   domain.Session
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory. Entries idle for longer than
// the TTL are treated as absent and dropped lazily.
type MemoryStore struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*memoryEntry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &MemoryStore{ttl: ttl, now: time.Now, sessions: make(map[string]*memoryEntry)}
}

func (m *MemoryStore) Load(_ context.Context, key string) (domain.Session, error) {
	if key == "" {
		return domain.Session{}, errEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.live(key)
	if e == nil {
		return domain.Session{State: domain.NewConversationState()}, nil
	}
	out := e.session
	if out.Pending != nil {
		p := *out.Pending
		out.Pending = &p
	}
	return out, nil
}

func (m *MemoryStore) SaveState(_ context.Context, key string, state domain.ConversationState) error {
	if key == "" {
		return errEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.touch(key)
	e.session.State = state
	return nil
}

func (m *MemoryStore) SavePending(_ context.Context, key string, pending domain.PendingQuote) error {
	if key == "" {
		return errEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.touch(key)
	e.session.Pending = &pending
	return nil
}

func (m *MemoryStore) DeletePending(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e := m.live(key); e != nil {
		e.session.Pending = nil
	}
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, key)
	return nil
}

func (m *MemoryStore) ActiveSessions(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for key := range m.sessions {
		if m.live(key) != nil {
			n++
		}
	}
	return n, nil
}

// live returns the entry for key, dropping it when expired. Callers hold mu.
func (m *MemoryStore) live(key string) *memoryEntry {
	e, ok := m.sessions[key]
	if !ok {
		return nil
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.sessions, key)
		return nil
	}
	return e
}

func (m *MemoryStore) touch(key string) *memoryEntry {
	e := m.live(key)
	if e == nil {
		e = &memoryEntry{session: domain.Session{State: domain.NewConversationState()}}
		m.sessions[key] = e
	}
	e.expiresAt = m.now().Add(m.ttl)
	return e
}
