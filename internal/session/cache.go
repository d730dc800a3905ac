package session

import (
	"sync"

	"coursedeck/internal/domain"
)

// Session is the cached auth context: the current bearer token plus a
// denormalized member snapshot. It is populated on login or signup, cleared
// on logout, and read-only to every other component. Staleness between
// refreshes is tolerated.
type Session struct {
	Token  string        `json:"token"`
	Member domain.Member `json:"member"`
}

// Cache stores the single current session.
type Cache interface {
	Get() (Session, bool, error)
	Put(Session) error
	Clear() error
}

// MemoryCache keeps the session in-process.
type MemoryCache struct {
	mu      sync.RWMutex
	current Session
	set     bool
}

// NewMemoryCache initializes an empty in-memory session cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

func (m *MemoryCache) Get() (Session, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current, m.set, nil
}

func (m *MemoryCache) Put(s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = s
	m.set = true
	return nil
}

func (m *MemoryCache) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = Session{}
	m.set = false
	return nil
}
