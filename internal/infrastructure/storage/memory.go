package storage

import (
	"context"
	"sync"

	"github.com/pulsepr/storefront/internal/core/ports"
)

// MemoryStorage keeps the session for the lifetime of the process.
type MemoryStorage struct {
	mu sync.Mutex
	s  ports.StoredSession
}

func NewMemoryStorage() *MemoryStorage { return &MemoryStorage{} }

func (m *MemoryStorage) Load(context.Context) (ports.StoredSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s, nil
}

func (m *MemoryStorage) Save(_ context.Context, s ports.StoredSession) error {
	m.mu.Lock()
	m.s = s
	m.mu.Unlock()
	return nil
}

func (m *MemoryStorage) Clear(context.Context) error {
	m.mu.Lock()
	m.s = ports.StoredSession{}
	m.mu.Unlock()
	return nil
}
