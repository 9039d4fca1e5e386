package store

import (
	"context"
	"sync"
)

// Memory keeps sessions for the life of the process.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string]Sections
}

func NewMemory() *Memory {
	return &Memory{sessions: map[string]Sections{}}
}

func (m *Memory) Load(_ context.Context, sessionID string) (Sections, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return s.Clone(), nil
}

func (m *Memory) Save(_ context.Context, sessionID string, sections Sections) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = sections.Clone()
	return nil
}

func (m *Memory) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

func (m *Memory) Close() error { return nil }
