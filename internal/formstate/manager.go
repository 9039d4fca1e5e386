package formstate

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"planning-bee/internal/store"
)

var ErrInvalidSessionID = errors.New("invalid session id")

// Manager hands out one Container per session id. Containers stay cached
// until the session is reset.
type Manager struct {
	backend store.Backend
	logger  *zap.Logger

	mu         sync.Mutex
	containers map[string]*Container
}

func NewManager(backend store.Backend, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{backend: backend, logger: logger, containers: map[string]*Container{}}
}

func (m *Manager) Get(ctx context.Context, sessionID string) (*Container, error) {
	if sessionID == "" {
		return nil, ErrInvalidSessionID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.containers[sessionID]; ok {
		return c, nil
	}
	c, err := Open(ctx, m.backend, sessionID, m.logger)
	if err != nil {
		return nil, err
	}
	m.containers[sessionID] = c
	return c, nil
}

// Reset empties the session and forgets its container.
func (m *Manager) Reset(ctx context.Context, sessionID string) error {
	c, err := m.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := c.Reset(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	if m.containers[sessionID] == c {
		delete(m.containers, sessionID)
	}
	m.mu.Unlock()
	return nil
}

func (m *Manager) Close() error {
	return m.backend.Close()
}
