// Package formstate is the single source of truth for an intake session: a
// JSON document split into named top-level sections that editors read and
// replace wholesale.
package formstate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"planning-bee/internal/model"
	"planning-bee/internal/store"
)

var (
	ErrUnknownSection = errors.New("unknown section")
	ErrInvalidJSON    = errors.New("section value is not a JSON object")
)

var emptySection = json.RawMessage("{}")

// Container holds one session's sections. Patches replace a section
// wholesale and the last write wins; the mutex only keeps concurrent
// requests from racing on the map.
type Container struct {
	id      string
	backend store.Backend
	logger  *zap.Logger

	mu       sync.RWMutex
	sections store.Sections
}

// Open loads the session from backend, or starts an empty one.
func Open(ctx context.Context, backend store.Backend, sessionID string, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	sections, err := backend.Load(ctx, sessionID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		sections = store.Sections{}
	case err != nil:
		return nil, err
	}
	return &Container{id: sessionID, backend: backend, logger: logger, sections: sections}, nil
}

func (c *Container) ID() string { return c.id }

// Get returns a copy of the named section, "{}" when it was never patched.
func (c *Container) Get(name string) (json.RawMessage, error) {
	if !model.IsSection(name) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSection, name)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.sections[name]
	if !ok {
		return append(json.RawMessage(nil), emptySection...), nil
	}
	return append(json.RawMessage(nil), v...), nil
}

// Patch replaces the named section with value and mirrors the session to
// the backend. Callers merge before patching. On a persistence failure the
// previous value is restored.
func (c *Container) Patch(ctx context.Context, name string, value json.RawMessage) error {
	return c.PatchMany(ctx, map[string]json.RawMessage{name: value})
}

// PatchMany replaces several sections and persists once.
func (c *Container) PatchMany(ctx context.Context, values map[string]json.RawMessage) error {
	for name, v := range values {
		if !model.IsSection(name) {
			return fmt.Errorf("%w: %q", ErrUnknownSection, name)
		}
		trimmed := bytes.TrimSpace(v)
		if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
			return fmt.Errorf("%w: %s", ErrInvalidJSON, name)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.sections.Clone()
	for name, v := range values {
		c.sections[name] = append(json.RawMessage(nil), v...)
	}
	if err := c.backend.Save(ctx, c.id, c.sections); err != nil {
		c.sections = prev
		c.logger.Error("persisting session failed", zap.String("session", c.id), zap.Error(err))
		return fmt.Errorf("persisting session %s: %w", c.id, err)
	}
	c.logger.Debug("sections patched", zap.String("session", c.id), zap.Int("count", len(values)))
	return nil
}

// Snapshot returns a point-in-time copy of every section.
func (c *Container) Snapshot() store.Sections {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(store.Sections, len(model.Sections))
	for _, name := range model.Sections {
		if v, ok := c.sections[name]; ok {
			out[name] = append(json.RawMessage(nil), v...)
		} else {
			out[name] = append(json.RawMessage(nil), emptySection...)
		}
	}
	return out
}

// SnapshotJSON encodes Snapshot as one JSON object.
func (c *Container) SnapshotJSON() ([]byte, error) {
	return json.Marshal(c.Snapshot())
}

// Reset empties the session and removes it from the backend.
func (c *Container) Reset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.backend.Delete(ctx, c.id); err != nil {
		return err
	}
	c.sections = store.Sections{}
	c.logger.Info("session reset", zap.String("session", c.id))
	return nil
}
