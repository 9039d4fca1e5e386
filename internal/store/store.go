// Package store persists whole session documents. A session document is
// the set of named form-state sections, each kept as raw JSON.
package store

import (
	"context"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"planning-bee/internal/config"
)

var ErrNotFound = errors.New("session not found")

type Sections map[string]json.RawMessage

// Clone copies the map and every section's bytes.
func (s Sections) Clone() Sections {
	out := make(Sections, len(s))
	for k, v := range s {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

// Backend is the persistence behind a form-state container. Load returns
// ErrNotFound for sessions that were never saved or were deleted.
type Backend interface {
	Load(ctx context.Context, sessionID string) (Sections, error)
	Save(ctx context.Context, sessionID string, sections Sections) error
	Delete(ctx context.Context, sessionID string) error
	Close() error
}

// New opens the backend selected by cfg.Driver.
func New(cfg config.Store, logger *zap.Logger) (Backend, error) {
	switch cfg.Driver {
	case config.DriverMemory, "":
		return NewMemory(), nil
	case config.DriverSQLite:
		return OpenSQLite(cfg.SQLitePath)
	case config.DriverCouchbase:
		return NewCouchbase(cfg.Couchbase, logger), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

func encode(sections Sections) ([]byte, error) {
	if sections == nil {
		sections = Sections{}
	}
	return json.Marshal(sections)
}

func decode(data []byte) (Sections, error) {
	var sections Sections
	if err := json.Unmarshal(data, &sections); err != nil {
		return nil, fmt.Errorf("decoding session document: %w", err)
	}
	if sections == nil {
		sections = Sections{}
	}
	return sections, nil
}
