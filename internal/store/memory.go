// internal/store/memory.go
//
// In-memory implementation of the run Store interface.
// Live engines are cached here for the duration of a run; durable history
// (finished runs, the leaderboard) lives in SQLite on the host side.
//
// Characteristics:
//   - Stores *game.Engine objects keyed by run ID in a map.
//   - Concurrency-safe via RWMutex: the HTTP host serves many runs at once,
//     while each engine itself stays single-threaded because actions on one
//     run are serialized by the caller.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"

	"github.com/dkarger/felt/internal/game"
)

// ErrNotFound is returned by Get for unknown run IDs.
var ErrNotFound = errors.New("run not found")

// Store defines the cache interface for live runs.
// Implementations may be backed by memory (this package), Redis, SQL, etc.
type Store interface {
	// Save persists or updates a live run.
	Save(ctx context.Context, id string, e *game.Engine) error

	// Get retrieves a run by ID; ErrNotFound if missing.
	Get(ctx context.Context, id string) (*game.Engine, error)

	// Delete drops a finished run from the cache.
	Delete(ctx context.Context, id string) error
}

type memory struct {
	mu   sync.RWMutex
	runs map[string]*game.Engine
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{runs: make(map[string]*game.Engine)}
}

func (m *memory) Save(ctx context.Context, id string, e *game.Engine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[id] = e
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*game.Engine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.runs[id]; ok {
		return e, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.runs, id)
	return nil
}
