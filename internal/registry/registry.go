// Package registry keeps the tables hosted by a server, keyed by game id.
package registry

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/lox/holdem-engine/internal/table"
)

var (
	// ErrNotFound is returned for an id with no table
	ErrNotFound = errors.New("game not found")
	// ErrExists is returned when adding a table whose id is taken
	ErrExists = errors.New("game already exists")
	// ErrFull is returned when the registry holds its maximum number of tables
	ErrFull = errors.New("too many games")
)

// Registry maps game ids to tables. Access to one table's game is
// serialized by the table itself; the registry only guards the map.
type Registry struct {
	mu     sync.RWMutex
	tables map[string]*table.Table
	limit  int
	logger *log.Logger
}

// New creates an empty registry holding at most limit tables (0 for no limit)
func New(limit int, logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Registry{
		tables: make(map[string]*table.Table),
		limit:  limit,
		logger: logger.WithPrefix("registry"),
	}
}

// Add registers a table under its game id
func (r *Registry) Add(t *table.Table) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := t.ID()
	if _, ok := r.tables[id]; ok {
		return fmt.Errorf("%w: %s", ErrExists, id)
	}
	if r.limit > 0 && len(r.tables) >= r.limit {
		return fmt.Errorf("%w: limit is %d", ErrFull, r.limit)
	}
	r.tables[id] = t
	r.logger.Info("game registered", "game_id", id, "games", len(r.tables))
	return nil
}

// Get returns the table for id
func (r *Registry) Get(id string) (*table.Table, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tables[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return t, nil
}

// List returns every table, oldest first
func (r *Registry) List() []*table.Table {
	r.mu.RLock()
	out := make([]*table.Table, 0, len(r.tables))
	for _, t := range r.tables {
		out = append(out, t)
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b *table.Table) int {
		if c := a.Created().Compare(b.Created()); c != 0 {
			return c
		}
		return strings.Compare(a.ID(), b.ID())
	})
	return out
}

// Delete removes the table for id and closes its subscriptions
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	t, ok := r.tables[id]
	delete(r.tables, id)
	remaining := len(r.tables)
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	t.Close()
	r.logger.Info("game removed", "game_id", id, "games", remaining)
	return nil
}

// Len is the number of registered tables
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tables)
}
