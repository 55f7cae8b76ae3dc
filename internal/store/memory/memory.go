// Package memory provides a store.Driver backed by in-process maps. It is
// the backend used by unit tests and local development runs; it honors the
// same contracts as the Postgres driver (append-only event log, ErrNotFound
// on absent ids, serialized atomic units).
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"taskboard/internal/config"
	"taskboard/internal/event"
	"taskboard/internal/store"
)

func init() {
	store.Register("memory", openMemory)
}

// openMemory is the store.Driver for the "memory" backend.
func openMemory(_ context.Context, _ config.DatabaseConfig) (*store.Repositories, error) {
	return Open(), nil
}

// Open returns a fresh, empty in-memory Repositories bundle.
func Open() *store.Repositories {
	s := &Store{
		tasks: make(map[uuid.UUID]store.Task),
		users: make(map[uuid.UUID]store.User),
	}
	return &store.Repositories{
		Tasks:  &TaskRepo{s: s},
		Users:  &UserRepo{s: s},
		Events: &EventLog{s: s},
		Atomic: &atomicUnit{s: s},
		Closer: closerFunc(func() error { return nil }),
		Ping:   func(context.Context) error { return nil },
	}
}

// Store holds all in-memory state. mu guards the maps and the event slice.
type Store struct {
	mu     sync.RWMutex
	tasks  map[uuid.UUID]store.Task
	users  map[uuid.UUID]store.User
	events []event.Event

	// unitMu serializes atomic units so their write pairs never interleave.
	unitMu sync.Mutex
}

type atomicUnit struct {
	s *Store
}

// RunAtomically executes fn under the unit mutex. In-process map writes
// cannot fail, so every failure path inside fn precedes its first write and
// rollback is never needed.
func (a *atomicUnit) RunAtomically(ctx context.Context, fn func(ctx context.Context) error) error {
	a.s.unitMu.Lock()
	defer a.s.unitMu.Unlock()
	return fn(ctx)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
