package store

import (
	"context"
	"fmt"
	"io"

	"taskboard/internal/config"
	"taskboard/internal/event"
)

// Repositories groups everything a store driver provides: the two projection
// repositories, the event log, and the atomic unit binding them.
type Repositories struct {
	Tasks  TaskRepository
	Users  UserRepository
	Events event.Log
	Atomic Atomic
	// Closer releases underlying resources (e.g. the DB pool).
	Closer io.Closer
	// Ping checks the underlying connection health.
	Ping func(ctx context.Context) error
}

// Driver opens a backend and returns its Repositories.
type Driver func(ctx context.Context, cfg config.DatabaseConfig) (*Repositories, error)

// registry maps driver names to their factory functions.
var registry = map[string]Driver{}

// Register adds a named driver. It is called from init() in each driver
// package.
func Register(name string, d Driver) {
	registry[name] = d
}

// Open selects the driver named in cfg.Driver and returns its Repositories.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Repositories, error) {
	d, ok := registry[cfg.Driver]
	if !ok {
		return nil, fmt.Errorf("unknown store driver %q (registered: %v)", cfg.Driver, registeredNames())
	}
	return d(ctx, cfg)
}

func registeredNames() []string {
	names := make([]string, 0, len(registry))
	for k := range registry {
		names = append(names, k)
	}
	return names
}
