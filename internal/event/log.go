package event

import (
	"context"

	"github.com/google/uuid"
)

// Log is the append-only event store. Implementations must be durable and
// ordered: a later read observes events in append order. No update or delete
// operation exists; a failed append must leave the log untouched.
type Log interface {
	// Append persists one or more events. Within a call, events are written
	// in argument order.
	Append(ctx context.Context, events ...Event) error
	// Load returns all events for one aggregate in append order.
	Load(ctx context.Context, aggregateID uuid.UUID) ([]Event, error)
	// LoadByKind returns all events of one mutation kind in append order.
	LoadByKind(ctx context.Context, kind Kind) ([]Event, error)
}
