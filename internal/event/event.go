// Package event defines the immutable change records that form the
// authoritative log of every aggregate mutation, and the factory that
// constructs them.
package event

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"taskboard/internal/snapshot"
)

// Kind identifies the mutation an event describes.
type Kind string

const (
	Inserted Kind = "insert"
	Updated  Kind = "update"
	Deleted  Kind = "delete"
)

// AggregateKind identifies which materialized store an event belongs to.
type AggregateKind string

const (
	AggregateTask AggregateKind = "task"
	AggregateUser AggregateKind = "user"
)

// Event records a single insert, update or delete of one aggregate. Once
// appended to the log it is never mutated or removed.
//
// Snapshot holds the serialized full state of the aggregate at the moment of
// the change: for inserts the state after id assignment, for updates the
// target state being persisted, for deletes the state as it existed right
// before removal. RelatedID is a secondary reference (the assignee for task
// events); it is nil for user events.
type Event struct {
	ID            uuid.UUID     `db:"id" json:"id"`
	Kind          Kind          `db:"kind" json:"kind"`
	AggregateKind AggregateKind `db:"aggregate_kind" json:"aggregate_kind"`
	AggregateID   uuid.UUID     `db:"aggregate_id" json:"aggregate_id"`
	RelatedID     *uuid.UUID    `db:"related_id" json:"related_id,omitempty"`
	Snapshot      []byte        `db:"snapshot" json:"snapshot"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
}

// InsertEventOf builds the event recording the creation of an aggregate.
// The snapshot is taken after the aggregate's id has been assigned.
func InsertEventOf(ak AggregateKind, aggregateID uuid.UUID, relatedID *uuid.UUID, aggregate any, ser snapshot.Serializer, at time.Time) (Event, error) {
	return eventOf(Inserted, ak, aggregateID, relatedID, aggregate, ser, at)
}

// UpdateEventOf builds the event recording an update. The snapshot is the
// target state the caller is about to persist, so a replay reconstructs the
// post-update row.
func UpdateEventOf(ak AggregateKind, aggregateID uuid.UUID, relatedID *uuid.UUID, aggregate any, ser snapshot.Serializer, at time.Time) (Event, error) {
	return eventOf(Updated, ak, aggregateID, relatedID, aggregate, ser, at)
}

// DeleteEventOf builds the event recording a deletion. The snapshot is the
// aggregate state as it existed immediately before removal.
func DeleteEventOf(ak AggregateKind, aggregateID uuid.UUID, relatedID *uuid.UUID, aggregate any, ser snapshot.Serializer, at time.Time) (Event, error) {
	return eventOf(Deleted, ak, aggregateID, relatedID, aggregate, ser, at)
}

func eventOf(kind Kind, ak AggregateKind, aggregateID uuid.UUID, relatedID *uuid.UUID, aggregate any, ser snapshot.Serializer, at time.Time) (Event, error) {
	if aggregateID == uuid.Nil {
		return Event{}, fmt.Errorf("building %s event: aggregate id is not assigned", kind)
	}
	data, err := ser.Marshal(aggregate)
	if err != nil {
		return Event{}, fmt.Errorf("building %s event for %s %s: %w", kind, ak, aggregateID, err)
	}
	return Event{
		ID:            uuid.New(),
		Kind:          kind,
		AggregateKind: ak,
		AggregateID:   aggregateID,
		RelatedID:     relatedID,
		Snapshot:      data,
		CreatedAt:     at.UTC(),
	}, nil
}
