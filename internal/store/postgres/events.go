package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"taskboard/internal/event"
)

// EventLog implements event.Log backed by the append-only events table.
// No UPDATE or DELETE statement exists in this file; the table only grows.
type EventLog struct {
	db *sqlx.DB
}

// NewEventLog returns a new EventLog.
func NewEventLog(db *sqlx.DB) *EventLog {
	return &EventLog{db: db}
}

func (l *EventLog) Append(ctx context.Context, events ...event.Event) error {
	e := ext(ctx, l.db)
	for _, ev := range events {
		_, err := e.ExecContext(ctx,
			`INSERT INTO events (id, kind, aggregate_kind, aggregate_id, related_id, snapshot, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			ev.ID, ev.Kind, ev.AggregateKind, ev.AggregateID, ev.RelatedID, ev.Snapshot, ev.CreatedAt)
		if err != nil {
			return fmt.Errorf("appending %s event for %s %s: %w", ev.Kind, ev.AggregateKind, ev.AggregateID, err)
		}
	}
	return nil
}

func (l *EventLog) Load(ctx context.Context, aggregateID uuid.UUID) ([]event.Event, error) {
	var events []event.Event
	err := sqlx.SelectContext(ctx, ext(ctx, l.db), &events,
		`SELECT id, kind, aggregate_kind, aggregate_id, related_id, snapshot, created_at
		 FROM events WHERE aggregate_id = $1 ORDER BY seq`, aggregateID)
	if err != nil {
		return nil, fmt.Errorf("loading events for aggregate %s: %w", aggregateID, err)
	}
	return events, nil
}

func (l *EventLog) LoadByKind(ctx context.Context, kind event.Kind) ([]event.Event, error) {
	var events []event.Event
	err := sqlx.SelectContext(ctx, ext(ctx, l.db), &events,
		`SELECT id, kind, aggregate_kind, aggregate_id, related_id, snapshot, created_at
		 FROM events WHERE kind = $1 ORDER BY seq`, kind)
	if err != nil {
		return nil, fmt.Errorf("loading %s events: %w", kind, err)
	}
	return events, nil
}
