package memory

import (
	"context"

	"github.com/google/uuid"

	"taskboard/internal/event"
)

// EventLog implements event.Log with an append-only slice.
type EventLog struct {
	s *Store
}

func (l *EventLog) Append(_ context.Context, events ...event.Event) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	l.s.events = append(l.s.events, events...)
	return nil
}

func (l *EventLog) Load(_ context.Context, aggregateID uuid.UUID) ([]event.Event, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()

	var out []event.Event
	for _, e := range l.s.events {
		if e.AggregateID == aggregateID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (l *EventLog) LoadByKind(_ context.Context, kind event.Kind) ([]event.Event, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()

	var out []event.Event
	for _, e := range l.s.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out, nil
}
