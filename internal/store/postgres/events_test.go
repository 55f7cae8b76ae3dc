package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"taskboard/internal/event"
	"taskboard/internal/store/postgres"
)

func TestEventLog(t *testing.T) {
	db := newTestDB(t)
	log := postgres.NewEventLog(db)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	aggID := uuid.New()
	related := uuid.New()
	events := []event.Event{
		{ID: uuid.New(), Kind: event.Inserted, AggregateKind: event.AggregateTask, AggregateID: aggID, RelatedID: &related, Snapshot: []byte(`{"title":"a"}`), CreatedAt: now},
		{ID: uuid.New(), Kind: event.Updated, AggregateKind: event.AggregateTask, AggregateID: aggID, Snapshot: []byte(`{"title":"b"}`), CreatedAt: now},
		{ID: uuid.New(), Kind: event.Inserted, AggregateKind: event.AggregateUser, AggregateID: uuid.New(), Snapshot: []byte(`{"name":"alice"}`), CreatedAt: now},
	}
	if err := log.Append(ctx, events...); err != nil {
		t.Fatalf("Append: %v", err)
	}

	loaded, err := log.Load(ctx, aggID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("Load returned %d events, want 2", len(loaded))
	}
	// Insertion order preserved via the sequence column.
	if loaded[0].Kind != event.Inserted || loaded[1].Kind != event.Updated {
		t.Errorf("kinds = [%q, %q], want [insert, update]", loaded[0].Kind, loaded[1].Kind)
	}
	if loaded[0].RelatedID == nil || *loaded[0].RelatedID != related {
		t.Errorf("RelatedID = %v, want %s", loaded[0].RelatedID, related)
	}
	if loaded[1].RelatedID != nil {
		t.Errorf("RelatedID = %v, want nil", loaded[1].RelatedID)
	}
	if string(loaded[0].Snapshot) != `{"title":"a"}` {
		t.Errorf("Snapshot = %s, want original payload", loaded[0].Snapshot)
	}

	inserts, err := log.LoadByKind(ctx, event.Inserted)
	if err != nil {
		t.Fatalf("LoadByKind: %v", err)
	}
	if len(inserts) != 2 {
		t.Errorf("LoadByKind(insert) returned %d, want 2", len(inserts))
	}

	// Appending events for an already-deleted aggregate is fine; the log is
	// append-only and keeps every record.
	del := event.Event{ID: uuid.New(), Kind: event.Deleted, AggregateKind: event.AggregateTask, AggregateID: aggID, Snapshot: []byte(`{"title":"b"}`), CreatedAt: now}
	if err := log.Append(ctx, del); err != nil {
		t.Fatalf("Append delete: %v", err)
	}
	loaded, _ = log.Load(ctx, aggID)
	if len(loaded) != 3 {
		t.Errorf("Load after delete event returned %d, want 3", len(loaded))
	}
}
