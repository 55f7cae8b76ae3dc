package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"taskboard/internal/event"
	"taskboard/internal/store"
	"taskboard/internal/store/postgres"
)

func TestAtomic_CommitsUnit(t *testing.T) {
	db := newTestDB(t)
	repos := postgres.NewRepositories(db)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	tsk := store.Task{ID: uuid.New(), Title: "atomic", Status: "todo", CreatedAt: now, UpdatedAt: now}
	ev := event.Event{ID: uuid.New(), Kind: event.Inserted, AggregateKind: event.AggregateTask, AggregateID: tsk.ID, Snapshot: []byte(`{}`), CreatedAt: now}

	err := repos.Atomic.RunAtomically(ctx, func(ctx context.Context) error {
		if err := repos.Events.Append(ctx, ev); err != nil {
			return err
		}
		return repos.Tasks.Insert(ctx, &tsk)
	})
	if err != nil {
		t.Fatalf("RunAtomically: %v", err)
	}

	if _, err := repos.Tasks.GetByID(ctx, tsk.ID); err != nil {
		t.Errorf("task not visible after commit: %v", err)
	}
	if evs, _ := repos.Events.Load(ctx, tsk.ID); len(evs) != 1 {
		t.Errorf("events after commit = %d, want 1", len(evs))
	}
}

func TestAtomic_RollsBackWholeUnit(t *testing.T) {
	db := newTestDB(t)
	repos := postgres.NewRepositories(db)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	tsk := store.Task{ID: uuid.New(), Title: "doomed", Status: "todo", CreatedAt: now, UpdatedAt: now}
	ev := event.Event{ID: uuid.New(), Kind: event.Inserted, AggregateKind: event.AggregateTask, AggregateID: tsk.ID, Snapshot: []byte(`{}`), CreatedAt: now}

	boom := errors.New("boom")
	err := repos.Atomic.RunAtomically(ctx, func(ctx context.Context) error {
		if err := repos.Events.Append(ctx, ev); err != nil {
			return err
		}
		if err := repos.Tasks.Insert(ctx, &tsk); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("RunAtomically error = %v, want boom", err)
	}

	// Neither the event nor the row survived the rollback.
	if _, err := repos.Tasks.GetByID(ctx, tsk.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("task visible after rollback, error = %v", err)
	}
	if evs, _ := repos.Events.Load(ctx, tsk.ID); len(evs) != 0 {
		t.Errorf("events after rollback = %d, want 0", len(evs))
	}
}

func TestAtomic_NestedUnitsJoin(t *testing.T) {
	db := newTestDB(t)
	repos := postgres.NewRepositories(db)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	tsk := store.Task{ID: uuid.New(), Title: "nested", Status: "todo", CreatedAt: now, UpdatedAt: now}

	boom := errors.New("boom")
	err := repos.Atomic.RunAtomically(ctx, func(ctx context.Context) error {
		if err := repos.Tasks.Insert(ctx, &tsk); err != nil {
			return err
		}
		// The inner run joins the outer transaction, so the outer failure
		// takes its write down too.
		return repos.Atomic.RunAtomically(ctx, func(ctx context.Context) error {
			return boom
		})
	})
	if !errors.Is(err, boom) {
		t.Fatalf("RunAtomically error = %v, want boom", err)
	}
	if _, err := repos.Tasks.GetByID(ctx, tsk.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("task visible after nested rollback, error = %v", err)
	}
}
