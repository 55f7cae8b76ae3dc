package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"taskboard/internal/store"
	"taskboard/internal/store/postgres"
)

func TestTaskRepo(t *testing.T) {
	db := newTestDB(t)
	repo := postgres.NewTaskRepo(db)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	assignee := uuid.New()
	a := store.Task{ID: uuid.New(), Title: "a", Description: "first", Status: "todo", CreatedAt: now, UpdatedAt: now}
	b := store.Task{ID: uuid.New(), Title: "b", Description: "second", Status: "done", AssigneeID: &assignee, CreatedAt: now.Add(time.Second), UpdatedAt: now.Add(time.Second)}

	for _, tsk := range []store.Task{a, b} {
		if err := repo.Insert(ctx, &tsk); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	got, err := repo.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Title != "a" || got.AssigneeID != nil {
		t.Errorf("GetByID = %+v, want task a without assignee", got)
	}
	if !got.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, now)
	}

	if _, err := repo.GetByID(ctx, uuid.New()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetByID(absent) error = %v, want ErrNotFound", err)
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 || all[0].ID != a.ID || all[1].ID != b.ID {
		t.Errorf("List returned %d tasks in wrong order", len(all))
	}

	done, err := repo.ListByStatus(ctx, "done")
	if err != nil {
		t.Fatalf("ListByStatus: %v", err)
	}
	if len(done) != 1 || done[0].ID != b.ID {
		t.Errorf("ListByStatus(done) = %v, want [%s]", done, b.ID)
	}

	assigned, err := repo.ListByAssignee(ctx, assignee)
	if err != nil {
		t.Fatalf("ListByAssignee: %v", err)
	}
	if len(assigned) != 1 || assigned[0].ID != b.ID {
		t.Errorf("ListByAssignee = %v, want [%s]", assigned, b.ID)
	}

	a.Status = "in_progress"
	a.UpdatedAt = now.Add(time.Minute)
	if err := repo.Update(ctx, &a); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ = repo.GetByID(ctx, a.ID)
	if got.Status != "in_progress" {
		t.Errorf("Status after update = %q, want %q", got.Status, "in_progress")
	}

	missing := store.Task{ID: uuid.New()}
	if err := repo.Update(ctx, &missing); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Update(absent) error = %v, want ErrNotFound", err)
	}

	if err := repo.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, a.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Delete(absent) error = %v, want ErrNotFound", err)
	}

	if err := repo.DeleteAll(ctx); err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}
	n, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 0 {
		t.Errorf("Count after DeleteAll = %d, want 0", n)
	}
}
