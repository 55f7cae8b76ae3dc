package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"taskboard/internal/store"
	"taskboard/internal/store/postgres"
)

func TestUserRepo(t *testing.T) {
	db := newTestDB(t)
	repo := postgres.NewUserRepo(db)
	ctx := context.Background()

	alice := store.User{ID: uuid.New(), Name: "alice"}
	bob := store.User{ID: uuid.New(), Name: "bob"}
	for _, u := range []store.User{alice, bob} {
		if err := repo.Insert(ctx, &u); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	got, err := repo.GetByID(ctx, alice.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "alice" {
		t.Errorf("Name = %q, want %q", got.Name, "alice")
	}

	if _, err := repo.GetByID(ctx, uuid.New()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetByID(absent) error = %v, want ErrNotFound", err)
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("List returned %d users, want 2", len(all))
	}

	taken, err := repo.ExistsByName(ctx, "alice")
	if err != nil {
		t.Fatalf("ExistsByName: %v", err)
	}
	if !taken {
		t.Error("ExistsByName(alice) = false, want true")
	}
	if taken, _ := repo.ExistsByName(ctx, "carol"); taken {
		t.Error("ExistsByName(carol) = true, want false")
	}

	// The table carries no uniqueness constraint on names; inserting a
	// duplicate must succeed.
	dup := store.User{ID: uuid.New(), Name: "alice"}
	if err := repo.Insert(ctx, &dup); err != nil {
		t.Fatalf("Insert duplicate name: %v", err)
	}

	alice.Name = "alicia"
	if err := repo.Update(ctx, &alice); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ = repo.GetByID(ctx, alice.ID)
	if got.Name != "alicia" {
		t.Errorf("Name after update = %q, want %q", got.Name, "alicia")
	}

	missing := store.User{ID: uuid.New(), Name: "ghost"}
	if err := repo.Update(ctx, &missing); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Update(absent) error = %v, want ErrNotFound", err)
	}

	if err := repo.Delete(ctx, bob.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, bob.ID); !errors.Is(err, store.ErrNotFound) {
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
