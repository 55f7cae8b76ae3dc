// Package store defines the materialized aggregate rows, the repository
// ports the persistence services depend on, and the driver registry that
// produces their implementations.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Task is the materialized state of a task aggregate.
type Task struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	Status      string     `db:"status" json:"status"` // e.g. "todo", "in_progress", "done"; the set is owned by the business layer
	AssigneeID  *uuid.UUID `db:"assignee_id" json:"assignee_id,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// User is the materialized state of a user aggregate.
type User struct {
	ID   uuid.UUID `db:"id" json:"id"`
	Name string    `db:"name" json:"name"`
}

// TaskRepository is the storage port for the task projection. Lookup methods
// return ErrNotFound when the id is absent; list methods return an empty
// slice instead of failing.
type TaskRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Task, error)
	List(ctx context.Context) ([]Task, error)
	ListByStatus(ctx context.Context, status string) ([]Task, error)
	ListByAssignee(ctx context.Context, userID uuid.UUID) ([]Task, error)
	Insert(ctx context.Context, t *Task) error
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

// UserRepository is the storage port for the user projection.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	List(ctx context.Context) ([]User, error)
	// ExistsByName reports whether any stored user carries the name.
	ExistsByName(ctx context.Context, name string) (bool, error)
	Insert(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

// Atomic runs fn so that the event appends and row mutations it performs are
// applied together or not at all. Implementations bind the unit of work to
// the context fn receives; repositories and the event log pick it up from
// there.
type Atomic interface {
	RunAtomically(ctx context.Context, fn func(ctx context.Context) error) error
}
