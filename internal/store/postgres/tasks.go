package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"taskboard/internal/store"
)

// TaskRepo implements store.TaskRepository with sqlx.
type TaskRepo struct {
	db *sqlx.DB
}

// NewTaskRepo returns a new TaskRepo.
func NewTaskRepo(db *sqlx.DB) *TaskRepo {
	return &TaskRepo{db: db}
}

func (r *TaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*store.Task, error) {
	var t store.Task
	err := sqlx.GetContext(ctx, ext(ctx, r.db), &t,
		`SELECT id, title, description, status, assignee_id, created_at, updated_at
		 FROM tasks WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("getting task %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting task %s: %w", id, err)
	}
	return &t, nil
}

func (r *TaskRepo) List(ctx context.Context) ([]store.Task, error) {
	var tasks []store.Task
	err := sqlx.SelectContext(ctx, ext(ctx, r.db), &tasks,
		`SELECT id, title, description, status, assignee_id, created_at, updated_at
		 FROM tasks ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepo) ListByStatus(ctx context.Context, status string) ([]store.Task, error) {
	var tasks []store.Task
	err := sqlx.SelectContext(ctx, ext(ctx, r.db), &tasks,
		`SELECT id, title, description, status, assignee_id, created_at, updated_at
		 FROM tasks WHERE status = $1 ORDER BY created_at, id`, status)
	if err != nil {
		return nil, fmt.Errorf("listing tasks by status: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepo) ListByAssignee(ctx context.Context, userID uuid.UUID) ([]store.Task, error) {
	var tasks []store.Task
	err := sqlx.SelectContext(ctx, ext(ctx, r.db), &tasks,
		`SELECT id, title, description, status, assignee_id, created_at, updated_at
		 FROM tasks WHERE assignee_id = $1 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks by assignee: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepo) Insert(ctx context.Context, t *store.Task) error {
	_, err := ext(ctx, r.db).ExecContext(ctx,
		`INSERT INTO tasks (id, title, description, status, assignee_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.Title, t.Description, t.Status, t.AssigneeID, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting task %s: %w", t.ID, err)
	}
	return nil
}

func (r *TaskRepo) Update(ctx context.Context, t *store.Task) error {
	result, err := ext(ctx, r.db).ExecContext(ctx,
		`UPDATE tasks SET title = $1, description = $2, status = $3, assignee_id = $4, updated_at = $5
		 WHERE id = $6`,
		t.Title, t.Description, t.Status, t.AssigneeID, t.UpdatedAt, t.ID)
	if err != nil {
		return fmt.Errorf("updating task %s: %w", t.ID, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("updating task %s: %w", t.ID, store.ErrNotFound)
	}
	return nil
}

func (r *TaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := ext(ctx, r.db).ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("deleting task %s: %w", id, store.ErrNotFound)
	}
	return nil
}

func (r *TaskRepo) DeleteAll(ctx context.Context) error {
	if _, err := ext(ctx, r.db).ExecContext(ctx, `DELETE FROM tasks`); err != nil {
		return fmt.Errorf("deleting all tasks: %w", err)
	}
	return nil
}

func (r *TaskRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, ext(ctx, r.db), &n, `SELECT COUNT(*) FROM tasks`)
	if err != nil {
		return 0, fmt.Errorf("counting tasks: %w", err)
	}
	return n, nil
}
