package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"taskboard/internal/store"
)

// TaskRepo implements store.TaskRepository over the in-memory maps.
type TaskRepo struct {
	s *Store
}

func (r *TaskRepo) GetByID(_ context.Context, id uuid.UUID) (*store.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("getting task %s: %w", id, store.ErrNotFound)
	}
	return &t, nil
}

func (r *TaskRepo) List(_ context.Context) ([]store.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.collect(func(store.Task) bool { return true }), nil
}

func (r *TaskRepo) ListByStatus(_ context.Context, status string) ([]store.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.collect(func(t store.Task) bool { return t.Status == status }), nil
}

func (r *TaskRepo) ListByAssignee(_ context.Context, userID uuid.UUID) ([]store.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.collect(func(t store.Task) bool {
		return t.AssigneeID != nil && *t.AssigneeID == userID
	}), nil
}

func (r *TaskRepo) Insert(_ context.Context, t *store.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.tasks[t.ID]; exists {
		return fmt.Errorf("inserting task %s: id already present", t.ID)
	}
	r.s.tasks[t.ID] = *t
	return nil
}

func (r *TaskRepo) Update(_ context.Context, t *store.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.tasks[t.ID]; !exists {
		return fmt.Errorf("updating task %s: %w", t.ID, store.ErrNotFound)
	}
	r.s.tasks[t.ID] = *t
	return nil
}

func (r *TaskRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.tasks[id]; !exists {
		return fmt.Errorf("deleting task %s: %w", id, store.ErrNotFound)
	}
	delete(r.s.tasks, id)
	return nil
}

func (r *TaskRepo) DeleteAll(_ context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	clear(r.s.tasks)
	return nil
}

func (r *TaskRepo) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.tasks), nil
}

// collect returns matching tasks in creation order. Caller holds s.mu.
func (r *TaskRepo) collect(match func(store.Task) bool) []store.Task {
	tasks := make([]store.Task, 0, len(r.s.tasks))
	for _, t := range r.s.tasks {
		if match(t) {
			tasks = append(tasks, t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		}
		return tasks[i].ID.String() < tasks[j].ID.String()
	})
	return tasks
}
