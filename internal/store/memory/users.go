package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"taskboard/internal/store"
)

// UserRepo implements store.UserRepository over the in-memory maps.
type UserRepo struct {
	s *Store
}

func (r *UserRepo) GetByID(_ context.Context, id uuid.UUID) (*store.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, fmt.Errorf("getting user %s: %w", id, store.ErrNotFound)
	}
	return &u, nil
}

func (r *UserRepo) List(_ context.Context) ([]store.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := make([]store.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].Name < users[j].Name
	})
	return users, nil
}

func (r *UserRepo) ExistsByName(_ context.Context, name string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (r *UserRepo) Insert(_ context.Context, u *store.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.users[u.ID]; exists {
		return fmt.Errorf("inserting user %s: id already present", u.ID)
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepo) Update(_ context.Context, u *store.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.users[u.ID]; !exists {
		return fmt.Errorf("updating user %s: %w", u.ID, store.ErrNotFound)
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.users[id]; !exists {
		return fmt.Errorf("deleting user %s: %w", id, store.ErrNotFound)
	}
	delete(r.s.users, id)
	return nil
}

func (r *UserRepo) DeleteAll(_ context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	clear(r.s.users)
	return nil
}

func (r *UserRepo) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.users), nil
}
