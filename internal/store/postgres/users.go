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

// UserRepo implements store.UserRepository with sqlx.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo returns a new UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*store.User, error) {
	var u store.User
	err := sqlx.GetContext(ctx, ext(ctx, r.db), &u,
		`SELECT id, name FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("getting user %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting user %s: %w", id, err)
	}
	return &u, nil
}

func (r *UserRepo) List(ctx context.Context) ([]store.User, error) {
	var users []store.User
	err := sqlx.SelectContext(ctx, ext(ctx, r.db), &users,
		`SELECT id, name FROM users ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

func (r *UserRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, ext(ctx, r.db), &exists,
		`SELECT EXISTS (SELECT 1 FROM users WHERE name = $1)`, name)
	if err != nil {
		return false, fmt.Errorf("checking user name %q: %w", name, err)
	}
	return exists, nil
}

func (r *UserRepo) Insert(ctx context.Context, u *store.User) error {
	_, err := ext(ctx, r.db).ExecContext(ctx,
		`INSERT INTO users (id, name) VALUES ($1, $2)`, u.ID, u.Name)
	if err != nil {
		return fmt.Errorf("inserting user %s: %w", u.ID, err)
	}
	return nil
}

func (r *UserRepo) Update(ctx context.Context, u *store.User) error {
	result, err := ext(ctx, r.db).ExecContext(ctx,
		`UPDATE users SET name = $1 WHERE id = $2`, u.Name, u.ID)
	if err != nil {
		return fmt.Errorf("updating user %s: %w", u.ID, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("updating user %s: %w", u.ID, store.ErrNotFound)
	}
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := ext(ctx, r.db).ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting user %s: %w", id, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("deleting user %s: %w", id, store.ErrNotFound)
	}
	return nil
}

func (r *UserRepo) DeleteAll(ctx context.Context) error {
	if _, err := ext(ctx, r.db).ExecContext(ctx, `DELETE FROM users`); err != nil {
		return fmt.Errorf("deleting all users: %w", err)
	}
	return nil
}

func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, ext(ctx, r.db), &n, `SELECT COUNT(*) FROM users`)
	if err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return n, nil
}
