// Package user implements the user persistence service. It follows the same
// event-before-row protocol as the task service, with one extra rule: a
// rename that would collide with another stored user's name is rejected
// before anything is written.
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"taskboard/internal/clock"
	"taskboard/internal/event"
	"taskboard/internal/keylock"
	"taskboard/internal/snapshot"
	"taskboard/internal/store"
)

// Service orchestrates the upsert/delete protocol for users. User events
// never carry a related id.
type Service struct {
	users  store.UserRepository
	events event.Log
	atomic store.Atomic
	ser    snapshot.Serializer
	clock  clock.Clock
	locks  *keylock.KeyedMutex
	logger *slog.Logger
	tracer trace.Tracer
}

// NewService returns a user persistence Service.
func NewService(users store.UserRepository, events event.Log, atomic store.Atomic, ser snapshot.Serializer, clk clock.Clock, logger *slog.Logger, tp trace.TracerProvider) *Service {
	return &Service{
		users:  users,
		events: events,
		atomic: atomic,
		ser:    ser,
		clock:  clk,
		locks:  keylock.New(),
		logger: logger,
		tracer: tp.Tracer("taskboard/internal/user"),
	}
}

// GetAll returns every stored user.
func (s *Service) GetAll(ctx context.Context) ([]store.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.GetAll")
	defer span.End()

	return s.users.List(ctx)
}

// GetByID returns the user with the given id, or nil when absent.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*store.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.GetByID",
		trace.WithAttributes(attribute.String("user_id", id.String())),
	)
	defer span.End()

	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return u, err
}

// Upsert creates the user when its id is unset, otherwise renames the stored
// user. Creation performs no name-uniqueness check; renames do.
func (s *Service) Upsert(ctx context.Context, u store.User) (*store.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Upsert")
	defer span.End()

	if u.ID == uuid.Nil {
		return s.create(ctx, u)
	}
	return s.update(ctx, u)
}

func (s *Service) create(ctx context.Context, u store.User) (*store.User, error) {
	u.ID = uuid.New()

	ev, err := event.InsertEventOf(event.AggregateUser, u.ID, nil, u, s.ser, s.clock.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	unlock := s.locks.Lock(u.ID.String())
	defer unlock()

	err = s.runProtocol(ctx, func(ctx context.Context) error {
		if err := s.events.Append(ctx, ev); err != nil {
			return err
		}
		return s.users.Insert(ctx, &u)
	})
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.InfoContext(ctx, "user created",
		slog.String("user_id", u.ID.String()),
		slog.String("name", u.Name),
	)
	return &u, nil
}

func (s *Service) update(ctx context.Context, u store.User) (*store.User, error) {
	unlock := s.locks.Lock(u.ID.String())
	defer unlock()

	existing, err := s.users.GetByID(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}

	// The check only fires on an actual rename; keeping one's own name is
	// always allowed.
	if existing.Name != u.Name {
		taken, err := s.users.ExistsByName(ctx, u.Name)
		if err != nil {
			return nil, fmt.Errorf("updating user: %w", err)
		}
		if taken {
			return nil, fmt.Errorf("renaming user %s to %q: %w", u.ID, u.Name, store.ErrDuplicateName)
		}
	}

	existing.Name = u.Name

	ev, err := event.UpdateEventOf(event.AggregateUser, existing.ID, nil, *existing, s.ser, s.clock.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}

	err = s.runProtocol(ctx, func(ctx context.Context) error {
		if err := s.events.Append(ctx, ev); err != nil {
			return err
		}
		return s.users.Update(ctx, existing)
	})
	if err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}

	s.logger.InfoContext(ctx, "user updated",
		slog.String("user_id", existing.ID.String()),
		slog.String("name", existing.Name),
	)
	return existing, nil
}

// Delete removes the user with the given id, verifying afterwards that the
// row is gone.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "UserService.Delete",
		trace.WithAttributes(attribute.String("user_id", id.String())),
	)
	defer span.End()

	unlock := s.locks.Lock(id.String())
	defer unlock()

	existing, err := s.users.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	ev, err := event.DeleteEventOf(event.AggregateUser, id, nil, *existing, s.ser, s.clock.Now().UTC())
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	err = s.runProtocol(ctx, func(ctx context.Context) error {
		if err := s.events.Append(ctx, ev); err != nil {
			return err
		}
		return s.users.Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	if _, err := s.users.GetByID(ctx, id); !errors.Is(err, store.ErrNotFound) {
		if err != nil {
			return fmt.Errorf("verifying user deletion: %w", err)
		}
		return fmt.Errorf("user %s still present after delete: %w", id, store.ErrConsistencyViolation)
	}

	s.logger.InfoContext(ctx, "user deleted", slog.String("user_id", id.String()))
	return nil
}

// Clear removes every stored user, recording one delete event per row.
func (s *Service) Clear(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "UserService.Clear")
	defer span.End()

	unlock := s.locks.LockAll()
	defer unlock()

	all, err := s.users.List(ctx)
	if err != nil {
		return fmt.Errorf("clearing users: %w", err)
	}

	at := s.clock.Now().UTC()
	events := make([]event.Event, 0, len(all))
	for _, u := range all {
		ev, err := event.DeleteEventOf(event.AggregateUser, u.ID, nil, u, s.ser, at)
		if err != nil {
			return fmt.Errorf("clearing users: %w", err)
		}
		events = append(events, ev)
	}

	err = s.runProtocol(ctx, func(ctx context.Context) error {
		if len(events) > 0 {
			if err := s.events.Append(ctx, events...); err != nil {
				return err
			}
		}
		return s.users.DeleteAll(ctx)
	})
	if err != nil {
		return fmt.Errorf("clearing users: %w", err)
	}

	n, err := s.users.Count(ctx)
	if err != nil {
		return fmt.Errorf("verifying user clear: %w", err)
	}
	if n != 0 {
		return fmt.Errorf("%d users still present after clear: %w", n, store.ErrConsistencyViolation)
	}

	s.logger.InfoContext(ctx, "users cleared", slog.Int("count", len(all)))
	return nil
}

// runProtocol executes the append+mutate pair as one atomic unit, detached
// from caller cancellation so a timeout cannot split the pair.
func (s *Service) runProtocol(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.atomic.RunAtomically(context.WithoutCancel(ctx), fn)
}
