// Package task implements the task persistence service: every mutation is
// recorded in the event log before the materialized task row changes.
package task

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

// Service orchestrates the upsert/delete protocol for tasks.
//
// Every mutating operation holds the aggregate's exclusive section for its
// whole run, so no two protocol runs for one task id ever overlap, and
// performs the event append and the row write inside one atomic unit with
// the append strictly first.
type Service struct {
	tasks  store.TaskRepository
	events event.Log
	atomic store.Atomic
	ser    snapshot.Serializer
	clock  clock.Clock
	locks  *keylock.KeyedMutex
	logger *slog.Logger
	tracer trace.Tracer
}

// NewService returns a task persistence Service.
func NewService(tasks store.TaskRepository, events event.Log, atomic store.Atomic, ser snapshot.Serializer, clk clock.Clock, logger *slog.Logger, tp trace.TracerProvider) *Service {
	return &Service{
		tasks:  tasks,
		events: events,
		atomic: atomic,
		ser:    ser,
		clock:  clk,
		locks:  keylock.New(),
		logger: logger,
		tracer: tp.Tracer("taskboard/internal/task"),
	}
}

// GetAll returns every stored task.
func (s *Service) GetAll(ctx context.Context) ([]store.Task, error) {
	ctx, span := s.tracer.Start(ctx, "TaskService.GetAll")
	defer span.End()

	return s.tasks.List(ctx)
}

// GetByID returns the task with the given id, or nil when absent.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*store.Task, error) {
	ctx, span := s.tracer.Start(ctx, "TaskService.GetByID",
		trace.WithAttributes(attribute.String("task_id", id.String())),
	)
	defer span.End()

	t, err := s.tasks.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return t, err
}

// GetByStatus returns all tasks in the given status.
func (s *Service) GetByStatus(ctx context.Context, status string) ([]store.Task, error) {
	ctx, span := s.tracer.Start(ctx, "TaskService.GetByStatus",
		trace.WithAttributes(attribute.String("status", status)),
	)
	defer span.End()

	return s.tasks.ListByStatus(ctx, status)
}

// GetByAssignee returns all tasks assigned to the given user.
func (s *Service) GetByAssignee(ctx context.Context, userID uuid.UUID) ([]store.Task, error) {
	ctx, span := s.tracer.Start(ctx, "TaskService.GetByAssignee",
		trace.WithAttributes(attribute.String("assignee_id", userID.String())),
	)
	defer span.End()

	return s.tasks.ListByAssignee(ctx, userID)
}

// Upsert creates the task when its id is unset, otherwise overwrites the
// stored task's title, description, status and assignee. The returned task is
// the state that was persisted.
func (s *Service) Upsert(ctx context.Context, t store.Task) (*store.Task, error) {
	ctx, span := s.tracer.Start(ctx, "TaskService.Upsert")
	defer span.End()

	if t.ID == uuid.Nil {
		return s.create(ctx, t)
	}
	return s.update(ctx, t)
}

func (s *Service) create(ctx context.Context, t store.Task) (*store.Task, error) {
	t.ID = uuid.New()
	now := s.clock.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	ev, err := event.InsertEventOf(event.AggregateTask, t.ID, t.AssigneeID, t, s.ser, now)
	if err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}

	unlock := s.locks.Lock(t.ID.String())
	defer unlock()

	err = s.runProtocol(ctx, func(ctx context.Context) error {
		if err := s.events.Append(ctx, ev); err != nil {
			return err
		}
		return s.tasks.Insert(ctx, &t)
	})
	if err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}

	s.logger.InfoContext(ctx, "task created",
		slog.String("task_id", t.ID.String()),
		slog.String("status", t.Status),
	)
	return &t, nil
}

func (s *Service) update(ctx context.Context, t store.Task) (*store.Task, error) {
	unlock := s.locks.Lock(t.ID.String())
	defer unlock()

	existing, err := s.tasks.GetByID(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("updating task: %w", err)
	}

	existing.Title = t.Title
	existing.Description = t.Description
	existing.Status = t.Status
	existing.AssigneeID = t.AssigneeID
	existing.UpdatedAt = s.clock.Now().UTC()

	// Snapshot is the target state, so a replay reconstructs the row as
	// persisted below.
	ev, err := event.UpdateEventOf(event.AggregateTask, existing.ID, existing.AssigneeID, *existing, s.ser, existing.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("updating task: %w", err)
	}

	err = s.runProtocol(ctx, func(ctx context.Context) error {
		if err := s.events.Append(ctx, ev); err != nil {
			return err
		}
		return s.tasks.Update(ctx, existing)
	})
	if err != nil {
		return nil, fmt.Errorf("updating task: %w", err)
	}

	s.logger.InfoContext(ctx, "task updated",
		slog.String("task_id", existing.ID.String()),
		slog.String("status", existing.Status),
	)
	return existing, nil
}

// Delete removes the task with the given id. After the removal commits, the
// id must be gone from the store; residue is a fatal consistency violation.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "TaskService.Delete",
		trace.WithAttributes(attribute.String("task_id", id.String())),
	)
	defer span.End()

	unlock := s.locks.Lock(id.String())
	defer unlock()

	existing, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}

	ev, err := event.DeleteEventOf(event.AggregateTask, id, existing.AssigneeID, *existing, s.ser, s.clock.Now().UTC())
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}

	err = s.runProtocol(ctx, func(ctx context.Context) error {
		if err := s.events.Append(ctx, ev); err != nil {
			return err
		}
		return s.tasks.Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}

	if _, err := s.tasks.GetByID(ctx, id); !errors.Is(err, store.ErrNotFound) {
		if err != nil {
			return fmt.Errorf("verifying task deletion: %w", err)
		}
		return fmt.Errorf("task %s still present after delete: %w", id, store.ErrConsistencyViolation)
	}

	s.logger.InfoContext(ctx, "task deleted", slog.String("task_id", id.String()))
	return nil
}

// Clear removes every stored task, recording one delete event per row. The
// clear path records no related id.
func (s *Service) Clear(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "TaskService.Clear")
	defer span.End()

	unlock := s.locks.LockAll()
	defer unlock()

	all, err := s.tasks.List(ctx)
	if err != nil {
		return fmt.Errorf("clearing tasks: %w", err)
	}

	at := s.clock.Now().UTC()
	events := make([]event.Event, 0, len(all))
	for _, t := range all {
		ev, err := event.DeleteEventOf(event.AggregateTask, t.ID, nil, t, s.ser, at)
		if err != nil {
			return fmt.Errorf("clearing tasks: %w", err)
		}
		events = append(events, ev)
	}

	err = s.runProtocol(ctx, func(ctx context.Context) error {
		if len(events) > 0 {
			if err := s.events.Append(ctx, events...); err != nil {
				return err
			}
		}
		return s.tasks.DeleteAll(ctx)
	})
	if err != nil {
		return fmt.Errorf("clearing tasks: %w", err)
	}

	n, err := s.tasks.Count(ctx)
	if err != nil {
		return fmt.Errorf("verifying task clear: %w", err)
	}
	if n != 0 {
		return fmt.Errorf("%d tasks still present after clear: %w", n, store.ErrConsistencyViolation)
	}

	s.logger.InfoContext(ctx, "tasks cleared", slog.Int("count", len(all)))
	return nil
}

// runProtocol executes the append+mutate pair as one atomic unit, detached
// from caller cancellation so a timeout cannot split the pair.
func (s *Service) runProtocol(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.atomic.RunAtomically(context.WithoutCancel(ctx), fn)
}
