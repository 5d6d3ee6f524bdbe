package task

import (
	"context"
	"time"
)

// Publisher receives lifecycle events after each successful write.
// Implementations must not block the caller for long.
type Publisher interface {
	PublishTaskEvent(ctx context.Context, ev Event)
}

// Service applies validation on top of a Repository and emits events.
type Service struct {
	repo      Repository
	publisher Publisher
	now       func() time.Time
}

// NewService creates a Service. publisher may be nil.
func NewService(repo Repository, publisher Publisher) *Service {
	return &Service{repo: repo, publisher: publisher, now: time.Now}
}

// List returns every task.
func (s *Service) List(ctx context.Context) ([]Task, error) {
	return s.repo.List(ctx)
}

// Get returns ErrTaskNotFound if the task does not exist.
func (s *Service) Get(ctx context.Context, id string) (*Task, error) {
	return s.repo.GetByID(ctx, id)
}

// Create validates input, stores the resulting task and emits
// task.created. Validation failures are *ValidationError.
func (s *Service) Create(ctx context.Context, input map[string]any) (*Task, error) {
	t, err := Parse(input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, &t); err != nil {
		return nil, err
	}
	s.publish(ctx, EventCreated, t)
	return &t, nil
}

// Update replaces the task with id by the validated input and emits
// task.updated. Existence is checked before validation so an unknown id
// reports ErrTaskNotFound whatever the payload.
func (s *Service) Update(ctx context.Context, id string, input map[string]any) (*Task, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	t, err := Parse(input)
	if err != nil {
		return nil, err
	}
	t.ID = id
	if err := s.repo.Replace(ctx, &t); err != nil {
		return nil, err
	}
	s.publish(ctx, EventUpdated, t)
	return &t, nil
}

// Delete removes the task with id, emits task.deleted, and returns the
// task as it was before removal.
func (s *Service) Delete(ctx context.Context, id string) (*Task, error) {
	prior, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	s.publish(ctx, EventDeleted, *prior)
	return prior, nil
}

func (s *Service) publish(ctx context.Context, eventType string, t Task) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishTaskEvent(ctx, Event{Type: eventType, Task: t, At: s.now().UTC()})
}
