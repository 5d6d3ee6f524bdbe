package task

import (
	"context"
	"errors"
	"fmt"

	"github.com/nerrad567/fieldtask-core/internal/document"
)

// Repository defines task persistence operations.
type Repository interface {
	// List returns every task, oldest first. Never nil.
	List(ctx context.Context) ([]Task, error)

	// GetByID returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id string) (*Task, error)

	// Create stores t and sets t.ID.
	Create(ctx context.Context, t *Task) error

	// Replace overwrites the stored task with t.ID.
	// Returns ErrTaskNotFound if it does not exist.
	Replace(ctx context.Context, t *Task) error

	// Delete returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id string) error
}

// StoreRepository implements Repository over a document.Store.
type StoreRepository struct {
	store document.Store
}

// NewStoreRepository creates a repository over store.
func NewStoreRepository(store document.Store) *StoreRepository {
	return &StoreRepository{store: store}
}

// List returns every task.
func (r *StoreRepository) List(ctx context.Context) ([]Task, error) {
	docs, err := r.store.FindAll(ctx, Collection)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}

	tasks := make([]Task, 0, len(docs))
	for _, doc := range docs {
		var t Task
		if err := doc.Decode(&t); err != nil {
			return nil, fmt.Errorf("decoding task %s: %w", doc.ID(), err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// GetByID retrieves a task by id.
func (r *StoreRepository) GetByID(ctx context.Context, id string) (*Task, error) {
	doc, err := r.store.FindByID(ctx, Collection, id)
	if err != nil {
		if errors.Is(err, document.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("getting task %s: %w", id, err)
	}

	var t Task
	if err := doc.Decode(&t); err != nil {
		return nil, fmt.Errorf("decoding task %s: %w", id, err)
	}
	return &t, nil
}

// Create inserts t as a new document.
func (r *StoreRepository) Create(ctx context.Context, t *Task) error {
	stored, err := r.store.Insert(ctx, Collection, fields(t))
	if err != nil {
		return fmt.Errorf("creating task: %w", err)
	}
	t.ID = stored.ID()
	return nil
}

// Replace overwrites the five domain fields of the task with t.ID.
func (r *StoreRepository) Replace(ctx context.Context, t *Task) error {
	if _, err := r.store.Replace(ctx, Collection, t.ID, fields(t)); err != nil {
		if errors.Is(err, document.ErrNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("replacing task %s: %w", t.ID, err)
	}
	return nil
}

// Delete removes the task with id.
func (r *StoreRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.DeleteByID(ctx, Collection, id); err != nil {
		if errors.Is(err, document.ErrNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	return nil
}

// fields is the stored form of t: exactly the five domain fields.
func fields(t *Task) document.Document {
	return document.Document{
		"criticality": t.Criticality,
		"target":      t.Target,
		"recordTime":  t.RecordTime,
		"description": t.Description,
		"state":       t.State,
	}
}
