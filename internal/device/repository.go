package device

import (
	"context"
	"errors"
	"fmt"

	"github.com/nerrad567/fieldtask-core/internal/document"
)

// Repository defines device persistence operations.
type Repository interface {
	// List returns every device, oldest first. Never nil.
	List(ctx context.Context) ([]Device, error)

	// GetByID returns ErrDeviceNotFound if the device does not exist.
	GetByID(ctx context.Context, id string) (*Device, error)

	// Create validates d, stores it, and sets d.ID.
	Create(ctx context.Context, d *Device) error
}

// StoreRepository implements Repository over a document.Store.
type StoreRepository struct {
	store document.Store
}

// NewStoreRepository creates a repository over store.
func NewStoreRepository(store document.Store) *StoreRepository {
	return &StoreRepository{store: store}
}

// List returns every device.
func (r *StoreRepository) List(ctx context.Context) ([]Device, error) {
	docs, err := r.store.FindAll(ctx, Collection)
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}

	devices := make([]Device, 0, len(docs))
	for _, doc := range docs {
		var d Device
		if err := doc.Decode(&d); err != nil {
			return nil, fmt.Errorf("decoding device %s: %w", doc.ID(), err)
		}
		devices = append(devices, d)
	}
	return devices, nil
}

// GetByID retrieves a device by id.
func (r *StoreRepository) GetByID(ctx context.Context, id string) (*Device, error) {
	doc, err := r.store.FindByID(ctx, Collection, id)
	if err != nil {
		if errors.Is(err, document.ErrNotFound) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("getting device %s: %w", id, err)
	}

	var d Device
	if err := doc.Decode(&d); err != nil {
		return nil, fmt.Errorf("decoding device %s: %w", id, err)
	}
	return &d, nil
}

// Create inserts a new device.
func (r *StoreRepository) Create(ctx context.Context, d *Device) error {
	if err := Validate(d); err != nil {
		return err
	}

	d.ID = ""
	fields, err := document.From(d)
	if err != nil {
		return fmt.Errorf("encoding device: %w", err)
	}

	stored, err := r.store.Insert(ctx, Collection, fields)
	if err != nil {
		return fmt.Errorf("creating device: %w", err)
	}
	d.ID = stored.ID()
	return nil
}
