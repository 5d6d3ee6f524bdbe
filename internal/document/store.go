package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FieldID is the key under which a document's identity is exposed.
const FieldID = "id"

// ErrNotFound is returned when no document has the requested id.
var ErrNotFound = errors.New("document: not found")

// Document is a schemaless JSON object. Every document returned by a Store
// carries its id under FieldID.
type Document map[string]any

// ID returns the document's id, or "" when it has none.
func (d Document) ID() string {
	id, _ := d[FieldID].(string)
	return id
}

// Clone returns a shallow copy of d.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// withoutID returns a copy of d with FieldID removed.
func (d Document) withoutID() Document {
	out := d.Clone()
	delete(out, FieldID)
	return out
}

// Decode fills v (a pointer to a struct) from the document's JSON form.
func (d Document) Decode(v any) error {
	b, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decoding document: %w", err)
	}
	return nil
}

// From converts a JSON-taggable value into a Document.
func From(v any) (Document, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding value: %w", err)
	}
	var d Document
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("decoding value: %w", err)
	}
	return d, nil
}

// NewID returns a fresh 24-character lowercase hex identifier.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// Store is a collection-oriented document store.
//
// Implementations:
//   - SQLStore: SQLite or PostgreSQL via internal/infrastructure/database
//   - MongoStore: MongoDB collections
//   - MemoryStore: process-local maps
type Store interface {
	// FindAll returns every document in collection, oldest first.
	FindAll(ctx context.Context, collection string) ([]Document, error)

	// FindByID returns ErrNotFound when id is absent.
	FindByID(ctx context.Context, collection, id string) (Document, error)

	// Insert assigns a new id, stores doc, and returns the stored document.
	// Any id already present on doc is ignored.
	Insert(ctx context.Context, collection string, doc Document) (Document, error)

	// Replace overwrites the document with id entirely and returns it.
	// Returns ErrNotFound when id is absent.
	Replace(ctx context.Context, collection, id string, doc Document) (Document, error)

	// DeleteByID returns ErrNotFound when id is absent.
	DeleteByID(ctx context.Context, collection, id string) error

	// HealthCheck verifies the backend is reachable.
	HealthCheck(ctx context.Context) error
}
