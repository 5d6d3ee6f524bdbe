package document

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nerrad567/fieldtask-core/internal/infrastructure/database"
)

// SQLStore keeps documents in the documents table as JSON bodies keyed by
// (collection, id). It works on both the SQLite and PostgreSQL dialects;
// the table is created by the embedded migrations.
type SQLStore struct {
	db *database.DB
}

// NewSQLStore creates a store over an open, migrated database.
func NewSQLStore(db *database.DB) *SQLStore {
	return &SQLStore{db: db}
}

// FindAll returns every document in collection ordered by creation time.
func (s *SQLStore) FindAll(ctx context.Context, collection string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, body FROM documents WHERE collection = ? ORDER BY created_at, id`,
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", collection, err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", collection, err)
		}
		doc, err := decodeBody(id, body)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", collection, err)
	}
	return docs, nil
}

// FindByID returns ErrNotFound when id is absent.
func (s *SQLStore) FindByID(ctx context.Context, collection, id string) (Document, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	).Scan(&body)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying %s %s: %w", collection, id, err)
	}
	return decodeBody(id, body)
}

// Insert stores doc under a new id.
func (s *SQLStore) Insert(ctx context.Context, collection string, doc Document) (Document, error) {
	body, err := encodeBody(doc)
	if err != nil {
		return nil, err
	}

	id := NewID()
	now := timestamp()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, body, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		collection, id, body, now, now,
	); err != nil {
		return nil, fmt.Errorf("inserting into %s: %w", collection, err)
	}

	stored := doc.withoutID()
	stored[FieldID] = id
	return stored, nil
}

// Replace overwrites the body of the document with id.
func (s *SQLStore) Replace(ctx context.Context, collection, id string, doc Document) (Document, error) {
	body, err := encodeBody(doc)
	if err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE documents SET body = ?, updated_at = ? WHERE collection = ? AND id = ?`,
		body, timestamp(), collection, id,
	)
	if err != nil {
		return nil, fmt.Errorf("replacing %s %s: %w", collection, id, err)
	}
	if err := requireAffected(result); err != nil {
		return nil, err
	}

	stored := doc.withoutID()
	stored[FieldID] = id
	return stored, nil
}

// DeleteByID returns ErrNotFound when id is absent.
func (s *SQLStore) DeleteByID(ctx context.Context, collection, id string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	)
	if err != nil {
		return fmt.Errorf("deleting %s %s: %w", collection, id, err)
	}
	return requireAffected(result)
}

// HealthCheck delegates to the database.
func (s *SQLStore) HealthCheck(ctx context.Context) error {
	return s.db.HealthCheck(ctx)
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

func requireAffected(result rowsAffecter) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func encodeBody(doc Document) (string, error) {
	b, err := json.Marshal(doc.withoutID())
	if err != nil {
		return "", fmt.Errorf("encoding document body: %w", err)
	}
	return string(b), nil
}

func decodeBody(id, body string) (Document, error) {
	var doc Document
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, fmt.Errorf("decoding document %s: %w", id, err)
	}
	if doc == nil {
		doc = Document{}
	}
	doc[FieldID] = id
	return doc, nil
}

// sortableTime is fixed width so created_at orders lexically.
const sortableTime = "2006-01-02T15:04:05.000000000Z"

func timestamp() string {
	return time.Now().UTC().Format(sortableTime)
}
