package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/baladhub/balad-backend/pkg/docquery"
)

// ErrNotFound reports a document or user lookup that matched nothing.
var ErrNotFound = docquery.ErrNotFound

// DocumentStore persists schemaless entity documents in the shared JSONB
// table. Reads go through docquery builders; writes are plain statements.
type DocumentStore struct {
	db *sql.DB
}

// NewDocumentStore wraps an open database pool.
func NewDocumentStore(db *sql.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// Insert stores a new document in the collection, assigning an id, the
// initial revision, and timestamps. The returned document is the stored one
// with internal fields hidden.
func (s *DocumentStore) Insert(ctx context.Context, collection string, doc docquery.Document) (docquery.Document, error) {
	if doc == nil {
		doc = docquery.Document{}
	}
	id, _ := doc["id"].(string)
	if id == "" {
		id = uuid.NewString()
		doc["id"] = id
	}
	now := time.Now().UTC().Format(time.RFC3339)
	doc["createdAt"] = now
	doc["updatedAt"] = now
	doc[docquery.VersionKey] = 1

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding %s document: %w", collection, err)
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO documents (collection, id, doc, created_at, updated_at) VALUES ($1, $2, $3, NOW(), NOW())",
		collection, id, raw,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting %s document: %w", collection, err)
	}

	stored := docquery.Document{}
	for k, v := range doc {
		stored[k] = v
	}
	delete(stored, docquery.VersionKey)
	return stored, nil
}

// Update replaces the stored document body and refreshes its timestamp.
// Returns ErrNotFound when the id does not exist in the collection.
func (s *DocumentStore) Update(ctx context.Context, collection, id string, doc docquery.Document) error {
	if doc == nil {
		doc = docquery.Document{}
	}
	doc["id"] = id
	doc["updatedAt"] = time.Now().UTC().Format(time.RFC3339)

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding %s document: %w", collection, err)
	}
	// The revision counter lives server-side so callers can write documents
	// fetched through the default projection, which hides it.
	res, err := s.db.ExecContext(ctx,
		`UPDATE documents
		SET doc = $1::jsonb || jsonb_build_object('_version', COALESCE((doc->>'_version')::int, 0) + 1),
			updated_at = NOW()
		WHERE collection = $2 AND id = $3`,
		raw, collection, id,
	)
	if err != nil {
		return fmt.Errorf("updating %s document %s: %w", collection, id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating %s document %s: %w", collection, id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the document. Returns ErrNotFound when nothing matched.
func (s *DocumentStore) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM documents WHERE collection = $1 AND id = $2",
		collection, id,
	)
	if err != nil {
		return fmt.Errorf("deleting %s document %s: %w", collection, id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting %s document %s: %w", collection, id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetMany fetches documents by id from one collection, keyed by id. Used to
// resolve references when a list response embeds related documents.
func (s *DocumentStore) GetMany(ctx context.Context, collection string, ids []string) (map[string]docquery.Document, error) {
	out := make(map[string]docquery.Document, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT doc FROM documents WHERE collection = $1 AND id = ANY($2)",
		collection, pq.Array(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("fetching %s documents: %w", collection, err)
	}
	defer rows.Close()

	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning %s document: %w", collection, err)
		}
		doc := docquery.Document{}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decoding %s document: %w", collection, err)
		}
		delete(doc, docquery.VersionKey)
		if id, ok := doc["id"].(string); ok {
			out[id] = doc
		}
	}
	return out, rows.Err()
}

// Find executes a prepared list query against the pool.
func (s *DocumentStore) Find(ctx context.Context, b *docquery.Builder) ([]docquery.Document, error) {
	return b.Find(ctx, s.db)
}

// Count executes a prepared count query against the pool.
func (s *DocumentStore) Count(ctx context.Context, b *docquery.Builder) (int, error) {
	return b.Count(ctx, s.db)
}

// FindByID fetches one document through a prepared builder.
func (s *DocumentStore) FindByID(ctx context.Context, b *docquery.Builder, id string) (docquery.Document, error) {
	return b.FindOne(ctx, s.db, id)
}
