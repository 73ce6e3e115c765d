// Package docstore abstracts the document database behind a narrow
// collection interface: get, upsert, delete, and fetch-all ordered by a
// field. The backends deliberately do not offer filtered or offset queries;
// callers that need them scan in memory.
package docstore

import (
	"context"
	"sort"
)

// Document is one stored record with its field-level data untyped.
type Document struct {
	ID     string
	Fields map[string]any
}

// Stores are interface-driven to keep the domain logic testable and to allow
// swapping in-memory, Redis, or Postgres persistence without rewiring
// business code.
type Store interface {
	// Get returns the document or sentinel.ErrNotFound.
	Get(ctx context.Context, collection, id string) (*Document, error)
	// Set upserts the document. An empty id requests a store-generated
	// identifier; the assigned id is returned either way.
	Set(ctx context.Context, collection, id string, fields map[string]any) (string, error)
	// Delete removes the document or returns sentinel.ErrNotFound.
	Delete(ctx context.Context, collection, id string) error
	// QueryAll returns every document in the collection ordered by the given
	// numeric field. Documents missing the field sort last; ties break on
	// document id so the order is deterministic per fetch.
	QueryAll(ctx context.Context, collection, orderBy string, descending bool) ([]*Document, error)
}

// sortDocuments orders docs by the numeric orderBy field with an id
// tie-break. Shared by backends that sort client-side.
func sortDocuments(docs []*Document, orderBy string, descending bool) {
	sort.SliceStable(docs, func(i, j int) bool {
		vi, oki := numericField(docs[i].Fields, orderBy)
		vj, okj := numericField(docs[j].Fields, orderBy)
		switch {
		case oki && okj && vi != vj:
			if descending {
				return vi > vj
			}
			return vi < vj
		case oki != okj:
			// Documents without the field sort after those with it.
			return oki
		default:
			return docs[i].ID < docs[j].ID
		}
	})
}

func numericField(fields map[string]any, key string) (float64, bool) {
	switch v := fields[key].(type) {
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}
