package docstore

import (
	"context"
	"maps"
	"sync"

	"github.com/google/uuid"

	"intake/pkg/platform/sentinel"
)

// MemoryStore is the in-process Store used by tests and local development.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]any
}

// NewMemoryStore constructs an empty in-memory document store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]map[string]any),
	}
}

func (s *MemoryStore) Get(_ context.Context, collection, id string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fields, ok := s.collections[collection][id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &Document{ID: id, Fields: copyFields(fields)}, nil
}

func (s *MemoryStore) Set(_ context.Context, collection, id string, fields map[string]any) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	docs, ok := s.collections[collection]
	if !ok {
		docs = make(map[string]map[string]any)
		s.collections[collection] = docs
	}
	docs[id] = copyFields(fields)
	return id, nil
}

func (s *MemoryStore) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := s.collections[collection]
	if _, ok := docs[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(docs, id)
	return nil
}

func (s *MemoryStore) QueryAll(_ context.Context, collection, orderBy string, descending bool) ([]*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]*Document, 0, len(s.collections[collection]))
	for id, fields := range s.collections[collection] {
		docs = append(docs, &Document{ID: id, Fields: copyFields(fields)})
	}
	sortDocuments(docs, orderBy, descending)
	return docs, nil
}

// copyFields shields stored data from caller mutation. Nested values are
// copied one level deep, which covers the list-valued fields this service
// stores.
func copyFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	maps.Copy(out, fields)
	for k, v := range out {
		if list, ok := v.([]any); ok {
			out[k] = append([]any(nil), list...)
		}
		if list, ok := v.([]string); ok {
			out[k] = append([]string(nil), list...)
		}
	}
	return out
}
