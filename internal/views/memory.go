package views

import (
	"context"
	"sync"
)

// MemorySource implements Source over in-memory collections. It backs the
// view-builder tests and local development without a database.
type MemorySource struct {
	mu          sync.RWMutex
	collections map[string][]Document
}

// NewMemorySource returns an empty in-memory source.
func NewMemorySource() *MemorySource {
	return &MemorySource{collections: make(map[string][]Document)}
}

// Insert appends a document to the named collection.
func (s *MemorySource) Insert(collection string, doc Document) {
	s.mu.Lock()
	s.collections[collection] = append(s.collections[collection], doc)
	s.mu.Unlock()
}

// Remove deletes every document of the collection matching the predicate and
// reports how many were removed.
func (s *MemorySource) Remove(collection string, pred func(Document) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.collections[collection][:0:0]
	removed := 0
	for _, doc := range s.collections[collection] {
		if pred(doc) {
			removed++
			continue
		}
		kept = append(kept, doc)
	}
	s.collections[collection] = kept
	return removed
}

// Scan returns copies of every document in the collection.
func (s *MemorySource) Scan(_ context.Context, collection string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := s.collections[collection]
	out := make([]Document, 0, len(docs))
	for _, doc := range docs {
		out = append(out, cloneDocument(doc))
	}
	return out, nil
}

// Find returns copies of the documents whose field equals any of the values.
func (s *MemorySource) Find(_ context.Context, collection, field string, values []any) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Document
	for _, doc := range s.collections[collection] {
		for _, val := range values {
			if equalValues(doc[field], val) {
				out = append(out, cloneDocument(doc))
				break
			}
		}
	}
	return out, nil
}

// cloneDocument copies one level deep so pipeline stages never mutate the
// stored collections.
func cloneDocument(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		if refs, ok := v.([]string); ok {
			copied := make([]string, len(refs))
			copy(copied, refs)
			out[k] = copied
			continue
		}
		out[k] = v
	}
	return out
}
