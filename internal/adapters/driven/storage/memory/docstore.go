// Package memory provides in-memory store implementations for testing
// and ephemeral runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interfaces.
var (
	_ driven.DocumentStore = (*DocumentStore)(nil)
	_ driven.ManifestStore = (*DocumentStore)(nil)
)

type manifestEntry struct {
	fingerprint string
	documentID  string
}

// DocumentStore is an in-memory implementation of driven.DocumentStore
// and driven.ManifestStore.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	chunks    map[string]domain.Chunk
	manifest  map[string]manifestEntry
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
		chunks:    make(map[string]domain.Chunk),
		manifest:  make(map[string]manifestEntry),
	}
}

// SaveDocument stores or updates a document.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = *doc
	return nil
}

// SaveChunks stores chunks, replacing prior chunks with the same IDs.
func (s *DocumentStore) SaveChunks(_ context.Context, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range chunks {
		s.chunks[c.ID] = c
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// GetChunk retrieves a single chunk by ID.
func (s *DocumentStore) GetChunk(_ context.Context, id string) (*domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunk, ok := s.chunks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &chunk, nil
}

// GetChunks retrieves all chunks for a document in offset order.
func (s *DocumentStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var chunks []domain.Chunk
	for _, c := range s.chunks {
		if c.DocumentID == documentID {
			chunks = append(chunks, c)
		}
	}
	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].StartOffset < chunks[j].StartOffset
	})
	return chunks, nil
}

// DeleteDocument removes a document and its chunks.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.documents, id)
	for cid, c := range s.chunks {
		if c.DocumentID == id {
			delete(s.chunks, cid)
		}
	}
	return nil
}

// ListDocuments returns all documents.
func (s *DocumentStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]domain.Document, 0, len(s.documents))
	for _, d := range s.documents {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].ID < docs[j].ID
	})
	return docs, nil
}

// GetFingerprint returns the stored fingerprint for a source.
func (s *DocumentStore) GetFingerprint(_ context.Context, source string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.manifest[source].fingerprint, nil
}

// PutFingerprint records the fingerprint and document ID for a source.
func (s *DocumentStore) PutFingerprint(_ context.Context, source, fingerprint, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manifest[source] = manifestEntry{fingerprint: fingerprint, documentID: documentID}
	return nil
}

// DocumentID returns the document currently ingested for a source.
func (s *DocumentStore) DocumentID(_ context.Context, source string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.manifest[source].documentID, nil
}

// Close releases resources. The memory store has none.
func (s *DocumentStore) Close() error {
	return nil
}
