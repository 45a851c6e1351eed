package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// DocumentStore persists documents and their chunks.
// Chunk text is fetched from here at query time; the vector index only
// holds vectors and citation metadata.
type DocumentStore interface {
	// SaveDocument stores a document's metadata (pages are not persisted;
	// chunks carry the retrievable text).
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// SaveChunks stores chunks, replacing any prior chunks with the same IDs.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// GetDocument retrieves a document by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetChunk retrieves a single chunk by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// GetChunks retrieves all chunks for a document in sequence order.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// DeleteDocument removes a document and its chunks.
	DeleteDocument(ctx context.Context, id string) error

	// ListDocuments returns all documents in the corpus.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// Close releases resources.
	Close() error
}

// ManifestStore records content fingerprints of ingested sources so
// unchanged content is not re-embedded on re-ingestion.
type ManifestStore interface {
	// GetFingerprint returns the stored fingerprint for a source,
	// or "" when the source has never been ingested.
	GetFingerprint(ctx context.Context, source string) (string, error)

	// PutFingerprint records the fingerprint and document ID for a source.
	PutFingerprint(ctx context.Context, source, fingerprint, documentID string) error

	// DocumentID returns the document currently ingested for a source,
	// or "" when unknown.
	DocumentID(ctx context.Context, source string) (string, error)
}
