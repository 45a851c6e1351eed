package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// IngestResult reports what an ingestion produced.
type IngestResult struct {
	// DocumentID is the ingested document.
	DocumentID string

	// ChunksCreated is the number of chunks created and indexed.
	ChunksCreated int

	// ChunkIDs are the created chunk identifiers in sequence order.
	ChunkIDs []string

	// Skipped reports that the source content was already ingested
	// (fingerprint match) and nothing was re-embedded.
	Skipped bool
}

// IngestService runs the ingestion pipeline: chunk, embed, store, index.
type IngestService interface {
	// Ingest processes one document of extracted page text.
	Ingest(ctx context.Context, doc domain.Document) (*IngestResult, error)

	// IngestText is a convenience wrapper for single-page sources.
	IngestText(ctx context.Context, source, text string) (*IngestResult, error)

	// Remove deletes a document, its chunks and its index entries.
	Remove(ctx context.Context, documentID string) error
}
