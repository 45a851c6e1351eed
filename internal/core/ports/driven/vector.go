package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// VectorIndex stores chunk vectors and serves nearest-neighbour retrieval
// by cosine similarity. The dimension is fixed per index instance; every
// entry must match it.
//
// Concurrency: implementations support concurrent readers with a
// single-writer discipline during bulk insert. Readers never observe a
// partially written index.
type VectorIndex interface {
	// Insert adds entries to the index. Idempotent per chunk ID:
	// re-inserting an ID replaces the prior vector and metadata.
	// Fails with domain.ErrDimensionMismatch if any vector's dimension
	// differs from the index dimension; no entry of the batch is applied.
	Insert(ctx context.Context, entries []domain.IndexEntry) error

	// Remove deletes entries by chunk ID. Absent IDs are silently ignored.
	Remove(ctx context.Context, chunkIDs []string) error

	// Search returns up to k results with score >= minScore, sorted by
	// descending score (ties stable by insertion order). An empty slice,
	// not an error, when nothing qualifies.
	Search(ctx context.Context, query []float32, k int, minScore float64) ([]domain.RetrievalResult, error)

	// Len returns the number of entries in the index.
	Len() int

	// Dimensions returns the fixed vector dimension.
	Dimensions() int

	// Close flushes any persistent state and releases resources.
	Close() error
}
