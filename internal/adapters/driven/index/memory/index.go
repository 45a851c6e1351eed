// Package memory provides an in-process vector index using brute-force
// cosine similarity. It backs tests and ephemeral runs; the sqlite index
// adds persistence on top of the same search behaviour.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index stores normalised chunk vectors in insertion order.
// Concurrent readers are supported; writes take the exclusive lock, so a
// bulk insert is a single-writer operation and readers never observe a
// partially applied batch.
type Index struct {
	mu   sync.RWMutex
	dim  int
	rows []row
	byID map[string]int
}

type row struct {
	entry domain.IndexEntry
}

// New creates an index with a fixed vector dimension.
func New(dimensions int) (*Index, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("%w: index dimensions must be positive, got %d",
			domain.ErrInvalidConfig, dimensions)
	}
	return &Index{
		dim:  dimensions,
		byID: make(map[string]int),
	}, nil
}

// Insert adds entries, replacing any prior entry with the same chunk ID.
// The whole batch is validated before anything is applied.
func (idx *Index) Insert(_ context.Context, entries []domain.IndexEntry) error {
	for _, e := range entries {
		if len(e.Vector) != idx.dim {
			return fmt.Errorf("%w: chunk %s has dimension %d, index has %d",
				domain.ErrDimensionMismatch, e.ChunkID, len(e.Vector), idx.dim)
		}
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	for _, e := range entries {
		e.Vector = Normalise(e.Vector)
		if pos, ok := idx.byID[e.ChunkID]; ok {
			// Replacement keeps the original insertion position so
			// re-inserting identical content leaves search results,
			// including tie order, unchanged.
			idx.rows[pos] = row{entry: e}
			continue
		}
		idx.byID[e.ChunkID] = len(idx.rows)
		idx.rows = append(idx.rows, row{entry: e})
	}

	return nil
}

// Remove deletes entries by chunk ID. Absent IDs are ignored.
func (idx *Index) Remove(_ context.Context, chunkIDs []string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	drop := make(map[string]bool, len(chunkIDs))
	for _, id := range chunkIDs {
		drop[id] = true
	}

	kept := idx.rows[:0]
	for _, r := range idx.rows {
		if !drop[r.entry.ChunkID] {
			kept = append(kept, r)
		}
	}
	idx.rows = kept

	idx.byID = make(map[string]int, len(idx.rows))
	for i, r := range idx.rows {
		idx.byID[r.entry.ChunkID] = i
	}

	return nil
}

// Search returns up to k results with score >= minScore, score-descending,
// ties stable by insertion order.
func (idx *Index) Search(_ context.Context, query []float32, k int, minScore float64) ([]domain.RetrievalResult, error) {
	if len(query) != idx.dim {
		return nil, fmt.Errorf("%w: query has dimension %d, index has %d",
			domain.ErrDimensionMismatch, len(query), idx.dim)
	}
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be at least 1, got %d", domain.ErrInvalidConfig, k)
	}

	q := Normalise(query)

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	results := make([]domain.RetrievalResult, 0, len(idx.rows))
	for _, r := range idx.rows {
		score := dot(r.entry.Vector, q)
		if score < minScore {
			continue
		}
		results = append(results, domain.RetrievalResult{
			ChunkID: r.entry.ChunkID,
			Score:   score,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > k {
		results = results[:k]
	}
	for i := range results {
		results[i].Rank = i
	}

	return results, nil
}

// Meta returns the stored metadata for a chunk ID.
func (idx *Index) Meta(chunkID string) (domain.ChunkMeta, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	pos, ok := idx.byID[chunkID]
	if !ok {
		return domain.ChunkMeta{}, false
	}
	return idx.rows[pos].entry.Meta, true
}

// Len returns the number of entries.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.rows)
}

// Dimensions returns the fixed vector dimension.
func (idx *Index) Dimensions() int {
	return idx.dim
}

// Close releases resources. The memory index has none.
func (idx *Index) Close() error {
	return nil
}

// Normalise returns the L2-normalised copy of a vector. A zero vector is
// returned unchanged.
func Normalise(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}

	norm := math.Sqrt(sum)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
