package services

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Default assembly parameters.
const (
	DefaultContextBudget = 3000
	DefaultDedupOverlap  = 0.5
)

// ContextAssembler turns ranked retrieval results into a budgeted context.
// It walks results in rank order, hydrates chunk text from the document
// store, drops near-duplicate chunks, and stops including once the rune
// budget would be exceeded. Overflowing chunks are skipped whole, never
// truncated; later smaller chunks may still fit.
type ContextAssembler struct {
	docStore     driven.DocumentStore
	budget       int
	dedupOverlap float64
}

// AssemblerOption configures a ContextAssembler.
type AssemblerOption func(*ContextAssembler)

// WithBudget sets the context size limit in runes.
func WithBudget(budget int) AssemblerOption {
	return func(a *ContextAssembler) {
		a.budget = budget
	}
}

// WithDedupOverlap sets the offset-overlap fraction above which two chunks
// of the same document are considered duplicates.
func WithDedupOverlap(fraction float64) AssemblerOption {
	return func(a *ContextAssembler) {
		a.dedupOverlap = fraction
	}
}

// NewContextAssembler creates a context assembler backed by the given store.
func NewContextAssembler(docStore driven.DocumentStore, opts ...AssemblerOption) *ContextAssembler {
	a := &ContextAssembler{
		docStore:     docStore,
		budget:       DefaultContextBudget,
		dedupOverlap: DefaultDedupOverlap,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble builds the context for one query from ranked results.
// budget overrides the configured default when > 0.
//
// A chunk that cannot be fetched is skipped with a log line; retrieval
// hits pointing at deleted chunks must not fail the whole query.
func (a *ContextAssembler) Assemble(
	ctx context.Context, results []domain.RetrievalResult, budget int,
) (domain.AssembledContext, error) {
	if budget <= 0 {
		budget = a.budget
	}

	assembled := domain.AssembledContext{
		Chunks:    []domain.ContextChunk{},
		Citations: []domain.Citation{},
	}

	for _, res := range results {
		if err := ctx.Err(); err != nil {
			return domain.AssembledContext{}, err
		}

		chunk, err := a.docStore.GetChunk(ctx, res.ChunkID)
		if err != nil {
			logger.Debug("Skipping chunk %s: %v", res.ChunkID, err)
			continue
		}

		if a.isDuplicate(assembled.Chunks, *chunk) {
			logger.Debug("Skipping near-duplicate chunk %s", chunk.ID)
			continue
		}

		size := chunk.Len()
		if assembled.Size+size > budget {
			// Skip, don't truncate. A later, smaller chunk may still fit.
			logger.Debug("Chunk %s (%d runes) over budget, skipping", chunk.ID, size)
			continue
		}

		assembled.Chunks = append(assembled.Chunks, domain.ContextChunk{
			Chunk: *chunk,
			Score: res.Score,
		})
		assembled.Citations = append(assembled.Citations, domain.Citation{
			ChunkID:  chunk.ID,
			Document: chunk.Source,
			Page:     chunk.PageStart,
		})
		assembled.Size += size
	}

	return assembled, nil
}

// isDuplicate reports whether candidate overlaps an already included chunk
// of the same document by more than the configured fraction. Included
// chunks are higher ranked, so the duplicate loses.
func (a *ContextAssembler) isDuplicate(included []domain.ContextChunk, candidate domain.Chunk) bool {
	if a.dedupOverlap <= 0 {
		return false
	}

	candLen := candidate.EndOffset - candidate.StartOffset
	if candLen <= 0 {
		return false
	}

	for _, cc := range included {
		if cc.Chunk.DocumentID != candidate.DocumentID {
			continue
		}

		overlap := min(cc.Chunk.EndOffset, candidate.EndOffset) - max(cc.Chunk.StartOffset, candidate.StartOffset)
		if overlap <= 0 {
			continue
		}

		if float64(overlap)/float64(candLen) > a.dedupOverlap {
			return true
		}
	}

	return false
}
