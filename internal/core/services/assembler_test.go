package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

func seedChunks(t *testing.T, store *memory.DocumentStore, chunks []domain.Chunk) {
	t.Helper()
	require.NoError(t, store.SaveChunks(context.Background(), chunks))
}

func results(ids ...string) []domain.RetrievalResult {
	out := make([]domain.RetrievalResult, len(ids))
	for i, id := range ids {
		out[i] = domain.RetrievalResult{ChunkID: id, Score: 0.9 - float64(i)*0.1, Rank: i}
	}
	return out
}

func TestAssemble_RankOrderWithinBudget(t *testing.T) {
	store := memory.NewDocumentStore()
	seedChunks(t, store, []domain.Chunk{
		{ID: "d:0", DocumentID: "d", Source: "a.pdf", Text: "first chunk", StartOffset: 0, EndOffset: 11, PageStart: 1},
		{ID: "d:1", DocumentID: "d", Source: "a.pdf", Text: "second chunk", StartOffset: 100, EndOffset: 112, PageStart: 2},
	})
	a := NewContextAssembler(store, WithBudget(100))

	assembled, err := a.Assemble(context.Background(), results("d:0", "d:1"), 0)

	require.NoError(t, err)
	require.Len(t, assembled.Chunks, 2)
	assert.Equal(t, "d:0", assembled.Chunks[0].Chunk.ID)
	assert.Equal(t, "d:1", assembled.Chunks[1].Chunk.ID)
	assert.Equal(t, 11+12, assembled.Size)

	require.Len(t, assembled.Citations, 2)
	assert.Equal(t, domain.Citation{ChunkID: "d:0", Document: "a.pdf", Page: 1}, assembled.Citations[0])
	assert.Equal(t, domain.Citation{ChunkID: "d:1", Document: "a.pdf", Page: 2}, assembled.Citations[1])
}

func TestAssemble_OverflowingChunkSkippedNotTruncated(t *testing.T) {
	store := memory.NewDocumentStore()
	seedChunks(t, store, []domain.Chunk{
		{ID: "d:0", DocumentID: "d", Source: "a.pdf", Text: "0123456789", StartOffset: 0, EndOffset: 10, PageStart: 1},
		{ID: "d:1", DocumentID: "d", Source: "a.pdf", Text: "this one is far too large for the budget", StartOffset: 100, EndOffset: 140, PageStart: 1},
		{ID: "d:2", DocumentID: "d", Source: "a.pdf", Text: "small", StartOffset: 200, EndOffset: 205, PageStart: 2},
	})
	a := NewContextAssembler(store, WithBudget(20))

	assembled, err := a.Assemble(context.Background(), results("d:0", "d:1", "d:2"), 0)

	require.NoError(t, err)
	// The oversized middle chunk is skipped whole; the later small one still fits
	require.Len(t, assembled.Chunks, 2)
	assert.Equal(t, "d:0", assembled.Chunks[0].Chunk.ID)
	assert.Equal(t, "d:2", assembled.Chunks[1].Chunk.ID)
	assert.Equal(t, 15, assembled.Size)
}

func TestAssemble_MissingChunkSkipped(t *testing.T) {
	store := memory.NewDocumentStore()
	seedChunks(t, store, []domain.Chunk{
		{ID: "d:0", DocumentID: "d", Source: "a.pdf", Text: "present", StartOffset: 0, EndOffset: 7, PageStart: 1},
	})
	a := NewContextAssembler(store)

	assembled, err := a.Assemble(context.Background(), results("gone:0", "d:0"), 0)

	require.NoError(t, err)
	require.Len(t, assembled.Chunks, 1)
	assert.Equal(t, "d:0", assembled.Chunks[0].Chunk.ID)
}

func TestAssemble_DeduplicatesOverlappingChunks(t *testing.T) {
	store := memory.NewDocumentStore()
	seedChunks(t, store, []domain.Chunk{
		{ID: "d:0", DocumentID: "d", Source: "a.pdf", Text: "abcdefghij", StartOffset: 0, EndOffset: 10, PageStart: 1},
		// 80% of this chunk lies inside d:0
		{ID: "d:1", DocumentID: "d", Source: "a.pdf", Text: "cdefghijkl", StartOffset: 2, EndOffset: 12, PageStart: 1},
		// Same offsets but a different document: not a duplicate
		{ID: "e:0", DocumentID: "e", Source: "b.pdf", Text: "abcdefghij", StartOffset: 0, EndOffset: 10, PageStart: 1},
	})
	a := NewContextAssembler(store, WithDedupOverlap(0.5))

	assembled, err := a.Assemble(context.Background(), results("d:0", "d:1", "e:0"), 0)

	require.NoError(t, err)
	require.Len(t, assembled.Chunks, 2)
	assert.Equal(t, "d:0", assembled.Chunks[0].Chunk.ID)
	assert.Equal(t, "e:0", assembled.Chunks[1].Chunk.ID)
}

func TestAssemble_EmptyResults(t *testing.T) {
	a := NewContextAssembler(memory.NewDocumentStore())

	assembled, err := a.Assemble(context.Background(), nil, 0)

	require.NoError(t, err)
	assert.True(t, assembled.Empty())
	assert.Zero(t, assembled.Size)
}

func TestAssemble_ExplicitBudgetOverridesDefault(t *testing.T) {
	store := memory.NewDocumentStore()
	seedChunks(t, store, []domain.Chunk{
		{ID: "d:0", DocumentID: "d", Source: "a.pdf", Text: "0123456789", StartOffset: 0, EndOffset: 10, PageStart: 1},
		{ID: "d:1", DocumentID: "d", Source: "a.pdf", Text: "0123456789", StartOffset: 50, EndOffset: 60, PageStart: 1},
	})
	a := NewContextAssembler(store, WithBudget(1000))

	assembled, err := a.Assemble(context.Background(), results("d:0", "d:1"), 10)

	require.NoError(t, err)
	require.Len(t, assembled.Chunks, 1)
}
