package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestDocumentStore_RoundTrip(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	doc := &domain.Document{ID: "doc-1", Source: "a.pdf"}
	require.NoError(t, store.SaveDocument(ctx, doc))

	chunks := []domain.Chunk{
		{ID: "doc-1:1", DocumentID: "doc-1", Text: "second", StartOffset: 50, EndOffset: 100},
		{ID: "doc-1:0", DocumentID: "doc-1", Text: "first", StartOffset: 0, EndOffset: 60},
	}
	require.NoError(t, store.SaveChunks(ctx, chunks))

	got, err := store.GetChunk(ctx, "doc-1:0")
	require.NoError(t, err)
	assert.Equal(t, "first", got.Text)

	ordered, err := store.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, ordered, 2)
	assert.Equal(t, "first", ordered[0].Text)

	_, err = store.GetChunk(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_Delete(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "doc-1", Source: "a.pdf"}))
	require.NoError(t, store.SaveChunks(ctx, []domain.Chunk{
		{ID: "doc-1:0", DocumentID: "doc-1", Text: "text"},
	}))

	require.NoError(t, store.DeleteDocument(ctx, "doc-1"))

	_, err := store.GetDocument(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.GetChunk(ctx, "doc-1:0")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_Manifest(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	fp, err := store.GetFingerprint(ctx, "a.pdf")
	require.NoError(t, err)
	assert.Empty(t, fp)

	require.NoError(t, store.PutFingerprint(ctx, "a.pdf", "fp-1", "doc-1"))

	fp, err = store.GetFingerprint(ctx, "a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "fp-1", fp)

	id, err := store.DocumentID(ctx, "a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", id)
}
