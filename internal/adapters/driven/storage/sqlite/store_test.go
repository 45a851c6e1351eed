package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})

	return store
}

func testDocument(id, source string) *domain.Document {
	return &domain.Document{
		ID:        id,
		Source:    source,
		Pages:     []domain.Page{{Number: 1, Text: "page one"}},
		CreatedAt: time.Now().UTC(),
	}
}

func testChunk(docID string, seq int, text string) domain.Chunk {
	return domain.Chunk{
		ID:          domain.ChunkID(docID, seq),
		DocumentID:  docID,
		Source:      "policy.pdf",
		Text:        text,
		StartOffset: seq * 100,
		EndOffset:   seq*100 + len(text),
		PageStart:   1,
		PageEnd:     1,
		Embedding:   []float32{0.1, 0.2, 0.3},
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	doc := testDocument("doc-1", "policy.pdf")
	require.NoError(t, docs.SaveDocument(ctx, doc))

	got, err := docs.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", got.ID)
	assert.Equal(t, "policy.pdf", got.Source)
}

func TestGetDocument_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.DocumentStore().GetDocument(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestChunkRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	require.NoError(t, docs.SaveDocument(ctx, testDocument("doc-1", "policy.pdf")))

	chunks := []domain.Chunk{
		testChunk("doc-1", 0, "first chunk text"),
		testChunk("doc-1", 1, "second chunk text"),
	}
	require.NoError(t, docs.SaveChunks(ctx, chunks))

	got, err := docs.GetChunk(ctx, domain.ChunkID("doc-1", 1))
	require.NoError(t, err)
	assert.Equal(t, "second chunk text", got.Text)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, got.Embedding)
	assert.Equal(t, 1, got.PageStart)

	all, err := docs.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "first chunk text", all[0].Text)
}

func TestSaveChunks_ReplacesExisting(t *testing.T) {
	store := setupTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	require.NoError(t, docs.SaveDocument(ctx, testDocument("doc-1", "policy.pdf")))

	chunk := testChunk("doc-1", 0, "original")
	require.NoError(t, docs.SaveChunks(ctx, []domain.Chunk{chunk}))

	chunk.Text = "replaced"
	require.NoError(t, docs.SaveChunks(ctx, []domain.Chunk{chunk}))

	got, err := docs.GetChunk(ctx, chunk.ID)
	require.NoError(t, err)
	assert.Equal(t, "replaced", got.Text)

	all, err := docs.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDeleteDocument_CascadesToChunks(t *testing.T) {
	store := setupTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	require.NoError(t, docs.SaveDocument(ctx, testDocument("doc-1", "policy.pdf")))
	require.NoError(t, docs.SaveChunks(ctx, []domain.Chunk{testChunk("doc-1", 0, "text")}))

	require.NoError(t, docs.DeleteDocument(ctx, "doc-1"))

	_, err := docs.GetChunk(ctx, domain.ChunkID("doc-1", 0))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListDocuments(t *testing.T) {
	store := setupTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	require.NoError(t, docs.SaveDocument(ctx, testDocument("doc-1", "a.pdf")))
	require.NoError(t, docs.SaveDocument(ctx, testDocument("doc-2", "b.pdf")))

	all, err := docs.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestManifest(t *testing.T) {
	store := setupTestStore(t)
	manifest := store.ManifestStore()
	ctx := context.Background()

	fp, err := manifest.GetFingerprint(ctx, "policy.pdf")
	require.NoError(t, err)
	assert.Empty(t, fp)

	require.NoError(t, manifest.PutFingerprint(ctx, "policy.pdf", "abc123", "doc-1"))

	fp, err = manifest.GetFingerprint(ctx, "policy.pdf")
	require.NoError(t, err)
	assert.Equal(t, "abc123", fp)

	id, err := manifest.DocumentID(ctx, "policy.pdf")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", id)

	// Re-ingestion updates the record in place.
	require.NoError(t, manifest.PutFingerprint(ctx, "policy.pdf", "def456", "doc-2"))
	fp, err = manifest.GetFingerprint(ctx, "policy.pdf")
	require.NoError(t, err)
	assert.Equal(t, "def456", fp)
}
