package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func singlePageDoc(id, source, text string) domain.Document {
	return domain.Document{
		ID:     id,
		Source: source,
		Pages:  []domain.Page{{Number: 1, Text: text}},
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"zero size", []Option{WithSize(0)}},
		{"negative size", []Option{WithSize(-10)}},
		{"overlap equals size", []Option{WithSize(100), WithOverlap(100)}},
		{"overlap exceeds size", []Option{WithSize(100), WithOverlap(150)}},
		{"negative overlap", []Option{WithOverlap(-1)}},
		{"negative window", []Option{WithBreakWindow(-5)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts...)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidConfig)
		})
	}
}

func TestSplit_FixedOffsets(t *testing.T) {
	// 1000 chars, size 300, overlap 50, no breakpoints in the text:
	// offsets must be [0,300) [250,550) [500,800) [750,1000).
	c, err := New(WithSize(300), WithOverlap(50))
	require.NoError(t, err)

	doc := singlePageDoc("doc-1", "policy.pdf", strings.Repeat("a", 1000))

	chunks, err := c.Split(doc)
	require.NoError(t, err)
	require.Len(t, chunks, 4)

	wantOffsets := [][2]int{{0, 300}, {250, 550}, {500, 800}, {750, 1000}}
	for i, want := range wantOffsets {
		assert.Equal(t, want[0], chunks[i].StartOffset, "chunk %d start", i)
		assert.Equal(t, want[1], chunks[i].EndOffset, "chunk %d end", i)
	}
}

func TestSplit_CoverageAndOverlapInvariant(t *testing.T) {
	c, err := New(WithSize(120), WithOverlap(30), WithBreakWindow(20))
	require.NoError(t, err)

	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 40)
	doc := singlePageDoc("doc-2", "fox.pdf", text)

	chunks, err := c.Split(doc)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	runes := []rune(doc.Text())

	assert.Equal(t, 0, chunks[0].StartOffset)
	assert.Equal(t, len(runes), chunks[len(chunks)-1].EndOffset)

	for i, ch := range chunks {
		assert.LessOrEqual(t, ch.Len(), 120, "chunk %d exceeds max size", i)
		assert.Equal(t, string(runes[ch.StartOffset:ch.EndOffset]), ch.Text, "chunk %d text mismatch", i)
		assert.Equal(t, domain.ChunkID("doc-2", i), ch.ID)

		if i > 0 {
			// Exact overlap between consecutive chunks.
			assert.Equal(t, chunks[i-1].EndOffset-30, ch.StartOffset, "chunk %d overlap", i)
		}
	}
}

func TestSplit_PrefersSentenceBoundary(t *testing.T) {
	c, err := New(WithSize(50), WithOverlap(10), WithBreakWindow(15))
	require.NoError(t, err)

	// A sentence end falls inside the break window before the hard cut at 50.
	text := "This sentence ends at offset forty-four here. More text follows after the boundary point."
	doc := singlePageDoc("doc-3", "s.pdf", text)

	chunks, err := c.Split(doc)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(chunks), 2)

	assert.True(t, strings.HasSuffix(chunks[0].Text, "here."),
		"first chunk should end just after the sentence, got %q", chunks[0].Text)
	assert.Equal(t, 45, chunks[0].EndOffset)
	assert.Equal(t, chunks[0].EndOffset-10, chunks[1].StartOffset)
}

func TestSplit_ShortDocumentSingleChunk(t *testing.T) {
	c, err := New(WithSize(300), WithOverlap(50))
	require.NoError(t, err)

	doc := singlePageDoc("doc-4", "short.pdf", "tiny document")

	chunks, err := c.Split(doc)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "tiny document", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].StartOffset)
	assert.Equal(t, 13, chunks[0].EndOffset)
}

func TestSplit_EmptyDocument(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	chunks, err := c.Split(domain.Document{ID: "doc-5", Source: "empty.pdf"})
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSplit_PageSpans(t *testing.T) {
	c, err := New(WithSize(30), WithOverlap(5), WithBreakWindow(0))
	require.NoError(t, err)

	doc := domain.Document{
		ID:     "doc-6",
		Source: "pages.pdf",
		Pages: []domain.Page{
			{Number: 1, Text: strings.Repeat("x", 20)},
			{Number: 2, Text: strings.Repeat("y", 20)},
			{Number: 3, Text: strings.Repeat("z", 20)},
		},
	}

	chunks, err := c.Split(doc)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	// First chunk covers [0,30): page 1 into page 2.
	assert.Equal(t, 1, chunks[0].PageStart)
	assert.Equal(t, 2, chunks[0].PageEnd)

	// Last chunk must end on the last page.
	last := chunks[len(chunks)-1]
	assert.Equal(t, 3, last.PageEnd)

	for i, ch := range chunks {
		assert.LessOrEqual(t, ch.PageStart, ch.PageEnd, "chunk %d page span", i)
	}
}

func TestSplit_Deterministic(t *testing.T) {
	c, err := New(WithSize(80), WithOverlap(20))
	require.NoError(t, err)

	text := strings.Repeat("Paragraphs here.\n\nAnother paragraph follows. ", 12)
	doc := singlePageDoc("doc-7", "det.pdf", text)

	first, err := c.Split(doc)
	require.NoError(t, err)
	second, err := c.Split(doc)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
