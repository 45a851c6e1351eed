package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocument_Text_JoinsPagesWithSeparator(t *testing.T) {
	doc := Document{
		Pages: []Page{
			{Number: 1, Text: "first page"},
			{Number: 2, Text: "second page"},
		},
	}

	assert.Equal(t, "first page\nsecond page", doc.Text())
}

func TestChunkID(t *testing.T) {
	assert.Equal(t, "abc:0", ChunkID("abc", 0))
	assert.Equal(t, "abc:12", ChunkID("abc", 12))
}

func TestChunk_Len_Runes(t *testing.T) {
	c := Chunk{Text: "héllo"}
	assert.Equal(t, 5, c.Len())
}

func TestRefusal(t *testing.T) {
	a := Refusal()

	assert.True(t, a.Refused)
	assert.Equal(t, RefusalMessage, a.Text)
	assert.Empty(t, a.Citations)
	assert.Zero(t, a.Confidence)
}

func TestAssembledContext_MeanScoreClamped(t *testing.T) {
	ctx := AssembledContext{
		Chunks: []ContextChunk{
			{Score: 0.4},
			{Score: 0.8},
		},
	}
	assert.InDelta(t, 0.6, ctx.MeanScore(), 1e-9)

	empty := AssembledContext{}
	assert.Zero(t, empty.MeanScore())
	assert.Zero(t, empty.BestScore())
	assert.True(t, empty.Empty())
}
