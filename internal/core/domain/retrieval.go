package domain

// ChunkMeta is the metadata carried alongside a vector in the index.
// It is everything needed to build a citation without touching the
// document store.
type ChunkMeta struct {
	// DocumentID is the owning document.
	DocumentID string

	// Source is the document's file name.
	Source string

	// Page is the 1-based page the chunk starts on.
	Page int

	// StartOffset and EndOffset locate the chunk in the document text.
	StartOffset int
	EndOffset   int
}

// IndexEntry is one chunk vector plus metadata as stored in the index.
// Entries are never mutated in place: reindexing a chunk replaces the
// prior entry wholesale.
type IndexEntry struct {
	// ChunkID identifies the chunk this vector was computed from.
	ChunkID string

	// Vector is the embedding. Its dimension must match the index.
	Vector []float32

	// Meta carries citation metadata.
	Meta ChunkMeta
}

// RetrievalResult is a single scored hit from the vector index.
// Results are ephemeral: produced per query, never persisted.
type RetrievalResult struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Score is the similarity (higher is more relevant; cosine in [0,1]
	// for normalised vectors).
	Score float64

	// Rank is the 0-based position in score-descending order.
	// Ties keep insertion order.
	Rank int
}
