package domain

// ContextChunk pairs a chunk with the retrieval score that selected it.
type ContextChunk struct {
	Chunk Chunk
	Score float64
}

// Citation maps a chunk to the document and page it came from.
// One citation exists per distinct chunk in an assembled context.
type Citation struct {
	// ChunkID is the cited chunk.
	ChunkID string `json:"chunk_id"`

	// Document is the source file name (e.g. "contract.pdf").
	Document string `json:"document"`

	// Page is the 1-based page number the chunk starts on.
	Page int `json:"page"`
}

// AssembledContext is the rank-ordered set of chunks selected for a query,
// kept under the context budget, with the citation list for the included set.
// An empty context is the refusal trigger downstream, not an error.
type AssembledContext struct {
	// Chunks are the included chunks in rank order.
	Chunks []ContextChunk

	// Citations has exactly one entry per included chunk, in chunk order.
	Citations []Citation

	// Size is the total included text length in runes.
	Size int
}

// Empty reports whether no chunk was included.
func (c AssembledContext) Empty() bool {
	return len(c.Chunks) == 0
}

// BestScore returns the highest retrieval score among included chunks,
// or 0 when the context is empty. Chunks are rank-ordered, so the first
// entry holds the best score.
func (c AssembledContext) BestScore() float64 {
	if len(c.Chunks) == 0 {
		return 0
	}
	return c.Chunks[0].Score
}

// MeanScore returns the average retrieval score of included chunks,
// clamped to [0,1]. Used as the reported answer confidence.
func (c AssembledContext) MeanScore() float64 {
	if len(c.Chunks) == 0 {
		return 0
	}
	var sum float64
	for _, cc := range c.Chunks {
		sum += cc.Score
	}
	mean := sum / float64(len(c.Chunks))
	if mean < 0 {
		return 0
	}
	if mean > 1 {
		return 1
	}
	return mean
}
