package domain

import (
	"fmt"
	"strings"
	"time"
)

// Page is one page of extracted text from a source document.
// Page numbers are 1-based, matching what PDF extractors report.
type Page struct {
	// Number is the 1-based page number in the source file.
	Number int

	// Text is the raw extracted text of the page.
	Text string
}

// Document represents a source document at ingestion time.
// It is the canonical representation of extracted PDF text: an ordered
// sequence of pages. Documents are immutable once chunked; chunks refer
// back to them by ID only, never by pointer.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Source is the original file name (e.g. "policy.pdf").
	// It is what citations display to the user.
	Source string

	// Pages is the ordered page text as produced by the extractor.
	Pages []Page

	// CreatedAt is when the document entered the corpus.
	CreatedAt time.Time
}

// PageSeparator joins page texts when a document is flattened for chunking.
const PageSeparator = "\n"

// Text returns the full document text with pages joined by PageSeparator.
// Chunk offsets are rune offsets into this flattened text.
func (d Document) Text() string {
	parts := make([]string, len(d.Pages))
	for i, p := range d.Pages {
		parts[i] = p.Text
	}
	return strings.Join(parts, PageSeparator)
}

// Chunk is the unit of retrieval: a bounded, possibly overlapping segment
// of a document's text. Chunks are immutable after creation.
type Chunk struct {
	// ID is derived from the document ID and the chunk sequence index.
	ID string

	// DocumentID links to the owning Document (lookup only, no ownership).
	DocumentID string

	// Source is the document's file name, denormalised for citations.
	Source string

	// Text is the chunk content.
	Text string

	// StartOffset and EndOffset are rune offsets into Document.Text().
	// The chunk covers [StartOffset, EndOffset).
	StartOffset int
	EndOffset   int

	// PageStart and PageEnd are the 1-based page numbers the chunk spans.
	PageStart int
	PageEnd   int

	// Embedding is the vector representation, set once computed.
	Embedding []float32
}

// ChunkID builds the stable identifier for the seq-th chunk of a document.
func ChunkID(documentID string, seq int) string {
	return fmt.Sprintf("%s:%d", documentID, seq)
}

// Len returns the chunk length in runes.
func (c Chunk) Len() int {
	return len([]rune(c.Text))
}
