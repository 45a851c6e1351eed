// Package chunker splits document text into overlapping fixed-size chunks.
package chunker

import (
	"fmt"
	"unicode"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// DefaultSize is the default chunk size in runes.
const DefaultSize = 700

// DefaultOverlap is the default overlap between consecutive chunks in runes.
const DefaultOverlap = 100

// DefaultBreakWindow is the default breakpoint search window in runes.
const DefaultBreakWindow = 40

// Chunker produces an ordered sequence of chunks covering a document with
// no gaps and an exact overlap between consecutive chunks. Chunk ends
// prefer natural breakpoints (paragraph, newline, sentence end) within a
// small window before the hard cut; the following chunk starts relative to
// the actual end, so the overlap invariant holds either way.
type Chunker struct {
	size    int
	overlap int
	window  int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithSize sets the chunk size in runes.
func WithSize(size int) Option {
	return func(c *Chunker) {
		c.size = size
	}
}

// WithOverlap sets the overlap between consecutive chunks in runes.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		c.overlap = overlap
	}
}

// WithBreakWindow sets the breakpoint search window in runes.
// Zero disables breakpoint snapping; every cut is a hard cut.
func WithBreakWindow(window int) Option {
	return func(c *Chunker) {
		c.window = window
	}
}

// New creates a chunker. Fails with domain.ErrInvalidConfig when the size
// is not positive or the overlap is not in [0, size).
func New(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		size:    DefaultSize,
		overlap: DefaultOverlap,
		window:  DefaultBreakWindow,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidConfig, c.size)
	}
	if c.overlap < 0 || c.overlap >= c.size {
		return nil, fmt.Errorf("%w: overlap must be in [0, size), got overlap=%d size=%d",
			domain.ErrInvalidConfig, c.overlap, c.size)
	}
	if c.window < 0 {
		return nil, fmt.Errorf("%w: break window must not be negative, got %d", domain.ErrInvalidConfig, c.window)
	}

	return c, nil
}

// Size returns the configured chunk size in runes.
func (c *Chunker) Size() int { return c.size }

// Overlap returns the configured overlap in runes.
func (c *Chunker) Overlap() int { return c.overlap }

// Split chunks the document's flattened text. Offsets are rune offsets
// into domain.Document.Text(). An empty document produces no chunks; a
// document shorter than the chunk size produces exactly one.
func (c *Chunker) Split(doc domain.Document) ([]domain.Chunk, error) {
	text := []rune(doc.Text())
	n := len(text)
	if n == 0 {
		return nil, nil
	}

	pages := pageTable(doc)

	estimated := n/(c.size-c.overlap) + 1
	chunks := make([]domain.Chunk, 0, estimated)

	start := 0
	seq := 0

	for start < n {
		end := start + c.size
		if end >= n {
			end = n
		} else {
			end = c.snapToBreak(text, start, end)
		}

		chunks = append(chunks, domain.Chunk{
			ID:          domain.ChunkID(doc.ID, seq),
			DocumentID:  doc.ID,
			Source:      doc.Source,
			Text:        string(text[start:end]),
			StartOffset: start,
			EndOffset:   end,
			PageStart:   pages.pageAt(start),
			PageEnd:     pages.pageAt(end - 1),
		})

		if end == n {
			break
		}

		start = end - c.overlap
		seq++
	}

	return chunks, nil
}

// snapToBreak moves a hard cut back to the nearest natural breakpoint
// within the window. The adjusted end always stays far enough past the
// chunk start that the next chunk makes progress.
func (c *Chunker) snapToBreak(text []rune, start, hardEnd int) int {
	if c.window == 0 {
		return hardEnd
	}

	// The next chunk starts at end-overlap; keep end above start+overlap+1
	// so the sequence always advances.
	floor := hardEnd - c.window
	if min := start + c.overlap + 1; floor < min {
		floor = min
	}

	for i := hardEnd - 1; i >= floor; i-- {
		if text[i] == '\n' {
			return i + 1
		}
		if isSentenceEnd(text, i) {
			return i + 1
		}
	}

	return hardEnd
}

// isSentenceEnd reports whether text[i] terminates a sentence.
func isSentenceEnd(text []rune, i int) bool {
	switch text[i] {
	case '.', '!', '?':
	default:
		return false
	}
	return i+1 >= len(text) || unicode.IsSpace(text[i+1])
}

// offsets maps rune offsets in the flattened text back to page numbers.
type offsets struct {
	starts  []int
	numbers []int
}

// pageTable builds the page offset table for a document. Pages are joined
// with domain.PageSeparator, so each page after the first starts one rune
// past the previous page's end.
func pageTable(doc domain.Document) offsets {
	o := offsets{
		starts:  make([]int, 0, len(doc.Pages)),
		numbers: make([]int, 0, len(doc.Pages)),
	}

	pos := 0
	for i, p := range doc.Pages {
		if i > 0 {
			pos += len([]rune(domain.PageSeparator))
		}
		o.starts = append(o.starts, pos)
		o.numbers = append(o.numbers, p.Number)
		pos += len([]rune(p.Text))
	}

	return o
}

// pageAt returns the page number covering the given rune offset.
func (o offsets) pageAt(off int) int {
	if len(o.starts) == 0 {
		return 0
	}

	page := o.numbers[0]
	for i, s := range o.starts {
		if s > off {
			break
		}
		page = o.numbers[i]
	}
	return page
}
