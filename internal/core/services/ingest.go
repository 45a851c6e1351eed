package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/docqa/internal/chunker"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// Default ingestion parameters.
const (
	DefaultBatchSize   = 32
	DefaultConcurrency = 4
)

// IngestService runs the ingestion pipeline: chunk the document, embed the
// chunks in bounded batches, persist document and chunks, index the vectors.
//
// Embedding is the slow step, so batches run on a bounded worker pool with
// a shared rate limiter in front of the API. The index insert happens once,
// after every batch succeeded; a failed batch fails the whole ingestion and
// leaves the index untouched.
type IngestService struct {
	chunker  *chunker.Chunker
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	docStore driven.DocumentStore
	manifest driven.ManifestStore

	batchSize   int
	concurrency int
	limiter     *rate.Limiter
}

// IngestOption configures an IngestService.
type IngestOption func(*IngestService)

// WithBatchSize sets the number of chunks embedded per API call.
func WithBatchSize(n int) IngestOption {
	return func(s *IngestService) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithConcurrency bounds the number of in-flight embedding batches.
func WithConcurrency(n int) IngestOption {
	return func(s *IngestService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithRateLimit caps embedding API calls at rps requests per second.
// Zero or negative disables rate limiting.
func WithRateLimit(rps float64) IngestOption {
	return func(s *IngestService) {
		if rps > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// NewIngestService creates the ingestion-side orchestrator.
func NewIngestService(
	ch *chunker.Chunker,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	docStore driven.DocumentStore,
	manifest driven.ManifestStore,
	opts ...IngestOption,
) *IngestService {
	s := &IngestService{
		chunker:     ch,
		embedder:    embedder,
		index:       index,
		docStore:    docStore,
		manifest:    manifest,
		batchSize:   DefaultBatchSize,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest processes one document of extracted page text.
// Unchanged content (same source, same fingerprint) is skipped without
// re-embedding. Changed content replaces the source's prior document.
func (s *IngestService) Ingest(ctx context.Context, doc domain.Document) (*driving.IngestResult, error) {
	return s.ingest(ctx, doc)
}

// IngestText is a convenience wrapper for single-page sources.
func (s *IngestService) IngestText(ctx context.Context, source, text string) (*driving.IngestResult, error) {
	return s.ingest(ctx, domain.Document{
		Source: source,
		Pages:  []domain.Page{{Number: 1, Text: text}},
	})
}

// Remove deletes a document, its chunks and its index entries.
func (s *IngestService) Remove(ctx context.Context, documentID string) error {
	chunks, err := s.docStore.GetChunks(ctx, documentID)
	if err != nil {
		return fmt.Errorf("load chunks for %s: %w", documentID, err)
	}

	ids := make([]string, len(chunks))
	for i, c := range chunks {
		ids[i] = c.ID
	}

	if err := s.index.Remove(ctx, ids); err != nil {
		return fmt.Errorf("remove index entries: %w", err)
	}

	if err := s.docStore.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	logger.Info("Removed document %s (%d chunks)", documentID, len(ids))
	return nil
}

func (s *IngestService) ingest(ctx context.Context, doc domain.Document) (*driving.IngestResult, error) {
	logger.Section("Ingestion")
	logger.Debug("Source: %s (%d pages)", doc.Source, len(doc.Pages))

	fingerprint := Fingerprint(doc.Text())

	// Skip unchanged sources
	prior, err := s.manifest.GetFingerprint(ctx, doc.Source)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	if prior == fingerprint {
		docID, err := s.manifest.DocumentID(ctx, doc.Source)
		if err != nil {
			return nil, fmt.Errorf("read manifest: %w", err)
		}
		logger.Info("Source %s unchanged, skipping", doc.Source)
		return &driving.IngestResult{DocumentID: docID, Skipped: true}, nil
	}

	// Changed content replaces the source's prior document
	if prior != "" {
		oldID, err := s.manifest.DocumentID(ctx, doc.Source)
		if err != nil {
			return nil, fmt.Errorf("read manifest: %w", err)
		}
		if oldID != "" {
			logger.Debug("Source %s changed, replacing document %s", doc.Source, oldID)
			if err := s.Remove(ctx, oldID); err != nil {
				return nil, err
			}
		}
	}

	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	chunks, err := s.chunker.Split(doc)
	if err != nil {
		return nil, fmt.Errorf("chunk document: %w", err)
	}
	logger.Debug("Split into %d chunks", len(chunks))

	if err := s.embedChunks(ctx, chunks); err != nil {
		return nil, err
	}

	if err := s.docStore.SaveDocument(ctx, &doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	if err := s.docStore.SaveChunks(ctx, chunks); err != nil {
		return nil, fmt.Errorf("save chunks: %w", err)
	}

	entries := make([]domain.IndexEntry, len(chunks))
	for i, c := range chunks {
		entries[i] = domain.IndexEntry{
			ChunkID: c.ID,
			Vector:  c.Embedding,
			Meta: domain.ChunkMeta{
				DocumentID:  c.DocumentID,
				Source:      c.Source,
				Page:        c.PageStart,
				StartOffset: c.StartOffset,
				EndOffset:   c.EndOffset,
			},
		}
	}
	if err := s.index.Insert(ctx, entries); err != nil {
		return nil, fmt.Errorf("index chunks: %w", err)
	}

	if err := s.manifest.PutFingerprint(ctx, doc.Source, fingerprint, doc.ID); err != nil {
		return nil, fmt.Errorf("record manifest: %w", err)
	}

	ids := make([]string, len(chunks))
	for i, c := range chunks {
		ids[i] = c.ID
	}

	logger.Info("Ingested %s: %d chunks", doc.Source, len(chunks))
	return &driving.IngestResult{
		DocumentID:    doc.ID,
		ChunksCreated: len(chunks),
		ChunkIDs:      ids,
	}, nil
}

// embedChunks fills in chunk embeddings in place, batching API calls and
// bounding in-flight batches. Any batch failure fails the whole document.
func (s *IngestService) embedChunks(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for start := 0; start < len(chunks); start += s.batchSize {
		end := min(start+s.batchSize, len(chunks))
		batch := chunks[start:end]

		g.Go(func() error {
			if s.limiter != nil {
				if err := s.limiter.Wait(gctx); err != nil {
					return err
				}
			}

			texts := make([]string, len(batch))
			for i, c := range batch {
				texts[i] = c.Text
			}

			vectors, err := s.embedder.EmbedBatch(gctx, texts)
			if err != nil {
				return fmt.Errorf("embed batch: %w", err)
			}

			// Batches write disjoint regions of the chunk slice
			for i := range batch {
				batch[i].Embedding = vectors[i]
			}
			return nil
		})
	}

	return g.Wait()
}

// Fingerprint returns the hex sha256 of a document's flattened text.
// It keys the ingest manifest.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
