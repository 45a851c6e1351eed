package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// --- Mock implementations shared by the service tests ---

// mockEmbedding implements driven.EmbeddingService with canned vectors.
type mockEmbedding struct {
	vectors map[string][]float32
	fixed   []float32
	dim     int
	err     error
	calls   int
}

func (m *mockEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (m *mockEmbedding) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := m.vectors[t]; ok {
			out[i] = v
			continue
		}
		if m.fixed != nil {
			out[i] = m.fixed
			continue
		}
		return nil, fmt.Errorf("no canned vector for %q", t)
	}
	return out, nil
}

func (m *mockEmbedding) Dimensions() int              { return m.dim }
func (m *mockEmbedding) ModelName() string            { return "mock-embed" }
func (m *mockEmbedding) Ping(_ context.Context) error { return nil }
func (m *mockEmbedding) Close() error                 { return nil }

// mockLLM implements driven.LLMService with canned responses.
type mockLLM struct {
	response    string
	generateErr error
	rewrite     string
	rewriteErr  error
	lastPrompt  string
}

func (m *mockLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.lastPrompt = prompt
	if m.generateErr != nil {
		return "", m.generateErr
	}
	return m.response, nil
}

func (m *mockLLM) RewriteQuery(_ context.Context, question string) (string, error) {
	if m.rewriteErr != nil {
		return "", m.rewriteErr
	}
	if m.rewrite == "" {
		return question, nil
	}
	return m.rewrite, nil
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// mockVectorIndex implements driven.VectorIndex with canned results.
type mockVectorIndex struct {
	results   []domain.RetrievalResult
	searchErr error
	inserted  []domain.IndexEntry
	removed   []string
	dim       int
}

func (m *mockVectorIndex) Insert(_ context.Context, entries []domain.IndexEntry) error {
	m.inserted = append(m.inserted, entries...)
	return nil
}

func (m *mockVectorIndex) Remove(_ context.Context, chunkIDs []string) error {
	m.removed = append(m.removed, chunkIDs...)
	return nil
}

func (m *mockVectorIndex) Search(
	_ context.Context, _ []float32, k int, minScore float64,
) ([]domain.RetrievalResult, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	out := make([]domain.RetrievalResult, 0, len(m.results))
	for _, r := range m.results {
		if r.Score >= minScore {
			out = append(out, r)
		}
		if len(out) == k {
			break
		}
	}
	return out, nil
}

func (m *mockVectorIndex) Len() int        { return len(m.inserted) }
func (m *mockVectorIndex) Dimensions() int { return m.dim }
func (m *mockVectorIndex) Close() error    { return nil }

// mockPromptStore implements driven.PromptStore with a minimal template.
type mockPromptStore struct {
	err error
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	switch name {
	case "grounded_answer":
		return "Context:\n%s\n\nQuestion: %s\nAnswer:", nil
	case "query_rewrite":
		return "Rewrite: %s", nil
	default:
		return "", fmt.Errorf("unknown prompt %q", name)
	}
}
