package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure QAService implements the interface.
var _ driving.QAService = (*QAService)(nil)

// Default query parameters.
const (
	DefaultTopK            = 5
	DefaultMinScore        = 0.35
	DefaultConfidenceFloor = 0.30
	DefaultMaxTokens       = 256
	DefaultTemperature     = 0.1

	// maxRewriteLen caps accepted query rewrites; anything longer is
	// treated as the model rambling and the original question is used.
	maxRewriteLen = 200
)

// QAService answers questions against the indexed corpus.
type QAService struct {
	embedder  driven.EmbeddingService
	llm       driven.LLMService
	index     driven.VectorIndex
	assembler *ContextAssembler
	policy    *GroundingPolicy

	confidenceFloor float64
	maxTokens       int
	temperature     float64
}

// QAOption configures a QAService.
type QAOption func(*QAService)

// WithConfidenceFloor sets the minimum mean retrieval score below which
// the service refuses without calling the generator.
func WithConfidenceFloor(floor float64) QAOption {
	return func(s *QAService) {
		s.confidenceFloor = floor
	}
}

// WithGeneration sets the generation token limit and temperature.
func WithGeneration(maxTokens int, temperature float64) QAOption {
	return func(s *QAService) {
		s.maxTokens = maxTokens
		s.temperature = temperature
	}
}

// NewQAService creates the query-side orchestrator.
func NewQAService(
	embedder driven.EmbeddingService,
	llm driven.LLMService,
	index driven.VectorIndex,
	assembler *ContextAssembler,
	policy *GroundingPolicy,
	opts ...QAOption,
) *QAService {
	s := &QAService{
		embedder:        embedder,
		llm:             llm,
		index:           index,
		assembler:       assembler,
		policy:          policy,
		confidenceFloor: DefaultConfidenceFloor,
		maxTokens:       DefaultMaxTokens,
		temperature:     DefaultTemperature,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ask runs the full query pipeline for one question.
// An unanswerable question yields a refusal, not an error; errors mean a
// collaborator failed (embedding, index, generation).
func (s *QAService) Ask(ctx context.Context, question string, opts driving.AskOptions) (*domain.Answer, error) {
	logger.Section("Question")
	logger.Debug("Question: %q", question)

	question = strings.TrimSpace(question)
	if question == "" {
		return domain.Refusal(), nil
	}

	if opts.TopK == 0 {
		opts.TopK = DefaultTopK
	}
	if err := validateAskOptions(opts); err != nil {
		return nil, err
	}

	query := s.retrievalQuery(ctx, question, opts.Rewrite)

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := s.index.Search(ctx, vector, opts.TopK, opts.MinScore)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	logger.Debug("Retrieved %d chunks", len(results))

	assembled, err := s.assembler.Assemble(ctx, results, opts.ContextBudget)
	if err != nil {
		return nil, fmt.Errorf("assemble context: %w", err)
	}

	if assembled.Empty() {
		logger.Info("No context above score floor, refusing")
		return domain.Refusal(), nil
	}

	if conf := assembled.MeanScore(); conf < s.confidenceFloor {
		logger.Info("Confidence %.2f below floor %.2f, refusing", conf, s.confidenceFloor)
		return domain.Refusal(), nil
	}

	prompt, err := s.policy.BuildPrompt(assembled, question)
	if err != nil {
		return nil, err
	}

	// Last cancellation point before the expensive generator call.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	answer := s.policy.Evaluate(raw, assembled)
	logger.Debug("Answered (refused=%t, citations=%d, confidence=%.2f)",
		answer.Refused, len(answer.Citations), answer.Confidence)
	return answer, nil
}

// retrievalQuery optionally rewrites the question for retrieval.
// Rewrite failures and degenerate rewrites fall back to the original
// question; retrieval must never fail because the rewriter did.
func (s *QAService) retrievalQuery(ctx context.Context, question string, rewrite bool) string {
	if !rewrite || s.llm == nil {
		return question
	}

	rewritten, err := s.llm.RewriteQuery(ctx, question)
	if err != nil {
		logger.Debug("Query rewrite failed, using original: %v", err)
		return question
	}

	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" || utf8.RuneCountInString(rewritten) > maxRewriteLen {
		logger.Debug("Query rewrite unusable (%d runes), using original", utf8.RuneCountInString(rewritten))
		return question
	}

	logger.Debug("Rewrote query to %q", rewritten)
	return rewritten
}

// validateAskOptions rejects out-of-range query parameters.
func validateAskOptions(opts driving.AskOptions) error {
	if opts.TopK < 1 {
		return fmt.Errorf("%w: top_k must be >= 1, got %d", domain.ErrInvalidConfig, opts.TopK)
	}
	if opts.MinScore < 0 || opts.MinScore > 1 {
		return fmt.Errorf("%w: min_score must be in [0,1], got %g", domain.ErrInvalidConfig, opts.MinScore)
	}
	if opts.ContextBudget < 0 {
		return fmt.Errorf("%w: context_budget must be >= 0, got %d", domain.ErrInvalidConfig, opts.ContextBudget)
	}
	return nil
}
