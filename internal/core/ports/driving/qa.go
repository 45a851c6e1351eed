// Package driving provides interfaces for application entry points (primary/inbound ports).
package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// AskOptions configures a single question.
type AskOptions struct {
	// TopK is the number of chunks to retrieve (>= 1).
	TopK int

	// MinScore is the similarity floor for retrieval, in [0,1].
	MinScore float64

	// ContextBudget is the assembled context size limit in runes.
	// Zero uses the configured default.
	ContextBudget int

	// Rewrite enables LLM query rewriting before retrieval.
	Rewrite bool
}

// QAService answers natural-language questions against the corpus.
// Every answer is grounded in retrieved text with explicit citations;
// a refusal is a valid, non-error answer.
type QAService interface {
	// Ask runs the query pipeline: embed question, retrieve, assemble
	// context, apply the grounding policy, generate.
	Ask(ctx context.Context, question string, opts AskOptions) (*domain.Answer, error)
}
