package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
//
// A refusal is never an error: when retrieved context is too weak to answer,
// the QA service returns an Answer with Refused set, not one of these.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidConfig indicates invalid caller-supplied parameters
	// (chunk size, overlap, k, score bounds). Not retryable.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrDimensionMismatch indicates a vector's dimension differs from the
	// index's fixed dimension. Fatal to the operation; the entry is rejected.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrCorruptIndex indicates a persisted index failed validation on load.
	// Fatal to the index instance; it must be rebuilt from the corpus.
	ErrCorruptIndex = errors.New("corrupt vector index")

	// ErrEmbeddingService indicates the embedding gateway failed.
	// Retryable by the caller with backoff; never retried inside the core.
	ErrEmbeddingService = errors.New("embedding service failure")

	// ErrGeneration indicates the generative model service failed
	// (timeout, rate limit, malformed response). Retryable by the caller.
	// Distinct from a policy refusal, which is a valid answer shape.
	ErrGeneration = errors.New("generation failure")

	// ErrTimeout indicates an external call exceeded its deadline.
	// Retryable at the orchestration boundary.
	ErrTimeout = errors.New("timed out")

	// ErrEmbeddingUnavailable indicates no embedding service is configured.
	// Ingestion and retrieval both require one.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates no generator is configured.
	// Retrieval still works; answer synthesis is disabled.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")
)
