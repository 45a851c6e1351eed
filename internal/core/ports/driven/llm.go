package driven

import "context"

// LLMService is the generator behind the grounding policy. It is invoked
// only with assembled, citation-tagged context; the policy owns the prompt.
// Service failures surface as domain.ErrGeneration (or domain.ErrTimeout),
// which are distinct from a policy refusal.
//
// Implementations may include:
//   - OpenAI-compatible APIs (gpt-4o-mini, Groq llama models)
//   - Ollama (local models)
type LLMService interface {
	// Generate produces a text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// RewriteQuery rewrites a question for better retrieval recall.
	// Callers fall back to the original question when this fails.
	RewriteQuery(ctx context.Context, question string) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64

	// StopWords are sequences that stop generation when encountered.
	StopWords []string
}
