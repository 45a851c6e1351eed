package driven

// Prompt names used with PromptStore.
const (
	// PromptGroundedAnswer is the system prompt that constrains the
	// generator to the provided context and mandates citations.
	PromptGroundedAnswer = "grounded_answer"

	// PromptQueryRewrite rewrites a question for retrieval recall.
	// It takes the original question as a %s argument.
	PromptQueryRewrite = "query_rewrite"
)

// PromptStore loads LLM prompt templates.
// Implementations fall back to embedded defaults when a user override
// does not exist.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)
}

// PromptStoreAware is an optional interface for services that can use
// custom prompts. A PromptStore injected after construction replaces the
// service's hardcoded defaults.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable
	// prompts. If never called, the service uses its built-in defaults.
	SetPromptStore(store PromptStore)
}
