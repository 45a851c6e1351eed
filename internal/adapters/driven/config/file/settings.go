package file

import "time"

// Configuration keys used throughout the application.
// Keys use dot notation matching TOML table structure.
const (
	KeyDataDir = "data_dir"

	KeyChunkSize    = "chunking.size"
	KeyChunkOverlap = "chunking.overlap"
	KeyBreakWindow  = "chunking.break_window"

	KeyTopK            = "retrieval.top_k"
	KeyMinScore        = "retrieval.min_score"
	KeyContextBudget   = "retrieval.context_budget"
	KeyConfidenceFloor = "retrieval.confidence_floor"
	KeyStrictCitations = "retrieval.strict_citations"
	KeyDedupOverlap    = "retrieval.dedup_overlap"
	KeyRewriteQuery    = "retrieval.rewrite_query"

	KeyEmbeddingProvider = "embedding.provider"
	KeyEmbeddingModel    = "embedding.model"
	KeyEmbeddingBaseURL  = "embedding.base_url"
	KeyEmbeddingAPIKey   = "embedding.api_key"
	KeyEmbeddingBatch    = "embedding.batch_size"
	KeyEmbeddingRate     = "embedding.requests_per_second"
	KeyEmbeddingTimeout  = "embedding.timeout_seconds"

	KeyLLMProvider    = "llm.provider"
	KeyLLMModel       = "llm.model"
	KeyLLMBaseURL     = "llm.base_url"
	KeyLLMAPIKey      = "llm.api_key"
	KeyLLMMaxTokens   = "llm.max_tokens"
	KeyLLMTemperature = "llm.temperature"
	KeyLLMTimeout     = "llm.timeout_seconds"
)

// Default values applied when a key is absent from the config file.
const (
	DefaultChunkSize    = 700
	DefaultChunkOverlap = 100
	DefaultBreakWindow  = 40

	DefaultTopK            = 5
	DefaultMinScore        = 0.35
	DefaultContextBudget   = 3000
	DefaultConfidenceFloor = 0.30
	DefaultDedupOverlap    = 0.5

	DefaultEmbeddingProvider = "openai"
	DefaultEmbeddingBatch    = 32
	DefaultEmbeddingRate     = 2.0

	DefaultLLMProvider    = "openai"
	DefaultLLMMaxTokens   = 256
	DefaultLLMTemperature = 0.1
)

// Settings is a typed view over the config store with defaults applied.
// Zero values in the file fall back to defaults, so a partially written
// config.toml still yields a usable configuration.
type Settings struct {
	store *ConfigStore
}

// NewSettings wraps a config store with typed accessors.
func NewSettings(store *ConfigStore) *Settings {
	return &Settings{store: store}
}

// Store returns the underlying config store.
func (s *Settings) Store() *ConfigStore {
	return s.store
}

func (s *Settings) intOr(key string, def int) int {
	if _, ok := s.store.Get(key); !ok {
		return def
	}
	return s.store.GetInt(key)
}

func (s *Settings) floatOr(key string, def float64) float64 {
	if _, ok := s.store.Get(key); !ok {
		return def
	}
	return s.store.GetFloat(key)
}

func (s *Settings) stringOr(key, def string) string {
	if v := s.store.GetString(key); v != "" {
		return v
	}
	return def
}

func (s *Settings) boolOr(key string, def bool) bool {
	if _, ok := s.store.Get(key); !ok {
		return def
	}
	return s.store.GetBool(key)
}

// DataDir returns the data directory for databases and indexes.
// Empty means the adapters fall back to their own default under ~/.docqa.
func (s *Settings) DataDir() string {
	return s.store.GetString(KeyDataDir)
}

// ChunkSize returns the chunk size in runes.
func (s *Settings) ChunkSize() int {
	return s.intOr(KeyChunkSize, DefaultChunkSize)
}

// ChunkOverlap returns the chunk overlap in runes.
func (s *Settings) ChunkOverlap() int {
	return s.intOr(KeyChunkOverlap, DefaultChunkOverlap)
}

// BreakWindow returns the breakpoint search window in runes.
func (s *Settings) BreakWindow() int {
	return s.intOr(KeyBreakWindow, DefaultBreakWindow)
}

// TopK returns the number of chunks to retrieve per question.
func (s *Settings) TopK() int {
	return s.intOr(KeyTopK, DefaultTopK)
}

// MinScore returns the minimum similarity score for retrieval.
func (s *Settings) MinScore() float64 {
	return s.floatOr(KeyMinScore, DefaultMinScore)
}

// ContextBudget returns the assembled context size limit in runes.
func (s *Settings) ContextBudget() int {
	return s.intOr(KeyContextBudget, DefaultContextBudget)
}

// ConfidenceFloor returns the minimum confidence below which the
// engine refuses to answer.
func (s *Settings) ConfidenceFloor() float64 {
	return s.floatOr(KeyConfidenceFloor, DefaultConfidenceFloor)
}

// StrictCitations reports whether answers without verifiable citations
// are turned into refusals.
func (s *Settings) StrictCitations() bool {
	return s.boolOr(KeyStrictCitations, true)
}

// DedupOverlap returns the offset-overlap fraction above which two
// retrieved chunks from the same document are considered duplicates.
func (s *Settings) DedupOverlap() float64 {
	return s.floatOr(KeyDedupOverlap, DefaultDedupOverlap)
}

// RewriteQuery reports whether questions are rewritten before retrieval.
func (s *Settings) RewriteQuery() bool {
	return s.boolOr(KeyRewriteQuery, true)
}

// EmbeddingProvider returns the embedding backend name (openai or ollama).
func (s *Settings) EmbeddingProvider() string {
	return s.stringOr(KeyEmbeddingProvider, DefaultEmbeddingProvider)
}

// EmbeddingModel returns the configured embedding model, empty for the
// provider default.
func (s *Settings) EmbeddingModel() string {
	return s.store.GetString(KeyEmbeddingModel)
}

// EmbeddingBaseURL returns the embedding API base URL, empty for the
// provider default.
func (s *Settings) EmbeddingBaseURL() string {
	return s.store.GetString(KeyEmbeddingBaseURL)
}

// EmbeddingAPIKey returns the embedding API key.
func (s *Settings) EmbeddingAPIKey() string {
	return s.store.GetString(KeyEmbeddingAPIKey)
}

// EmbeddingBatchSize returns the number of chunks embedded per API call.
func (s *Settings) EmbeddingBatchSize() int {
	return s.intOr(KeyEmbeddingBatch, DefaultEmbeddingBatch)
}

// EmbeddingRate returns the embedding request rate limit in requests
// per second.
func (s *Settings) EmbeddingRate() float64 {
	return s.floatOr(KeyEmbeddingRate, DefaultEmbeddingRate)
}

// EmbeddingTimeout returns the embedding request timeout.
// Zero means the provider default.
func (s *Settings) EmbeddingTimeout() time.Duration {
	return time.Duration(s.intOr(KeyEmbeddingTimeout, 0)) * time.Second
}

// LLMProvider returns the generation backend name (openai or ollama).
func (s *Settings) LLMProvider() string {
	return s.stringOr(KeyLLMProvider, DefaultLLMProvider)
}

// LLMModel returns the configured chat model, empty for the provider default.
func (s *Settings) LLMModel() string {
	return s.store.GetString(KeyLLMModel)
}

// LLMBaseURL returns the chat API base URL, empty for the provider default.
func (s *Settings) LLMBaseURL() string {
	return s.store.GetString(KeyLLMBaseURL)
}

// LLMAPIKey returns the chat API key.
func (s *Settings) LLMAPIKey() string {
	return s.store.GetString(KeyLLMAPIKey)
}

// LLMMaxTokens returns the generation token limit.
func (s *Settings) LLMMaxTokens() int {
	return s.intOr(KeyLLMMaxTokens, DefaultLLMMaxTokens)
}

// LLMTemperature returns the generation temperature.
func (s *Settings) LLMTemperature() float64 {
	return s.floatOr(KeyLLMTemperature, DefaultLLMTemperature)
}

// LLMTimeout returns the generation request timeout.
// Zero means the provider default.
func (s *Settings) LLMTimeout() time.Duration {
	return time.Duration(s.intOr(KeyLLMTimeout, 0)) * time.Second
}
