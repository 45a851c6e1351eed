// Package cli implements the docqa command-line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/adapters/driven/config/file"
	embollama "github.com/custodia-labs/docqa/internal/adapters/driven/embedding/ollama"
	embopenai "github.com/custodia-labs/docqa/internal/adapters/driven/embedding/openai"
	indexsqlite "github.com/custodia-labs/docqa/internal/adapters/driven/index/sqlite"
	llmollama "github.com/custodia-labs/docqa/internal/adapters/driven/llm/ollama"
	llmopenai "github.com/custodia-labs/docqa/internal/adapters/driven/llm/openai"
	storsqlite "github.com/custodia-labs/docqa/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docqa/internal/chunker"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/core/services"
	"github.com/custodia-labs/docqa/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	flagVerbose   bool
	flagConfigDir string
	flagDataDir   string
)

// Wired services, set up once per invocation by ensureServices.
var (
	settings      *file.Settings
	promptStore   *file.PromptStore
	store         *storsqlite.Store
	vectorIndex   driven.VectorIndex
	embedder      driven.EmbeddingService
	llm           driven.LLMService
	qaService     driving.QAService
	ingestService driving.IngestService
)

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Question answering over your documents",
	Long: `Docqa ingests extracted document text, indexes it for semantic
retrieval, and answers questions grounded in the indexed content.

Answers always cite their sources. When the documents do not contain
the answer, docqa says so instead of guessing.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose logging to stderr")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "config directory (default ~/.docqa)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default ~/.docqa/data)")
}

// Execute runs the root command.
func Execute() error {
	defer closeServices()
	return rootCmd.Execute()
}

// ensureServices wires the full service graph. Commands that touch the
// corpus call it first; cheap commands (version, settings) don't pay for
// opening databases.
func ensureServices() error {
	if qaService != nil {
		return nil
	}

	if err := ensureSettings(); err != nil {
		return err
	}

	dataDir := flagDataDir
	if dataDir == "" {
		dataDir = settings.DataDir()
	}

	var err error
	store, err = storsqlite.NewStore(dataDir)
	if err != nil {
		return fmt.Errorf("open document store: %w", err)
	}

	embedder, err = buildEmbedder()
	if err != nil {
		return err
	}

	llm, err = buildLLM()
	if err != nil {
		return err
	}

	vectorIndex, err = indexsqlite.Open(dataDir, embedder.Dimensions())
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrVectorIndexUnavailable, err)
	}

	promptStore, err = file.NewPromptStore(promptDir())
	if err != nil {
		return err
	}
	if aware, ok := llm.(driven.PromptStoreAware); ok {
		aware.SetPromptStore(promptStore)
	}

	ch, err := chunker.New(
		chunker.WithSize(settings.ChunkSize()),
		chunker.WithOverlap(settings.ChunkOverlap()),
		chunker.WithBreakWindow(settings.BreakWindow()),
	)
	if err != nil {
		return fmt.Errorf("%w: chunking settings: %w", domain.ErrInvalidConfig, err)
	}

	assembler := services.NewContextAssembler(
		store.DocumentStore(),
		services.WithBudget(settings.ContextBudget()),
		services.WithDedupOverlap(settings.DedupOverlap()),
	)
	policy := services.NewGroundingPolicy(promptStore, settings.StrictCitations())

	qaService = services.NewQAService(
		embedder, llm, vectorIndex, assembler, policy,
		services.WithConfidenceFloor(settings.ConfidenceFloor()),
		services.WithGeneration(settings.LLMMaxTokens(), settings.LLMTemperature()),
	)
	ingestService = services.NewIngestService(
		ch, embedder, vectorIndex, store.DocumentStore(), store.ManifestStore(),
		services.WithBatchSize(settings.EmbeddingBatchSize()),
		services.WithRateLimit(settings.EmbeddingRate()),
	)
	return nil
}

// ensureSettings loads just the config layer.
func ensureSettings() error {
	if settings != nil {
		return nil
	}
	configStore, err := file.NewConfigStore(flagConfigDir)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	settings = file.NewSettings(configStore)
	return nil
}

func buildEmbedder() (driven.EmbeddingService, error) {
	switch settings.EmbeddingProvider() {
	case "ollama":
		return embollama.NewEmbeddingService(embollama.Config{
			BaseURL: settings.EmbeddingBaseURL(),
			Model:   settings.EmbeddingModel(),
			Timeout: settings.EmbeddingTimeout(),
		})
	case "openai":
		return embopenai.NewEmbeddingService(embopenai.Config{
			APIKey:  settings.EmbeddingAPIKey(),
			BaseURL: settings.EmbeddingBaseURL(),
			Model:   settings.EmbeddingModel(),
			Timeout: settings.EmbeddingTimeout(),
		})
	default:
		return nil, fmt.Errorf("%w: unknown embedding provider %q",
			domain.ErrInvalidConfig, settings.EmbeddingProvider())
	}
}

func buildLLM() (driven.LLMService, error) {
	switch settings.LLMProvider() {
	case "ollama":
		return llmollama.NewLLMService(llmollama.Config{
			BaseURL: settings.LLMBaseURL(),
			Model:   settings.LLMModel(),
			Timeout: settings.LLMTimeout(),
		})
	case "openai":
		return llmopenai.NewLLMService(llmopenai.Config{
			APIKey:  settings.LLMAPIKey(),
			BaseURL: settings.LLMBaseURL(),
			Model:   settings.LLMModel(),
			Timeout: settings.LLMTimeout(),
		})
	default:
		return nil, fmt.Errorf("%w: unknown llm provider %q",
			domain.ErrInvalidConfig, settings.LLMProvider())
	}
}

// promptDir places prompts next to the config file.
func promptDir() string {
	if flagConfigDir != "" {
		return flagConfigDir + "/prompts"
	}
	return "" // PromptStore falls back to ~/.docqa/prompts
}

func closeServices() {
	if vectorIndex != nil {
		_ = vectorIndex.Close()
	}
	if store != nil {
		_ = store.Close()
	}
	if embedder != nil {
		_ = embedder.Close()
	}
	if llm != nil {
		_ = llm.Close()
	}
}
