package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docqa/internal/adapters/driven/config/file"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "View and change configuration",
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configured values",
	RunE:  runSettingsList,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Sets a configuration value. Values are parsed as bool, int, or float
when they look like one, otherwise stored as strings.

Common keys:
  retrieval.top_k              chunks retrieved per question
  retrieval.min_score          similarity floor in [0,1]
  retrieval.confidence_floor   refuse below this mean score
  embedding.provider           openai or ollama
  llm.provider                 openai or ollama`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsSetKeyCmd = &cobra.Command{
	Use:   "set-key <embedding|llm>",
	Short: "Set an API key without echoing it",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsSetKey,
}

func init() {
	settingsCmd.AddCommand(settingsListCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsSetKeyCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsList(cmd *cobra.Command, _ []string) error {
	if err := ensureSettings(); err != nil {
		return err
	}

	cmd.Printf("Config file: %s\n\n", settings.Store().Path())

	// Re-read so concurrent edits show up
	if err := settings.Store().Load(); err != nil {
		return err
	}

	keys := settingsKeys()
	for _, key := range keys {
		val, ok := settings.Store().Get(key)
		if !ok {
			continue
		}
		if strings.HasSuffix(key, "api_key") {
			val = "********"
		}
		cmd.Printf("%-34s %v\n", key, val)
	}
	return nil
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	if err := ensureSettings(); err != nil {
		return err
	}

	val, ok := settings.Store().Get(args[0])
	if !ok {
		return fmt.Errorf("key %q is not set", args[0])
	}
	cmd.Printf("%v\n", val)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if err := ensureSettings(); err != nil {
		return err
	}

	key, raw := args[0], args[1]
	if err := settings.Store().Set(key, parseValue(raw)); err != nil {
		return fmt.Errorf("save setting: %w", err)
	}
	cmd.Printf("set %s\n", key)
	return nil
}

func runSettingsSetKey(cmd *cobra.Command, args []string) error {
	if err := ensureSettings(); err != nil {
		return err
	}

	var key string
	switch args[0] {
	case "embedding":
		key = file.KeyEmbeddingAPIKey
	case "llm":
		key = file.KeyLLMAPIKey
	default:
		return fmt.Errorf("unknown target %q (want embedding or llm)", args[0])
	}

	cmd.Printf("API key for %s: ", args[0])
	secret, err := term.ReadPassword(syscall.Stdin)
	cmd.Println()
	if err != nil {
		return fmt.Errorf("read key: %w", err)
	}
	if len(secret) == 0 {
		return fmt.Errorf("empty key")
	}

	if err := settings.Store().Set(key, string(secret)); err != nil {
		return fmt.Errorf("save key: %w", err)
	}
	cmd.Printf("saved %s\n", key)
	return nil
}

// parseValue guesses the TOML type from the literal form.
func parseValue(raw string) any {
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

// settingsKeys returns the known keys sorted for stable output.
func settingsKeys() []string {
	known := []string{
		file.KeyDataDir,
		file.KeyChunkSize, file.KeyChunkOverlap, file.KeyBreakWindow,
		file.KeyTopK, file.KeyMinScore, file.KeyContextBudget,
		file.KeyConfidenceFloor, file.KeyStrictCitations, file.KeyDedupOverlap,
		file.KeyRewriteQuery,
		file.KeyEmbeddingProvider, file.KeyEmbeddingModel, file.KeyEmbeddingBaseURL,
		file.KeyEmbeddingAPIKey, file.KeyEmbeddingBatch, file.KeyEmbeddingRate,
		file.KeyEmbeddingTimeout,
		file.KeyLLMProvider, file.KeyLLMModel, file.KeyLLMBaseURL,
		file.KeyLLMAPIKey, file.KeyLLMMaxTokens, file.KeyLLMTemperature,
		file.KeyLLMTimeout,
	}
	sort.Strings(known)
	return known
}
