package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

var (
	askTopK      int
	askMinScore  float64
	askBudget    int
	askNoRewrite bool
	askJSON      bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question against the ingested documents",
	Long: `Answers a question using only the ingested documents.

The answer cites its sources as [source: <file>, page: <n>]. When the
documents do not contain the answer, docqa refuses rather than guessing.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of chunks to retrieve (0 = configured default)")
	askCmd.Flags().Float64Var(&askMinScore, "min-score", -1, "similarity floor in [0,1] (-1 = configured default)")
	askCmd.Flags().IntVar(&askBudget, "budget", 0, "context budget in runes (0 = configured default)")
	askCmd.Flags().BoolVar(&askNoRewrite, "no-rewrite", false, "skip LLM query rewriting")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	opts := askOptions()
	answer, err := qaService.Ask(cmd.Context(), args[0], opts)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputAnswerJSON(cmd, answer)
	}
	outputAnswerText(cmd, answer)
	return nil
}

// askOptions merges flags with configured defaults.
func askOptions() driving.AskOptions {
	opts := driving.AskOptions{
		TopK:          settings.TopK(),
		MinScore:      settings.MinScore(),
		ContextBudget: settings.ContextBudget(),
		Rewrite:       settings.RewriteQuery() && !askNoRewrite,
	}
	if askTopK > 0 {
		opts.TopK = askTopK
	}
	if askMinScore >= 0 {
		opts.MinScore = askMinScore
	}
	if askBudget > 0 {
		opts.ContextBudget = askBudget
	}
	return opts
}

func outputAnswerJSON(cmd *cobra.Command, answer *domain.Answer) error {
	data, err := json.MarshalIndent(answer, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAnswerText(cmd *cobra.Command, answer *domain.Answer) {
	cmd.Println(answer.Text)

	if answer.Refused {
		return
	}

	if len(answer.Citations) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for _, cit := range answer.Citations {
			cmd.Printf("  %s, page %d\n", cit.Document, cit.Page)
		}
	}
	cmd.Printf("\nConfidence: %.2f\n", answer.Confidence)
}
