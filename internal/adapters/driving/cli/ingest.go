package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Ingest extracted document text into the corpus",
	Long: `Ingests one or more text files into the corpus.

Files are expected to hold extracted PDF text in pdftotext layout:
one page per section, pages separated by form feed (\f) characters.
Plain text files without form feeds are treated as single-page documents.

Unchanged files (same content as last ingestion) are skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	var failed int
	for _, path := range args {
		doc, err := readPageFile(path)
		if err != nil {
			cmd.PrintErrf("skipping %s: %v\n", path, err)
			failed++
			continue
		}

		result, err := ingestService.Ingest(cmd.Context(), doc)
		if err != nil {
			cmd.PrintErrf("ingest %s: %v\n", path, err)
			failed++
			continue
		}

		if result.Skipped {
			cmd.Printf("unchanged  %s\n", doc.Source)
		} else {
			cmd.Printf("ingested   %s (%d chunks)\n", doc.Source, result.ChunksCreated)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	return nil
}

// readPageFile loads a pdftotext-style text file into a Document.
// Form feeds separate pages; a file without form feeds is one page.
func readPageFile(path string) (domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Document{}, err
	}

	raw := strings.Split(string(data), "\f")
	pages := make([]domain.Page, 0, len(raw))
	for i, text := range raw {
		text = strings.TrimRight(text, "\n")
		if strings.TrimSpace(text) == "" {
			continue // pdftotext emits a trailing form feed
		}
		pages = append(pages, domain.Page{Number: i + 1, Text: text})
	}

	if len(pages) == 0 {
		return domain.Document{}, fmt.Errorf("no text content")
	}

	return domain.Document{
		Source: filepath.Base(path),
		Pages:  pages,
	}, nil
}
