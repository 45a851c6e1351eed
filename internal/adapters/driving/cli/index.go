package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Inspect and maintain the vector index",
}

var indexStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index and corpus statistics",
	RunE:  runIndexStats,
}

var indexRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the vector index from stored chunks",
	Long: `Rebuilds the vector index from the embeddings already stored with
each chunk. No embedding API calls are made. Useful after index
corruption or when moving the data directory.`,
	RunE: runIndexRebuild,
}

var removeCmd = &cobra.Command{
	Use:   "remove <document-id>",
	Short: "Remove a document and its index entries",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingested documents",
	RunE:  runList,
}

func init() {
	indexCmd.AddCommand(indexStatsCmd)
	indexCmd.AddCommand(indexRebuildCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(listCmd)
}

func runIndexStats(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	docs, err := store.DocumentStore().ListDocuments(cmd.Context())
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}

	cmd.Printf("Documents:  %d\n", len(docs))
	cmd.Printf("Vectors:    %d\n", vectorIndex.Len())
	cmd.Printf("Dimensions: %d\n", vectorIndex.Dimensions())
	cmd.Printf("Model:      %s\n", embedder.ModelName())
	return nil
}

func runIndexRebuild(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	ctx := cmd.Context()

	docs, err := store.DocumentStore().ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}

	var total int
	for _, doc := range docs {
		chunks, err := store.DocumentStore().GetChunks(ctx, doc.ID)
		if err != nil {
			return fmt.Errorf("load chunks for %s: %w", doc.ID, err)
		}

		entries := make([]domain.IndexEntry, 0, len(chunks))
		for _, c := range chunks {
			if len(c.Embedding) == 0 {
				cmd.PrintErrf("chunk %s has no stored embedding, skipping\n", c.ID)
				continue
			}
			entries = append(entries, domain.IndexEntry{
				ChunkID: c.ID,
				Vector:  c.Embedding,
				Meta: domain.ChunkMeta{
					DocumentID:  c.DocumentID,
					Source:      c.Source,
					Page:        c.PageStart,
					StartOffset: c.StartOffset,
					EndOffset:   c.EndOffset,
				},
			})
		}

		if err := vectorIndex.Insert(ctx, entries); err != nil {
			return fmt.Errorf("reindex %s: %w", doc.Source, err)
		}
		total += len(entries)
	}

	cmd.Printf("Reindexed %d chunks from %d documents\n", total, len(docs))
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	if err := ingestService.Remove(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("remove failed: %w", err)
	}
	cmd.Printf("removed %s\n", args[0])
	return nil
}

func runList(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	docs, err := store.DocumentStore().ListDocuments(cmd.Context())
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents ingested.")
		return nil
	}

	for _, doc := range docs {
		cmd.Printf("%s  %s  (%s)\n", doc.ID, doc.Source, doc.CreatedAt.Format("2006-01-02"))
	}
	return nil
}
