package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"ragchat/internal/indexer"
	"ragchat/internal/loader"
)

// NewIndexCommand creates the index command.
func NewIndexCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Build the document index from the data directory",
		Long: `Reads every supported file (.txt, .md, .pdf) under the data
directory, splits it into chunks, embeds the chunks and rebuilds the
vector index from scratch.`,
		RunE: runIndex,
	}
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := newLogger(cfg.Paths.LogFile)
	defer func() { _ = log.Sync() }()

	embedder, err := newEmbedder(cfg, false)
	if err != nil {
		return err
	}
	store, err := newVectorStore(cfg, log)
	if err != nil {
		return err
	}

	builder := indexer.NewBuilder(loader.New(log), newChunker(cfg), embedder, store, cfg.Paths.IndexDir, log)
	fmt.Printf("Indexing %s with the %s embedder...\n", cfg.Paths.DataDir, embedder.Name())
	result, err := builder.Build(cmd.Context(), cfg.Paths.DataDir)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}
	fmt.Printf("Indexed %d documents into %d chunks.\n", result.Documents, result.Chunks)
	return nil
}
