package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show index statistics",
		RunE:  runStats,
	}
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	store, err := newVectorStore(cfg, newLogger(""))
	if err != nil {
		return err
	}
	stats, err := store.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read index stats: %w", err)
	}
	if stats.Chunks == 0 {
		fmt.Printf("The index is empty. Put files in %s and run: ragchat index\n", cfg.Paths.DataDir)
		return nil
	}
	fmt.Printf("Collections: %d\n", stats.Collections)
	fmt.Printf("Chunks:      %d\n", stats.Chunks)
	return nil
}
