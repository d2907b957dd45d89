package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ragchat/internal/export"
)

// NewImportCommand creates the import command.
func NewImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import a conversation from a JSON export",
		Long: `Reads a JSON message list produced by "ragchat export --format json"
and adds it as a new conversation. Invalid files are rejected whole.`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	store, err := openSessionStore(cfg, newLogger(cfg.Paths.LogFile))
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	history, err := export.ParseHistory(f)
	if err != nil {
		return err
	}
	sess, err := store.Import(history)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d messages as %s (%s)\n", len(history), sess.Name, sess.ID)
	return nil
}
