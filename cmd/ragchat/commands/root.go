package commands

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"ragchat/internal/tui"
)

var configPath string

// NewRootCommand creates the root command. Running it without a
// subcommand starts the interactive chat UI.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ragchat",
		Short: "Chat with your local documents",
		Long: `ragchat answers questions from a local document index using an
Ollama-compatible model. Conversations are persisted between runs.`,
		SilenceUsage: true,
		RunE:         runChat,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ./config.yaml, then ~/.config/ragchat/config.yaml)")
	rootCmd.AddCommand(NewIndexCommand())
	rootCmd.AddCommand(NewStatsCommand())
	rootCmd.AddCommand(NewSessionsCommand())
	rootCmd.AddCommand(NewExportCommand())
	rootCmd.AddCommand(NewImportCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := newLogger(cfg.Paths.LogFile)
	defer func() { _ = log.Sync() }()

	store, err := openSessionStore(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to open sessions: %w", err)
	}
	chain, err := newChain(cfg, log)
	if err != nil {
		return err
	}

	model := tui.New(store, chain, cfg.Chat.UserName, cfg.Chat.BotName)
	prog := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
