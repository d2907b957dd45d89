package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ragchat/internal/session"
)

// NewSessionsCommand creates the sessions command and its subcommands.
func NewSessionsCommand() *cobra.Command {
	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "List and manage conversations",
		RunE:  runSessionsList,
	}
	sessionsCmd.AddCommand(&cobra.Command{
		Use:   "new [name]",
		Short: "Create a new conversation and switch to it",
		RunE:  runSessionsNew,
	})
	sessionsCmd.AddCommand(&cobra.Command{
		Use:   "switch <id>",
		Short: "Make a conversation active",
		Args:  cobra.ExactArgs(1),
		RunE:  runSessionsSwitch,
	})
	sessionsCmd.AddCommand(&cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a conversation",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runSessionsRename,
	})
	sessionsCmd.AddCommand(&cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a conversation (current one by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSessionsDelete,
	})
	return sessionsCmd
}

func sessionStore() (*session.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return openSessionStore(cfg, newLogger(cfg.Paths.LogFile))
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	store, err := sessionStore()
	if err != nil {
		return err
	}
	current := store.Current().ID
	for _, s := range store.Sessions() {
		marker := " "
		if s.ID == current {
			marker = "*"
		}
		fmt.Printf("%s %-12s %-30s %d messages, last used %s\n", marker, s.ID, s.Name, len(s.History), s.LastUsed)
	}
	return nil
}

func runSessionsNew(cmd *cobra.Command, args []string) error {
	store, err := sessionStore()
	if err != nil {
		return err
	}
	sess, err := store.Create(strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Printf("Created and switched to %s (%s)\n", sess.Name, sess.ID)
	return nil
}

func runSessionsSwitch(cmd *cobra.Command, args []string) error {
	store, err := sessionStore()
	if err != nil {
		return err
	}
	if err := store.Switch(args[0]); err != nil {
		return err
	}
	fmt.Printf("Switched to %s\n", store.Current().Name)
	return nil
}

func runSessionsRename(cmd *cobra.Command, args []string) error {
	store, err := sessionStore()
	if err != nil {
		return err
	}
	if err := store.Rename(args[0], strings.Join(args[1:], " ")); err != nil {
		return err
	}
	fmt.Println("Renamed.")
	return nil
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	store, err := sessionStore()
	if err != nil {
		return err
	}
	if len(args) == 1 && args[0] != store.Current().ID {
		if err := store.Switch(args[0]); err != nil {
			return err
		}
	}
	name := store.Current().Name
	if err := store.DeleteCurrent(); err != nil {
		return err
	}
	fmt.Printf("Deleted %s. Now on %s.\n", name, store.Current().Name)
	return nil
}
