package commands

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"ragchat/internal/export"
	"ragchat/internal/session"
)

var (
	exportFormat string
	exportOut    string
)

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export [session-id]",
		Short: "Export a conversation to Markdown or JSON",
		Long: `Writes a conversation transcript to a file. Without an argument
the current conversation is exported. The JSON format round-trips
through "ragchat import".`,
		Args: cobra.MaximumNArgs(1),
		RunE: runExport,
	}
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "md", "Export format: md or json")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default: derived from the conversation name)")
	return exportCmd
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	store, err := openSessionStore(cfg, newLogger(cfg.Paths.LogFile))
	if err != nil {
		return err
	}

	sess := store.Current()
	if len(args) == 1 {
		s, ok := store.Get(args[0])
		if !ok {
			return fmt.Errorf("%w: %s", session.ErrUnknownSession, args[0])
		}
		sess = s
	}

	exporter, err := export.NewExporter(exportFormat, export.Options{
		UserName: cfg.Chat.UserName,
		BotName:  cfg.Chat.BotName,
	})
	if err != nil {
		return err
	}

	out := exportOut
	if out == "" {
		out = fmt.Sprintf("%s.%s", slugify(sess.Name), exporter.Extension())
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := exporter.Export(sess, f); err != nil {
		return err
	}
	fmt.Printf("Exported %s to %s\n", sess.Name, out)
	return nil
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(name string) string {
	slug := strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if slug == "" {
		return "conversation"
	}
	return slug
}
