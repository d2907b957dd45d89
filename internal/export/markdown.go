package export

import (
	"fmt"
	"io"

	"ragchat/internal/session"
)

// MarkdownExporter renders a session as a readable Markdown transcript.
type MarkdownExporter struct {
	opts Options
}

func (e *MarkdownExporter) Extension() string { return "md" }

func (e *MarkdownExporter) Export(sess *session.Session, w io.Writer) error {
	if _, err := fmt.Fprintf(w, "# Conversation: %s\n\n", sess.Name); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "Created: %s  \n", sess.CreatedAt)
	_, _ = fmt.Fprintf(w, "Last activity: %s\n\n", sess.LastUsed)

	for _, msg := range sess.History {
		speaker := e.opts.BotName
		if msg.Role == session.RoleUser {
			speaker = e.opts.UserName
		}
		pinned := ""
		if msg.Pinned {
			pinned = " [pinned]"
		}
		_, _ = fmt.Fprintf(w, "**%s (%s, %s)%s**\n\n", speaker, msg.Time, msg.Date, pinned)
		_, _ = fmt.Fprintf(w, "%s\n\n", msg.Content)
	}
	return nil
}
