package export

import (
	"fmt"
	"io"

	"ragchat/internal/session"
)

// Exporter defines the interface for all export formats.
type Exporter interface {
	Export(sess *session.Session, w io.Writer) error
	Extension() string
}

// Options carries display names used by text formats.
type Options struct {
	UserName string
	BotName  string
}

// NewExporter creates a new exporter based on format.
func NewExporter(format string, opts Options) (Exporter, error) {
	if opts.UserName == "" {
		opts.UserName = "You"
	}
	if opts.BotName == "" {
		opts.BotName = "Assistant"
	}
	switch format {
	case "md", "markdown":
		return &MarkdownExporter{opts: opts}, nil
	case "json":
		return &JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: md, json)", format)
	}
}
