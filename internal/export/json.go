package export

import (
	"encoding/json"
	"fmt"
	"io"

	"ragchat/internal/session"
)

// JSONExporter emits the bare message list, the shape ParseHistory accepts
// back on import.
type JSONExporter struct{}

func (e *JSONExporter) Extension() string { return "json" }

func (e *JSONExporter) Export(sess *session.Session, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	history := sess.History
	if history == nil {
		history = []session.Message{}
	}
	return enc.Encode(history)
}

// ParseHistory validates an imported conversation payload. Anything that
// is not a list of user/assistant messages is rejected whole; no partial
// import is applied.
func ParseHistory(r io.Reader) ([]session.Message, error) {
	var history []session.Message
	dec := json.NewDecoder(r)
	if err := dec.Decode(&history); err != nil {
		return nil, fmt.Errorf("conversation file must contain a JSON list of messages: %w", err)
	}
	for i, m := range history {
		if m.Role != session.RoleUser && m.Role != session.RoleAssistant {
			return nil, fmt.Errorf("message %d has unsupported role %q", i, m.Role)
		}
	}
	return history, nil
}
