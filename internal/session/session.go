package session

import "time"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn in a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Time    string `json:"time"`
	Date    string `json:"date"`
	Pinned  bool   `json:"pinned,omitempty"`
}

// Session is one named conversation thread.
type Session struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt string    `json:"created_at"`
	LastUsed  string    `json:"last_used"`
	History   []Message `json:"history"`
}

// Registry is the persisted set of all sessions plus the active one.
type Registry struct {
	CurrentID string     `json:"current_id"`
	Sessions  []*Session `json:"sessions"`
}

// now is stubbed in tests.
var now = time.Now

func nowTime() string { return now().Format("15:04") }
func today() string   { return now().Format("2006-01-02") }

// isoNow matches the second-resolution local timestamps the legacy
// history files were written with.
func isoNow() string { return now().Format("2006-01-02T15:04:05") }
