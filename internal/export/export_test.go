package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat/internal/session"
)

func testSession() *session.Session {
	return &session.Session{
		ID:        "session-1",
		Name:      "Research",
		CreatedAt: "2024-03-01T09:00:00",
		LastUsed:  "2024-03-01T09:30:00",
		History: []session.Message{
			{Role: session.RoleUser, Content: "what is RAG?", Time: "09:00", Date: "2024-03-01"},
			{Role: session.RoleAssistant, Content: "Retrieval-augmented generation.", Time: "09:01", Date: "2024-03-01", Pinned: true},
		},
	}
}

func TestNewExporterUnsupportedFormat(t *testing.T) {
	_, err := NewExporter("yaml", Options{})
	assert.Error(t, err)
}

func TestMarkdownExport(t *testing.T) {
	tests := []struct {
		name string
		sess *session.Session
		want []string
	}{
		{
			name: "full session",
			sess: testSession(),
			want: []string{
				"# Conversation: Research",
				"Created: 2024-03-01T09:00:00",
				"**Lamine (09:00, 2024-03-01)**",
				"what is RAG?",
				"**LamBot (09:01, 2024-03-01) [pinned]**",
				"Retrieval-augmented generation.",
			},
		},
		{
			name: "empty history",
			sess: &session.Session{ID: "s", Name: "Empty", CreatedAt: "x", LastUsed: "y"},
			want: []string{"# Conversation: Empty"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewExporter("md", Options{UserName: "Lamine", BotName: "LamBot"})
			require.NoError(t, err)
			var buf bytes.Buffer
			require.NoError(t, e.Export(tt.sess, &buf))
			for _, want := range tt.want {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestJSONExportRoundTrip(t *testing.T) {
	e, err := NewExporter("json", Options{})
	require.NoError(t, err)

	sess := testSession()
	var buf bytes.Buffer
	require.NoError(t, e.Export(sess, &buf))

	parsed, err := ParseHistory(&buf)
	require.NoError(t, err)
	assert.Equal(t, sess.History, parsed)
}

func TestParseHistoryRejectsNonList(t *testing.T) {
	_, err := ParseHistory(strings.NewReader(`{"role":"user","content":"hi"}`))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "list of messages")
}

func TestParseHistoryRejectsBadRole(t *testing.T) {
	_, err := ParseHistory(strings.NewReader(`[{"role":"system","content":"hi"}]`))
	assert.Error(t, err)
}

func TestJSONExportEmptyHistoryIsList(t *testing.T) {
	e, _ := NewExporter("json", Options{})
	var buf bytes.Buffer
	require.NoError(t, e.Export(&session.Session{ID: "s"}, &buf))
	assert.Equal(t, "[]", strings.TrimSpace(buf.String()))
}
