package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "chat_sessions.json", cfg.Paths.SessionsFile)
	assert.Equal(t, "llama3.2:1b", cfg.Chat.Model)
	assert.Equal(t, 800, cfg.Chunker.ChunkSize)
	assert.Equal(t, 3, cfg.Retriever.TopK)
	assert.Equal(t, "disk", cfg.VectorStore.Type)
}

func TestLoadAppliesDefaultsToPartialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	partial := `
chat:
  model: mistral
embedder:
  type: ollama
  ollama:
    model: all-minilm
`
	require.NoError(t, os.WriteFile(path, []byte(partial), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mistral", cfg.Chat.Model)
	assert.Equal(t, "http://localhost:11434", cfg.Chat.BaseURL)
	assert.Equal(t, "all-minilm", cfg.Embedder.Ollama.Model)
	assert.Equal(t, "http://localhost:11434", cfg.Embedder.Ollama.BaseURL)
	assert.Equal(t, 120, cfg.Chunker.ChunkOverlap)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultConfig()
	cfg.Chat.BotName = "Helper"
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
