package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// PathsConfig holds the on-disk locations the application reads and writes.
type PathsConfig struct {
	DataDir       string `yaml:"data_dir"`
	IndexDir      string `yaml:"index_dir"`
	SessionsFile  string `yaml:"sessions_file"`
	LegacyHistory string `yaml:"legacy_history_file"`
	LogFile       string `yaml:"log_file"`
}

// ChatConfig configures the chat completion backend and display names.
type ChatConfig struct {
	BaseURL       string  `yaml:"base_url"`
	Model         string  `yaml:"model"`
	FallbackModel string  `yaml:"fallback_model"`
	Temperature   float64 `yaml:"temperature"`
	TimeoutSecs   int     `yaml:"timeout_secs"`
	UserName      string  `yaml:"user_name"`
	BotName       string  `yaml:"bot_name"`
}

// OllamaEmbedderConfig holds configuration for the Ollama-compatible embedder.
type OllamaEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	APIKeyEnv   string `yaml:"api_key_env,omitempty"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type   string                `yaml:"type"`
	Ollama *OllamaEmbedderConfig `yaml:"ollama,omitempty"`
}

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// RetrieverConfig configures context retrieval for the chain.
type RetrieverConfig struct {
	TopK int `yaml:"top_k"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type   string        `yaml:"type"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// SummarizerConfig configures the local fallback summarizer.
type SummarizerConfig struct {
	MaxSentences int `yaml:"max_sentences"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Paths       PathsConfig       `yaml:"paths"`
	Chat        ChatConfig        `yaml:"chat"`
	Embedder    EmbedderConfig    `yaml:"embedder"`
	Chunker     ChunkerConfig     `yaml:"chunker"`
	Retriever   RetrieverConfig   `yaml:"retriever"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Summarizer  SummarizerConfig  `yaml:"summarizer"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/ragchat/config.yaml.
// If neither exists, it writes defaults to ~/.config/ragchat/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "ragchat", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Paths: PathsConfig{
			DataDir:       "data",
			IndexDir:      "index",
			SessionsFile:  "chat_sessions.json",
			LegacyHistory: "chat_history.json",
			LogFile:       "ragchat.log",
		},
		Chat: ChatConfig{
			BaseURL:       "http://localhost:11434",
			Model:         "llama3.2:1b",
			FallbackModel: "phi3:mini",
			Temperature:   0.2,
			TimeoutSecs:   120,
			UserName:      "You",
			BotName:       "LamBot",
		},
		Embedder: EmbedderConfig{
			Type: "ollama",
			Ollama: &OllamaEmbedderConfig{
				BaseURL:     "http://localhost:11434",
				Model:       "nomic-embed-text",
				TimeoutSecs: 30,
			},
		},
		Chunker:     ChunkerConfig{ChunkSize: 800, ChunkOverlap: 120},
		Retriever:   RetrieverConfig{TopK: 3},
		VectorStore: VectorStoreConfig{Type: "disk"},
		Summarizer:  SummarizerConfig{MaxSentences: 5},
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	def := defaultConfig()
	if cfg.Paths.DataDir == "" {
		cfg.Paths.DataDir = def.Paths.DataDir
	}
	if cfg.Paths.IndexDir == "" {
		cfg.Paths.IndexDir = def.Paths.IndexDir
	}
	if cfg.Paths.SessionsFile == "" {
		cfg.Paths.SessionsFile = def.Paths.SessionsFile
	}
	if cfg.Paths.LegacyHistory == "" {
		cfg.Paths.LegacyHistory = def.Paths.LegacyHistory
	}
	if cfg.Chat.BaseURL == "" {
		cfg.Chat.BaseURL = def.Chat.BaseURL
	}
	if cfg.Chat.Model == "" {
		cfg.Chat.Model = def.Chat.Model
	}
	if cfg.Chat.TimeoutSecs == 0 {
		cfg.Chat.TimeoutSecs = def.Chat.TimeoutSecs
	}
	if cfg.Chat.UserName == "" {
		cfg.Chat.UserName = def.Chat.UserName
	}
	if cfg.Chat.BotName == "" {
		cfg.Chat.BotName = def.Chat.BotName
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = def.Embedder.Type
	}
	if cfg.Embedder.Type == "ollama" {
		if cfg.Embedder.Ollama == nil {
			cfg.Embedder.Ollama = def.Embedder.Ollama
		} else {
			if cfg.Embedder.Ollama.BaseURL == "" {
				cfg.Embedder.Ollama.BaseURL = def.Embedder.Ollama.BaseURL
			}
			if cfg.Embedder.Ollama.Model == "" {
				cfg.Embedder.Ollama.Model = def.Embedder.Ollama.Model
			}
			if cfg.Embedder.Ollama.TimeoutSecs == 0 {
				cfg.Embedder.Ollama.TimeoutSecs = def.Embedder.Ollama.TimeoutSecs
			}
		}
	}
	if cfg.Chunker.ChunkSize == 0 {
		cfg.Chunker.ChunkSize = def.Chunker.ChunkSize
	}
	if cfg.Chunker.ChunkOverlap == 0 {
		cfg.Chunker.ChunkOverlap = def.Chunker.ChunkOverlap
	}
	if cfg.Retriever.TopK == 0 {
		cfg.Retriever.TopK = def.Retriever.TopK
	}
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = def.VectorStore.Type
	}
	if cfg.Summarizer.MaxSentences == 0 {
		cfg.Summarizer.MaxSentences = def.Summarizer.MaxSentences
	}
}
