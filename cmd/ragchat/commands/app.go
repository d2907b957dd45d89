package commands

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ragchat/internal/chat"
	"ragchat/internal/chunker"
	"ragchat/internal/config"
	"ragchat/internal/domain"
	"ragchat/internal/embedding/ollama"
	"ragchat/internal/embedding/tfidf"
	"ragchat/internal/pipeline"
	"ragchat/internal/session"
	"ragchat/internal/summarizer"
	"ragchat/internal/vectorstore/disk"
	"ragchat/internal/vectorstore/qdrant"
)

// loadConfig resolves the effective configuration, honoring --config when set.
func loadConfig() (*config.AppConfig, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	cfg, _, err := config.LoadDefault()
	return cfg, err
}

// newLogger builds a file-backed logger so log output never interleaves
// with the terminal UI. An empty path yields a no-op logger.
func newLogger(path string) *zap.Logger {
	if path == "" {
		return zap.NewNop()
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Encoding = "console"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zcfg.OutputPaths = []string{path}
	zcfg.ErrorOutputPaths = []string{path}
	log, err := zcfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func openSessionStore(cfg *config.AppConfig, log *zap.Logger) (*session.Store, error) {
	return session.Open(cfg.Paths.SessionsFile, cfg.Paths.LegacyHistory, log)
}

// newEmbedder builds the configured embedder. With forQuery set, a TF-IDF
// embedder loads its fitted model from the index directory; asking before
// indexing is an error the caller can surface.
func newEmbedder(cfg *config.AppConfig, forQuery bool) (domain.Embedder, error) {
	switch cfg.Embedder.Type {
	case "ollama":
		oc := cfg.Embedder.Ollama
		return ollama.NewClient(ollama.Config{
			BaseURL:   oc.BaseURL,
			Model:     oc.Model,
			APIKeyEnv: oc.APIKeyEnv,
			Timeout:   time.Duration(oc.TimeoutSecs) * time.Second,
		})
	case "tfidf":
		emb := tfidf.NewEmbedder()
		if forQuery {
			if err := emb.LoadModel(cfg.Paths.IndexDir); err != nil {
				return nil, fmt.Errorf("no fitted model in %s, run \"ragchat index\" first: %w", cfg.Paths.IndexDir, err)
			}
		}
		return emb, nil
	default:
		return nil, fmt.Errorf("unknown embedder type: %s", cfg.Embedder.Type)
	}
}

func newVectorStore(cfg *config.AppConfig, log *zap.Logger) (domain.VectorStore, error) {
	switch cfg.VectorStore.Type {
	case "disk":
		return disk.Open(cfg.Paths.IndexDir, log), nil
	case "qdrant":
		qc := cfg.VectorStore.Qdrant
		if qc == nil {
			return nil, fmt.Errorf("vector store type is qdrant but no qdrant section is configured")
		}
		return qdrant.NewStore(qdrant.Config{
			URL:        qc.URL,
			APIKey:     qc.APIKey,
			Collection: qc.Collection,
			Timeout:    time.Duration(qc.TimeoutSecs) * time.Second,
		}), nil
	default:
		return nil, fmt.Errorf("unknown vector store type: %s", cfg.VectorStore.Type)
	}
}

func newChunker(cfg *config.AppConfig) domain.Chunker {
	return chunker.NewRecursiveSplitter(cfg.Chunker.ChunkSize, cfg.Chunker.ChunkOverlap)
}

// newChain assembles the full retrieval chain used by the chat UI.
func newChain(cfg *config.AppConfig, log *zap.Logger) (*pipeline.Chain, error) {
	embedder, err := newEmbedder(cfg, true)
	if err != nil {
		return nil, err
	}
	store, err := newVectorStore(cfg, log)
	if err != nil {
		return nil, err
	}
	model := chat.NewClient(chat.Config{
		BaseURL:       cfg.Chat.BaseURL,
		Model:         cfg.Chat.Model,
		FallbackModel: cfg.Chat.FallbackModel,
		Temperature:   cfg.Chat.Temperature,
		Timeout:       time.Duration(cfg.Chat.TimeoutSecs) * time.Second,
	}, log)
	return pipeline.New(pipeline.Config{
		Embedder:            embedder,
		Store:               store,
		Model:               model,
		FallbackSummarizer:  summarizer.NewFrequencySummarizer(),
		TopK:                cfg.Retriever.TopK,
		MaxSummarySentences: cfg.Summarizer.MaxSentences,
		UserName:            cfg.Chat.UserName,
		BotName:             cfg.Chat.BotName,
		Logger:              log,
	}), nil
}
