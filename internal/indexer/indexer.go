package indexer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"ragchat/internal/domain"
)

// ModelPersister is implemented by embedders whose fitted state must be
// written beside the index for query-time processes to reload.
type ModelPersister interface {
	SaveModel(dir string) error
}

// Result reports what a build produced.
type Result struct {
	Documents int
	Chunks    int
}

// Builder loads documents, chunks them, embeds the chunks and replaces the
// vector store contents.
type Builder struct {
	loader   DocumentLoader
	chunker  domain.Chunker
	embedder domain.Embedder
	store    domain.VectorStore
	indexDir string
	log      *zap.Logger
}

// DocumentLoader is the loader-facing subset the builder needs.
type DocumentLoader interface {
	LoadDir(dataDir string) ([]domain.Document, error)
}

func NewBuilder(loader DocumentLoader, chunker domain.Chunker, embedder domain.Embedder, store domain.VectorStore, indexDir string, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{loader: loader, chunker: chunker, embedder: embedder, store: store, indexDir: indexDir, log: log}
}

// Build rebuilds the index from the documents under dataDir.
func (b *Builder) Build(ctx context.Context, dataDir string) (Result, error) {
	docs, err := b.loader.LoadDir(dataDir)
	if err != nil {
		return Result{}, err
	}
	if len(docs) == 0 {
		return Result{}, fmt.Errorf("no documents found in %q", dataDir)
	}

	var allChunks []domain.Chunk
	var corpus []string
	for _, d := range docs {
		chunks, err := b.chunker.Chunk(d)
		if err != nil {
			return Result{}, fmt.Errorf("chunking %s: %w", d.Source, err)
		}
		for _, ch := range chunks {
			allChunks = append(allChunks, ch)
			corpus = append(corpus, ch.Text)
		}
	}
	if len(allChunks) == 0 {
		return Result{}, fmt.Errorf("documents in %q produced no chunks", dataDir)
	}
	b.log.Info("documents chunked", zap.Int("documents", len(docs)), zap.Int("chunks", len(allChunks)))

	if err := b.embedder.Prepare(ctx, corpus); err != nil {
		return Result{}, fmt.Errorf("preparing embedder: %w", err)
	}

	vectors := make([][]float64, len(allChunks))
	for i := range allChunks {
		vec, err := b.embedder.Embed(ctx, allChunks[i].Text)
		if err != nil {
			return Result{}, fmt.Errorf("embedding chunk %s: %w", allChunks[i].ChunkID, err)
		}
		vectors[i] = vec
	}

	// Clear first: remote stores drop the whole collection on Clear, so
	// Init must run after it to leave an existing, empty collection for
	// the upsert.
	if err := b.store.Clear(ctx); err != nil {
		return Result{}, err
	}
	if err := b.store.Init(b.embedder.Dimension()); err != nil {
		return Result{}, err
	}
	if err := b.store.Upsert(ctx, allChunks, vectors); err != nil {
		return Result{}, err
	}

	if p, ok := b.embedder.(ModelPersister); ok {
		if err := p.SaveModel(b.indexDir); err != nil {
			return Result{}, fmt.Errorf("persisting embedder model: %w", err)
		}
	}

	b.log.Info("index built", zap.Int("chunks", len(allChunks)), zap.String("index_dir", b.indexDir))
	return Result{Documents: len(docs), Chunks: len(allChunks)}, nil
}
