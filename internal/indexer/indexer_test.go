package indexer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat/internal/chunker"
	"ragchat/internal/domain"
	"ragchat/internal/embedding/tfidf"
	"ragchat/internal/loader"
	"ragchat/internal/vectorstore/disk"
)

func TestBuildEndToEnd(t *testing.T) {
	dataDir := t.TempDir()
	indexDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "go.txt"),
		[]byte("Go compiles quickly. Goroutines make concurrency simple. Channels pass values between goroutines."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "cooking.txt"),
		[]byte("Pasta needs salted boiling water. Good sauce needs fresh tomatoes."), 0o644))

	store := disk.Open(indexDir, nil)
	b := NewBuilder(loader.New(nil), chunker.NewRecursiveSplitter(200, 40), tfidf.NewEmbedder(), store, indexDir, nil)

	res, err := b.Build(context.Background(), dataDir)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Documents)
	assert.GreaterOrEqual(t, res.Chunks, 2)

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, res.Chunks, stats.Chunks)
	assert.Equal(t, 2, stats.Collections)

	// The fitted TF-IDF model lands beside the index for later processes.
	_, err = os.Stat(filepath.Join(indexDir, tfidf.ModelFile))
	assert.NoError(t, err)

	// A query-time embedder reloaded from disk finds relevant chunks.
	queryEmb := tfidf.NewEmbedder()
	require.NoError(t, queryEmb.LoadModel(indexDir))
	vec, err := queryEmb.Embed(context.Background(), "concurrency with goroutines")
	require.NoError(t, err)
	results, err := disk.Open(indexDir, nil).Search(context.Background(), vec, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "go.txt", results[0].Chunk.Source)
}

// collectionStore mimics a remote store where Clear drops the collection
// itself and points can only be written to an existing collection.
type collectionStore struct {
	exists bool
	points int
}

func (s *collectionStore) Init(int) error {
	s.exists = true
	return nil
}

func (s *collectionStore) Upsert(_ context.Context, chunks []domain.Chunk, _ [][]float64) error {
	if !s.exists {
		return errors.New("collection does not exist")
	}
	s.points += len(chunks)
	return nil
}

func (s *collectionStore) Search(context.Context, []float64, int) ([]domain.SearchResult, error) {
	return nil, nil
}

func (s *collectionStore) Clear(context.Context) error {
	s.exists = false
	s.points = 0
	return nil
}

func (s *collectionStore) Stats(context.Context) (domain.Stats, error) {
	return domain.Stats{Chunks: s.points}, nil
}

func TestBuildRecreatesDroppedCollection(t *testing.T) {
	dataDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "doc.txt"),
		[]byte("Collections are dropped wholesale and must be recreated before points land."), 0o644))

	store := &collectionStore{}
	b := NewBuilder(loader.New(nil), chunker.NewRecursiveSplitter(200, 40), tfidf.NewEmbedder(), store, t.TempDir(), nil)

	res, err := b.Build(context.Background(), dataDir)
	require.NoError(t, err)
	assert.True(t, store.exists)
	assert.Equal(t, res.Chunks, store.points)

	// Rebuilding over a populated collection must also succeed.
	_, err = b.Build(context.Background(), dataDir)
	require.NoError(t, err)
	assert.Equal(t, res.Chunks, store.points)
}

func TestBuildEmptyDataDir(t *testing.T) {
	store := disk.Open(t.TempDir(), nil)
	b := NewBuilder(loader.New(nil), chunker.NewRecursiveSplitter(200, 40), tfidf.NewEmbedder(), store, t.TempDir(), nil)
	_, err := b.Build(context.Background(), t.TempDir())
	assert.Error(t, err)
}

func TestBuildReplacesPreviousIndex(t *testing.T) {
	dataDir := t.TempDir()
	indexDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "one.txt"), []byte("First corpus version about sailing boats."), 0o644))

	store := disk.Open(indexDir, nil)
	b := NewBuilder(loader.New(nil), chunker.NewRecursiveSplitter(200, 40), tfidf.NewEmbedder(), store, indexDir, nil)
	first, err := b.Build(context.Background(), dataDir)
	require.NoError(t, err)

	// Second build must replace, not append.
	second, err := b.Build(context.Background(), dataDir)
	require.NoError(t, err)
	assert.Equal(t, first.Chunks, second.Chunks)

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, second.Chunks, stats.Chunks)
}
