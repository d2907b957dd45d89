package disk

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat/internal/domain"
)

func sampleChunks() ([]domain.Chunk, [][]float64) {
	chunks := []domain.Chunk{
		{DocumentID: "d1", ChunkID: "d1:0", Source: "a.txt", Text: "cats purr", Index: 0},
		{DocumentID: "d1", ChunkID: "d1:1", Source: "a.txt", Text: "dogs bark", Index: 1},
		{DocumentID: "d2", ChunkID: "d2:0", Source: "b.txt", Text: "fish swim", Index: 0},
	}
	vectors := [][]float64{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
	return chunks, vectors
}

func TestUpsertSearch(t *testing.T) {
	ctx := context.Background()
	s := Open(t.TempDir(), nil)
	require.NoError(t, s.Init(3))
	chunks, vectors := sampleChunks()
	require.NoError(t, s.Upsert(ctx, chunks, vectors))

	res, err := s.Search(ctx, []float64{0.9, 0.1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "d1:0", res[0].Chunk.ChunkID)
	assert.Greater(t, res[0].Score, res[1].Score)
}

func TestSearchScoresAreCosine(t *testing.T) {
	ctx := context.Background()
	s := Open(t.TempDir(), nil)
	require.NoError(t, s.Init(2))
	// Unnormalized vectors must not distort the ranking.
	require.NoError(t, s.Upsert(ctx,
		[]domain.Chunk{{ChunkID: "big", DocumentID: "d"}, {ChunkID: "aligned", DocumentID: "d"}},
		[][]float64{{100, 0}, {0, 2}},
	))
	res, err := s.Search(ctx, []float64{0, 1}, 2)
	require.NoError(t, err)
	assert.Equal(t, "aligned", res[0].Chunk.ChunkID)
	assert.InDelta(t, 1.0, res[0].Score, 1e-9)
}

func TestPersistenceAcrossOpens(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s := Open(dir, nil)
	require.NoError(t, s.Init(3))
	chunks, vectors := sampleChunks()
	require.NoError(t, s.Upsert(ctx, chunks, vectors))

	reopened := Open(dir, nil)
	res, err := reopened.Search(ctx, []float64{0, 0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "d2:0", res[0].Chunk.ChunkID)

	stats, err := reopened.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Stats{Collections: 2, Chunks: 3}, stats)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := Open(dir, nil)
	require.NoError(t, s.Init(3))
	chunks, vectors := sampleChunks()
	require.NoError(t, s.Upsert(ctx, chunks, vectors))
	require.NoError(t, s.Clear(ctx))

	stats, err := Open(dir, nil).Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Stats{}, stats)
}

func TestCorruptIndexStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, IndexFile), []byte("{oops"), 0o644))

	stats, err := Open(dir, nil).Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Stats{}, stats)
}

func TestUpsertDimensionMismatch(t *testing.T) {
	s := Open(t.TempDir(), nil)
	require.NoError(t, s.Init(3))
	err := s.Upsert(context.Background(), []domain.Chunk{{ChunkID: "x"}}, [][]float64{{1, 2}})
	assert.Error(t, err)
}
