package tfidf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var corpus = []string{
	"Neural networks learn representations from data.",
	"Gradient descent optimizes network weights.",
	"Cooking pasta requires boiling water.",
}

func TestEmbedBeforePrepareFails(t *testing.T) {
	_, err := NewEmbedder().Embed(context.Background(), "anything")
	assert.Error(t, err)
}

func TestPrepareAndEmbed(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare(context.Background(), corpus))
	require.Greater(t, e.Dimension(), 0)

	vec, err := e.Embed(context.Background(), "neural networks and data")
	require.NoError(t, err)
	require.Len(t, vec, e.Dimension())

	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	assert.InDelta(t, 1.0, norm, 1e-9, "vector should be L2-normalized")
}

func TestEmbedOutOfVocabularyIsZero(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare(context.Background(), corpus))

	vec, err := e.Embed(context.Background(), "zzzz qqqq")
	require.NoError(t, err)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func TestModelSurvivesSaveLoad(t *testing.T) {
	dir := t.TempDir()
	fitted := NewEmbedder()
	require.NoError(t, fitted.Prepare(context.Background(), corpus))
	require.NoError(t, fitted.SaveModel(dir))

	reloaded := NewEmbedder()
	require.NoError(t, reloaded.LoadModel(dir))
	assert.Equal(t, fitted.Dimension(), reloaded.Dimension())

	query := "gradient descent on networks"
	want, err := fitted.Embed(context.Background(), query)
	require.NoError(t, err)
	got, err := reloaded.Embed(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSaveModelUnprepared(t *testing.T) {
	assert.Error(t, NewEmbedder().SaveModel(t.TempDir()))
}

func TestLoadModelMissing(t *testing.T) {
	assert.Error(t, NewEmbedder().LoadModel(t.TempDir()))
}
