package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedOllamaShape(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{"embedding": []float64{0.1, 0.2, 0.3}})
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL, Model: "nomic-embed-text"})
	require.NoError(t, err)

	vec, err := c.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, vec)
	assert.Equal(t, 3, c.Dimension())
	assert.Equal(t, "hello", gotBody["prompt"])
	assert.Equal(t, "nomic-embed-text", gotBody["model"])
}

func TestEmbedOpenAIShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float64{1, 0}}},
		})
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)

	vec, err := c.Embed(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, vec)
}

func TestEmbedRetriesServerErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"embedding": []float64{0.5}})
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	vec, err := c.Embed(context.Background(), "retry me")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5}, vec)
	assert.Equal(t, 3, calls)
}

func TestEmbedClientErrorIsFatal(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Embed(context.Background(), "bad")
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestMissingAPIKeyEnv(t *testing.T) {
	t.Setenv("RAGCHAT_TEST_KEY", "")
	_, err := NewClient(Config{APIKeyEnv: "RAGCHAT_TEST_KEY"})
	assert.Error(t, err)
}
