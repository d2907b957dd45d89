package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadJSONMissingFile(t *testing.T) {
	var out map[string]any
	err := LoadJSON(filepath.Join(t.TempDir(), "nope.json"), &out)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadJSONCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	var out map[string]any
	err := LoadJSON(path, &out)
	assert.ErrorIs(t, err, ErrCorrupt)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "data.json")
	in := map[string]any{"name": "test", "count": float64(3)}
	require.NoError(t, SaveJSON(path, in))

	var out map[string]any
	require.NoError(t, LoadJSON(path, &out))
	assert.Equal(t, in, out)
}

func TestSaveJSONOverwritesInFull(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, SaveJSON(path, map[string]string{"a": "long value that should disappear"}))
	require.NoError(t, SaveJSON(path, map[string]string{"b": "x"}))

	var out map[string]string
	require.NoError(t, LoadJSON(path, &out))
	assert.Equal(t, map[string]string{"b": "x"}, out)
}
