package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("plain text"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.md"), []byte("# markdown"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.docx"), []byte("unsupported"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "d.txt"), []byte("deep"), 0o644))

	docs, err := New(nil).LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, docs, 3)

	bySource := map[string]string{}
	for _, d := range docs {
		bySource[d.Source] = d.Content
		assert.NotEmpty(t, d.ID)
		assert.NotEmpty(t, d.Path)
	}
	assert.Equal(t, "plain text", bySource["a.txt"])
	assert.Equal(t, "# markdown", bySource["b.md"])
	assert.Equal(t, "deep", bySource["d.txt"])
}

func TestLoadDirSkipsBrokenPDF(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.pdf"), []byte("not a pdf"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ok.txt"), []byte("fine"), 0o644))

	docs, err := New(nil).LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "ok.txt", docs[0].Source)
}

func TestLoadDirMissing(t *testing.T) {
	_, err := New(nil).LoadDir(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestDocumentIDsAreStable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0o644))

	first, err := New(nil).LoadDir(dir)
	require.NoError(t, err)
	second, err := New(nil).LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, first[0].ID, second[0].ID)
}
