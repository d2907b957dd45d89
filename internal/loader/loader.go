package loader

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"ragchat/internal/domain"
)

// Loader walks a data directory and loads every supported document.
// Files that cannot be read are logged and skipped rather than failing
// the whole ingest.
type Loader struct {
	log *zap.Logger
}

func New(log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{log: log}
}

// LoadDir returns all documents under dataDir. Supported extensions:
// .txt and .md (plain text), .pdf (extracted text). A missing directory
// yields an error; an empty one yields an empty slice.
func (l *Loader) LoadDir(dataDir string) ([]domain.Document, error) {
	info, err := os.Stat(dataDir)
	if err != nil {
		return nil, fmt.Errorf("data directory %q: %w", dataDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("data directory %q is not a directory", dataDir)
	}

	var docs []domain.Document
	err = filepath.WalkDir(dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		content, ok, err := l.loadFile(path)
		if err != nil {
			l.log.Warn("skipping unreadable document", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !ok {
			return nil
		}
		docs = append(docs, domain.Document{
			ID:      hashString(path),
			Path:    path,
			Source:  filepath.Base(path),
			Content: content,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.log.Info("documents loaded", zap.String("dir", dataDir), zap.Int("count", len(docs)))
	return docs, nil
}

// loadFile returns the text content of a single file. The second return
// reports whether the extension is supported at all.
func (l *Loader) loadFile(path string) (string, bool, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", true, err
		}
		return string(data), true, nil
	case ".pdf":
		text, err := extractPDFText(path)
		if err != nil {
			return "", true, err
		}
		return text, true, nil
	default:
		return "", false, nil
	}
}

func extractPDFText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	reader, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func hashString(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:8])
}
