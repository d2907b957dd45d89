package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotFound means no file exists at the given path.
var ErrNotFound = errors.New("file not found")

// ErrCorrupt means a file exists but could not be parsed. Callers fall back
// to a default value exactly as for ErrNotFound, but should log the problem
// so the overwritten data is at least visible to an operator.
var ErrCorrupt = errors.New("file corrupt")

// LoadJSON reads the JSON document at path into out.
func LoadJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	return nil
}

// SaveJSON serializes v and overwrites the file at path in full,
// creating parent directories as needed.
func SaveJSON(path string, v any) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
