// Package progress is the local persistence adapter: a synchronous blob
// store keyed by string, backed by one file per key. Corrupt or missing
// blobs read as absent; callers fall back to their documented defaults.
package progress

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store loads and saves small opaque blobs.
type Store interface {
	Load(key string) ([]byte, bool)
	Save(key string, blob []byte) error
	Delete(key string) error
}

// FileStore keeps each blob in <dir>/<key>.json, written atomically via
// a temp file and rename.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating progress dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) string {
	// Keys contain user IDs and game prefixes; keep filenames tame.
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, key)
	return filepath.Join(s.dir, safe+".json")
}

func (s *FileStore) Load(key string) ([]byte, bool) {
	blob, err := os.ReadFile(s.path(key))
	if err != nil || len(blob) == 0 {
		return nil, false
	}
	return blob, true
}

func (s *FileStore) Save(key string, blob []byte) error {
	path := s.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) Delete(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// LoadJSON decodes the blob at key into v. Missing or unparseable blobs
// report false and leave v untouched, never an error.
func LoadJSON(s Store, key string, v any) bool {
	blob, ok := s.Load(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(blob, v); err != nil {
		return false
	}
	return true
}

// SaveJSON encodes v and saves it at key.
func SaveJSON(s Store, key string, v any) error {
	blob, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return s.Save(key, blob)
}
