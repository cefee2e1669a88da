package file

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/hostbridge/pkg/domain"
)

const (
	ext = ".json"

	// Encoded names longer than this are replaced by a hash, keeping file
	// names under the usual 255-byte limit.
	maxEncodedName = 200
	hashedPrefix   = "~"
)

var keyEncoding = base64.RawURLEncoding

// hashedRecord is the on-disk form of a record whose key is too long to
// encode into its file name.
type hashedRecord struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Store implements ports.KVStore using the local filesystem.
// Each record is one file named after the base64url-encoded key, so any key is
// a valid file name. Long keys are hashed instead and the key is kept inside
// the record. Keys are listed oldest record first.
type Store struct {
	BasePath string

	mu sync.Mutex
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".hostbridge/presets".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".hostbridge", "presets")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(key string) (string, bool) {
	name := keyEncoding.EncodeToString([]byte(key))
	if len(name) <= maxEncodedName {
		return filepath.Join(s.BasePath, name+ext), false
	}
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(s.BasePath, hashedPrefix+hex.EncodeToString(sum[:])+ext), true
}

// Available implements ports.Availability: the base directory must be creatable.
func (s *Store) Available(ctx context.Context) bool {
	return os.MkdirAll(s.BasePath, 0755) == nil
}

// Get reads the record file for key.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	path, hashed := s.path(key)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", domain.ErrKeyNotFound
		}
		return "", fmt.Errorf("failed to read record file: %w", err)
	}
	if !hashed {
		return string(data), nil
	}
	var rec hashedRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return "", fmt.Errorf("failed to decode hashed record: %w", err)
	}
	if rec.Key != key {
		return "", domain.ErrKeyNotFound
	}
	return rec.Value, nil
}

// Set writes the record atomically: temp file, fsync, rename.
func (s *Store) Set(ctx context.Context, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure store directory: %w", err)
	}

	destPath, hashed := s.path(key)
	if hashed {
		data, err := json.Marshal(hashedRecord{Key: key, Value: value})
		if err != nil {
			return fmt.Errorf("failed to encode hashed record: %w", err)
		}
		value = string(data)
	}

	// Same directory as the destination so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.WriteString(value); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// Keep the creation order of an existing record by restoring its mtime.
	prev, statErr := os.Stat(destPath)

	// Windows refuses to rename over an existing file.
	if statErr == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing record for overwrite: %w", err)
		}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to record: %w", err)
	}

	if statErr == nil {
		_ = os.Chtimes(destPath, prev.ModTime(), prev.ModTime())
	}
	return nil
}

// Remove deletes the record file. A missing file is not an error.
func (s *Store) Remove(ctx context.Context, key string) error {
	path, _ := s.path(key)
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete record file: %w", err)
	}
	return nil
}

// Keys lists every record, ordered by modification time then name.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	type record struct {
		key   string
		mtime int64
	}
	records := make([]record, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ext) {
			continue
		}
		key, ok := s.keyOf(name)
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		records = append(records, record{key: key, mtime: info.ModTime().UnixNano()})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].mtime < records[j].mtime
	})

	keys := make([]string, len(records))
	for i, r := range records {
		keys[i] = r.key
	}
	return keys, nil
}

func (s *Store) keyOf(name string) (string, bool) {
	base := strings.TrimSuffix(name, ext)
	if !strings.HasPrefix(base, hashedPrefix) {
		raw, err := keyEncoding.DecodeString(base)
		if err != nil {
			return "", false
		}
		return string(raw), true
	}
	data, err := os.ReadFile(filepath.Join(s.BasePath, name))
	if err != nil {
		return "", false
	}
	var rec hashedRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return "", false
	}
	return rec.Key, true
}
