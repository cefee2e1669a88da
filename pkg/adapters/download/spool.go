// Package download implements ports.Downloader on the local filesystem.
//
// Object URLs are "blob:hostbridge/<uuid>" handles backed by files in a spool
// directory. Save copies the blob into the output directory under the
// requested file name.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aretw0/hostbridge/pkg/ports"
	"github.com/google/uuid"
)

const urlPrefix = "blob:hostbridge/"

var (
	// ErrUnknownURL is returned by Save for handles that were never created or already revoked.
	ErrUnknownURL = errors.New("unknown object url")
	// ErrInvalidFileName is returned when the target name has no usable base name.
	ErrInvalidFileName = errors.New("invalid file name")
)

// Spool implements ports.Downloader.
type Spool struct {
	spoolDir  string
	outputDir string

	mu      sync.Mutex
	objects map[string]object
}

type object struct {
	path string
	typ  string
}

// NewSpool creates a Spool. Both directories are created on first use.
func NewSpool(spoolDir, outputDir string) *Spool {
	if spoolDir == "" {
		spoolDir = filepath.Join(os.TempDir(), "hostbridge-spool")
	}
	if outputDir == "" {
		outputDir = "."
	}
	return &Spool{
		spoolDir:  spoolDir,
		outputDir: outputDir,
		objects:   make(map[string]object),
	}
}

// OutputDir returns where saved files land.
func (s *Spool) OutputDir() string {
	return s.outputDir
}

// CreateObjectURL spools blob and returns its handle.
func (s *Spool) CreateObjectURL(ctx context.Context, blob ports.Blob) (string, error) {
	if err := os.MkdirAll(s.spoolDir, 0755); err != nil {
		return "", fmt.Errorf("failed to ensure spool directory: %w", err)
	}

	id := uuid.NewString()
	path := filepath.Join(s.spoolDir, id+".blob")
	if err := os.WriteFile(path, blob.Data, 0600); err != nil {
		return "", fmt.Errorf("failed to spool blob: %w", err)
	}

	url := urlPrefix + id
	s.mu.Lock()
	s.objects[url] = object{path: path, typ: blob.Type}
	s.mu.Unlock()
	return url, nil
}

// Save copies the object behind url to fileName in the output directory.
// Only the base name of fileName is used.
func (s *Spool) Save(ctx context.Context, url string, fileName string) error {
	s.mu.Lock()
	obj, ok := s.objects[url]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownURL, url)
	}

	name := filepath.Base(filepath.Clean("/" + strings.ReplaceAll(fileName, "\\", "/")))
	if name == "/" || name == "." || name == "" {
		return fmt.Errorf("%w: %q", ErrInvalidFileName, fileName)
	}

	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to ensure output directory: %w", err)
	}

	src, err := os.Open(obj.path)
	if err != nil {
		return fmt.Errorf("failed to open spooled blob: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(s.outputDir, ".download-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := io.Copy(tmp, src); err != nil {
		return fmt.Errorf("failed to write download: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to fsync download: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close download: %w", err)
	}

	dest := filepath.Join(s.outputDir, name)
	if _, err := os.Stat(dest); err == nil {
		if err := os.Remove(dest); err != nil {
			return fmt.Errorf("failed to replace existing file: %w", err)
		}
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("failed to move download into place: %w", err)
	}
	return nil
}

// RevokeObjectURL drops the handle and its spooled data.
func (s *Spool) RevokeObjectURL(url string) {
	s.mu.Lock()
	obj, ok := s.objects[url]
	delete(s.objects, url)
	s.mu.Unlock()

	if ok {
		_ = os.Remove(obj.path)
	}
}

// Outstanding returns the number of live object URLs.
func (s *Spool) Outstanding() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
