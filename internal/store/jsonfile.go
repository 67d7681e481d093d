package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/rcliao/monchatbot/internal/model"
)

// JSONStore implements Store on top of a single JSON array file.
//
// The in-memory slice is authoritative for the running process. Every
// Append rewrites the file atomically (temp file in the same directory,
// fsync, rename), so readers of the file never observe a partial write.
type JSONStore struct {
	path    string
	maxSize int
	logger  *slog.Logger

	mu      sync.RWMutex
	entries []model.Entry
}

// NewJSONStore loads the memory file at path. A missing, unreadable or
// malformed file yields an empty store; it never fails.
func NewJSONStore(opts Options, logger *slog.Logger) *JSONStore {
	if logger == nil {
		logger = slog.Default()
	}
	s := &JSONStore{
		path:    opts.Path,
		maxSize: opts.maxSize(),
		logger:  logger,
	}
	entries, err := Load(opts.Path)
	if err != nil {
		logger.Warn("memory file unusable, starting empty", "path", opts.Path, "error", err)
	}
	s.entries = capEntries(entries, s.maxSize)
	logger.Info("memory loaded", "path", opts.Path, "entries", len(s.entries), "max_size", s.maxSize)
	return s
}

// Load reads a memory file. A missing file returns no entries and no error;
// any other problem returns no entries and the cause.
func Load(path string) ([]model.Entry, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read memory: %w", err)
	}
	entries, err := model.DecodeEntries(data)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *JSONStore) Entries(_ context.Context) ([]model.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Entry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

func (s *JSONStore) Append(_ context.Context, e model.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = capEntries(append(s.entries, e), s.maxSize)
	if err := s.persistLocked(); err != nil {
		s.logger.Error("persist memory failed", "path", s.path, "error", err)
	}
	return nil
}

// Persist writes the current entries to disk and reports any failure.
func (s *JSONStore) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked()
}

func (s *JSONStore) persistLocked() error {
	data, err := model.EncodeEntries(s.entries)
	if err != nil {
		return err
	}
	return writeFileAtomic(s.path, data)
}

func (s *JSONStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *JSONStore) MaxSize() int { return s.maxSize }

func (s *JSONStore) Stats(_ context.Context) (*Stats, error) {
	st := &Stats{
		Backend: "json",
		Path:    s.path,
		Entries: s.Len(),
		MaxSize: s.maxSize,
	}
	if info, err := os.Stat(s.path); err == nil {
		st.SizeBytes = info.Size()
	}
	return st, nil
}

func (s *JSONStore) Close() error { return nil }

// rename is swapped in tests to interrupt a save after the temp file is written.
var rename = os.Rename

// writeFileAtomic writes data to a temp file next to path, syncs it,
// renames it over path and syncs the directory so the rename is durable.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	success = true

	return syncDir(dir)
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("open dir: %w", err)
	}
	defer d.Close()
	if err := d.Sync(); err != nil {
		return fmt.Errorf("sync dir: %w", err)
	}
	return nil
}
