package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/eshaffer321/constructcycle-go/internal/types"
	"github.com/pkg/errors"
)

// FileStorage persists entries as a JSON object in a single file so a session
// survives process restarts. The file is written with owner-only permissions.
// A file that does not parse reads as empty and is replaced on the next write.
type FileStorage struct {
	path   string
	mu     sync.Mutex
	logger types.Logger
}

// NewFileStorage creates a storage backed by the file at path. The file is
// created on first write.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Path returns the backing file path
func (f *FileStorage) Path() string {
	return f.path
}

// SetLogger installs the logger warned about unreadable session files
func (f *FileStorage) SetLogger(logger types.Logger) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logger = logger
}

// Get returns the value stored under key
func (f *FileStorage) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.read()
	if err != nil {
		return "", false, err
	}
	v, ok := entries[key]
	return v, ok, nil
}

// Set stores value under key
func (f *FileStorage) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.read()
	if err != nil {
		return err
	}
	entries[key] = value
	return f.write(entries)
}

// Delete removes key
func (f *FileStorage) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := entries[key]; !ok {
		return nil
	}
	delete(entries, key)
	return f.write(entries)
}

func (f *FileStorage) read() (map[string]string, error) {
	entries := make(map[string]string)

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return entries, nil
		}
		return nil, errors.Wrap(err, "failed to read session file")
	}

	if len(data) == 0 {
		return entries, nil
	}

	if err := json.Unmarshal(data, &entries); err != nil {
		if f.logger != nil {
			f.logger.Warn("Ignoring unreadable session file", "path", f.path, "error", err)
		}
		return make(map[string]string), nil
	}
	return entries, nil
}

func (f *FileStorage) write(entries map[string]string) error {
	// Create directory if needed
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return errors.Wrap(err, "failed to create session directory")
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal session file")
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return errors.Wrap(err, "failed to write session file")
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return errors.Wrap(err, "failed to replace session file")
	}
	return nil
}
