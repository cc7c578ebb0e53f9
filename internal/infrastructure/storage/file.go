// Package storage holds the process-local backends: session storage in a
// JSON file or in memory, and the in-memory verification guard and attempt
// journal used when Redis and MongoDB are not configured.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/pulsepr/storefront/internal/core/ports"
)

// FileStorage persists the two session keys as a flat JSON object.
type FileStorage struct {
	path string
	mu   sync.Mutex
}

// NewFileStorage returns a store backed by path. The file is created on the
// first Save.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

func (f *FileStorage) Load(_ context.Context) (ports.StoredSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	kv, err := f.read()
	if err != nil {
		return ports.StoredSession{}, err
	}
	return ports.StoredSession{Token: kv[ports.TokenKey], User: kv[ports.UserKey]}, nil
}

func (f *FileStorage) Save(_ context.Context, s ports.StoredSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.write(map[string]string{ports.TokenKey: s.Token, ports.UserKey: s.User})
}

func (f *FileStorage) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear session file: %w", err)
	}
	return nil
}

func (f *FileStorage) read() (map[string]string, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}
	kv := map[string]string{}
	if err := json.Unmarshal(raw, &kv); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}
	return kv, nil
}

// write replaces the file atomically so a crash never leaves one key
// without the other.
func (f *FileStorage) write(kv map[string]string) error {
	raw, err := json.Marshal(kv)
	if err != nil {
		return fmt.Errorf("encode session file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".session-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}
