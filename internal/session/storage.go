package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/alexedwards/scs/v2"
	"github.com/sangamsetu/casedesk/internal/errors"
)

// Storage is the durable key-value storage that outlives a single request or command.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
}

// ScsStorage keeps the values in the server-side session of the request in ctx.
type ScsStorage struct {
	Manager *scs.SessionManager
}

func (s ScsStorage) Get(ctx context.Context, key string) (string, bool, error) {
	if !s.Manager.Exists(ctx, key) {
		return "", false, nil
	}
	return s.Manager.GetString(ctx, key), true, nil
}

func (s ScsStorage) Put(ctx context.Context, key, value string) error {
	s.Manager.Put(ctx, key, value)
	return nil
}

func (s ScsStorage) Remove(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		s.Manager.Remove(ctx, key)
	}
	return nil
}

// FileStorage keeps the values in a JSON file readable only by the current user.
type FileStorage struct {
	Path string
	mu   sync.Mutex
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{Path: path} //nolint:exhaustruct // zero mutex
}

func (f *FileStorage) load() (map[string]string, error) {
	values := map[string]string{}
	b, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read session file", slog.String("path", f.Path))
	}
	if err = json.Unmarshal(b, &values); err != nil {
		return nil, errors.Wrap(err, "decode session file", slog.String("path", f.Path))
	}
	return values, nil
}

func (f *FileStorage) save(values map[string]string) error {
	var (
		b   []byte
		err error
	)
	if err = os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil { //nolint:mnd // owner only
		return errors.Wrap(err, "create session directory", slog.String("path", f.Path))
	}
	if b, err = json.MarshalIndent(values, "", "  "); err != nil {
		return errors.Wrap(err, "encode session file")
	}
	tmp := f.Path + ".tmp"
	if err = os.WriteFile(tmp, b, 0o600); err != nil { //nolint:mnd // owner only
		return errors.Wrap(err, "write session file", slog.String("path", tmp))
	}
	if err = os.Rename(tmp, f.Path); err != nil {
		return errors.Wrap(err, "replace session file", slog.String("path", f.Path))
	}
	return nil
}

func (f *FileStorage) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (f *FileStorage) Put(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.load()
	if err != nil {
		return err
	}
	values[key] = value
	return f.save(values)
}

func (f *FileStorage) Remove(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.load()
	if err != nil {
		// An unreadable file is as good as gone.
		values = map[string]string{}
	}
	for _, key := range keys {
		delete(values, key)
	}
	return f.save(values)
}

// MemoryStorage keeps the values in memory.
type MemoryStorage struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: map[string]string{}} //nolint:exhaustruct // zero mutex
}

func (m *MemoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStorage) Put(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStorage) Remove(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

// Keys returns the number of stored keys.
func (m *MemoryStorage) Keys() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.values)
}
