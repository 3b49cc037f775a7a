package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Well-known keys. The names are carried over from the original persisted
// blob so existing data keeps loading.
const (
	KeyEvents       = "photographer_diary_events"
	KeyLegendHidden = "diary_legend_hidden"
)

// Store is the persistence port the diary writes through. It is a plain
// key-value surface: the diary neither knows nor cares whether values land
// on disk or stay in memory.
type Store interface {
	// Load returns the value for key. ok is false when the key has never
	// been written; that is not an error.
	Load(key string) (data []byte, ok bool, err error)

	// Save replaces the value for key.
	Save(key string, data []byte) error
}

// File is a disk-backed Store keeping one file per key under a base
// directory. Writes go through a temp file + rename so a crash mid-write
// never leaves a half-written value behind.
type File struct {
	dir string
}

// NewFile creates a file-backed store rooted at dir.
func NewFile(dir string) *File {
	if dir == "" {
		// Caller should set this explicitly; fall back to a relative dir so
		// development runs without root permissions.
		dir = "./var/photodiary"
	}
	return &File{dir: dir}
}

func (f *File) path(key string) (string, error) {
	if key == "" {
		return "", errors.New("storage: empty key")
	}
	// Keys are fixed constants, but refuse anything path-like regardless.
	if strings.ContainsAny(key, "/\\") || key == "." || key == ".." {
		return "", errors.New("storage: invalid key")
	}
	return filepath.Join(f.dir, key+".json"), nil
}

func (f *File) Load(key string) ([]byte, bool, error) {
	p, err := f.path(key)
	if err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

func (f *File) Save(key string, data []byte) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(f.dir, 0o700); err != nil {
		return err
	}

	// Atomic write: temp file in the same directory, then rename.
	tmp, err := os.CreateTemp(f.dir, "."+key+"-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, p)
}

// Memory is an in-memory Store for tests and one-shot runs.
type Memory struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Load(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, true, nil
}

func (m *Memory) Save(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := make([]byte, len(data))
	copy(cp, data)
	m.data[key] = cp
	return nil
}
