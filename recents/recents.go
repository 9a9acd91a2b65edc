// Package recents keeps a small YAML history of finished exports.
package recents

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-yaml"

	"photo2pdf/files_manager"
)

// MaxEntries is how many exports are remembered.
const MaxEntries = 20

var ErrNoPath = errors.New("recents file path is empty")

type Entry struct {
	Path      string    `yaml:"path"`
	Name      string    `yaml:"name"`
	CreatedAt time.Time `yaml:"createdAt"`
	HD        bool      `yaml:"hd"`
	Pages     int       `yaml:"pages"`
}

type file struct {
	Entries []Entry `yaml:"entries"`
}

// Store reads and writes the history file. Methods are safe for concurrent
// use within one process.
type Store struct {
	mu   sync.Mutex
	path string
}

func New(path string) (*Store, error) {
	if path == "" {
		return nil, ErrNoPath
	}
	return &Store{path: path}, nil
}

// DefaultPath is recents.yaml under the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "photo2pdf", "recents.yaml"), nil
}

// List returns entries newest first. A missing or unreadable file is an
// empty history.
func (s *Store) List() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Add records e as the newest entry, replacing any entry with the same path.
func (s *Store) Add(e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := []Entry{e}
	for _, old := range s.load() {
		if old.Path != e.Path {
			entries = append(entries, old)
		}
	}
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}
	return s.save(entries)
}

// Remove forgets the entry for path. It reports whether one was removed.
func (s *Store) Remove(path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.load()
	entries := make([]Entry, 0, len(old))
	for _, e := range old {
		if e.Path != path {
			entries = append(entries, e)
		}
	}
	if len(entries) == len(old) {
		return false, nil
	}
	return true, s.save(entries)
}

func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(nil)
}

func (s *Store) load() []Entry {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil
	}
	return f.Entries
}

func (s *Store) save(entries []Entry) error {
	data, err := yaml.Marshal(file{Entries: entries})
	if err != nil {
		return fmt.Errorf("encoding recents: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating recents directory: %w", err)
	}
	return files_manager.WriteFileAtomic(s.path, data)
}
