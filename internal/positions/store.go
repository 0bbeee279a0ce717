// Package positions persists the last playback offset of each media file.
//
// The backing file is a single JSON object mapping media paths to offsets in
// milliseconds. It is read once at startup and rewritten wholesale on Flush.
package positions

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/afero"
)

// DefaultFile is the store location, relative to the working directory.
const DefaultFile = "last_positions.json"

// Operations reported in PersistenceError.Op.
const (
	OpLoad  = "load"
	OpFlush = "flush"
)

// PersistenceError reports that the backing file could not be read or written.
// It is never fatal: callers log it and carry on without resume data.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("positions: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Entry is one saved offset.
type Entry struct {
	Path   string
	Offset time.Duration
}

// Store maps media paths to their last known playback offset.
type Store struct {
	fs   afero.Fs
	path string

	mu      sync.RWMutex
	offsets map[string]time.Duration
}

// New creates an empty store backed by path on fsys.
func New(fsys afero.Fs, path string) *Store {
	if path == "" {
		path = DefaultFile
	}
	return &Store{
		fs:      fsys,
		path:    path,
		offsets: make(map[string]time.Duration),
	}
}

// Path returns the backing file location.
func (s *Store) Path() string {
	return s.path
}

// Load replaces the in-memory mapping with the backing file's content.
//
// A missing file is the normal first-run state and yields an empty mapping
// with no error. An unreadable or corrupt file also yields an empty mapping;
// the cause is returned as a *PersistenceError for logging.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.offsets = make(map[string]time.Duration)

	data, err := afero.ReadFile(s.fs, s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return &PersistenceError{Op: OpLoad, Path: s.path, Err: err}
	}

	var raw map[string]int64
	if err := json.Unmarshal(data, &raw); err != nil {
		return &PersistenceError{Op: OpLoad, Path: s.path, Err: err}
	}

	for path, ms := range raw {
		if path == "" || ms < 0 {
			continue
		}
		s.offsets[path] = time.Duration(ms) * time.Millisecond
	}
	return nil
}

// Get returns the saved offset for path.
func (s *Store) Get(path string) (time.Duration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	offset, ok := s.offsets[path]
	return offset, ok
}

// Set records offset for path in memory. Call Flush to persist it.
func (s *Store) Set(path string, offset time.Duration) {
	if path == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offsets[path] = max(offset, 0)
}

// Len returns the number of saved offsets.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.offsets)
}

// Entries returns a copy of all saved offsets sorted by path.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths := lo.Keys(s.offsets)
	slices.Sort(paths)

	return lo.Map(paths, func(p string, _ int) Entry {
		return Entry{Path: p, Offset: s.offsets[p]}
	})
}

// Flush writes the whole mapping to the backing file.
// The content goes to a temporary sibling first and is renamed into place,
// so an interrupted flush leaves the previous file intact.
func (s *Store) Flush() error {
	s.mu.RLock()
	raw := make(map[string]int64, len(s.offsets))
	for path, offset := range s.offsets {
		raw[path] = offset.Milliseconds()
	}
	s.mu.RUnlock()

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return &PersistenceError{Op: OpFlush, Path: s.path, Err: err}
	}

	if err := s.writeAtomic(data); err != nil {
		return &PersistenceError{Op: OpFlush, Path: s.path, Err: err}
	}
	return nil
}

func (s *Store) writeAtomic(data []byte) error {
	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := afero.TempFile(s.fs, dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = s.fs.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		_ = s.fs.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return err
	}

	if err := s.fs.Rename(tmpName, s.path); err != nil {
		_ = s.fs.Remove(tmpName)
		return err
	}
	return nil
}
