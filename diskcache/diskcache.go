// Package diskcache persists decoration cache snapshots between runs.
//
// A snapshot is keyed by a fingerprint of everything that influences
// decoration output (template source, provider name, database directory), so
// a stale snapshot can never warm a cache with decorations rendered under
// different settings. Snapshots are msgpack-encoded and written atomically.
package diskcache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when snapshot format changes.
const snapshotSchemaVersion uint16 = 1

// Store holds decoration snapshots in the user's cache directory.
// Thread-safe for concurrent access.
type Store struct {
	mu  sync.RWMutex
	dir string
}

// snapshot is the on-disk form of a decoration cache.
type snapshot struct {
	// Schema version for safe invalidation when format changes.
	Schema uint16

	// CreatedAt is when the snapshot was written, in Unix seconds.
	CreatedAt int64

	// Entries maps raw address text to its rendered decoration.
	Entries map[string]string
}

// Open initializes a store at the standard cache location for app,
// honoring XDG_CACHE_HOME.
func Open(app string) (*Store, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDir(filepath.Join(base, app))
}

// OpenDir initializes a store at an explicit directory.
func OpenDir(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

// Fingerprint derives a snapshot key from the settings that influence
// decoration output. Parts are length-prefixed before hashing so distinct
// part lists never collide by concatenation.
func Fingerprint(parts ...string) string {
	h := sha256.New()
	for _, part := range parts {
		fmt.Fprintf(h, "%d:", len(part))
		h.Write([]byte(part))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (s *Store) pathFor(key string) string {
	return filepath.Join(s.dir, "decorations", key+".mp")
}

// Save serializes and writes a snapshot for key.
func (s *Store) Save(key string, entries map[string]string) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(&snapshot{
		Schema:    snapshotSchemaVersion,
		CreatedAt: time.Now().Unix(),
		Entries:   entries,
	}); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Atomic replace.
	return os.Rename(f.Name(), p)
}

// Load reads the snapshot for key. A missing snapshot, or one written under
// a different schema version, reports ok=false without error.
func (s *Store) Load(key string) (map[string]string, bool, error) {
	if s == nil {
		return nil, false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := os.Open(s.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var snap snapshot
	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(&snap); err != nil {
		return nil, false, err
	}
	if snap.Schema != snapshotSchemaVersion {
		return nil, false, nil
	}
	return snap.Entries, true, nil
}

// DropAll invalidates every snapshot, useful after format changes.
func (s *Store) DropAll() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(s.dir, old); err != nil {
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(s.dir, 0o755)
}
