// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
)

const entryExt = ".json"

// FileStore keeps one JSON document per key beneath a directory, so a later
// invocation of the CLI can adopt pages an earlier one fetched. File names are
// the MD5 of the clear-text key.
type FileStore struct {
	mu   sync.Mutex
	dir  string
	opts options
}

var _ Store = (*FileStore)(nil)

// Dir resolves the base cache directory.
// Precedence:
//  1. PANCTL_CACHE_DIR, if set and non-empty
//  2. os.UserCacheDir()/panctl
//
// Returns ("", false) if a base cannot be resolved (treat as disabled).
func Dir() (string, bool) {
	if c, ok := os.LookupEnv("PANCTL_CACHE_DIR"); ok && c != "" {
		return c, true
	}
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "panctl"), true
	}
	return "", false
}

// Enabled returns true unless PANCTL_CACHE explicitly disables it ("0"/"false").
func Enabled() bool {
	enabled, _ := os.LookupEnv("PANCTL_CACHE")
	return enabled == "" || (enabled != "0" && enabled != "false")
}

// NewFileStore returns a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string, opts ...Option) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("cache directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:mnd
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &FileStore{dir: dir, opts: newOptions(opts)}, nil
}

// Path returns the file an entry for key lives in.
func (s *FileStore) Path(key string) string {
	return filepath.Join(s.dir, encodeKey(key)+entryExt)
}

func (s *FileStore) Get(key string) (*Entry, bool) {
	return s.GetWithin(key, s.opts.ttl)
}

func (s *FileStore) GetWithin(key string, ttl time.Duration) (*Entry, bool) {
	e, err := s.read(s.Path(key))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.WithError(err).Debugf("unreadable cache entry for %s", key)
		}
		return nil, false
	}

	// An MD5 collision is not worth handling beyond refusing the entry.
	if e.Key != key || !e.IsFresh(s.opts.now(), ttl) {
		return nil, false
	}
	return e, true
}

func (s *FileStore) Put(key string, items json.RawMessage, nextCursor string, hasMore bool) error {
	if key == "" {
		return ErrEmptyKey
	}

	data, err := json.Marshal(newEntry(key, items, nextCursor, hasMore, s.opts.now()))
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Write then rename so a concurrent reader never sees half a document.
	p := s.Path(key)
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, os.FileMode(0o600)); err != nil { //nolint:mnd
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write to cache: %w", err)
	}

	log.Debugf("cached %s in %s", key, p)
	return nil
}

func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.Path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := s.files()
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := os.Remove(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
	}
	return nil
}

// Purge removes entries whose timestamp is older than olderThan. Unreadable
// files are removed too since nothing can ever adopt them.
func (s *FileStore) Purge(olderThan time.Duration) (int, error) {
	if olderThan <= 0 {
		log.Debug("cache purge disabled")
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := s.files()
	if err != nil {
		return 0, err
	}

	now := s.opts.now()
	n := 0
	for _, f := range files {
		e, err := s.read(f)
		if err == nil && e.IsFresh(now, olderThan) {
			continue
		}
		if err := os.Remove(f); err != nil {
			log.WithError(err).Warnf("failed to remove cache file %s", f)
			continue
		}
		log.Debugf("removed cache file %s", f)
		n++
	}
	return n, nil
}

func (s *FileStore) Stats() (Stats, error) {
	files, err := s.files()
	if err != nil {
		return Stats{}, err
	}

	now := s.opts.now()
	st := Stats{Backend: BackendFile, Entries: len(files)}
	for _, f := range files {
		if e, err := s.read(f); err != nil || !e.IsFresh(now, s.opts.ttl) {
			st.Stale++
		}
	}
	return st, nil
}

func (s *FileStore) read(p string) (*Entry, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	var e Entry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, fmt.Errorf("failed to decode cache entry %s: %w", p, err)
	}
	return &e, nil
}

func (s *FileStore) files() ([]string, error) {
	des, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	files := make([]string, 0, len(des))
	for _, de := range des {
		if de.IsDir() || !strings.HasSuffix(de.Name(), entryExt) {
			continue
		}
		files = append(files, filepath.Join(s.dir, de.Name()))
	}
	return files, nil
}

// encodeKey hashes k with MD5 and returns the hex string.
func encodeKey(k string) string {
	h := md5.New()
	_, _ = h.Write([]byte(k))
	return hex.EncodeToString(h.Sum(nil))
}
