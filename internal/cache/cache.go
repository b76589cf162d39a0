// Package cache keeps host responses to read-only commands on disk for a
// short TTL. Mutating commands are never cached; callers decide which
// commands qualify.
package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lydakis/hostbridge/internal/paths"
)

type entry struct {
	Command string          `json:"command"`
	Data    json.RawMessage `json:"data"`
	Created time.Time       `json:"created"`
	Expires time.Time       `json:"expires"`
}

// Store is a directory of cached responses.
type Store struct {
	Dir string
	now func() time.Time
}

// New returns a store rooted at dir.
func New(dir string) *Store {
	return &Store{Dir: dir, now: time.Now}
}

// Default returns the store under the user cache directory.
func Default() *Store {
	return New(paths.ResponseCacheDir())
}

// Get looks up a cached response. Returns false if not found or expired.
func (s *Store) Get(command string, params json.RawMessage) (json.RawMessage, bool) {
	e, _, ok := s.getEntry(command, params)
	if !ok {
		return nil, false
	}
	return e.Data, true
}

// Age returns how old a valid entry is and its ttl.
func (s *Store) Age(command string, params json.RawMessage) (time.Duration, time.Duration, bool) {
	e, _, ok := s.getEntry(command, params)
	if !ok {
		return 0, 0, false
	}
	ttl := e.Expires.Sub(e.Created)
	if ttl < 0 {
		ttl = 0
	}
	age := s.now().Sub(e.Created)
	if age < 0 {
		age = 0
	}
	return age, ttl, true
}

// Put stores a response.
func (s *Store) Put(command string, params json.RawMessage, data json.RawMessage, ttl time.Duration) error {
	if err := paths.EnsureDir(s.Dir); err != nil {
		return err
	}

	now := s.now()
	raw, err := json.Marshal(entry{
		Command: command,
		Data:    data,
		Created: now,
		Expires: now.Add(ttl),
	})
	if err != nil {
		return err
	}
	return os.WriteFile(s.entryPath(command, params), raw, 0600)
}

// Purge removes every cached response.
func (s *Store) Purge() error {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		if err := os.Remove(filepath.Join(s.Dir, e.Name())); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

func (s *Store) getEntry(command string, params json.RawMessage) (entry, string, bool) {
	path := s.entryPath(command, params)
	data, err := os.ReadFile(path)
	if err != nil {
		return entry{}, path, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		_ = os.Remove(path)
		return entry{}, path, false
	}

	if s.now().After(e.Expires) {
		_ = os.Remove(path)
		return entry{}, path, false
	}

	return e, path, true
}

func (s *Store) entryPath(command string, params json.RawMessage) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s", strings.ToLower(command), canonicalParams(params))
	key := hex.EncodeToString(h.Sum(nil))[:32]
	return filepath.Join(s.Dir, key+".json")
}

// canonicalParams re-encodes params so key order and whitespace do not split
// the cache.
func canonicalParams(params json.RawMessage) string {
	trimmed := bytes.TrimSpace(params)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "{}"
	}
	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return string(trimmed)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return string(trimmed)
	}
	return string(out)
}
