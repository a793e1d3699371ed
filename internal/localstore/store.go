// Package localstore persists the small amount of client-side state the
// storefront owns: the anonymous client identifier and the identity
// provider's token cache. It is the local-file analog of browser
// localStorage.
package localstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

const anonymousIDKey = "anonymous_client_id"

// Store is a fail-safe key/value store backed by a single JSON file.
// Reads behave like misses when the file is absent or unreadable.
type Store struct {
	mu   sync.Mutex
	path string
}

// Open creates a store backed by the given file path. The file is created
// lazily on first write.
func Open(path string) *Store {
	return &Store{path: path}
}

// Get returns the value for key, or "" if missing or the file is unreadable.
func (s *Store) Get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()[key]
}

// Set stores value under key.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values := s.load()
	values[key] = value
	return s.save(values)
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values := s.load()
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return s.save(values)
}

// AnonymousClientID returns the persisted anonymous identifier, generating
// and storing a new one on first use. The identifier stays stable until
// explicitly cleared.
func (s *Store) AnonymousClientID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	values := s.load()
	if id := values[anonymousIDKey]; id != "" {
		return id
	}
	id := uuid.New().String()
	values[anonymousIDKey] = id
	_ = s.save(values)
	return id
}

// ClearAnonymousClientID drops the stored anonymous identifier so the next
// session starts with a fresh one.
func (s *Store) ClearAnonymousClientID() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values := s.load()
	delete(values, anonymousIDKey)
	return s.save(values)
}

func (s *Store) load() map[string]string {
	values := map[string]string{}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return values
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return map[string]string{}
	}
	return values
}

func (s *Store) save(values map[string]string) error {
	data, err := json.Marshal(values)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	return os.WriteFile(s.path, data, 0o600)
}
