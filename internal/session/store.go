// Package session owns the persisted credentials and the auth lifecycle.
//
// Exactly two strings survive between runs: the bearer token and the
// username. They live in a 0600 JSON file under the data dir; a missing
// file means anonymous.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const credentialsFile = "session.json"

type credentials struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// Store reads and writes the persisted session. Safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	path  string
	creds credentials
}

// Open loads the session file from dataDir, treating a missing file as
// an anonymous session.
func Open(dataDir string) (*Store, error) {
	s := &Store{path: filepath.Join(dataDir, credentialsFile)}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading session file: %w", err)
	}
	if err := json.Unmarshal(data, &s.creds); err != nil {
		return nil, fmt.Errorf("parsing session file %s: %w", s.path, err)
	}
	return s, nil
}

// Token returns the stored bearer token, or "" when anonymous.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.Token
}

// Username returns the stored username, or "" when anonymous.
func (s *Store) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.Username
}

// Save persists the token and username, creating the data dir if needed.
func (s *Store) Save(token, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = credentials{Token: token, Username: username}
	return s.write()
}

// Clear drops the credentials and removes the session file.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = credentials{}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing session file: %w", err)
	}
	return nil
}

func (s *Store) write() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	data, err := json.MarshalIndent(s.creds, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}
