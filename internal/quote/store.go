// Package quote implements the client-facing quote portal: capability
// tokens gating access to one CRM record each, the session state that
// tracks which tokens a browser has unlocked, and the assembly of the
// itinerary view from CRM records.
package quote

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Token grants view/edit access to exactly one CRM record, gated by a
// shared password. Tokens never expire on their own; CreatedAt is
// persisted so a retention policy can prune the store externally.
type Token struct {
	RecordID  string    `json:"record_id"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"created_at"`
}

// TokenStore is a flat JSON file mapping token values to Tokens.
// Write frequency is low (one quote generated at a time), so the
// whole map is rewritten on every change.
type TokenStore struct {
	path string

	mu     sync.Mutex
	tokens map[string]Token
}

// NewTokenStore opens (or initializes) the token store at path.
func NewTokenStore(path string) (*TokenStore, error) {
	s := &TokenStore{path: path, tokens: map[string]Token{}}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &s.tokens); err != nil {
		return nil, fmt.Errorf("failed to parse token store %s: %w", path, err)
	}
	return s, nil
}

// Create mints a new token for the record and persists it. An empty
// password gets a generated one; the caller shares it with the client
// out of band.
func (s *TokenStore) Create(recordID, password string) (token string, pass string, err error) {
	if password == "" {
		password = uuid.NewString()[:8]
	}
	token = uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[token] = Token{
		RecordID:  recordID,
		Password:  password,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.persistLocked(); err != nil {
		delete(s.tokens, token)
		return "", "", err
	}
	return token, password, nil
}

// Lookup resolves a token value.
func (s *TokenStore) Lookup(token string) (Token, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[token]
	return t, ok
}

func (s *TokenStore) persistLocked() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(s.tokens, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}
