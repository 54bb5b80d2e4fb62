package store

import (
	"path/filepath"
	"sync"

	"acidbase/internal/domain"
)

const tokensFile = "tokens.json"

// TokenFileStore caches the last login token per server URL.
type TokenFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewTokenFileStore returns a TokenFileStore rooted at dir.
func NewTokenFileStore(dir string) *TokenFileStore {
	return &TokenFileStore{dir: dir}
}

// SaveToken stores or replaces the token for serverURL.
func (s *TokenFileStore) SaveToken(serverURL, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, tokensFile)
	tokens := map[string]string{}
	_ = readJSON(path, &tokens)
	tokens[serverURL] = token
	return writeJSON(path, tokens, 0o600)
}

// LoadToken retrieves the cached token for serverURL.
func (s *TokenFileStore) LoadToken(serverURL string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, tokensFile)
	tokens := map[string]string{}
	if err := readJSON(path, &tokens); err != nil {
		return "", false, err
	}
	tok, ok := tokens[serverURL]
	return tok, ok, nil
}

// Compile-time assertion that TokenFileStore implements domain.TokenStore.
var _ domain.TokenStore = (*TokenFileStore)(nil)
