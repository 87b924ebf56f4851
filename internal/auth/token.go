// Package auth caches SailPoint OAuth access tokens on disk so repeated
// CLI invocations do not request a new token every time.
package auth

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// ExpiryBuffer is how long before expiry a cached token stops being reused.
const ExpiryBuffer = 5 * time.Minute

// Identity names the OAuth client a token was issued to.
type Identity struct {
	ClientID string `json:"client_id"`
	TokenURL string `json:"token_url"`
}

// Credentials is the on-disk form of a cached token.
type Credentials struct {
	Identity
	Token     *oauth2.Token `json:"token"`
	CreatedAt int64         `json:"created_at"`
}

// CachedTokenSource wraps another token source and persists its tokens.
// A cached token is returned until it is within ExpiryBuffer of expiring.
type CachedTokenSource struct {
	path     string
	identity Identity
	base     oauth2.TokenSource

	mu          sync.Mutex
	credentials *Credentials
	now         func() time.Time
}

// NewCachedTokenSource creates a token source for id backed by the file
// at path. An empty path keeps the cache in memory only. An unreadable or
// corrupt cache file is ignored, as is a token issued to another identity.
func NewCachedTokenSource(path string, id Identity, base oauth2.TokenSource) *CachedTokenSource {
	s := &CachedTokenSource{
		path:     path,
		identity: id,
		base:     base,
		now:      time.Now,
	}
	_ = s.load()
	return s
}

// Token implements oauth2.TokenSource.
func (s *CachedTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.validLocked() {
		tok := *s.credentials.Token
		return &tok, nil
	}

	tok, err := s.base.Token()
	if err != nil {
		return nil, fmt.Errorf("fetching access token: %w", err)
	}

	s.credentials = &Credentials{
		Identity:  s.identity,
		Token:     tok,
		CreatedAt: s.now().Unix(),
	}
	// The token stays usable in memory when the cache cannot be written.
	if err := s.saveLocked(); err != nil {
		slog.Warn("failed to cache access token", "path", s.path, "error", err)
	}

	out := *tok
	return &out, nil
}

// Valid reports whether a cached token can be used without a refresh.
func (s *CachedTokenSource) Valid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validLocked()
}

// Clear drops the cached token and removes the cache file.
func (s *CachedTokenSource) Clear() error {
	s.mu.Lock()
	s.credentials = nil
	s.mu.Unlock()

	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing token cache: %w", err)
	}
	return nil
}

func (s *CachedTokenSource) validLocked() bool {
	if s.credentials == nil || s.credentials.Token == nil || s.credentials.Token.AccessToken == "" {
		return false
	}
	if s.credentials.Identity != s.identity {
		return false
	}
	expiry := s.credentials.Token.Expiry
	if expiry.IsZero() {
		return true
	}
	return s.now().Before(expiry.Add(-ExpiryBuffer))
}

func (s *CachedTokenSource) load() error {
	if s.path == "" {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return err
	}
	s.credentials = &creds
	return nil
}

func (s *CachedTokenSource) saveLocked() error {
	if s.path == "" || s.credentials == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s.credentials, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}
