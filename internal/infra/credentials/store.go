// Package credentials stores the bearer token of the signed-in user.
// Two backends implement port.CredentialStore: an in-memory one built on the
// TTL cache, and a file one that survives restarts of the terminal client.
package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/boddenberg/bank-dashboard-go/internal/domain"
	"github.com/boddenberg/bank-dashboard-go/internal/infra/cache"
	"github.com/boddenberg/bank-dashboard-go/internal/port"

	"github.com/golang-jwt/jwt/v5"
)

const tokenKey = "token"

// TokenExpiry reads the exp claim without verifying the signature; the
// service verifies it. ok is false for opaque tokens or tokens without exp.
func TokenExpiry(token string) (exp time.Time, ok bool) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

func checkNotExpired(token string, now time.Time) (ttl time.Duration, err error) {
	exp, ok := TokenExpiry(token)
	if !ok {
		return 0, nil
	}
	ttl = exp.Sub(now)
	if ttl <= 0 {
		return 0, &domain.ErrUnauthorized{Message: "token expired"}
	}
	return ttl, nil
}

// ============================================================
// In-memory store
// ============================================================

// MemoryStore keeps the token in a TTL cache keyed by the JWT expiry.
type MemoryStore struct {
	cache port.Cache[string]
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cache: cache.New[string](0)}
}

// Token returns the stored token or domain.ErrNoCredential.
func (s *MemoryStore) Token(_ context.Context) (string, error) {
	token, ok := s.cache.Get(tokenKey)
	if !ok {
		return "", domain.ErrNoCredential
	}
	return token, nil
}

// Save stores token until its exp claim.
func (s *MemoryStore) Save(_ context.Context, token string) error {
	if token == "" {
		return &domain.ErrValidation{Field: "token", Message: "empty token"}
	}
	ttl, err := checkNotExpired(token, time.Now())
	if err != nil {
		return err
	}
	s.cache.SetWithTTL(tokenKey, token, ttl)
	return nil
}

// Clear forgets the token.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.cache.Delete(tokenKey)
	return nil
}

// ============================================================
// File store
// ============================================================

type storedCredential struct {
	Token   string    `json:"token"`
	SavedAt time.Time `json:"saved_at"`
}

// FileStore persists the token as JSON with owner-only permissions.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a store at path. The file is created on first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Token reads the stored token. Expired tokens are reported as missing.
func (s *FileStore) Token(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", domain.ErrNoCredential
	}
	if err != nil {
		return "", fmt.Errorf("read credentials: %w", err)
	}

	var stored storedCredential
	if err := json.Unmarshal(data, &stored); err != nil {
		return "", fmt.Errorf("decode credentials: %w", err)
	}
	if stored.Token == "" {
		return "", domain.ErrNoCredential
	}
	if _, err := checkNotExpired(stored.Token, time.Now()); err != nil {
		return "", domain.ErrNoCredential
	}
	return stored.Token, nil
}

// Save writes token to disk, replacing any previous one.
func (s *FileStore) Save(_ context.Context, token string) error {
	if token == "" {
		return &domain.ErrValidation{Field: "token", Message: "empty token"}
	}
	if _, err := checkNotExpired(token, time.Now()); err != nil {
		return err
	}

	data, err := json.Marshal(storedCredential{Token: token, SavedAt: time.Now().UTC()})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

// Clear removes the credentials file.
func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}
