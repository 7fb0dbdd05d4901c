// Package token implements the opaque access-token store backing both the
// request/response API and the WebSocket handshake. Tokens are unguessable
// random strings mapped to a member snapshot and an expiry, persisted as a
// full snapshot file so sessions survive a restart.
package token

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/cottons-kr/appplechat-api/internal/store"
)

// ErrInvalidToken is returned for a missing, unknown, or expired token.
var ErrInvalidToken = errors.New("invalid access token")

// Record is one issued token's stored state. The member snapshot captures the
// identity at issuance; callers always re-fetch the canonical record.
type Record struct {
	Member    store.Member `msgpack:"member"`
	ExpiresAt time.Time    `msgpack:"expiresAt"`
}

type Store struct {
	mu     sync.Mutex
	tokens map[string]Record

	members  store.MemberStore
	filePath string
	ttl      time.Duration
	now      func() time.Time

	logger *slog.Logger
}

func NewStore(logger *slog.Logger, members store.MemberStore, filePath string, ttl time.Duration) *Store {
	return &Store{
		tokens:   make(map[string]Record),
		members:  members,
		filePath: filePath,
		ttl:      ttl,
		now:      time.Now,
		logger:   logger.With(slog.String("component", "token_store")),
	}
}

// Issue creates a fresh token for the member and persists the store.
func (s *Store) Issue(member store.Member) (string, time.Time, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(raw)

	s.mu.Lock()
	expiresAt := s.now().Add(s.ttl)
	s.tokens[token] = Record{Member: member, ExpiresAt: expiresAt}
	s.persistLocked()
	s.mu.Unlock()

	return token, expiresAt, nil
}

// Validate reports whether the token is known and unexpired. Expired entries
// are purged on lookup.
func (s *Store) Validate(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validateLocked(token)
}

func (s *Store) validateLocked(token string) bool {
	record, ok := s.tokens[token]
	if !ok {
		return false
	}
	if !record.ExpiresAt.After(s.now()) {
		delete(s.tokens, token)
		return false
	}
	return true
}

// Resolve validates the token and returns the canonical member record,
// re-fetched from the persistent store rather than the issuance snapshot.
func (s *Store) Resolve(ctx context.Context, token string) (store.Member, error) {
	s.mu.Lock()
	if !s.validateLocked(token) {
		s.mu.Unlock()
		return store.Member{}, ErrInvalidToken
	}
	record := s.tokens[token]
	s.mu.Unlock()

	member, err := s.members.MemberByUUID(ctx, record.Member.UUID)
	if err != nil {
		return store.Member{}, fmt.Errorf("failed to resolve member for token: %w", err)
	}
	return member, nil
}

// Revoke removes the token unconditionally and persists the store.
func (s *Store) Revoke(token string) {
	s.mu.Lock()
	delete(s.tokens, token)
	s.persistLocked()
	s.mu.Unlock()
}

// Persist writes the full token snapshot to the durable file.
func (s *Store) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked()
}

// persistLocked snapshots under the store lock so a save never races a
// concurrent mutation. A failed save leaves in-memory state authoritative.
func (s *Store) persistLocked() error {
	data, err := msgpack.Marshal(s.tokens)
	if err != nil {
		s.logger.Error("Failed to encode access tokens", slog.Any("error", err))
		return err
	}
	if err := os.WriteFile(s.filePath, data, 0o600); err != nil {
		s.logger.Error("Failed to save access tokens", slog.Any("error", err))
		return err
	}
	s.logger.Info("Saved access tokens", slog.Int("count", len(s.tokens)))
	return nil
}

// Restore loads the token snapshot written by Persist. A missing or empty
// file is treated as zero tokens, not an error.
func (s *Store) Restore() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info("No access token file found, starting with an empty store")
			return nil
		}
		s.logger.Error("Failed to read access tokens", slog.Any("error", err))
		return err
	}
	if len(data) == 0 {
		return nil
	}

	tokens := make(map[string]Record)
	if err := msgpack.Unmarshal(data, &tokens); err != nil {
		s.logger.Error("Failed to decode access tokens", slog.Any("error", err))
		return err
	}

	s.mu.Lock()
	s.tokens = tokens
	s.mu.Unlock()

	s.logger.Info("Loaded access tokens", slog.Int("count", len(tokens)))
	return nil
}
