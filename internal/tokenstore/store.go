// Package tokenstore keeps the bearer credential of the signed-in user in
// durable storage. The Store layers an in-memory copy over a Backend so a
// storage outage degrades to "not signed in" instead of failing requests.
package tokenstore

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// Fixed storage keys.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"
)

// ErrNotFound is returned by backends when a key holds no value.
var ErrNotFound = errors.New("tokenstore: not found")

// Backend is durable key/value storage.
type Backend interface {
	Load(ctx context.Context, key string) (string, error)
	Save(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// Store holds one optional bearer credential plus the serialized user
// stored next to it.
type Store struct {
	backend Backend
	logger  *slog.Logger

	mu     sync.Mutex
	token  string
	loaded bool
}

// New constructs a Store over backend. A nil logger discards warnings.
func New(backend Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{backend: backend, logger: logger}
}

// Token returns the stored credential, or false when absent.
func (s *Store) Token(ctx context.Context) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" && !s.loaded {
		s.loaded = true
		s.token = s.load(ctx, KeyAccessToken)
	}
	return s.token, s.token != ""
}

// SetToken stores the credential. An empty token clears it.
// The in-memory value is updated even when the backend fails.
func (s *Store) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return s.Clear(ctx)
	}
	s.mu.Lock()
	s.token = token
	s.loaded = true
	s.mu.Unlock()
	if s.backend == nil {
		return nil
	}
	if err := s.backend.Save(ctx, KeyAccessToken, token); err != nil {
		s.logger.WarnContext(ctx, "tokenstore: persist credential", slog.Any("error", err))
		return err
	}
	return nil
}

// Clear removes the credential, refresh token and stored user.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.loaded = true
	s.mu.Unlock()
	if s.backend == nil {
		return nil
	}
	if err := s.backend.Delete(ctx, KeyAccessToken, KeyRefreshToken, KeyUser); err != nil {
		s.logger.WarnContext(ctx, "tokenstore: clear credential", slog.Any("error", err))
		return err
	}
	return nil
}

// Value returns a raw stored value, or false when absent or unreadable.
func (s *Store) Value(ctx context.Context, key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value := s.load(ctx, key)
	return value, value != ""
}

// SetValue stores a raw value under key. An empty value deletes the key.
func (s *Store) SetValue(ctx context.Context, key, value string) error {
	if s.backend == nil {
		return nil
	}
	var err error
	if value == "" {
		err = s.backend.Delete(ctx, key)
	} else {
		err = s.backend.Save(ctx, key, value)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "tokenstore: write value", slog.String("key", key), slog.Any("error", err))
	}
	return err
}

func (s *Store) load(ctx context.Context, key string) string {
	if s.backend == nil {
		return ""
	}
	value, err := s.backend.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.WarnContext(ctx, "tokenstore: storage unavailable, treating as absent", slog.String("key", key), slog.Any("error", err))
		}
		return ""
	}
	return value
}
