package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/kola-hr/kola/internal/hrapi"
	"github.com/kola-hr/kola/internal/tokenstore"
)

// ErrNotAuthenticated is returned by operations that need a signed-in user.
var ErrNotAuthenticated = errors.New("auth: not authenticated")

// ErrNoCredential is returned when a login or signup response carries no token.
var ErrNoCredential = errors.New("auth: response carried no credential")

// Session is the process-wide view of who is signed in. It is the only
// writer of the hydrated User; the credential itself lives in the store.
type Session struct {
	store   CredentialStore
	backend Backend
	cache   *ProfileCache
	logger  *slog.Logger

	mu    sync.RWMutex
	state State
	user  *User
}

// Option customises a Session.
type Option func(*Session)

// WithProfileCache shares hydrated users between sessions for a short TTL.
func WithProfileCache(c *ProfileCache) Option {
	return func(s *Session) { s.cache = c }
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSession constructs an unauthenticated Session. Call Init to hydrate it
// from a stored credential.
func NewSession(store CredentialStore, backend Backend, opts ...Option) *Session {
	s := &Session{
		store:   store,
		backend: backend,
		logger:  slog.New(slog.DiscardHandler),
		state:   StateUnauthenticated,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CurrentUser returns a copy of the signed-in user, or nil.
func (s *Session) CurrentUser() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// State reports the current state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// IsLoading is true while a login or hydration is in flight.
func (s *Session) IsLoading() bool { return s.State() == StateInitializing }

// IsAuthenticated is true once a user has been hydrated.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == StateAuthenticated && s.user != nil
}

// Init hydrates the session from a stored credential. Without one the
// session stays unauthenticated and no call is made. A failed hydration
// clears the credential unless the caller abandoned the request.
func (s *Session) Init(ctx context.Context) error {
	token, ok := s.store.Token(ctx)
	if !ok {
		s.set(StateUnauthenticated, nil)
		return nil
	}
	s.set(StateInitializing, nil)
	user, err := s.cache.Load(ctx, token, func(ctx context.Context) (*User, error) {
		return s.hydrate(ctx, token)
	})
	if errors.Is(err, context.Canceled) {
		s.set(StateUnauthenticated, nil)
		return err
	}
	if err != nil {
		s.logger.InfoContext(ctx, "auth: stored credential rejected", slog.Any("error", err))
		return s.fail(ctx, token, err)
	}
	s.set(StateAuthenticated, user)
	return nil
}

// Login exchanges credentials for a token, stores it and hydrates the user.
// On any failure the credential is cleared and the error returned.
func (s *Session) Login(ctx context.Context, email, password, companyID string) error {
	s.reset(ctx)
	resp, err := s.backend.Login(ctx, hrapi.LoginRequest{Email: email, Password: password, CompanyID: companyID})
	if err != nil {
		return s.fail(ctx, "", fmt.Errorf("auth: login: %w", err))
	}
	return s.adopt(ctx, resp, nil)
}

// Signup validates the form locally, creates the account and signs in with
// the issued token. Validation failures make no network call and leave the
// session untouched.
func (s *Session) Signup(ctx context.Context, in SignupInput) error {
	if err := ValidateSignup(in); err != nil {
		return err
	}
	s.reset(ctx)
	resp, err := s.backend.Signup(ctx, hrapi.SignupRequest{
		Email:     in.Email,
		Password:  in.Password,
		Role:      in.Role.Wire(),
		CompanyID: in.CompanyID,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	})
	if err != nil {
		return s.fail(ctx, "", fmt.Errorf("auth: signup: %w", err))
	}
	seed := &User{
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Role:      in.Role,
		CompanyID: in.CompanyID,
	}
	return s.adopt(ctx, resp, seed)
}

// Logout clears the credential and the user. It never calls the backend.
func (s *Session) Logout(ctx context.Context) {
	token, _ := s.store.Token(ctx)
	s.cache.Forget(token)
	_ = s.store.Clear(ctx)
	s.set(StateUnauthenticated, nil)
}

// Refresh re-fetches the profile of a signed-in user, bypassing the cache.
// A failure signs the user out.
func (s *Session) Refresh(ctx context.Context) error {
	token, ok := s.store.Token(ctx)
	if !ok || !s.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	user, err := s.hydrate(ctx, token)
	if err != nil {
		return s.fail(ctx, token, fmt.Errorf("auth: refresh: %w", err))
	}
	s.cache.Put(token, *user)
	s.set(StateAuthenticated, user)
	return nil
}

func (s *Session) adopt(ctx context.Context, resp *hrapi.AuthResponse, seed *User) error {
	token := resp.Credential()
	if token == "" {
		return s.fail(ctx, "", ErrNoCredential)
	}
	// Storage errors degrade to an in-memory credential for this process.
	_ = s.store.SetToken(ctx, token)
	if resp.RefreshToken != "" {
		_ = s.store.SetValue(ctx, tokenstore.KeyRefreshToken, resp.RefreshToken)
	}
	if seed != nil {
		s.persistUser(ctx, *seed)
	}
	user, err := s.hydrate(ctx, token)
	if err != nil {
		return s.fail(ctx, token, err)
	}
	s.cache.Put(token, *user)
	s.set(StateAuthenticated, user)
	return nil
}

// hydrate builds the User for token from the profile and company records.
func (s *Session) hydrate(ctx context.Context, token string) (*User, error) {
	profile, err := s.backend.MyProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth: fetch profile: %w", err)
	}
	stored, _ := s.store.Value(ctx, tokenstore.KeyUser)
	user := &User{
		ID:          profile.ID,
		Email:       profile.Email,
		FirstName:   profile.FirstName,
		LastName:    profile.LastName,
		Role:        resolveRole(*profile, stored, token),
		CompanyID:   profile.CompanyID,
		CompanyName: DefaultCompanyName,
	}
	if user.CompanyID != "" {
		company, err := s.backend.Company(ctx, user.CompanyID)
		switch {
		case errors.Is(err, hrapi.ErrUnauthorized):
			return nil, fmt.Errorf("auth: fetch company: %w", err)
		case err != nil:
			s.logger.DebugContext(ctx, "auth: company lookup failed, using default name", slog.Any("error", err))
		case company.Name != "":
			user.CompanyName = company.Name
		}
	}
	s.persistUser(ctx, *user)
	return user, nil
}

func (s *Session) persistUser(ctx context.Context, user User) {
	data, err := json.Marshal(user)
	if err != nil {
		return
	}
	_ = s.store.SetValue(ctx, tokenstore.KeyUser, string(data))
}

// reset drops whatever account was signed in before a new login so nothing
// from it is read back during hydration.
func (s *Session) reset(ctx context.Context) {
	if token, ok := s.store.Token(ctx); ok {
		s.cache.Forget(token)
	}
	_ = s.store.Clear(ctx)
	s.set(StateInitializing, nil)
}

func (s *Session) fail(ctx context.Context, token string, err error) error {
	if token == "" {
		token, _ = s.store.Token(ctx)
	}
	s.cache.Forget(token)
	_ = s.store.Clear(ctx)
	s.set(StateUnauthenticated, nil)
	return err
}

func (s *Session) set(state State, user *User) {
	s.mu.Lock()
	s.state = state
	s.user = user
	s.mu.Unlock()
}
