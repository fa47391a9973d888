package auth

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/kola-hr/kola/internal/hrapi"
	"github.com/kola-hr/kola/internal/shared"
	"github.com/kola-hr/kola/internal/tokenstore"
)

// Public auth routes.
const (
	LoginPath  = "/login"
	SignupPath = "/signup"
)

// SessionExpiredMessage is flashed when a backend call returns 401.
const SessionExpiredMessage = "Your session has expired. Please sign in again."

// Middleware binds the HR client and a Session to every request.
type Middleware struct {
	Client *hrapi.Client
	Cache  *ProfileCache
	Logger *slog.Logger
}

// Hydrate builds a token store over the cookie session, a client bound to
// it and an initialised Session, and stores the client and Session in the
// request context. A 401 from any call made while serving the request
// redirects to the login page once; later writes are dropped.
func (m Middleware) Hydrate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := m.Logger
		if logger == nil {
			logger = slog.New(slog.DiscardHandler)
		}

		store := tokenstore.New(tokenstore.NewSessionBackend(shared.SessionFromContext(ctx)), logger)
		gate := &gateWriter{ResponseWriter: w}
		onUnauthorized := func(ctx context.Context) {
			// The auth forms report their own failures.
			if r.URL.Path == LoginPath || r.URL.Path == SignupPath {
				return
			}
			gate.once.Do(func() {
				shared.Flash(ctx, shared.FlashError, SessionExpiredMessage)
				gate.redirect(r, LoginPath)
			})
		}

		client := m.Client.With(store, onUnauthorized)
		session := NewSession(store, client, WithProfileCache(m.Cache), WithLogger(logger))
		if err := session.Init(ctx); err != nil {
			logger.WarnContext(ctx, "auth: session hydration failed", slog.Any("error", err))
		}

		ctx = hrapi.ContextWithClient(ctx, client)
		ctx = ContextWithSession(ctx, session)
		next.ServeHTTP(gate, r.WithContext(ctx))
	})
}

// RequireAuth sends unauthenticated requests to the login page.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := SessionFromContext(r.Context())
		if s == nil || !s.IsAuthenticated() {
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// gateWriter lets the unauthorized hook take over the response exactly once.
type gateWriter struct {
	http.ResponseWriter

	once    sync.Once
	mu      sync.Mutex
	wrote   bool
	claimed bool
	discard http.Header
}

func (g *gateWriter) Header() http.Header {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.claimed {
		if g.discard == nil {
			g.discard = make(http.Header)
		}
		return g.discard
	}
	return g.ResponseWriter.Header()
}

func (g *gateWriter) redirect(r *http.Request, target string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.wrote {
		return
	}
	g.wrote = true
	g.claimed = true
	http.Redirect(g.ResponseWriter, r, target, http.StatusSeeOther)
}

func (g *gateWriter) WriteHeader(status int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.claimed {
		return
	}
	g.wrote = true
	g.ResponseWriter.WriteHeader(status)
}

func (g *gateWriter) Write(p []byte) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.claimed {
		return len(p), nil
	}
	g.wrote = true
	return g.ResponseWriter.Write(p)
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (g *gateWriter) Unwrap() http.ResponseWriter { return g.ResponseWriter }
