// Package shelltest builds signed-in requests and a renderer for page
// handler tests.
package shelltest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kola-hr/kola/internal/auth"
	"github.com/kola-hr/kola/internal/hrapi"
	"github.com/kola-hr/kola/internal/shared"
	"github.com/kola-hr/kola/internal/shell"
	"github.com/kola-hr/kola/internal/tokenstore"
	"github.com/kola-hr/kola/internal/view"
)

// Token is the credential every signed-in request carries.
const Token = "abc"

// Profile is the stub identity backend used to sign requests in.
type Profile struct {
	ID        string
	Role      string
	CompanyID string
}

func (p Profile) Login(context.Context, hrapi.LoginRequest) (*hrapi.AuthResponse, error) {
	return &hrapi.AuthResponse{Token: Token}, nil
}

func (p Profile) Signup(context.Context, hrapi.SignupRequest) (*hrapi.AuthResponse, error) {
	return &hrapi.AuthResponse{Token: Token}, nil
}

func (p Profile) MyProfile(context.Context) (*hrapi.Employee, error) {
	id := p.ID
	if id == "" {
		id = "u1"
	}
	return &hrapi.Employee{ID: id, Email: id + "@acme.ng", FirstName: "Ada", LastName: "Obi", Role: p.Role, CompanyID: p.CompanyID}, nil
}

func (p Profile) Company(context.Context, string) (*hrapi.Company, error) {
	return &hrapi.Company{Name: "Acme"}, nil
}

// Renderer returns a page renderer over the embedded templates.
func Renderer(t *testing.T) *shell.Renderer {
	t.Helper()
	engine, err := view.NewEngine()
	require.NoError(t, err)
	return shell.NewRenderer(engine, shared.NewCSRFManager("test-secret"), nil)
}

// Request builds a request signed in as profile whose HR client talks to
// backendURL. form, when non-nil, is sent url-encoded.
func Request(t *testing.T, method, target, backendURL string, profile Profile, form url.Values) *http.Request {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	store := tokenstore.New(tokenstore.NewMemoryBackend(), nil)
	require.NoError(t, store.SetToken(context.Background(), Token))
	session := auth.NewSession(store, profile)
	require.NoError(t, session.Init(context.Background()))

	client := hrapi.New(hrapi.Config{BaseURL: backendURL}).With(store, nil)
	ctx := shared.ContextWithSession(req.Context(), new(shared.Session))
	ctx = auth.ContextWithSession(ctx, session)
	ctx = hrapi.ContextWithClient(ctx, client)
	return req.WithContext(ctx)
}

// Serve runs h for req and returns the recorder.
func Serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// JSON writes body with a JSON content type.
func JSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
