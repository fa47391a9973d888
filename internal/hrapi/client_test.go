package hrapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kola-hr/kola/internal/hrapi"
	"github.com/kola-hr/kola/internal/tokenstore"
)

func newStore(t *testing.T, token string) *tokenstore.Store {
	t.Helper()
	store := tokenstore.New(tokenstore.NewMemoryBackend(), nil)
	if token != "" {
		require.NoError(t, store.SetToken(context.Background(), token))
	}
	return store
}

func TestBearerHeaderAttachedWhenTokenPresent(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		_ = json.NewEncoder(w).Encode(hrapi.Employee{ID: "e1"})
	}))
	defer srv.Close()

	client := hrapi.New(hrapi.Config{BaseURL: srv.URL}).With(newStore(t, "abc"), nil)
	_, err := client.MyProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", gotAuth)
}

func TestNoHeaderWhenTokenAbsent(t *testing.T) {
	var sawHeader bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawHeader = r.Header["Authorization"]
		_ = json.NewEncoder(w).Encode(hrapi.AuthResponse{Token: "t"})
	}))
	defer srv.Close()

	client := hrapi.New(hrapi.Config{BaseURL: srv.URL}).With(newStore(t, ""), nil)
	_, err := client.Login(context.Background(), hrapi.LoginRequest{Email: "a@b.c", Password: "secret", CompanyID: "acme"})
	require.NoError(t, err)
	assert.False(t, sawHeader)
}

func TestUnauthorizedClearsCredentialAndNotifies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"jwt expired"}`))
	}))
	defer srv.Close()

	store := newStore(t, "stale")
	var calls int32
	client := hrapi.New(hrapi.Config{BaseURL: srv.URL}).With(store, func(context.Context) {
		atomic.AddInt32(&calls, 1)
	})

	_, err := client.ListPayrollRuns(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, hrapi.ErrUnauthorized))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	_, ok := store.Token(context.Background())
	assert.False(t, ok, "401 clears the credential")
}

func TestConcurrentUnauthorizedCallsAllClear(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	store := newStore(t, "stale")
	var once sync.Once
	var redirects int32
	client := hrapi.New(hrapi.Config{BaseURL: srv.URL}).With(store, func(context.Context) {
		once.Do(func() { atomic.AddInt32(&redirects, 1) })
	})

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.ListLeaveRequests(context.Background())
			assert.ErrorIs(t, err, hrapi.ErrUnauthorized)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&redirects))
	_, ok := store.Token(context.Background())
	assert.False(t, ok)
}

func TestNon2xxSurfacesStatusAndMessage(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{name: "string message", status: http.StatusBadRequest, body: `{"message":"periodMonth must be between 1 and 12"}`, message: "periodMonth must be between 1 and 12"},
		{name: "list message", status: http.StatusUnprocessableEntity, body: `{"message":["email must be an email","jobTitle should not be empty"]}`, message: "email must be an email; jobTitle should not be empty"},
		{name: "error field", status: http.StatusConflict, body: `{"error":"Conflict"}`, message: "Conflict"},
		{name: "no body", status: http.StatusInternalServerError, body: ``, message: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			store := newStore(t, "abc")
			client := hrapi.New(hrapi.Config{BaseURL: srv.URL}).With(store, func(context.Context) {
				t.Fatal("non-401 must not trigger the unauthorized hook")
			})
			_, err := client.CreatePayrollRun(context.Background(), hrapi.PayrollRunInput{PeriodYear: 2024, PeriodMonth: 13})

			var apiErr *hrapi.Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.message, apiErr.Message)
			assert.Equal(t, tt.status, hrapi.StatusCode(err))
			assert.False(t, errors.Is(err, hrapi.ErrUnauthorized))

			_, ok := store.Token(context.Background())
			assert.True(t, ok, "credential kept on non-401 failures")
		})
	}
}

func TestTimeoutSurfacesAsFailure(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	client := hrapi.New(hrapi.Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := client.ListLeaveTypes(context.Background())
	require.Error(t, err)
	assert.True(t, hrapi.IsTimeout(err))
}

func TestListEmployeesQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/employees", r.URL.Path)
		assert.Equal(t, "0", r.URL.Query().Get("skip"))
		assert.Equal(t, "100", r.URL.Query().Get("take"))
		assert.Equal(t, "ada", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`{"employees":[{"id":"1","firstName":"Ada","lastName":"Obi","dateOfHire":"2023-01-15","salary":"5000000.00"}],"total":1}`))
	}))
	defer srv.Close()

	client := hrapi.New(hrapi.Config{BaseURL: srv.URL + "/api/"})
	list, err := client.ListEmployees(context.Background(), hrapi.EmployeeQuery{Take: 100, Search: "ada"})
	require.NoError(t, err)
	require.Len(t, list.Employees, 1)
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, "AO", list.Employees[0].Initials())
	assert.Equal(t, hrapi.Amount(5000000), list.Employees[0].Salary)
	assert.Equal(t, 2023, list.Employees[0].DateOfHire.Year())
}

func TestContextCarriesBoundClient(t *testing.T) {
	client := hrapi.New(hrapi.Config{})
	ctx := hrapi.ContextWithClient(context.Background(), client)
	assert.Same(t, client, hrapi.ClientFromContext(ctx))
	assert.Nil(t, hrapi.ClientFromContext(context.Background()))
	assert.Equal(t, hrapi.DefaultBaseURL, client.BaseURL())
}
