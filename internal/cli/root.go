// Package cli implements kolactl, the command line front end of the HR API.
// It shares the token store, client and session of the web dashboard; the
// credential lives in a YAML file under the user config directory.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	slogctx "github.com/veqryn/slog-context"

	"github.com/kola-hr/kola/internal/auth"
	"github.com/kola-hr/kola/internal/hrapi"
	"github.com/kola-hr/kola/internal/rbac"
	"github.com/kola-hr/kola/internal/shared"
	"github.com/kola-hr/kola/internal/tokenstore"
)

// Environment variables read for flag defaults.
const (
	EnvAPIURL          = "KOLA_API_URL"
	EnvAPITimeout      = "KOLA_API_TIMEOUT"
	EnvCredentialsFile = "KOLA_CREDENTIALS_FILE"
)

var (
	// ErrNotSignedIn is returned by commands that need a credential.
	ErrNotSignedIn = errors.New("not signed in: run `kolactl login` first")
	// ErrSessionExpired is returned after a 401 cleared the credential.
	ErrSessionExpired = errors.New("session expired: run `kolactl login` again")
)

type app struct {
	apiURL          string
	timeout         time.Duration
	credentialsFile string
	output          string
	logLevel        string

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	logger  *slog.Logger
	store   *tokenstore.Store
	client  *hrapi.Client
	session *auth.Session
	expired sync.Once
	// authFlow silences the expiry notice while login or signup runs.
	authFlow bool
}

// NewRootCmd creates the root cobra command for kolactl.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "kolactl",
		Short: "Kọlá HR from the terminal",
		Long:  "kolactl signs in to the Kọlá HR API and manages employees, payroll and leave.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	timeout := hrapi.DefaultTimeout
	if raw := os.Getenv(EnvAPITimeout); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			timeout = d
		}
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.apiURL, "api-url", envOr(EnvAPIURL, hrapi.DefaultBaseURL), "HR API base URL (or "+EnvAPIURL+")")
	flags.DurationVar(&a.timeout, "timeout", timeout, "per-call timeout (or "+EnvAPITimeout+")")
	flags.StringVar(&a.credentialsFile, "credentials", os.Getenv(EnvCredentialsFile), "credentials file (or "+EnvCredentialsFile+")")
	flags.StringVarP(&a.output, "output", "o", formatTable, "output format: table, json or yaml")
	flags.StringVar(&a.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		newLoginCmd(a),
		newSignupCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newEmployeesCmd(a),
		newPayrollCmd(a),
		newLeaveCmd(a),
		newPayslipsCmd(a),
		newBrowseCmd(a),
	)
	return root
}

// Message renders err for the terminal.
func Message(err error) string {
	if errors.Is(err, ErrNotSignedIn) || errors.Is(err, ErrSessionExpired) || errors.Is(err, errInvalidCredentials) {
		return err.Error()
	}
	var ve *auth.ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var apiErr *hrapi.Error
	var transportErr *hrapi.TransportError
	if errors.As(err, &apiErr) || errors.As(err, &transportErr) || errors.Is(err, shared.ErrNotFound) {
		return shared.UserSafeMessage(err)
	}
	return err.Error()
}

func (a *app) setup(cmd *cobra.Command) error {
	a.in = cmd.InOrStdin()
	a.out = cmd.OutOrStdout()
	a.errOut = cmd.ErrOrStderr()

	switch a.output {
	case formatTable, formatJSON, formatYAML:
	default:
		return fmt.Errorf("unknown output format %q: use table, json or yaml", a.output)
	}

	a.logger = slog.New(slogctx.NewHandler(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: parseLevel(a.logLevel)}), nil))

	path := a.credentialsFile
	if path == "" {
		var err error
		if path, err = tokenstore.DefaultCredentialsPath(); err != nil {
			return err
		}
	}
	a.store = tokenstore.New(tokenstore.NewFileBackend(path), a.logger)
	a.client = hrapi.New(
		hrapi.Config{BaseURL: a.apiURL, Timeout: a.timeout, UserAgent: "kolactl"},
		hrapi.WithLogger(a.logger),
	).With(a.store, a.onUnauthorized)
	a.session = auth.NewSession(a.store, a.client, auth.WithLogger(a.logger))
	return nil
}

// onUnauthorized prints the expiry notice once per invocation.
func (a *app) onUnauthorized(context.Context) {
	if a.authFlow {
		return
	}
	a.expired.Do(func() {
		fmt.Fprintln(a.errOut, auth.SessionExpiredMessage)
	})
}

// signedIn hydrates the session from the stored credential.
func (a *app) signedIn(ctx context.Context) (*auth.User, error) {
	if err := a.session.Init(ctx); err != nil {
		if errors.Is(err, hrapi.ErrUnauthorized) {
			return nil, ErrSessionExpired
		}
		return nil, err
	}
	user := a.session.CurrentUser()
	if user == nil {
		return nil, ErrNotSignedIn
	}
	return user, nil
}

// authorize requires a signed-in user holding perm.
func (a *app) authorize(ctx context.Context, perm string) (*auth.User, error) {
	user, err := a.signedIn(ctx)
	if err != nil {
		return nil, err
	}
	if !user.Role.Known() {
		return nil, errors.New("your account has no role assigned yet; ask an administrator")
	}
	if !rbac.Can(user.Role, perm) {
		return nil, fmt.Errorf("the %s role cannot do that", strings.ToLower(user.Role.Label()))
	}
	return user, nil
}

// apiError maps a 401 to ErrSessionExpired.
func apiError(err error) error {
	if errors.Is(err, hrapi.ErrUnauthorized) {
		return ErrSessionExpired
	}
	return err
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseLevel(raw string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return slog.LevelWarn
	}
	return level
}
