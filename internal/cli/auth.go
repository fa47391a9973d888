package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/kola-hr/kola/internal/auth"
	"github.com/kola-hr/kola/internal/hrapi"
)

var errInvalidCredentials = errors.New("invalid credentials")

func newLoginCmd(a *app) *cobra.Command {
	var in auth.Credentials
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the HR API",
		Long: "Sign in and store the credential for later commands. Missing fields are " +
			"asked for interactively when the terminal allows it.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if passwordStdin {
				lines, err := readLines(a.in, 1)
				if err != nil {
					return err
				}
				in.Password = lines[0]
			}
			if in.Email == "" || in.Password == "" || in.CompanyID == "" {
				if !interactive(a.in) {
					return errors.New("email, company and password are required; pass --email, --company and --password-stdin")
				}
				if err := loginForm(&in).Run(); err != nil {
					return err
				}
			}
			in.Email = strings.TrimSpace(in.Email)
			in.CompanyID = strings.TrimSpace(in.CompanyID)
			if err := auth.ValidateCredentials(in); err != nil {
				return err
			}

			a.authFlow = true
			if err := a.session.Login(cmd.Context(), in.Email, in.Password, in.CompanyID); err != nil {
				return loginError(err)
			}
			user := a.session.CurrentUser()
			fmt.Fprintf(a.out, "Signed in as %s, %s at %s\n", user.DisplayName(), user.Role.Label(), user.CompanyName)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Email, "email", "", "account email")
	cmd.Flags().StringVar(&in.CompanyID, "company", "", "company ID")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	return cmd
}

func newSignupCmd(a *app) *cobra.Command {
	var in auth.SignupInput
	var role string
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Long: "Create an account. With --password-stdin the first line is the password and " +
			"the second, when present, its confirmation.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if passwordStdin {
				lines, err := readLines(a.in, 2)
				if err != nil {
					return err
				}
				in.Password = lines[0]
				in.ConfirmPassword = lines[0]
				if len(lines) > 1 {
					in.ConfirmPassword = lines[1]
				}
			}
			in.Role = auth.Role(strings.ToLower(strings.TrimSpace(role)))
			if in.Email == "" || in.Password == "" || in.CompanyID == "" || role == "" {
				if !interactive(a.in) {
					return errors.New("email, company, role and password are required; pass the flags and --password-stdin")
				}
				if err := signupForm(&in).Run(); err != nil {
					return err
				}
			}

			// Signup validates before any network call.
			a.authFlow = true
			if err := a.session.Signup(cmd.Context(), in); err != nil {
				return signupError(err)
			}
			user := a.session.CurrentUser()
			fmt.Fprintf(a.out, "Account created. Signed in as %s, %s at %s\n", user.DisplayName(), user.Role.Label(), user.CompanyName)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&in.Email, "email", "", "account email")
	flags.StringVar(&in.CompanyID, "company", "", "company ID")
	flags.StringVar(&role, "role", "", "admin, manager or employee")
	flags.StringVar(&in.FirstName, "first-name", "", "first name")
	flags.StringVar(&in.LastName, "last-name", "", "last name")
	flags.BoolVar(&passwordStdin, "password-stdin", false, "read the password (and confirmation) from stdin")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.session.Logout(cmd.Context())
			fmt.Fprintln(a.out, "Signed out")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.signedIn(cmd.Context())
			if err != nil {
				return err
			}
			return a.render(newUserView(user))
		},
	}
}

func loginForm(in *auth.Credentials) *huh.Form {
	return huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Email").Value(&in.Email).Validate(required("email")),
		huh.NewInput().Title("Company ID").Value(&in.CompanyID).Validate(required("company ID")),
		huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&in.Password).Validate(required("password")),
	).Title("Sign in to Kọlá HR"))
}

func signupForm(in *auth.SignupInput) *huh.Form {
	roles := []huh.Option[auth.Role]{
		huh.NewOption(auth.RoleAdmin.Label(), auth.RoleAdmin),
		huh.NewOption(auth.RoleManager.Label(), auth.RoleManager),
		huh.NewOption(auth.RoleEmployee.Label(), auth.RoleEmployee),
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Email").Value(&in.Email).Validate(required("email")),
			huh.NewInput().Title("First name").Value(&in.FirstName),
			huh.NewInput().Title("Last name").Value(&in.LastName),
			huh.NewInput().Title("Company ID").Value(&in.CompanyID).Validate(required("company ID")),
			huh.NewSelect[auth.Role]().Title("Role").Options(roles...).Value(&in.Role),
		).Title("Create your account"),
		huh.NewGroup(
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&in.Password),
			huh.NewInput().Title("Confirm password").EchoMode(huh.EchoModePassword).Value(&in.ConfirmPassword),
		),
	)
}

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

// loginError keeps rejected credentials indistinguishable while still
// reporting an unreachable service.
func loginError(err error) error {
	var apiErr *hrapi.Error
	if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
		return errInvalidCredentials
	}
	return err
}

// signupError passes the backend's reason for a rejected signup through,
// such as an address that is already registered.
func signupError(err error) error {
	var apiErr *hrapi.Error
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
		return errInvalidCredentials
	}
	return err
}

// readLines reads up to n lines from r, trimming line endings.
func readLines(r io.Reader, n int) ([]string, error) {
	scanner := bufio.NewScanner(r)
	var lines []string
	for len(lines) < n && scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}
	if len(lines) == 0 || lines[0] == "" {
		return nil, errors.New("no password on stdin")
	}
	return lines, nil
}

// interactive reports whether r is a terminal huh can prompt on.
func interactive(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
