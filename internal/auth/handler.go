package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kola-hr/kola/internal/hrapi"
	"github.com/kola-hr/kola/internal/shared"
	"github.com/kola-hr/kola/internal/view"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	templates      *view.Engine
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, templates *view.Engine, sessions *shared.SessionManager, csrf *shared.CSRFManager) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{
		logger:         logger,
		templates:      templates,
		sessionManager: sessions,
		csrfManager:    csrf,
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.home)
	r.Get(LoginPath, h.showLogin)
	r.Post(LoginPath, h.handleLogin)
	r.Get(SignupPath, h.showSignup)
	r.Post(SignupPath, h.handleSignup)
	r.Post("/logout", h.handleLogout)
	r.With(RequireAuth).Get("/account/pending", h.showPending)
}

type loginForm struct {
	Email     string
	CompanyID string
}

type signupForm struct {
	Email     string
	FirstName string
	LastName  string
	CompanyID string
	Role      string
}

type formPageData struct {
	Form   any
	Errors map[string]string
	Roles  []Role
}

func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	if user := UserFromContext(r.Context()); user != nil {
		http.Redirect(w, r, user.Role.Home(), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	if user := UserFromContext(r.Context()); user != nil {
		http.Redirect(w, r, user.Role.Home(), http.StatusSeeOther)
		return
	}
	h.render(w, r, "pages/login.html", "Sign in", formPageData{Form: loginForm{}}, http.StatusOK)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	in := Credentials{
		Email:     strings.TrimSpace(r.PostFormValue("email")),
		Password:  r.PostFormValue("password"),
		CompanyID: strings.TrimSpace(r.PostFormValue("companyId")),
	}
	form := loginForm{Email: in.Email, CompanyID: in.CompanyID}
	errs := make(map[string]string)

	if err := ValidateCredentials(in); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			errs[ve.Field] = ve.Message
		} else {
			errs["general"] = shared.DefaultErrorMessage
		}
	}

	if len(errs) == 0 {
		session := SessionFromContext(r.Context())
		if session == nil {
			h.logger.ErrorContext(r.Context(), "auth session missing during login")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		err := session.Login(r.Context(), in.Email, in.Password, in.CompanyID)
		if err == nil {
			user := session.CurrentUser()
			h.signedIn(w, r, "Welcome back", user.Role.Home())
			return
		}
		h.logger.InfoContext(r.Context(), "login failed", slog.String("email", in.Email), slog.Any("error", err))
		errs["general"] = loginFailureMessage(err)
	}

	h.render(w, r, "pages/login.html", "Sign in", formPageData{Form: form, Errors: errs}, http.StatusBadRequest)
}

// loginFailureMessage keeps rejected credentials indistinguishable while
// still telling the user when the service itself is unreachable.
func loginFailureMessage(err error) string {
	var apiErr *hrapi.Error
	if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
		return "Invalid credentials"
	}
	if errors.Is(err, ErrNoCredential) {
		return "Invalid credentials"
	}
	return shared.UserSafeMessage(err)
}

func (h *Handler) showSignup(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/signup.html", "Create account", formPageData{Form: signupForm{Role: string(RoleAdmin)}, Roles: signupRoles}, http.StatusOK)
}

var signupRoles = []Role{RoleAdmin, RoleManager, RoleEmployee}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	in := SignupInput{
		Email:           strings.TrimSpace(r.PostFormValue("email")),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirmPassword"),
		Role:            ParseRole(r.PostFormValue("role")),
		CompanyID:       strings.TrimSpace(r.PostFormValue("companyId")),
		FirstName:       strings.TrimSpace(r.PostFormValue("firstName")),
		LastName:        strings.TrimSpace(r.PostFormValue("lastName")),
	}
	form := signupForm{Email: in.Email, FirstName: in.FirstName, LastName: in.LastName, CompanyID: in.CompanyID, Role: string(in.Role)}

	session := SessionFromContext(r.Context())
	if session == nil {
		h.logger.ErrorContext(r.Context(), "auth session missing during signup")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	err := session.Signup(r.Context(), in)
	if err == nil {
		h.signedIn(w, r, "Account created successfully", session.CurrentUser().Role.Home())
		return
	}

	errs := make(map[string]string)
	var ve *ValidationError
	if errors.As(err, &ve) {
		errs[ve.Field] = ve.Message
	} else {
		h.logger.InfoContext(r.Context(), "signup failed", slog.String("email", in.Email), slog.Any("error", err))
		errs["general"] = signupFailureMessage(err)
	}
	h.render(w, r, "pages/signup.html", "Create account", formPageData{Form: form, Errors: errs, Roles: signupRoles}, http.StatusBadRequest)
}

func signupFailureMessage(err error) string {
	var apiErr *hrapi.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" && apiErr.Status < http.StatusInternalServerError {
		return apiErr.Message
	}
	if errors.As(err, &apiErr) || errors.Is(err, ErrNoCredential) {
		return "Signup failed. Please try again."
	}
	return shared.UserSafeMessage(err)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if session := SessionFromContext(r.Context()); session != nil {
		session.Logout(r.Context())
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		h.sessionManager.Destroy(sess)
	}
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}

func (h *Handler) showPending(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user.Role.Known() {
		http.Redirect(w, r, user.Role.Home(), http.StatusSeeOther)
		return
	}
	h.render(w, r, "pages/pending.html", "Account pending", user, http.StatusOK)
}

func (h *Handler) signedIn(w http.ResponseWriter, r *http.Request, message, location string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		if _, err := h.csrfManager.Rotate(r.Context(), sess); err != nil {
			h.logger.WarnContext(r.Context(), "rotate csrf token", slog.Any("error", err))
		}
		sess.AddFlash(shared.FlashMessage{Kind: shared.FlashSuccess, Message: message})
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template, title string, data any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrfManager.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.Render(w, template, viewData); err != nil {
		h.logger.ErrorContext(r.Context(), "render auth page", slog.String("template", template), slog.Any("error", err))
	}
}
