package hrapi

import (
	"context"
	"net/http"
)

// LoginRequest exchanges credentials for a token.
type LoginRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	CompanyID string `json:"companyId"`
}

// SignupRequest creates an account. Role is one of ADMIN, MANAGER, EMPLOYEE.
type SignupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	CompanyID string `json:"companyId"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// AuthResponse carries the issued credential.
type AuthResponse struct {
	Token        string `json:"token"`
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// Credential returns the bearer token from either field.
func (r AuthResponse) Credential() string {
	if r.Token != "" {
		return r.Token
	}
	return r.AccessToken
}

// Login calls POST /auth/login.
func (c *Client) Login(ctx context.Context, in LoginRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, "auth.login", http.MethodPost, "/auth/login", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Signup calls POST /auth/signup.
func (c *Client) Signup(ctx context.Context, in SignupRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, "auth.signup", http.MethodPost, "/auth/signup", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Company calls GET /companies/{id}.
func (c *Client) Company(ctx context.Context, id string) (*Company, error) {
	var out Company
	if err := c.do(ctx, "companies.get", http.MethodGet, "/companies/"+pathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
