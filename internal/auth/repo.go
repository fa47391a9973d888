package auth

import (
	"context"

	"github.com/kola-hr/kola/internal/hrapi"
	"github.com/kola-hr/kola/internal/tokenstore"
)

// Backend is the part of the HR API a Session talks to. *hrapi.Client
// implements it.
type Backend interface {
	Login(ctx context.Context, in hrapi.LoginRequest) (*hrapi.AuthResponse, error)
	Signup(ctx context.Context, in hrapi.SignupRequest) (*hrapi.AuthResponse, error)
	MyProfile(ctx context.Context) (*hrapi.Employee, error)
	Company(ctx context.Context, id string) (*hrapi.Company, error)
}

// CredentialStore persists the bearer credential and the user object next
// to it. *tokenstore.Store implements it.
type CredentialStore interface {
	Token(ctx context.Context) (string, bool)
	SetToken(ctx context.Context, token string) error
	Clear(ctx context.Context) error
	Value(ctx context.Context, key string) (string, bool)
	SetValue(ctx context.Context, key, value string) error
}

var (
	_ Backend         = (*hrapi.Client)(nil)
	_ CredentialStore = (*tokenstore.Store)(nil)
)
