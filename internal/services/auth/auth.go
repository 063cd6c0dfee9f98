package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"

	"photoflow/internal/config"
	"photoflow/internal/lib/logger/sl"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is the recoverable, user-visible mismatch.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotConfigured means the server has no admin credentials set. The
	// caller must surface it as a generic server error without naming the
	// missing secret.
	ErrNotConfigured = errors.New("admin credentials are not configured")
)

// SessionProvider is the slice of the session service the gate needs.
type SessionProvider interface {
	CreateSession(ctx context.Context) (string, error)
	ValidateSession(ctx context.Context, token string) (bool, error)
	RevokeSession(ctx context.Context, token string) error
}

// Auth validates the single configured admin identity and hands out sessions.
type Auth struct {
	log      *slog.Logger
	admin    config.AdminConfig
	sessions SessionProvider
}

func New(log *slog.Logger, admin config.AdminConfig, sessions SessionProvider) *Auth {
	return &Auth{
		log:      log,
		admin:    admin,
		sessions: sessions,
	}
}

// Login checks the submitted pair against the configured admin credentials
// and returns a fresh session token on success.
func (a *Auth) Login(ctx context.Context, username, password string) (string, error) {
	const op = "auth.Login"

	log := a.log.With(slog.String("op", op))

	if username == "" || password == "" {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if a.admin.Username == "" || a.admin.PasswordHash == "" {
		log.Error("admin credentials missing from configuration")
		return "", fmt.Errorf("%s: %w", op, ErrNotConfigured)
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.admin.Username)) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(a.admin.PasswordHash), []byte(password))

	if !userOK || passErr != nil {
		log.Warn("invalid credentials", slog.String("username", username))
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	token, err := a.sessions.CreateSession(ctx)
	if err != nil {
		log.Error("failed to create session", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("admin logged in")

	return token, nil
}

// Logout revokes the session behind token.
func (a *Auth) Logout(ctx context.Context, token string) error {
	const op = "auth.Logout"

	if err := a.sessions.RevokeSession(ctx, token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	a.log.Info("admin logged out", slog.String("op", op))

	return nil
}

// IsAuthenticated reports whether token names a live admin session.
func (a *Auth) IsAuthenticated(ctx context.Context, token string) bool {
	ok, err := a.sessions.ValidateSession(ctx, token)
	if err != nil {
		a.log.Error("session validation failed", slog.String("op", "auth.IsAuthenticated"), sl.Err(err))
		return false
	}

	return ok
}
