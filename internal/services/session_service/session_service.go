package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"photoflow/internal/lib/logger/sl"
	"photoflow/internal/repository"
)

// SessionService issues opaque admin session tokens. Tokens are random, kept
// server-side with a TTL, and revoked on logout; the cookie only carries the
// token value.
type SessionService struct {
	log  *slog.Logger
	repo repository.SessionRepository
	ttl  time.Duration
}

func NewSessionService(log *slog.Logger, repo repository.SessionRepository, ttl time.Duration) *SessionService {
	return &SessionService{
		log:  log,
		repo: repo,
		ttl:  ttl,
	}
}

// TTL returns the configured session lifetime, used for the cookie MaxAge.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// CreateSession generates a new token and stores it with the configured TTL.
func (s *SessionService) CreateSession(ctx context.Context) (string, error) {
	const op = "session_service.CreateSession"

	token, err := newToken()
	if err != nil {
		s.log.Error("failed to generate session token", slog.String("op", op), sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.SaveSession(ctx, token, s.ttl); err != nil {
		s.log.Error("failed to save session", slog.String("op", op), sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return token, nil
}

// ValidateSession reports whether token names a live session.
func (s *SessionService) ValidateSession(ctx context.Context, token string) (bool, error) {
	const op = "session_service.ValidateSession"

	if token == "" {
		return false, nil
	}

	ok, err := s.repo.SessionExists(ctx, token)
	if err != nil {
		s.log.Error("failed to check session", slog.String("op", op), sl.Err(err))
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return ok, nil
}

// RevokeSession removes the server-side token.
func (s *SessionService) RevokeSession(ctx context.Context, token string) error {
	const op = "session_service.RevokeSession"

	if token == "" {
		return nil
	}

	if err := s.repo.DeleteSession(ctx, token); err != nil {
		s.log.Error("failed to delete session", slog.String("op", op), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
