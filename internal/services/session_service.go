package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"regauth/internal/metrics"
	"regauth/internal/models"
	"regauth/internal/repositories"
	"regauth/internal/validation"
)

type SessionService interface {
	// Login checks credentials and issues a bearer token. Unknown accounts and
	// wrong passwords both return ErrInvalidCredentials.
	Login(ctx context.Context, in validation.LoginInput) (*models.User, *models.IssuedToken, error)
	// Logout revokes the token the request was authenticated with.
	Logout(ctx context.Context, tokenID string) error
	CurrentUser(ctx context.Context, userID int64) (*models.User, error)
}

type sessionService struct {
	users   repositories.UserRepository
	auth    AuthService
	issuer  TokenIssuer
	metrics metrics.Recorder

	// compared against when the account does not exist, so both failure
	// paths cost one bcrypt comparison
	dummyHash string
}

func NewSessionService(users repositories.UserRepository, auth AuthService, issuer TokenIssuer, rec metrics.Recorder) SessionService {
	if rec == nil {
		rec = metrics.Nop{}
	}
	dummy, err := auth.HashPassword("regauth-missing-account")
	if err != nil {
		slog.Warn("[auth] could not prepare dummy password hash", "err", err)
	}
	return &sessionService{
		users:     users,
		auth:      auth,
		issuer:    issuer,
		metrics:   rec,
		dummyHash: dummy,
	}
}

func (s *sessionService) Login(ctx context.Context, in validation.LoginInput) (*models.User, *models.IssuedToken, error) {
	in.Normalize()
	if errs := validation.Struct(in); errs != nil {
		s.metrics.RecordLogin(metrics.ResultInvalid)
		return nil, nil, errs
	}

	field := "phone"
	lookup := s.users.GetByPhone
	if validation.IsEmail(in.Login) {
		field = "email"
		lookup = s.users.GetByEmail
	}

	user, err := lookup(ctx, in.Login)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		s.metrics.RecordLogin(metrics.ResultError)
		return nil, nil, fmt.Errorf("find user by %s: %w", field, err)
	}
	if user == nil {
		s.auth.CheckPassword(s.dummyHash, in.Password)
		s.metrics.RecordLogin(metrics.ResultUnauthorized)
		slog.Info("[auth][login] no account", "field", field)
		return nil, nil, ErrInvalidCredentials
	}
	if !s.auth.CheckPassword(user.PasswordHash, in.Password) {
		s.metrics.RecordLogin(metrics.ResultUnauthorized)
		slog.Info("[auth][login] password mismatch", "user_id", user.ID)
		return nil, nil, ErrInvalidCredentials
	}

	tok, err := s.issuer.Mint(ctx, user)
	if err != nil {
		s.metrics.RecordLogin(metrics.ResultError)
		return nil, nil, fmt.Errorf("mint token: %w", err)
	}

	s.metrics.RecordLogin(metrics.ResultSuccess)
	slog.Info("[auth][login] success", "user_id", user.ID, "field", field, "expires_at", tok.ExpiresAt)
	return user, tok, nil
}

func (s *sessionService) Logout(ctx context.Context, tokenID string) error {
	if tokenID == "" {
		s.metrics.RecordLogout(metrics.ResultUnauthorized)
		return ErrUnauthenticated
	}
	if err := s.issuer.Revoke(ctx, tokenID); err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			s.metrics.RecordLogout(metrics.ResultUnauthorized)
		} else {
			s.metrics.RecordLogout(metrics.ResultError)
		}
		return err
	}
	s.metrics.RecordLogout(metrics.ResultSuccess)
	slog.Info("[auth][logout] token revoked", "token_id", tokenID)
	return nil
}

func (s *sessionService) CurrentUser(ctx context.Context, userID int64) (*models.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	return u, err
}
