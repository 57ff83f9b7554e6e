package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"regauth/internal/cache"
	"regauth/internal/metrics"
	"regauth/internal/models"
	"regauth/internal/repositories"
	"regauth/internal/validation"
)

type VerificationService interface {
	// Verify redeems a code and creates the verified account it was holding.
	// A code works once; unknown, used and expired codes all yield
	// ErrExpiredOrInvalidCode.
	Verify(ctx context.Context, in validation.VerifyInput) (*models.User, error)
}

type verificationService struct {
	users   repositories.UserRepository
	pending cache.VerificationCache
	metrics metrics.Recorder
	now     func() time.Time
}

func NewVerificationService(users repositories.UserRepository, pending cache.VerificationCache, rec metrics.Recorder) VerificationService {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &verificationService{
		users:   users,
		pending: pending,
		metrics: rec,
		now:     time.Now,
	}
}

func (s *verificationService) Verify(ctx context.Context, in validation.VerifyInput) (*models.User, error) {
	if errs := validation.Struct(in); errs != nil {
		s.metrics.RecordVerification(metrics.ResultInvalid)
		return nil, errs
	}
	code := string(in.VerificationCode)

	// Take is the single point of redemption: a concurrent second request for
	// the same code misses here instead of racing to create the account.
	p, err := s.pending.Take(ctx, code)
	if errors.Is(err, cache.ErrMiss) {
		s.metrics.RecordVerification(metrics.ResultExpired)
		slog.Info("[auth][verify] code rejected")
		return nil, ErrExpiredOrInvalidCode
	}
	if err != nil {
		s.metrics.RecordVerification(metrics.ResultError)
		return nil, fmt.Errorf("take pending registration: %w", err)
	}

	now := s.now().UTC()
	user := &models.User{
		Name:            p.Name,
		Email:           p.Email,
		Phone:           p.Phone,
		PasswordHash:    p.PasswordHash,
		EmailVerifiedAt: &now,
		CreatedAt:       now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicateEmail):
			s.metrics.RecordVerification(metrics.ResultConflict)
			return nil, validation.Errors{"email": {validation.Message("email", validation.RuleUnique)}}
		case errors.Is(err, repositories.ErrDuplicatePhone):
			s.metrics.RecordVerification(metrics.ResultConflict)
			return nil, validation.Errors{"phone": {validation.Message("phone", validation.RuleUnique)}}
		}
		s.metrics.RecordVerification(metrics.ResultError)
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.metrics.RecordVerification(metrics.ResultSuccess)
	slog.Info("[auth][verify] account created", "user_id", user.ID, "email", user.Email)
	return user, nil
}
