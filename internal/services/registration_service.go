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
	"regauth/internal/utils"
	"regauth/internal/validation"
)

const (
	DefaultVerificationTTL = 10 * time.Minute

	// attempts at drawing a code not held by another live registration
	maxCodeDraws = 5
)

type RegistrationService interface {
	// Register validates the input, parks it under a fresh verification code and
	// sends the code out. No account is created here.
	Register(ctx context.Context, in validation.RegisterInput) error
}

type registrationService struct {
	users    repositories.UserRepository
	pending  cache.VerificationCache
	auth     AuthService
	mailer   Notifier
	extra    []Notifier
	metrics  metrics.Recorder
	ttl      time.Duration
	drawCode func() (string, error)
}

// NewRegistrationService wires the flow. mailer failures fail the request;
// extra notifiers are best effort.
func NewRegistrationService(
	users repositories.UserRepository,
	pending cache.VerificationCache,
	auth AuthService,
	mailer Notifier,
	rec metrics.Recorder,
	ttl time.Duration,
	extra ...Notifier,
) RegistrationService {
	if ttl <= 0 {
		ttl = DefaultVerificationTTL
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &registrationService{
		users:    users,
		pending:  pending,
		auth:     auth,
		mailer:   mailer,
		extra:    extra,
		metrics:  rec,
		ttl:      ttl,
		drawCode: utils.NewVerificationCode,
	}
}

func (s *registrationService) Register(ctx context.Context, in validation.RegisterInput) error {
	in.Normalize()

	if err := s.validate(ctx, in); err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			s.metrics.RecordRegistration(metrics.ResultInvalid)
			slog.Info("[auth][register] validation failed", "email", in.Email, "fields", len(verrs))
		} else {
			s.metrics.RecordRegistration(metrics.ResultError)
		}
		return err
	}

	hash, err := s.auth.HashPassword(in.Password)
	if err != nil {
		s.metrics.RecordRegistration(metrics.ResultError)
		return err
	}
	p := models.PendingRegistration{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Phone:        in.Phone,
	}

	code, err := s.park(ctx, p)
	if err != nil {
		s.metrics.RecordRegistration(metrics.ResultError)
		return err
	}

	if err := s.mailer.SendVerificationCode(ctx, p, code); err != nil {
		s.metrics.RecordNotificationFailure(s.mailer.Channel())
		s.metrics.RecordRegistration(metrics.ResultError)
		return fmt.Errorf("notify %s: %w", s.mailer.Channel(), err)
	}
	for _, n := range s.extra {
		if err := n.SendVerificationCode(ctx, p, code); err != nil {
			s.metrics.RecordNotificationFailure(n.Channel())
			slog.Warn("[auth][register] secondary notification failed", "channel", n.Channel(), "err", err)
		}
	}

	s.metrics.RecordRegistration(metrics.ResultSuccess)
	slog.Info("[auth][register] verification code sent", "email", p.Email, "ttl", s.ttl)
	return nil
}

// validate reports format violations and uniqueness against confirmed accounts
// together. Uniqueness is only checked for fields whose format is valid.
func (s *registrationService) validate(ctx context.Context, in validation.RegisterInput) error {
	errs := validation.Struct(in)
	if errs == nil {
		errs = validation.Errors{}
	}

	if !errs.Has("email") {
		taken, err := s.users.EmailExists(ctx, in.Email)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if taken {
			errs.Add("email", validation.Message("email", validation.RuleUnique))
		}
	}
	if !errs.Has("phone") {
		taken, err := s.users.PhoneExists(ctx, in.Phone)
		if err != nil {
			return fmt.Errorf("check phone: %w", err)
		}
		if taken {
			errs.Add("phone", validation.Message("phone", validation.RuleUnique))
		}
	}
	return errs.OrNil()
}

// park stores p under a code no other live registration holds.
func (s *registrationService) park(ctx context.Context, p models.PendingRegistration) (string, error) {
	for i := 0; i < maxCodeDraws; i++ {
		code, err := s.drawCode()
		if err != nil {
			return "", err
		}
		err = s.pending.Add(ctx, code, p, s.ttl)
		if err == nil {
			return code, nil
		}
		if !errors.Is(err, cache.ErrExists) {
			return "", fmt.Errorf("store pending registration: %w", err)
		}
		slog.Debug("[auth][register] code collision, drawing again", "attempt", i+1)
	}
	return "", ErrCodeSpaceExhausted
}
