package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/gomail.v2"

	"regauth/internal/models"
)

type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailService sends verification codes over SMTP.
type EmailService struct {
	dialer  mailSender
	from    string
	dryRun  bool
	codeTTL time.Duration
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string, dryRun bool, codeTTL time.Duration) *EmailService {
	return &EmailService{
		dialer:  gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword),
		from:    fromEmail,
		dryRun:  dryRun,
		codeTTL: codeTTL,
	}
}

func (s *EmailService) Channel() string { return "email" }

func (s *EmailService) SendVerificationCode(_ context.Context, p models.PendingRegistration, code string) error {
	m := s.verificationMessage(p, code)
	if s.dryRun {
		slog.Info("[email][dry-run] verification email not sent", "to", p.Email)
		return nil
	}
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}

func (s *EmailService) verificationMessage(p models.PendingRegistration, code string) *gomail.Message {
	minutes := int(s.codeTTL.Minutes())

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", p.Email)
	m.SetHeader("Subject", "Your verification code")
	m.SetBody("text/plain", fmt.Sprintf(
		"Hello %s,\n\nYour verification code is: %s\n\nThe code expires in %d minutes.\n",
		p.Name, code, minutes,
	))
	m.AddAlternative("text/html", fmt.Sprintf(
		`<p>Hello %s,</p><p>Your verification code is: <strong>%s</strong></p><p>The code expires in %d minutes.</p>`,
		p.Name, code, minutes,
	))
	return m
}
