package services

import (
	"context"

	"regauth/internal/models"
)

// Notifier delivers a verification code to the person registering.
type Notifier interface {
	Channel() string
	SendVerificationCode(ctx context.Context, p models.PendingRegistration, code string) error
}
