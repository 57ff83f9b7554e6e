package services

import (
	"context"
	"fmt"
	"log/slog"

	"regauth/internal/models"
	"regauth/internal/utils"
)

type smsSender interface {
	SendSMS(ctx context.Context, to, text string) (*utils.SendSMSResponse, error)
}

// SMSNotifier sends the verification code to the registrant's phone.
type SMSNotifier struct {
	client smsSender
}

func NewSMSNotifier(client *utils.Client) *SMSNotifier {
	return &SMSNotifier{client: client}
}

func (n *SMSNotifier) Channel() string { return "sms" }

func (n *SMSNotifier) SendVerificationCode(ctx context.Context, p models.PendingRegistration, code string) error {
	resp, err := n.client.SendSMS(ctx, p.Phone, fmt.Sprintf("Verification code: %s", code))
	if err != nil {
		return fmt.Errorf("mobizon error: %w", err)
	}
	slog.Debug("[sms][register][send] ok", "phone", p.Phone, "message_id", resp.Data.MessageID)
	return nil
}
