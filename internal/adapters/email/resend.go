package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"

	"github.com/comitanigiacomo/sober-engine/internal/core/domain"
)

var _ domain.Mailer = (*ResendMailer)(nil)

type emailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendMailer delivers transactional mail. In dev mode messages are
// logged instead of sent.
type ResendMailer struct {
	emails    emailSender
	fromEmail string
	appName   string
	isDev     bool
}

func NewResendMailer(apiKey, fromEmail, appName string, isDev bool) *ResendMailer {
	m := &ResendMailer{
		fromEmail: fromEmail,
		appName:   appName,
		isDev:     isDev,
	}
	if apiKey != "" && !isDev {
		m.emails = resend.NewClient(apiKey).Emails
	}
	return m
}

func resetCodeTemplate(name, code, appName string) (string, string) {
	if name == "" {
		name = "there"
	}
	subject := fmt.Sprintf("Your %s password reset code", appName)
	body := fmt.Sprintf(`Hi %s,

Use this code to reset your %s password:

    %s

The code expires in 10 minutes. If you did not ask for a reset you can ignore this email.
`, name, appName, code)
	return subject, body
}

func (m *ResendMailer) SendResetCode(ctx context.Context, email, name, code string) error {
	subject, body := resetCodeTemplate(name, code, m.appName)

	if m.isDev {
		slog.Info("email sent (dev mode)", "type", "reset_code", "to", email, "subject", subject, "code", code)
		return nil
	}

	if m.emails == nil {
		return fmt.Errorf("email service not configured (missing RESEND_API_KEY)")
	}

	params := &resend.SendEmailRequest{
		From:    m.fromEmail,
		To:      []string{email},
		Subject: subject,
		Text:    body,
	}

	if _, err := m.emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("email: send reset code: %w", err)
	}

	slog.Info("email sent", "type", "reset_code", "to", email)
	return nil
}
