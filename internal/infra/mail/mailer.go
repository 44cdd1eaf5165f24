package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/shriya-199/Prolance/internal/core/port"
	"github.com/shriya-199/Prolance/internal/infra/config"
	"github.com/shriya-199/Prolance/internal/infra/logger"
)

var resetCodeTemplate = template.Must(template.New("reset_code").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 480px; margin: 0 auto; padding: 24px;">
  <h2 style="color: #111827;">Password Reset</h2>
  <p>Hi {{.Name}},</p>
  <p>We received a request to reset your Prolance password. Use the code below to continue:</p>
  <p style="font-size: 32px; letter-spacing: 8px; font-weight: bold; color: #111827; text-align: center; padding: 16px; background-color: #f9fafb; border-radius: 8px;">{{.Code}}</p>
  <p>This code expires in {{.ExpiryMinutes}} minutes. If you did not request a reset, you can ignore this email.</p>
  <p style="color: #6b7280; font-size: 12px;">The Prolance team</p>
</div>
`))

// Mailer delivers transactional mail over SMTP.
type Mailer struct {
	dialer        *gomail.Dialer
	cfg           config.SMTPSettings
	logger        *zap.Logger
	expiryMinutes int
}

// NewMailer constructs an SMTP-backed mailer.
func NewMailer(cfg config.SMTPSettings, expiryMinutes int, log *zap.Logger) *Mailer {
	if log == nil {
		log = zap.NewNop()
	}
	if expiryMinutes <= 0 {
		expiryMinutes = 10
	}

	return &Mailer{
		dialer:        gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		cfg:           cfg,
		logger:        log,
		expiryMinutes: expiryMinutes,
	}
}

// SendPasswordResetCode delivers the one-time code to the recipient.
func (m *Mailer) SendPasswordResetCode(ctx context.Context, email, name, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if name == "" {
		name = "there"
	}

	var body bytes.Buffer
	data := struct {
		Name          string
		Code          string
		ExpiryMinutes int
	}{Name: name, Code: code, ExpiryMinutes: m.expiryMinutes}

	if err := resetCodeTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("render reset code email: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", msg.FormatAddress(m.cfg.FromAddress, m.cfg.FromName))
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", "Your Prolance password reset code")
	msg.SetBody("text/html", body.String())

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send reset code email: %w", err)
	}

	m.logger.Info("reset code email sent", zap.String("email", logger.MaskEmail(email)))
	return nil
}

var _ port.Mailer = (*Mailer)(nil)
