package services

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"
)

// ErrMailerNotConfigured is returned when SMTP credentials are missing.
var ErrMailerNotConfigured = errors.New("email credentials not configured")

// OTPSubject is the subject line of password reset mails.
const OTPSubject = "TasteTab OTP for Password Reset"

// Mailer delivers plain-text mail.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPConfig holds the outgoing mail server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	FromName string
}

// SMTPMailer sends mail through an authenticated SMTP server. Port 465 uses
// implicit TLS, other ports negotiate STARTTLS.
type SMTPMailer struct {
	cfg    SMTPConfig
	dialer *gomail.Dialer
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	dialer.SSL = cfg.Port == 465
	dialer.TLSConfig = &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}
	return &SMTPMailer{cfg: cfg, dialer: dialer}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.cfg.Username == "" || m.cfg.Password == "" {
		return ErrMailerNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.cfg.Username, m.cfg.FromName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}

	slog.Info("email sent", "to", to, "subject", subject)
	return nil
}

// OTPBody renders the password reset message.
func OTPBody(code string) string {
	return fmt.Sprintf("Your OTP is: %s", code)
}
