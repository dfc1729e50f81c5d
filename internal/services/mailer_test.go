package services

import (
	"context"
	"errors"
	"testing"
)

func TestSMTPMailerRequiresCredentials(t *testing.T) {
	mailer := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: 465})
	err := mailer.Send(context.Background(), "a@example.com", OTPSubject, OTPBody("123456"))
	if !errors.Is(err, ErrMailerNotConfigured) {
		t.Fatalf("expected ErrMailerNotConfigured, got %v", err)
	}
}

func TestSMTPMailerTLSMode(t *testing.T) {
	if !NewSMTPMailer(SMTPConfig{Host: "h", Port: 465}).dialer.SSL {
		t.Error("port 465 should use implicit TLS")
	}
	if NewSMTPMailer(SMTPConfig{Host: "h", Port: 587}).dialer.SSL {
		t.Error("port 587 should use STARTTLS")
	}
}

func TestOTPBody(t *testing.T) {
	if got := OTPBody("654321"); got != "Your OTP is: 654321" {
		t.Errorf("OTPBody = %q", got)
	}
}
