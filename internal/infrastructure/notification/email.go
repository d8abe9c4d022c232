package notification

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"custodial-wallet.backend/internal/config"
	"gopkg.in/gomail.v2"
)

type mailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailSender delivers OTP codes over SMTP.
type EmailSender struct {
	dialer  mailDialer
	from    string
	appName string
}

func NewEmailSender(cfg config.SMTPConfig) *EmailSender {
	// Port 465 uses implicit TLS; other ports upgrade with STARTTLS when offered.
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}
	return &EmailSender{dialer: d, from: cfg.From, appName: cfg.AppName}
}

// SendOTP emails code to address. ctx is checked before dialing; gomail
// does not take a context.
func (s *EmailSender) SendOTP(ctx context.Context, address, code string, validFor time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", address)
	m.SetHeader("Subject", otpEmailSubject(s.appName))
	m.SetBody("text/plain", otpEmailText(s.appName, code, validFor))
	m.AddAlternative("text/html", otpEmailHTML(s.appName, code, validFor))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}
