package email

import (
	"context"
	"crypto/tls"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/veracare/marketplace-api/internal/config"
)

type smtpService struct {
	cfg config.SMTPConfig
}

// NewSMTPService returns a gomail-backed Service. Each Send dials a
// fresh connection; volume is low enough that pooling is not worth the
// bookkeeping.
func NewSMTPService(cfg config.SMTPConfig) Service {
	return &smtpService{cfg: cfg}
}

func (s *smtpService) Send(ctx context.Context, msg Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	if msg.TextBody != "" {
		m.SetBody("text/plain", msg.TextBody)
		if msg.HTMLBody != "" {
			m.AddAlternative("text/html", msg.HTMLBody)
		}
	} else {
		m.SetBody("text/html", msg.HTMLBody)
	}

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	d.SSL = s.cfg.UseTLS
	if s.cfg.UseTLS {
		d.TLSConfig = &tls.Config{ServerName: s.cfg.Host}
	}

	done := make(chan error, 1)
	go func() {
		done <- d.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
