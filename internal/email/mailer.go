// Package email delivers HTML mail over SMTP.
package email

import (
	"fmt"

	"github.com/vivabem/vivabem-server/internal/config"
	"github.com/vivabem/vivabem-server/internal/errors"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer sends an HTML message to a single recipient
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// SMTPMailer is the gomail-backed Mailer
type SMTPMailer struct {
	cfg    config.SMTPConfig
	dialer *gomail.Dialer
	logger *zap.Logger
}

// NewSMTPMailer creates a new SMTP mailer
func NewSMTPMailer(cfg config.SMTPConfig, logger *zap.Logger) (*SMTPMailer, error) {
	if cfg.Host == "" || cfg.Username == "" || cfg.Password == "" {
		return nil, errors.ErrMailNotConfigured
	}

	return &SMTPMailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		logger: logger.Named("email"),
	}, nil
}

// Send delivers one HTML message
func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", fmt.Sprintf("%s <%s>", m.cfg.FromName, m.cfg.FromEmail))
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	m.logger.Debug("Email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}
