// Package email envía notificaciones del CRM por SMTP.
package email

import (
	"crypto/tls"
	"fmt"
	"strings"

	mail "github.com/go-mail/mail"

	"github.com/razorzibra-dot/trialram-sub001/internal/config"
	"github.com/razorzibra-dot/trialram-sub001/internal/metrics"
	"github.com/razorzibra-dot/trialram-sub001/internal/observability/logger"
)

// Sender es la interfaz para enviar emails.
type Sender interface {
	// Send envía un email con contenido HTML y texto plano (multipart/alternative).
	Send(to, subject, htmlBody, textBody string) error
}

// SMTPSender implementa Sender usando SMTP.
type SMTPSender struct {
	Host               string
	Port               int
	From               string
	User               string
	Pass               string
	TLSMode            string // "auto" | "starttls" | "ssl" | "none"
	InsecureSkipVerify bool
}

// FromConfig crea un Sender desde la config. Sin host retorna NoopSender.
func FromConfig(cfg *config.Config) Sender {
	if strings.TrimSpace(cfg.SMTP.Host) == "" {
		return NoopSender{}
	}
	port := cfg.SMTP.Port
	if port == 0 {
		port = 587
	}
	return &SMTPSender{
		Host:               cfg.SMTP.Host,
		Port:               port,
		From:               cfg.SMTP.From,
		User:               cfg.SMTP.Username,
		Pass:               cfg.SMTP.Password,
		TLSMode:            strings.ToLower(cfg.SMTP.TLS),
		InsecureSkipVerify: cfg.SMTP.InsecureSkipVerify,
	}
}

func (s *SMTPSender) message(to, subject, htmlBody, textBody string) *mail.Message {
	m := mail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)

	if textBody != "" {
		m.SetBody("text/plain", textBody)
	}
	if htmlBody != "" {
		if textBody == "" {
			m.SetBody("text/html", htmlBody)
		} else {
			m.AddAlternative("text/html", htmlBody)
		}
	}
	return m
}

func (s *SMTPSender) dialer() *mail.Dialer {
	d := mail.NewDialer(s.Host, s.Port, s.User, s.Pass)
	d.TLSConfig = &tls.Config{
		ServerName:         s.Host,
		InsecureSkipVerify: s.InsecureSkipVerify, // solo dev
	}
	switch s.TLSMode {
	case "ssl":
		d.SSL = true
	case "starttls":
		d.StartTLSPolicy = mail.MandatoryStartTLS
	case "none":
		d.StartTLSPolicy = mail.NoStartTLS
	default:
		// "auto": STARTTLS si el servidor lo ofrece
	}
	return d
}

// Send envía un email con contenido HTML y texto plano.
func (s *SMTPSender) Send(to, subject, htmlBody, textBody string) error {
	log := logger.L().With(
		logger.Component("email.smtp"),
		logger.String("host", s.Host),
		logger.Int("port", s.Port),
		logger.Email(to),
	)

	if err := s.dialer().DialAndSend(s.message(to, subject, htmlBody, textBody)); err != nil {
		metrics.EmailsSent.WithLabelValues("failed").Inc()
		log.Error("smtp send failed", logger.Err(err))
		return fmt.Errorf("smtp send: %w", err)
	}

	metrics.EmailsSent.WithLabelValues("ok").Inc()
	log.Debug("email sent", logger.String("subject", subject))
	return nil
}

// NoopSender descarta los emails. Se usa cuando SMTP no está configurado.
type NoopSender struct{}

func (NoopSender) Send(to, subject, _, _ string) error {
	logger.L().Debug("email skipped (smtp not configured)",
		logger.Email(to), logger.String("subject", subject))
	return nil
}
