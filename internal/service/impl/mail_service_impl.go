package impl

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string // e.g. "Signalpost <alerts@signalpost.example>"
}

// SMTPMailService speaks plain SMTP with an HTML MIME body. No mail library
// exists in this stack; the provider contract is (to, subject, htmlBody).
type SMTPMailService struct {
	cfg  SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailService(cfg SMTPConfig) *SMTPMailService {
	return &SMTPMailService{cfg: cfg, send: smtp.SendMail}
}

func (m *SMTPMailService) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", sanitizeHeader(subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	return m.send(addr, auth, envelopeFrom(m.cfg.From), []string{to}, []byte(b.String()))
}

// sanitizeHeader strips CR/LF so user-influenced subjects cannot inject headers.
func sanitizeHeader(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

// envelopeFrom extracts the bare address from a "Name <addr>" From header.
func envelopeFrom(from string) string {
	if start := strings.LastIndex(from, "<"); start >= 0 {
		if end := strings.LastIndex(from, ">"); end > start {
			return from[start+1 : end]
		}
	}
	return from
}

// LogMailService is the dev fallback when no SMTP host is configured: every
// send succeeds and is written to the log instead.
type LogMailService struct{}

func (LogMailService) Send(ctx context.Context, to, subject, htmlBody string) error {
	slog.Info("mail send (log only)", "to", to, "subject", subject, "bytes", len(htmlBody))
	return nil
}
