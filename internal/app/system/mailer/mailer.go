// internal/app/system/mailer/mailer.go

// Package mailer sends transactional email over SMTP. It is the
// fan-out engine's side channel: bulk sends report a failure count and
// never abort the caller.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/thesistrack/thesistrack/internal/app/system/fanout"
	"github.com/thesistrack/thesistrack/internal/domain/models"
	"go.uber.org/zap"
)

// Email is a single message with both text and HTML bodies.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Config holds SMTP connection settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	SiteName string
}

// Mailer sends email through one SMTP endpoint.
type Mailer struct {
	cfg Config
	log *zap.Logger
}

func New(cfg Config, log *zap.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: log}
}

// Enabled reports whether the mailer is configured to send. With no
// host set, sends are skipped silently and counted as failures only in
// bulk mode.
func (m *Mailer) Enabled() bool {
	return m.cfg.Host != "" && m.cfg.From != ""
}

// Send delivers one email. Context cancellation is checked before the
// dial; net/smtp itself does not take a context.
func (m *Mailer) Send(ctx context.Context, e Email) error {
	if !m.Enabled() {
		return fmt.Errorf("mailer not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	return smtp.SendMail(addr, auth, m.cfg.From, []string{e.To}, buildMessage(m.cfg.From, e))
}

// buildMessage assembles a multipart/alternative message so clients can
// pick the HTML or text body.
func buildMessage(from string, e Email) []byte {
	const boundary = "thesistrack-alt-boundary"

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", e.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", e.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(e.TextBody)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	b.WriteString(e.HTMLBody)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return []byte(b.String())
}

// SendBulkAuditEmails emails each recipient profile about one event and
// returns how many sends failed. Recipients without an email address
// are skipped, not counted as failures.
func (m *Mailer) SendBulkAuditEmails(ctx context.Context, recipients []models.Profile, p fanout.Payload) int {
	failed := 0
	for _, r := range recipients {
		if r.Email == "" {
			continue
		}
		email := BuildNotificationEmail(NotificationEmailData{
			SiteName:    m.cfg.SiteName,
			Recipient:   r.FullName,
			Title:       p.Name,
			Description: p.Description,
			Action:      string(p.Action),
		})
		email.To = r.Email
		if err := m.Send(ctx, email); err != nil {
			failed++
			m.log.Warn("audit email send failed",
				zap.String("to", r.Email),
				zap.String("action", string(p.Action)),
				zap.Error(err))
		}
	}
	return failed
}
