// Package notify tells the site owner about new contact messages.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/devportfolio/portfolio-api/internal/core/domain"
)

// LogNotifier writes new messages to the log. It is used when no SMTP
// server is configured.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) NotifyContact(_ context.Context, c *domain.Contact) error {
	n.log.Info().
		Str("contact_id", c.ID).
		Str("from", c.Email).
		Str("subject", c.Subject).
		Msg("new contact message")
	return nil
}

// SMTPConfig holds the outgoing mail settings.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	To       string
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier mails each new message to the site owner.
type SMTPNotifier struct {
	cfg      SMTPConfig
	sendMail sendMailFunc
}

func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, sendMail: smtp.SendMail}
}

// NotifyContact sends the message. net/smtp has no context support, so ctx
// is only checked before dialing.
func (n *SMTPNotifier) NotifyContact(ctx context.Context, c *domain.Contact) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}
	addr := n.cfg.Host + ":" + n.cfg.Port

	if err := n.sendMail(addr, auth, n.cfg.From, []string{n.cfg.To}, n.message(c)); err != nil {
		return fmt.Errorf("send contact notification: %w", err)
	}
	return nil
}

func (n *SMTPNotifier) message(c *domain.Contact) []byte {
	subject := c.Subject
	if subject == "" {
		subject = "(no subject)"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", n.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", n.cfg.To)
	fmt.Fprintf(&b, "Reply-To: %s\r\n", headerSafe(c.Email))
	fmt.Fprintf(&b, "Subject: [Portfolio] %s\r\n", headerSafe(subject))
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "New message from %s <%s>\r\n\r\n", c.Name, c.Email)
	b.WriteString(c.Message)
	b.WriteString("\r\n")
	return []byte(b.String())
}

// headerSafe strips line breaks so visitor input cannot inject headers.
func headerSafe(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
