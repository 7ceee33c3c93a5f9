package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

// Message is one outgoing email.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
}

// Sender delivers email. Business operations treat delivery as best-effort:
// a send failure is logged by the caller and never aborts the operation that
// triggered it.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type smtpSender struct {
	addr string
	auth smtp.Auth
	from string
}

// NewSMTPSender builds a Sender speaking plain SMTP with optional auth.
func NewSMTPSender(host string, port int, username, password, from string) Sender {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &smtpSender{
		addr: fmt.Sprintf("%s:%d", host, port),
		auth: auth,
		from: from,
	}
}

func (s *smtpSender) Send(_ context.Context, msg Message) error {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTMLBody)

	return smtp.SendMail(s.addr, s.auth, s.from, []string{msg.To}, []byte(b.String()))
}

type logSender struct {
	log *zap.Logger
}

// NewLogSender returns a Sender that only logs; used in development when no
// SMTP host is configured.
func NewLogSender(log *zap.Logger) Sender {
	return &logSender{log: log}
}

func (s *logSender) Send(_ context.Context, msg Message) error {
	s.log.Info("email (not sent, no SMTP configured)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}
