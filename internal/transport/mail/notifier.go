package mail

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// Notifier delivers transactional emails. Credential flows treat delivery as
// best-effort: a Send failure must never fail the triggering HTTP request.
type Notifier interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPNotifier sends through a plain SMTP relay. Sends are bounded by
// sendTimeout so a hanging relay cannot stall the caller.
type SMTPNotifier struct {
	host        string
	port        string
	username    string
	password    string
	from        string
	sendTimeout time.Duration
}

func NewSMTPNotifier(host, port, username, password, from string, sendTimeout time.Duration) *SMTPNotifier {
	if sendTimeout <= 0 {
		sendTimeout = 10 * time.Second
	}
	return &SMTPNotifier{
		host:        strings.TrimSpace(host),
		port:        strings.TrimSpace(port),
		username:    username,
		password:    password,
		from:        strings.TrimSpace(from),
		sendTimeout: sendTimeout,
	}
}

func (n *SMTPNotifier) Send(ctx context.Context, to, subject, htmlBody string) error {
	if n == nil {
		return errors.New("mailer not configured")
	}
	if n.host == "" || n.port == "" || n.from == "" {
		return errors.New("mailer missing configuration")
	}

	message := strings.Builder{}
	message.WriteString(fmt.Sprintf("From: %s\r\n", n.from))
	message.WriteString(fmt.Sprintf("To: %s\r\n", to))
	message.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	message.WriteString("MIME-Version: 1.0\r\n")
	message.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	message.WriteString("Content-Transfer-Encoding: 7bit\r\n\r\n")
	message.WriteString(htmlBody)
	message.WriteString("\r\n")

	addr := net.JoinHostPort(n.host, n.port)
	var auth smtp.Auth
	if n.username != "" || n.password != "" {
		auth = smtp.PlainAuth("", n.username, n.password, n.host)
	}

	sendCtx, cancel := context.WithTimeout(ctx, n.sendTimeout)
	defer cancel()

	// net/smtp has no context support, so run the send in a goroutine and
	// abandon it when the deadline fires.
	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, n.from, []string{to}, []byte(message.String()))
	}()

	select {
	case err := <-done:
		return err
	case <-sendCtx.Done():
		return sendCtx.Err()
	}
}

// SimulatedNotifier stands in when no SMTP relay is configured. It logs the
// message and reports success so credential flows behave identically with and
// without email infrastructure.
type SimulatedNotifier struct{}

func NewSimulatedNotifier() *SimulatedNotifier {
	return &SimulatedNotifier{}
}

func (n *SimulatedNotifier) Send(ctx context.Context, to, subject, htmlBody string) error {
	log.Printf("mail: simulated delivery to=%s subject=%q", to, subject)
	return nil
}

// FallbackNotifier degrades to the fallback when the primary fails. The
// trade-off is deliberate: an email outage must not block registrations or
// password resets, even though the user silently gets no message.
type FallbackNotifier struct {
	primary  Notifier
	fallback Notifier
}

func WithFallback(primary, fallback Notifier) *FallbackNotifier {
	return &FallbackNotifier{primary: primary, fallback: fallback}
}

func (n *FallbackNotifier) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := n.primary.Send(ctx, to, subject, htmlBody); err != nil {
		log.Printf("mail: primary delivery failed, falling back to simulation: %v", err)
		return n.fallback.Send(ctx, to, subject, htmlBody)
	}
	return nil
}
