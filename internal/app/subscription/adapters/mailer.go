package adapters

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/mail"
	"net/smtp"
	"strings"
	"time"

	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/contracts"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/domain"
	"go.uber.org/zap"
)

var (
	_ contracts.Mailer = (*SMTPMailer)(nil)
	_ contracts.Mailer = (*LogMailer)(nil)
)

// SMTPConfig holds the outgoing mail server settings
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	// ImplicitTLS dials TLS directly (port 465); otherwise STARTTLS is used.
	ImplicitTLS bool
}

// SMTPMailer sends customer notices over SMTP
type SMTPMailer struct {
	cfg SMTPConfig
}

// NewSMTPMailer creates a new SMTP mailer
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &SMTPMailer{cfg: cfg}
}

// SendCancellationNotice emails the customer about a cancellation
func (m *SMTPMailer) SendCancellationNotice(ctx context.Context, customer domain.Customer, sub domain.Snapshot) error {
	to, err := recipient(customer.Email)
	if err != nil {
		return err
	}

	subject, body := cancellationNotice(customer, sub)
	msg := []byte(
		fmt.Sprintf("From: %s\r\n", m.cfg.From) +
			fmt.Sprintf("To: %s\r\n", to.String()) +
			fmt.Sprintf("Subject: %s\r\n", subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/plain; charset=\"utf-8\"\r\n" +
			"\r\n" +
			body,
	)

	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	tlsConfig := &tls.Config{ServerName: m.cfg.Host}

	var conn net.Conn
	if m.cfg.ImplicitTLS {
		conn, err = tls.DialWithDialer(dialer, "tcp", addr, tlsConfig)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("smtp dial failed: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp client failed: %w", err)
	}
	defer client.Close()

	if !m.cfg.ImplicitTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(tlsConfig); err != nil {
				return fmt.Errorf("starttls failed: %w", err)
			}
		}
	}
	if m.cfg.Username != "" {
		if err := client.Auth(smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)); err != nil {
			return fmt.Errorf("auth failed: %w", err)
		}
	}

	if err := client.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}
	if err := client.Rcpt(to.Address); err != nil {
		return fmt.Errorf("RCPT TO failed: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA failed: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close failed: %w", err)
	}
	return client.Quit()
}

// recipient parses a single bare address. Header line breaks are rejected
// before parsing so they never reach the message.
func recipient(email string) (*mail.Address, error) {
	if strings.ContainsAny(email, "\r\n") {
		return nil, fmt.Errorf("invalid recipient %q: contains line break", email)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", email, err)
	}
	return addr, nil
}

// LogMailer writes notices to the log instead of sending them. Used in
// development and when no SMTP host is configured.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer creates a new log mailer
func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendCancellationNotice(_ context.Context, customer domain.Customer, sub domain.Snapshot) error {
	subject, body := cancellationNotice(customer, sub)
	m.logger.Info("cancellation notice",
		zap.String("to", customer.Email),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}

func cancellationNotice(customer domain.Customer, sub domain.Snapshot) (subject, body string) {
	name := customer.Name
	if name == "" {
		name = "there"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\r\n\r\n", name)
	if sub.CancelAtPeriodEnd && sub.WillCancelAt != nil {
		fmt.Fprintf(&b, "Your %s subscription has been cancelled and stays active until %s.\r\n",
			sub.Plan.Name, sub.WillCancelAt.Format("January 2, 2006"))
	} else {
		fmt.Fprintf(&b, "Your %s subscription has been cancelled effective immediately.\r\n", sub.Plan.Name)
	}
	if sub.CancelReason != "" {
		fmt.Fprintf(&b, "Reason: %s\r\n", sub.CancelReason)
	}
	b.WriteString("\r\nSubscription ID: " + sub.ID + "\r\n")

	return "Your subscription has been cancelled", b.String()
}
