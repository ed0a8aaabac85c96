package notifier

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// SMTPConfig holds SMTP configuration.
type SMTPConfig struct {
	Host       string   // SMTP server host
	Port       int      // SMTP server port (465 for implicit TLS, 587 for STARTTLS)
	Username   string   // SMTP username (optional)
	Password   string   // SMTP password (optional)
	From       string   // From address
	Recipients []string // Fallback recipients when user resolution is unavailable
}

// Validate validates the SMTP configuration.
func (c *SMTPConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("SMTP host is required")
	}
	if c.Port == 0 {
		return fmt.Errorf("SMTP port is required")
	}
	if c.From == "" {
		return fmt.Errorf("from address is required")
	}
	if len(c.Recipients) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}
	return nil
}

// SMTPMailer is the default Mailer backed by a plain SMTP server.
type SMTPMailer struct {
	config SMTPConfig
}

// NewSMTPMailer creates a new SMTP mailer.
func NewSMTPMailer(config SMTPConfig) (*SMTPMailer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid smtp config: %w", err)
	}
	return &SMTPMailer{config: config}, nil
}

// SendMail delivers one message. The user id is accepted for forward
// compatibility with directory-backed recipient resolution; this mailer
// sends to its configured recipients.
func (m *SMTPMailer) SendMail(ctx context.Context, userID, subject, body string) error {
	msg := m.buildMessage(subject, body)
	return m.send(ctx, msg)
}

func (m *SMTPMailer) buildMessage(subject, body string) []byte {
	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", m.config.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(m.config.Recipients, ", ")))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)
	msg.WriteString("\r\n")
	return []byte(msg.String())
}

func (m *SMTPMailer) send(ctx context.Context, msg []byte) error {
	addr := fmt.Sprintf("%s:%d", m.config.Host, m.config.Port)
	tlsConfig := &tls.Config{ServerName: m.config.Host}

	var client *smtp.Client
	var err error

	if m.config.Port == 465 {
		// Implicit TLS (SMTPS)
		client, err = m.connectImplicitTLS(addr, tlsConfig)
	} else {
		// STARTTLS (port 587 or 25)
		client, err = m.connectSTARTTLS(ctx, addr, tlsConfig)
	}
	if err != nil {
		return fmt.Errorf("connect to SMTP server: %w", err)
	}
	defer client.Close()

	if m.config.Username != "" && m.config.Password != "" {
		auth := smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(m.config.From); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	for _, rcpt := range m.config.Recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("add recipient %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("start data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close data: %w", err)
	}

	return client.Quit()
}

// connectImplicitTLS connects using implicit TLS (port 465).
func (m *SMTPMailer) connectImplicitTLS(addr string, tlsConfig *tls.Config) (*smtp.Client, error) {
	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return nil, err
	}
	return smtp.NewClient(conn, m.config.Host)
}

// connectSTARTTLS connects using STARTTLS (port 587 or 25).
func (m *SMTPMailer) connectSTARTTLS(ctx context.Context, addr string, tlsConfig *tls.Config) (*smtp.Client, error) {
	dialer := &net.Dialer{Timeout: 30 * time.Second}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	client, err := smtp.NewClient(conn, m.config.Host)
	if err != nil {
		conn.Close()
		return nil, err
	}

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(tlsConfig); err != nil {
			client.Close()
			return nil, fmt.Errorf("STARTTLS failed: %w", err)
		}
	}
	return client, nil
}
