// Package notify delivers composed reports over an external channel.
package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/mikey/file-warden/internal/config"
	"github.com/mikey/file-warden/internal/ports"
)

// SMTPNotifier delivers reports by email over SMTP with STARTTLS
type SMTPNotifier struct {
	cfg    config.NotifyConfig
	logger *zap.Logger
}

// NewSMTPNotifier creates an email notifier. Missing sender or
// recipient is a configuration error surfaced here, not at send time.
func NewSMTPNotifier(cfg config.NotifyConfig, logger *zap.Logger) (*SMTPNotifier, error) {
	if cfg.From == "" || cfg.To == "" {
		return nil, fmt.Errorf("notify: sender and recipient addresses are required")
	}
	return &SMTPNotifier{cfg: cfg, logger: logger}, nil
}

// Send delivers the report to the configured recipient
func (n *SMTPNotifier) Send(ctx context.Context, report *ports.Report) error {
	addr := fmt.Sprintf("%s:%d", n.cfg.SMTPHost, n.cfg.SMTPPort)

	dialer := net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(30 * time.Second))
	}

	var c *smtp.Client
	if n.cfg.StartTLS {
		// NewClientStartTLS performs the EHLO and STARTTLS negotiation
		// itself and fails if the server does not offer the extension.
		c, err = smtp.NewClientStartTLS(conn, &tls.Config{ServerName: n.cfg.SMTPHost})
		if err != nil {
			conn.Close()
			return fmt.Errorf("STARTTLS negotiation failed: %w", err)
		}
	} else {
		c = smtp.NewClient(conn)
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "localhost"
		}
		if err := c.Hello(hostname); err != nil {
			c.Close()
			return fmt.Errorf("EHLO failed: %w", err)
		}
	}
	defer c.Close()

	if n.cfg.Username != "" {
		auth := sasl.NewPlainClient("", n.cfg.Username, n.cfg.Password)
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := c.Mail(n.cfg.From, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}
	if err := c.Rcpt(n.cfg.To, nil); err != nil {
		return fmt.Errorf("RCPT TO failed: %w", err)
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write([]byte(n.message(report))); err != nil {
		wc.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to finish message: %w", err)
	}

	if err := c.Quit(); err != nil {
		n.logger.Debug("SMTP QUIT failed", zap.Error(err))
	}

	n.logger.Info("Report delivered",
		zap.String("recipient", n.cfg.To),
		zap.String("subject", report.Subject))
	return nil
}

// message renders the report as an RFC 5322 message
func (n *SMTPNotifier) message(report *ports.Report) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("From: %s\r\n", n.cfg.From))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", n.cfg.To))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", report.Subject))
	sb.WriteString(fmt.Sprintf("Date: %s\r\n", time.Now().Format(time.RFC1123Z)))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(strings.ReplaceAll(report.Body, "\n", "\r\n"))
	return sb.String()
}
