// Package clamav adapts the external ClamAV threat-detection capability
// behind the core.FileScanner port. Two strategies are available: a
// resident clamd daemon queried over TCP, and the clamscan command-line
// tool. The combined Scanner prefers the daemon and falls back to the
// command line.
package clamav

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/file-warden/internal/core"
)

const defaultTimeout = 30 * time.Second

// ClamdClient talks to a running clamd daemon over its TCP socket.
// It is safe for concurrent use; each call opens its own connection.
type ClamdClient struct {
	address string
	timeout time.Duration
	logger  *zap.Logger
}

// NewClamdClient creates a client for the clamd daemon at address
// (host:port). timeout bounds each round-trip; non-positive values fall
// back to the default.
func NewClamdClient(address string, timeout time.Duration, logger *zap.Logger) *ClamdClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &ClamdClient{address: address, timeout: timeout, logger: logger}
}

// Ping checks that the daemon is up and answering.
func (c *ClamdClient) Ping(ctx context.Context) error {
	reply, err := c.command(ctx, "nPING\n")
	if err != nil {
		return err
	}
	if reply != "PONG" {
		return NewProtocolError(fmt.Sprintf("unexpected ping reply: %q", reply), nil)
	}
	return nil
}

// Version returns the daemon's version banner.
func (c *ClamdClient) Version(ctx context.Context) (string, error) {
	return c.command(ctx, "nVERSION\n")
}

// Scan asks the daemon to scan the file at path. The daemon reads the
// file itself, so path must be visible to the clamd process.
// Infected replies carry the signature name; detail follows the
// "<signature> (FOUND)" format. An unreachable daemon is an error here;
// the combined Scanner turns that into an unknown-status verdict.
func (c *ClamdClient) Scan(ctx context.Context, path string) (*core.ScanVerdict, error) {
	reply, err := c.command(ctx, fmt.Sprintf("nSCAN %s\n", path))
	if err != nil {
		return nil, err
	}

	verdict := &core.ScanVerdict{
		Path:      path,
		Engine:    "clamd",
		ScannedAt: time.Now(),
	}

	// Reply formats:
	//   /path: OK
	//   /path: Eicar-Signature FOUND
	//   /path: some message ERROR
	body := reply
	if idx := strings.LastIndex(reply, ": "); idx >= 0 {
		body = reply[idx+2:]
	}

	switch {
	case body == "OK":
		verdict.Status = core.StatusClean
		verdict.Detail = "OK (clamd)"
	case strings.HasSuffix(body, " FOUND"):
		verdict.Status = core.StatusInfected
		verdict.Signature = strings.TrimSuffix(body, " FOUND")
		verdict.Detail = fmt.Sprintf("%s (FOUND)", verdict.Signature)
	case strings.HasSuffix(body, " ERROR"):
		return nil, NewProtocolError(fmt.Sprintf("daemon reported error: %s", body), nil)
	default:
		return nil, NewProtocolError(fmt.Sprintf("unparsable scan reply: %q", reply), nil)
	}

	return verdict, nil
}

// command opens a connection, sends one command, and reads a single
// newline-terminated reply.
func (c *ClamdClient) command(ctx context.Context, cmd string) (string, error) {
	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	dialer := net.Dialer{Deadline: deadline}
	conn, err := dialer.DialContext(ctx, "tcp", c.address)
	if err != nil {
		return "", NewConnectionError(fmt.Sprintf("failed to connect to clamd at %s", c.address), err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(deadline); err != nil {
		return "", NewConnectionError("failed to set connection deadline", err)
	}

	if _, err := conn.Write([]byte(cmd)); err != nil {
		return "", c.classify("failed to send command", err)
	}

	reply, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return "", c.classify("failed to read reply", err)
	}
	return strings.TrimRight(reply, "\n"), nil
}

// classify maps transport errors to the adapter's error taxonomy.
func (c *ClamdClient) classify(msg string, err error) error {
	if errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError(msg, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewTimeoutError(msg, err)
	}
	return NewConnectionError(msg, err)
}
