package clamav

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/file-warden/internal/core"
)

// NotInstalledDetail is the verdict detail reported when the clamscan
// binary is missing. Downstream consumers use it to tell "tool
// unavailable" apart from "verified clean".
const NotInstalledDetail = "clamscan-not-installed"

// ClamscanScanner shells out to the clamscan command-line tool for each
// file. Slower than the daemon but needs no resident service.
type ClamscanScanner struct {
	binary  string
	timeout time.Duration
	logger  *zap.Logger
}

// NewClamscanScanner creates a scanner invoking the given clamscan binary
func NewClamscanScanner(binary string, timeout time.Duration, logger *zap.Logger) *ClamscanScanner {
	if binary == "" {
		binary = "clamscan"
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &ClamscanScanner{binary: binary, timeout: timeout, logger: logger}
}

// Scan runs clamscan against the file at path and parses its combined
// output. A missing binary or a failed invocation degrades to an
// unknown-status verdict; it never returns an error for those cases, so
// a broken tool cannot abort a whole run.
func (s *ClamscanScanner) Scan(ctx context.Context, path string) (*core.ScanVerdict, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, s.binary, "--no-summary", path)
	out, err := cmd.CombinedOutput()
	combined := string(out)

	verdict := &core.ScanVerdict{
		Path:      path,
		Engine:    "clamscan",
		ScannedAt: time.Now(),
	}

	// clamscan exits 1 on detection, so the output is parsed before the
	// exit status is considered.
	verdict.Status, verdict.Signature, verdict.Detail = ParseClamscanOutput(combined)
	if verdict.Status != core.StatusUnknown || strings.TrimSpace(combined) != "" {
		return verdict, nil
	}

	if err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			verdict.Detail = NotInstalledDetail
			return verdict, nil
		}
		if ctx.Err() != nil {
			verdict.Detail = fmt.Sprintf("clamscan-error: %v", ctx.Err())
			return verdict, nil
		}
		verdict.Detail = fmt.Sprintf("clamscan-error: %v", err)
		return verdict, nil
	}

	verdict.Status = core.StatusClean
	verdict.Detail = "OK"
	return verdict, nil
}

// ParseClamscanOutput interprets clamscan's combined stdout and stderr
// for a single-file invocation. The OK token wins over everything;
// FOUND marks an infection whose signature is the text after the first
// colon. Output matching neither token yields a clean verdict carrying
// the raw trimmed output, and empty output yields unknown status for
// the caller to resolve against the process error.
func ParseClamscanOutput(output string) (core.VerdictStatus, string, string) {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" {
		return core.StatusUnknown, "", ""
	}

	if strings.Contains(output, "OK") {
		return core.StatusClean, "", "OK"
	}

	if strings.Contains(output, "FOUND") {
		// Typical line: /path/to/file: Eicar-Test-Signature FOUND
		detail := trimmed
		if _, after, ok := strings.Cut(output, ":"); ok {
			detail = strings.TrimSpace(after)
		}
		sig := strings.TrimSpace(strings.TrimSuffix(detail, "FOUND"))
		if sig == "" {
			sig = detail
		}
		return core.StatusInfected, sig, detail
	}

	return core.StatusClean, "", trimmed
}
