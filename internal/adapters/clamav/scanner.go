package clamav

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/file-warden/internal/core"
)

// Scanner implements core.FileScanner with daemon-first fallback: it
// tries the clamd daemon and, when the daemon is unreachable, shells
// out to clamscan. Failures of both strategies degrade to an
// unknown-status verdict rather than an error, so scanning trouble
// never aborts a pipeline run.
type Scanner struct {
	daemon *ClamdClient
	cli    *ClamscanScanner
	logger *zap.Logger
}

// NewScanner creates a fallback scanner. Either strategy may be nil to
// disable it; at least one must be set.
func NewScanner(daemon *ClamdClient, cli *ClamscanScanner, logger *zap.Logger) (*Scanner, error) {
	if daemon == nil && cli == nil {
		return nil, fmt.Errorf("at least one scan strategy is required")
	}
	return &Scanner{daemon: daemon, cli: cli, logger: logger}, nil
}

// Scan screens the file at path. The returned error is non-nil only for
// caller cancellation; every scanner-side failure is folded into the
// verdict.
func (s *Scanner) Scan(ctx context.Context, path string) (*core.ScanVerdict, error) {
	if s.daemon != nil {
		verdict, err := s.daemon.Scan(ctx, path)
		if err == nil {
			return verdict, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		s.logger.Debug("clamd scan failed",
			zap.String("path", path),
			zap.Error(err))

		if s.cli == nil {
			return &core.ScanVerdict{
				Path:      path,
				Status:    core.StatusUnknown,
				Detail:    fmt.Sprintf("clamd-unavailable: %v", err),
				Engine:    "clamd",
				ScannedAt: time.Now(),
			}, nil
		}
	}

	verdict, err := s.cli.Scan(ctx, path)
	if err == nil {
		return verdict, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	return &core.ScanVerdict{
		Path:      path,
		Status:    core.StatusUnknown,
		Detail:    fmt.Sprintf("clamscan-error: %v", err),
		Engine:    "clamscan",
		ScannedAt: time.Now(),
	}, nil
}
