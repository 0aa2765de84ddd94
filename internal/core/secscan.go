package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// SecurityScanService runs a standalone security pass over a folder
// tree: every file is screened, infected files and content-type
// mismatches are quarantined, nothing is reorganized. Its output feeds
// the report composer directly.
type SecurityScanService struct {
	fs           afero.Fs
	scanner      FileScanner
	detector     ContentDetector
	quarantine   Quarantiner
	logger       *zap.Logger
	expectations map[string]string
}

// NewSecurityScanService creates a security scan service. expectations
// maps extensions to required MIME prefixes (".jpg" -> "image/"); only
// extensions present in the map get a content-type check.
func NewSecurityScanService(
	fs afero.Fs,
	scanner FileScanner,
	detector ContentDetector,
	quarantine Quarantiner,
	logger *zap.Logger,
	expectations map[string]string,
) *SecurityScanService {
	return &SecurityScanService{
		fs:           fs,
		scanner:      scanner,
		detector:     detector,
		quarantine:   quarantine,
		logger:       logger,
		expectations: expectations,
	}
}

// ScanFolder screens every file under folder, recursing into
// subfolders. Infected files are quarantined; a file whose detected
// content type contradicts its extension is quarantined as suspicious.
func (s *SecurityScanService) ScanFolder(ctx context.Context, folder string, progress ProgressFunc) ([]*ScanVerdict, []*MimeCheck, error) {
	if progress == nil {
		progress = func(int, string) {}
	}

	var paths []string
	err := afero.Walk(s.fs, folder, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to walk folder %s: %w", folder, err)
	}

	total := len(paths)
	var verdicts []*ScanVerdict
	var checks []*MimeCheck

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return verdicts, checks, err
		}

		name := filepath.Base(path)
		pct := (i + 1) * 100 / total
		progress(pct, fmt.Sprintf("Scanning %s (%d/%d)", name, i+1, total))

		verdict, err := s.scanner.Scan(ctx, path)
		if err != nil {
			return verdicts, checks, err
		}
		if verdict.Infected() {
			if qpath, err := s.quarantine.MoveIn(path); err != nil {
				verdict.QuarantineErr = err.Error()
				s.logger.Error("Failed to quarantine file",
					zap.String("path", path),
					zap.Error(err))
			} else {
				verdict.QuarantinedTo = qpath
			}
		}
		verdicts = append(verdicts, verdict)

		// The content-type check only applies to files still in place;
		// an already-quarantined file has nothing left to verify.
		if verdict.Infected() {
			continue
		}
		expected, ok := s.expectations[strings.ToLower(filepath.Ext(path))]
		if !ok {
			continue
		}

		check := s.detector.VerifyMIME(path, expected)
		if check.Match != nil && !*check.Match {
			if qpath, err := s.quarantine.MoveIn(path); err != nil {
				s.logger.Error("Failed to quarantine mismatched file",
					zap.String("path", path),
					zap.Error(err))
			} else {
				check.QuarantinedTo = qpath
			}
		}
		checks = append(checks, check)
	}

	progress(100, "Security scan completed")
	return verdicts, checks, nil
}
