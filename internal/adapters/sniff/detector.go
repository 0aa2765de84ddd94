// Package sniff detects a file's real content type from its magic bytes
// and checks it against the type its extension promises.
package sniff

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/mikey/file-warden/internal/core"
)

// Detector implements core.ContentDetector using signature-based
// detection, independent of the file's extension.
type Detector struct {
	logger *zap.Logger
}

// NewDetector creates a content-type detector
func NewDetector(logger *zap.Logger) *Detector {
	return &Detector{logger: logger}
}

// DetectMIME returns the detected MIME type for the file at path
func (d *Detector) DetectMIME(path string) (string, error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return "", err
	}
	// Strip parameters such as "; charset=utf-8" so callers compare
	// against bare type/subtype strings.
	detected := mt.String()
	if idx := strings.Index(detected, ";"); idx >= 0 {
		detected = strings.TrimSpace(detected[:idx])
	}
	return detected, nil
}

// VerifyMIME checks the file's detected content type against an expected
// prefix (for example "image/" for .jpg). Match is false only when
// detection succeeded and the prefix is absent; a failed detection
// leaves Match nil so a mismatch is never reported on guesswork.
func (d *Detector) VerifyMIME(path string, expectedPrefix string) *core.MimeCheck {
	detected, err := d.DetectMIME(path)
	if err != nil {
		d.logger.Debug("Content type detection failed",
			zap.String("path", path),
			zap.Error(err))
		return &core.MimeCheck{
			Path:   path,
			Detail: "detection-failed: " + err.Error(),
		}
	}

	check := &core.MimeCheck{
		Path:   path,
		MIME:   detected,
		Detail: "OK",
	}
	if expectedPrefix != "" {
		match := strings.Contains(detected, expectedPrefix)
		check.Match = &match
	}
	return check
}
