package core

import (
	"context"
)

// FileScanner defines the interface for screening a single file for threats
type FileScanner interface {
	// Scan screens the file at path and returns a verdict. Scanner
	// unavailability is reported as a verdict with unknown status, not
	// as an error, so one bad scan never aborts a whole run.
	Scan(ctx context.Context, path string) (*ScanVerdict, error)
}

// ContentDetector defines the interface for sniffing a file's content type
type ContentDetector interface {
	// DetectMIME returns the detected MIME type for the file at path
	DetectMIME(path string) (string, error)

	// VerifyMIME checks the detected type against an expected prefix
	VerifyMIME(path string, expectedPrefix string) *MimeCheck
}

// VerdictCache defines the interface for caching scan verdicts by content hash
type VerdictCache interface {
	// Get retrieves a cached entry for a file hash
	Get(ctx context.Context, fileHash string) (*CacheEntry, error)

	// Set stores a cache entry
	Set(ctx context.Context, entry *CacheEntry) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}

// Quarantiner defines the interface the pipeline needs to isolate a file
type Quarantiner interface {
	// MoveIn relocates the file at path into the quarantine area and
	// returns its new path
	MoveIn(path string) (string, error)
}

// ProgressFunc receives progress events during a run. Percent is
// monotonically non-decreasing within one run, ending at 100.
// Implementations must be cheap and non-blocking.
type ProgressFunc func(percent int, message string)
