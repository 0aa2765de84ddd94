package core

import (
	"time"
)

// VerdictStatus classifies the outcome of screening a single file.
type VerdictStatus string

const (
	// StatusClean means the scanner positively reported the file as clean.
	StatusClean VerdictStatus = "clean"
	// StatusInfected means the scanner matched a threat signature.
	StatusInfected VerdictStatus = "infected"
	// StatusUnknown means no scanner was reachable, so the file could not be
	// screened. Not the same as verified clean.
	StatusUnknown VerdictStatus = "unknown"
)

// FileCandidate represents a regular file awaiting classification or scanning
type FileCandidate struct {
	Path string
	Name string
	Ext  string
	Size int64
}

// ScanVerdict represents the result of screening one file
type ScanVerdict struct {
	Path          string
	Status        VerdictStatus
	Signature     string
	Detail        string
	Engine        string
	QuarantinedTo string
	QuarantineErr string
	ScannedAt     time.Time
}

// Infected reports whether the verdict matched a threat signature
func (v *ScanVerdict) Infected() bool {
	return v.Status == StatusInfected
}

// MimeCheck represents the result of verifying a file's content type
// against the type its extension promises. A nil Match means the check
// was inconclusive rather than a mismatch.
type MimeCheck struct {
	Path          string
	MIME          string
	Match         *bool
	Detail        string
	QuarantinedTo string
}

// SecurityStats aggregates scan counters for one run.
// Scanned = Infected + Clean holds at run end; verdicts with unknown
// status count toward Clean while keeping their status for audit.
type SecurityStats struct {
	Scanned     int
	Infected    int
	Quarantined int
	Clean       int
}

// RunAnalytics aggregates the outcome of one organize run.
// Bytes of quarantined files are excluded from TotalSizeBytes.
type RunAnalytics struct {
	RunID          string
	TotalFiles     int
	TotalSizeBytes int64
	Categories     map[string]int
	TimeTaken      time.Duration
	Security       SecurityStats
}

// RunResult is the complete output of one organize run, handed off
// immutably to the presentation layer and the report composer.
type RunResult struct {
	Logs      []string
	Analytics *RunAnalytics
	Verdicts  []*ScanVerdict
}

// CacheEntry caches the verdict for a file's content, keyed by hash
type CacheEntry struct {
	FileHash  string
	Status    VerdictStatus
	Signature string
	LastSeen  time.Time
	ExpiresAt time.Time
}
