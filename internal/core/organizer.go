package core

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/mikey/file-warden/internal/fsutil"
)

// OrganizerOptions controls one pipeline run
type OrganizerOptions struct {
	// SecurityEnabled screens every candidate before it is relocated
	SecurityEnabled bool
	// CacheEnabled consults the verdict cache, keyed by content hash,
	// before invoking the scanner
	CacheEnabled bool
	CacheTTL     time.Duration
}

// OrganizerService runs the scan-classify-relocate pipeline over a
// target folder. It is the sole writer of run analytics and the sole
// emitter of progress events; one service must not run two folders
// concurrently.
type OrganizerService struct {
	fs         afero.Fs
	scanner    FileScanner
	cache      VerdictCache
	quarantine Quarantiner
	logger     *zap.Logger
	opts       OrganizerOptions
}

// NewOrganizerService creates a new pipeline service
func NewOrganizerService(
	fs afero.Fs,
	scanner FileScanner,
	cache VerdictCache,
	quarantine Quarantiner,
	logger *zap.Logger,
	opts OrganizerOptions,
) *OrganizerService {
	return &OrganizerService{
		fs:         fs,
		scanner:    scanner,
		cache:      cache,
		quarantine: quarantine,
		logger:     logger,
		opts:       opts,
	}
}

// Organize processes the direct children of folder in order. Each
// candidate ends in exactly one place: a category folder, quarantine,
// or untouched with an error log entry. Per-candidate failures never
// abort the run; cancellation is honored between candidates.
func (s *OrganizerService) Organize(ctx context.Context, folder string, progress ProgressFunc) (*RunResult, error) {
	start := time.Now()
	if progress == nil {
		progress = func(int, string) {}
	}

	candidates, err := s.listCandidates(folder)
	if err != nil {
		return nil, err
	}

	total := len(candidates)
	analytics := &RunAnalytics{
		RunID:      uuid.NewString(),
		TotalFiles: total,
		Categories: make(map[string]int),
	}
	result := &RunResult{Analytics: analytics}

	if total == 0 {
		analytics.TimeTaken = time.Since(start)
		progress(100, "No files to organize")
		return result, nil
	}

	for i, cand := range candidates {
		if err := ctx.Err(); err != nil {
			analytics.TimeTaken = time.Since(start)
			return result, err
		}

		pct := (i + 1) * 100 / total

		if s.opts.SecurityEnabled {
			verdict, err := s.screen(ctx, cand.Path)
			if err != nil {
				analytics.TimeTaken = time.Since(start)
				return result, err
			}
			analytics.Security.Scanned++
			result.Verdicts = append(result.Verdicts, verdict)

			if verdict.Infected() {
				analytics.Security.Infected++
				s.isolate(cand, verdict, result)
				progress(pct, fmt.Sprintf("Processing %s (%d%%)", cand.Name, pct))
				continue
			}
			analytics.Security.Clean++
		}

		s.relocate(cand, folder, result)
		progress(pct, fmt.Sprintf("Processing %s (%d%%)", cand.Name, pct))
	}

	analytics.TimeTaken = time.Since(start)
	progress(100, fmt.Sprintf("Completed - %d files", total))
	if n := analytics.Security.Quarantined; n > 0 {
		progress(100, fmt.Sprintf("%d threat(s) moved to quarantine", n))
	}

	return result, nil
}

// listCandidates enumerates the regular files directly under folder.
// Subfolders, including category folders from earlier runs, are skipped.
func (s *OrganizerService) listCandidates(folder string) ([]FileCandidate, error) {
	infos, err := afero.ReadDir(s.fs, folder)
	if err != nil {
		return nil, fmt.Errorf("failed to read folder %s: %w", folder, err)
	}

	candidates := make([]FileCandidate, 0, len(infos))
	for _, info := range infos {
		if !info.Mode().IsRegular() {
			continue
		}
		candidates = append(candidates, FileCandidate{
			Path: filepath.Join(folder, info.Name()),
			Name: info.Name(),
			Ext:  filepath.Ext(info.Name()),
			Size: info.Size(),
		})
	}
	return candidates, nil
}

// isolate moves an infected candidate into quarantine. On failure the
// candidate stays in place and the quarantined counter is not bumped.
func (s *OrganizerService) isolate(cand FileCandidate, verdict *ScanVerdict, result *RunResult) {
	qpath, err := s.quarantine.MoveIn(cand.Path)
	if err != nil {
		verdict.QuarantineErr = err.Error()
		s.logger.Error("Failed to quarantine file",
			zap.String("path", cand.Path),
			zap.Error(err))
		result.Logs = append(result.Logs, fmt.Sprintf("Quarantine failed for %s: %v", cand.Name, err))
		return
	}

	verdict.QuarantinedTo = qpath
	result.Analytics.Security.Quarantined++
	result.Logs = append(result.Logs, fmt.Sprintf("Quarantined: %s (%s)", cand.Name, verdict.Detail))
}

// relocate classifies a clean candidate and moves it into its category
// folder. Destination names never overwrite: on collision the file gets
// a numeric suffix, same scheme as quarantine naming. Counters are
// bumped only after a successful move.
func (s *OrganizerService) relocate(cand FileCandidate, folder string, result *RunResult) {
	category := Classify(cand.Ext)
	destDir := filepath.Join(folder, category)

	if err := fsutil.EnsureDir(s.fs, destDir); err != nil {
		s.logger.Error("Failed to create category folder",
			zap.String("category", category),
			zap.Error(err))
		result.Logs = append(result.Logs, fmt.Sprintf("Error moving %s: %v", cand.Name, err))
		return
	}

	dest, err := fsutil.UniquePath(s.fs, destDir, cand.Name)
	if err == nil {
		err = fsutil.MoveFile(s.fs, cand.Path, dest)
	}
	if err != nil {
		s.logger.Error("Failed to move file",
			zap.String("path", cand.Path),
			zap.String("category", category),
			zap.Error(err))
		result.Logs = append(result.Logs, fmt.Sprintf("Error moving %s: %v", cand.Name, err))
		return
	}

	result.Analytics.TotalSizeBytes += cand.Size
	result.Analytics.Categories[category]++
	result.Logs = append(result.Logs, fmt.Sprintf("Moved: %s -> %s", cand.Name, category))
}

// screen produces a verdict for one file, consulting the verdict cache
// first when enabled. Unknown-status verdicts are never cached, so an
// outage of the scan tool does not poison later runs.
func (s *OrganizerService) screen(ctx context.Context, path string) (*ScanVerdict, error) {
	var hash string
	if s.opts.CacheEnabled && s.cache != nil {
		var err error
		if hash, err = s.hashFile(path); err != nil {
			s.logger.Debug("Failed to hash file for cache lookup",
				zap.String("path", path),
				zap.Error(err))
		} else if entry, err := s.cache.Get(ctx, hash); err == nil {
			s.logger.Debug("Verdict cache hit", zap.String("path", path))
			return verdictFromCache(path, entry), nil
		}
	}

	verdict, err := s.scanner.Scan(ctx, path)
	if err != nil {
		return nil, err
	}

	if s.opts.CacheEnabled && s.cache != nil && hash != "" && verdict.Status != StatusUnknown {
		entry := &CacheEntry{
			FileHash:  hash,
			Status:    verdict.Status,
			Signature: verdict.Signature,
			LastSeen:  time.Now(),
			ExpiresAt: time.Now().Add(s.opts.CacheTTL),
		}
		if err := s.cache.Set(ctx, entry); err != nil {
			s.logger.Error("Failed to update verdict cache", zap.Error(err))
		}
	}

	return verdict, nil
}

// verdictFromCache rebuilds a verdict from a cached entry
func verdictFromCache(path string, entry *CacheEntry) *ScanVerdict {
	verdict := &ScanVerdict{
		Path:      path,
		Status:    entry.Status,
		Signature: entry.Signature,
		Engine:    "cache",
		ScannedAt: time.Now(),
	}
	if entry.Status == StatusInfected {
		verdict.Detail = fmt.Sprintf("%s (cached)", entry.Signature)
	} else {
		verdict.Detail = "OK (cache)"
	}
	return verdict
}

// hashFile computes the content hash used as the cache key. md5 is fine
// here: the hash only identifies content, it is not a security control.
func (s *OrganizerService) hashFile(path string) (string, error) {
	f, err := s.fs.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
