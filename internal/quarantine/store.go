// Package quarantine manages the isolated holding directory for files
// flagged during a security scan. The directory is flat; filenames are
// the only addressing key exposed to callers.
package quarantine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/mikey/file-warden/internal/core"
	"github.com/mikey/file-warden/internal/fsutil"
)

var (
	// ErrNotFound is returned when the named file is absent from quarantine,
	// or when a move-in source does not exist
	ErrNotFound = errors.New("quarantine: file not found")
	// ErrDestinationExists is returned by Restore when the destination path
	// is already occupied; restoring never overwrites a live file
	ErrDestinationExists = errors.New("quarantine: destination already exists")
)

// Store is the quarantine directory. A single run must be the only
// writer; collision-safe naming is not protected by a lock.
type Store struct {
	fs     afero.Fs
	root   string
	logger *zap.Logger
}

// NewStore opens the quarantine directory at root, creating it if absent
func NewStore(fs afero.Fs, root string, logger *zap.Logger) (*Store, error) {
	if err := fsutil.EnsureDir(fs, root); err != nil {
		return nil, fmt.Errorf("failed to create quarantine dir: %w", err)
	}
	return &Store{fs: fs, root: root, logger: logger}, nil
}

// Root returns the quarantine directory path
func (s *Store) Root() string {
	return s.root
}

// MoveIn relocates the file at path into quarantine under a collision-safe
// name (stem_N.ext on collision) and returns the new path. Two calls for
// the same logical file produce two distinct entries.
func (s *Store) MoveIn(path string) (string, error) {
	exists, err := afero.Exists(s.fs, path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if !exists {
		return "", fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	dest, err := fsutil.UniquePath(s.fs, s.root, filepath.Base(path))
	if err != nil {
		return "", err
	}
	if err := fsutil.MoveFile(s.fs, path, dest); err != nil {
		return "", fmt.Errorf("failed to quarantine %s: %w", path, err)
	}

	s.logger.Info("File quarantined",
		zap.String("source", path),
		zap.String("quarantined_to", dest))
	return dest, nil
}

// Restore moves the named quarantine entry out to destFolder under its
// original filename. The entry ceases to exist in quarantine. Restore
// refuses to overwrite an existing file at the destination.
func (s *Store) Restore(filename, destFolder string) (string, error) {
	src := filepath.Join(s.root, filename)
	exists, err := afero.Exists(s.fs, src)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", src, err)
	}
	if !exists {
		return "", fmt.Errorf("%w: %s", ErrNotFound, filename)
	}

	dest := filepath.Join(destFolder, filename)
	occupied, err := afero.Exists(s.fs, dest)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", dest, err)
	}
	if occupied {
		return "", fmt.Errorf("%w: %s", ErrDestinationExists, dest)
	}

	if err := fsutil.MoveFile(s.fs, src, dest); err != nil {
		return "", fmt.Errorf("failed to restore %s: %w", filename, err)
	}

	s.logger.Info("File restored from quarantine",
		zap.String("filename", filename),
		zap.String("restored_to", dest))
	return dest, nil
}

// Delete permanently removes the named entry. Deleting an entry that is
// already absent returns false rather than an error.
func (s *Store) Delete(filename string) (bool, error) {
	path := filepath.Join(s.root, filename)
	exists, err := afero.Exists(s.fs, path)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	if !exists {
		return false, nil
	}

	if err := s.fs.Remove(path); err != nil {
		return false, fmt.Errorf("failed to delete %s: %w", filename, err)
	}

	s.logger.Info("File deleted from quarantine", zap.String("filename", filename))
	return true, nil
}

// List returns the names of regular files directly under the quarantine
// root, sorted. Subdirectories are not entered.
func (s *Store) List() ([]string, error) {
	infos, err := afero.ReadDir(s.fs, s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to list quarantine: %w", err)
	}

	names := make([]string, 0, len(infos))
	for _, info := range infos {
		if info.Mode().IsRegular() {
			names = append(names, info.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Rescan re-screens the named entry in place without changing its
// quarantine residency; used to decide whether a restore is now safe.
func (s *Store) Rescan(ctx context.Context, filename string, scanner core.FileScanner) (*core.ScanVerdict, error) {
	path := filepath.Join(s.root, filename)
	exists, err := afero.Exists(s.fs, path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, filename)
	}

	return scanner.Scan(ctx, path)
}
