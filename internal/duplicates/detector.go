// Package duplicates finds files with identical content inside a folder
// tree by comparing content hashes.
package duplicates

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Detector scans a folder tree for duplicate file content
type Detector struct {
	fs     afero.Fs
	logger *zap.Logger
}

// NewDetector creates a duplicate detector
func NewDetector(fs afero.Fs, logger *zap.Logger) *Detector {
	return &Detector{fs: fs, logger: logger}
}

// FindDuplicates walks folder recursively and returns content hash ->
// paths for every hash shared by more than one file. Files that cannot
// be read are logged and skipped.
func (d *Detector) FindDuplicates(folder string) (map[string][]string, error) {
	hashes := make(map[string][]string)

	err := afero.Walk(d.fs, folder, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		hash, err := d.hashFile(path)
		if err != nil {
			d.logger.Warn("Failed to hash file",
				zap.String("path", path),
				zap.Error(err))
			return nil
		}
		hashes[hash] = append(hashes[hash], path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk folder %s: %w", folder, err)
	}

	duplicates := make(map[string][]string)
	for hash, paths := range hashes {
		if len(paths) > 1 {
			duplicates[hash] = paths
		}
	}
	return duplicates, nil
}

// WastedBytes sums the sizes of all copies beyond the first in each set
func (d *Detector) WastedBytes(duplicates map[string][]string) int64 {
	var total int64
	for _, paths := range duplicates {
		for _, p := range paths[1:] {
			info, err := d.fs.Stat(p)
			if err != nil {
				continue
			}
			total += info.Size()
		}
	}
	return total
}

func (d *Detector) hashFile(path string) (string, error) {
	f, err := d.fs.Open(path)
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
