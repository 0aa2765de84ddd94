// Package fsutil provides small filesystem helpers shared by the
// organizer pipeline and the quarantine store.
package fsutil

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// EnsureDir creates dir and any missing parents
func EnsureDir(fs afero.Fs, dir string) error {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// UniquePath returns a path inside dir for name that does not collide
// with an existing file. On collision a numeric suffix is inserted
// between the stem and the extension: name.ext, name_1.ext, name_2.ext.
func UniquePath(fs afero.Fs, dir, name string) (string, error) {
	dest := filepath.Join(dir, name)
	exists, err := afero.Exists(fs, dest)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", dest, err)
	}
	if !exists {
		return dest, nil
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for counter := 1; ; counter++ {
		dest = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, counter, ext))
		exists, err := afero.Exists(fs, dest)
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", dest, err)
		}
		if !exists {
			return dest, nil
		}
	}
}

// MoveFile moves src to dst, falling back to copy-and-remove when a
// rename is not possible (for example across devices). The destination
// is fully written before the source is removed.
func MoveFile(fs afero.Fs, src, dst string) error {
	if err := fs.Rename(src, dst); err == nil {
		return nil
	}

	in, err := fs.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := fs.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		fs.Remove(dst)
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		fs.Remove(dst)
		return fmt.Errorf("close %s: %w", dst, err)
	}

	if err := fs.Remove(src); err != nil {
		return fmt.Errorf("remove %s: %w", src, err)
	}
	return nil
}
