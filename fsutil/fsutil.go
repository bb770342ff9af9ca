package fsutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// CopyFile copies a file from src to dst creating missing directories.
func CopyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	dstFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return err
	}
	return dstFile.Sync()
}

// CopyTree copies an entire directory tree to destination preserving
// structure. A missing source is not an error and copies nothing. Paths for
// which skip returns true are left out, directories with their contents.
func CopyTree(src, dst string, skip func(path string) bool) (int, error) {
	if _, err := os.Stat(src); errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	copied := 0
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel != "." && skip != nil && skip(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			if rel == "." {
				return nil
			}
			return os.MkdirAll(target, 0o755)
		}
		if err := CopyFile(path, target); err != nil {
			return err
		}
		copied++
		return nil
	})
	return copied, err
}

// WriteFile writes data to path creating missing directories.
func WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// DirSize sums the sizes of all regular files below dir.
func DirSize(dir string) (int64, error) {
	var total int64
	err := filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	return total, err
}

const (
	// StagingPrefix starts the name of every staging directory.
	StagingPrefix = ".__build-"
	// BackupSuffix is appended to the final directory while it is rotated out.
	BackupSuffix = ".old"
)

// Staging is a temporary directory next to a final output directory. Its
// contents replace the final directory on Publish.
type Staging struct {
	Dir   string
	final string
}

// NewStaging creates an empty staging directory beside finalDir.
func NewStaging(finalDir string) (*Staging, error) {
	parent := filepath.Dir(finalDir)
	if parent == "" {
		parent = "."
	}
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, fmt.Errorf("ensure output parent: %w", err)
	}
	dir, err := os.MkdirTemp(parent, StagingPrefix)
	if err != nil {
		return nil, fmt.Errorf("create temp output dir: %w", err)
	}
	return &Staging{Dir: dir, final: finalDir}, nil
}

// Path joins a slash separated relative path onto the staging directory.
func (s *Staging) Path(rel string) string {
	return filepath.Join(s.Dir, filepath.FromSlash(rel))
}

// WriteFile writes data to rel inside the staging directory.
func (s *Staging) WriteFile(rel string, data []byte) error {
	return WriteFile(s.Path(rel), data)
}

// Publish swaps the staging directory into place. The previous output is
// kept as <final>.old until the swap succeeds and restored if it fails.
func (s *Staging) Publish() error {
	if s.Dir == "" {
		return errors.New("staging already published")
	}

	backupDir := s.final + BackupSuffix
	if err := os.RemoveAll(backupDir); err != nil {
		return fmt.Errorf("clean backup dir: %w", err)
	}

	if err := os.Rename(s.final, backupDir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("rotate old output: %w", err)
	}

	if err := os.Rename(s.Dir, s.final); err != nil {
		_ = os.Rename(backupDir, s.final)
		return fmt.Errorf("activate new output: %w", err)
	}

	_ = os.RemoveAll(backupDir)
	s.Dir = ""
	return nil
}

// Cleanup removes the staging directory unless it was published.
func (s *Staging) Cleanup() {
	if s.Dir != "" {
		_ = os.RemoveAll(s.Dir)
		s.Dir = ""
	}
}
