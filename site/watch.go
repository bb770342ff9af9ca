package site

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/iedon/corner-site-go/fsutil"
)

// DefaultDebounce is the quiet period before a rebuild is triggered.
const DefaultDebounce = 500 * time.Millisecond

// Watch builds once, then rebuilds whenever the content collection or the
// static assets change. It returns when ctx is cancelled. Failed rebuilds
// are logged and keep the previous output.
func (s *Service) Watch(ctx context.Context, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer watcher.Close()

	roots := s.watchRoots()
	for _, root := range roots {
		if err := addTree(watcher, root); err != nil {
			return err
		}
	}
	s.logger.Info("watching for changes", "dirs", roots, "debounce", debounce)

	s.rebuild(ctx, "initial")

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return ErrWatchClosed
			}
			if event.Op == fsnotify.Chmod || s.isBuildOutput(event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if isDir(event.Name) {
					if err := addTree(watcher, event.Name); err != nil {
						s.logger.Warn("watch new directory", "dir", event.Name, "error", err)
					}
				}
			}
			s.logger.Debug("change detected", "file", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			s.rebuild(ctx, "change")
		case err, ok := <-watcher.Errors:
			if !ok {
				return ErrWatchClosed
			}
			s.logger.Warn("watcher", "error", err)
		}
	}
}

func (s *Service) rebuild(ctx context.Context, reason string) {
	if err := s.BuildStatic(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Error("build", "reason", reason, "error", err)
	}
}

func (s *Service) watchRoots() []string {
	var roots []string
	if dir, err := s.contentDir(); err == nil && isDir(dir) {
		roots = append(roots, dir)
	}
	if isDir(s.cfg.StaticDir) {
		roots = append(roots, s.cfg.StaticDir)
	}
	return roots
}

func (s *Service) contentDir() (string, error) {
	type collectionDirer interface {
		CollectionDir(collection string) (string, error)
	}
	if cd, ok := s.source.(collectionDirer); ok {
		return cd.CollectionDir(s.cfg.Content.Collection)
	}
	return "", errors.New("content source has no directory")
}

// isBuildOutput reports whether name lies in the output directory, its
// staging siblings or its rotated backup. Changes there come from builds.
func (s *Service) isBuildOutput(name string) bool {
	output, err := filepath.Abs(s.cfg.OutputDir)
	if err != nil {
		return false
	}
	target, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	for _, dir := range []string{output, output + fsutil.BackupSuffix} {
		if target == dir || strings.HasPrefix(target, dir+string(filepath.Separator)) {
			return true
		}
	}

	rel, err := filepath.Rel(filepath.Dir(output), target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	first, _, _ := strings.Cut(filepath.ToSlash(rel), "/")
	return strings.HasPrefix(first, fsutil.StagingPrefix)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// addTree watches dir and every directory below it.
func addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}
