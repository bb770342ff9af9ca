package gitutil

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ErrNotRepository indicates the directory is not inside a git work tree.
var ErrNotRepository = errors.New("not a git repository")

// Repository offers read-only history lookups for files in a work tree.
type Repository struct {
	Dir  string
	repo *git.Repository
	mu   sync.Mutex
}

// Commit encapsulates log metadata for a single revision.
type Commit struct {
	Hash        string
	Author      string
	Email       string
	Message     string
	CommittedAt time.Time
}

// Open locates the repository containing dir, walking up to the nearest .git.
func Open(dir string) (*Repository, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrNotRepository, abs)
		}
		return nil, fmt.Errorf("open repository: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open worktree: %w", err)
	}
	return &Repository{Dir: wt.Filesystem.Root(), repo: repo}, nil
}

// LastCommit returns the most recent commit touching the given file. The
// path may be absolute or relative to the repository root. A file with no
// history (untracked, or an empty repository) reports ok=false.
func (r *Repository) LastCommit(path string) (Commit, bool, error) {
	rel, err := r.relative(path)
	if err != nil {
		return Commit{}, false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	iter, err := r.repo.Log(&git.LogOptions{FileName: &rel, Order: git.LogOrderCommitterTime})
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return Commit{}, false, nil
		}
		return Commit{}, false, fmt.Errorf("git log %s: %w", rel, err)
	}
	defer iter.Close()

	commit, err := iter.Next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Commit{}, false, nil
		}
		return Commit{}, false, fmt.Errorf("git log %s: %w", rel, err)
	}
	return toCommit(commit), true, nil
}

// LastModified satisfies content.LastModifier.
func (r *Repository) LastModified(path string) (time.Time, bool, error) {
	commit, ok, err := r.LastCommit(path)
	if err != nil || !ok {
		return time.Time{}, ok, err
	}
	return commit.CommittedAt, true, nil
}

func (r *Repository) relative(path string) (string, error) {
	if !filepath.IsAbs(path) {
		return filepath.ToSlash(filepath.Clean(path)), nil
	}
	root, err := filepath.EvalSymlinks(r.Dir)
	if err != nil {
		return "", err
	}
	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside repository %s", path, r.Dir)
	}
	return filepath.ToSlash(rel), nil
}

func toCommit(c *object.Commit) Commit {
	return Commit{
		Hash:        c.Hash.String(),
		Author:      c.Author.Name,
		Email:       c.Author.Email,
		Message:     strings.TrimSpace(c.Message),
		CommittedAt: c.Committer.When,
	}
}
