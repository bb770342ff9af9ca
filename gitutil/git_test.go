package gitutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	dir string
	wt  *git.Worktree
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	return &fixture{dir: dir, wt: wt}
}

func (f *fixture) commit(t *testing.T, when time.Time, files map[string]string) {
	t.Helper()
	for name, body := range files {
		full := filepath.Join(f.dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(body), 0o644))
		_, err := f.wt.Add(name)
		require.NoError(t, err)
	}
	_, err := f.wt.Commit("update", &git.CommitOptions{
		Author: &object.Signature{Name: "Writer", Email: "writer@example.org", When: when},
	})
	require.NoError(t, err)
}

func TestOpen_NotARepository(t *testing.T) {
	_, err := Open(t.TempDir())
	require.ErrorIs(t, err, ErrNotRepository)
}

func TestOpen_FromSubdirectory_FindsRoot(t *testing.T) {
	f := newFixture(t)
	f.commit(t, time.Date(2021, 3, 1, 10, 0, 0, 0, time.UTC), map[string]string{"content/posts/a.md": "# A"})

	repo, err := Open(filepath.Join(f.dir, "content", "posts"))
	require.NoError(t, err)

	wantRoot, err := filepath.EvalSymlinks(f.dir)
	require.NoError(t, err)
	gotRoot, err := filepath.EvalSymlinks(repo.Dir)
	require.NoError(t, err)
	require.Equal(t, wantRoot, gotRoot)
}

func TestLastCommit_ReturnsNewestCommitTouchingFile(t *testing.T) {
	f := newFixture(t)
	first := time.Date(2021, 3, 1, 10, 0, 0, 0, time.UTC)
	second := time.Date(2021, 4, 1, 10, 0, 0, 0, time.UTC)
	third := time.Date(2021, 5, 1, 10, 0, 0, 0, time.UTC)

	f.commit(t, first, map[string]string{"content/posts/a.md": "# A", "content/posts/b.md": "# B"})
	f.commit(t, second, map[string]string{"content/posts/b.md": "# B, revised"})
	f.commit(t, third, map[string]string{"content/posts/c.md": "# C"})

	repo, err := Open(f.dir)
	require.NoError(t, err)

	commit, ok, err := repo.LastCommit("content/posts/a.md")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, first.Equal(commit.CommittedAt), "got %s", commit.CommittedAt)
	require.Equal(t, "Writer", commit.Author)

	updated, ok, err := repo.LastModified(filepath.Join(f.dir, "content", "posts", "b.md"))
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, second.Equal(updated), "got %s", updated)
}

func TestLastCommit_UntrackedFile(t *testing.T) {
	f := newFixture(t)
	f.commit(t, time.Date(2021, 3, 1, 10, 0, 0, 0, time.UTC), map[string]string{"a.md": "# A"})
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "draft.md"), []byte("# Draft"), 0o644))

	repo, err := Open(f.dir)
	require.NoError(t, err)

	_, ok, err := repo.LastCommit("draft.md")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLastCommit_EmptyRepository(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "a.md"), []byte("# A"), 0o644))

	repo, err := Open(f.dir)
	require.NoError(t, err)

	_, ok, err := repo.LastCommit("a.md")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLastCommit_OutsideRepository(t *testing.T) {
	f := newFixture(t)
	f.commit(t, time.Now(), map[string]string{"a.md": "# A"})
	outside := filepath.Join(t.TempDir(), "b.md")
	require.NoError(t, os.WriteFile(outside, []byte("# B"), 0o644))

	repo, err := Open(f.dir)
	require.NoError(t, err)

	_, _, err = repo.LastCommit(outside)
	require.Error(t, err)
}
