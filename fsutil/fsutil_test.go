package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCopyTree(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, WriteFile(filepath.Join(src, "img", "og-logo.png"), []byte("png")))
	require.NoError(t, WriteFile(filepath.Join(src, "favicon.ico"), []byte("ico")))

	dst := t.TempDir()
	n, err := CopyTree(src, dst, nil)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	data, err := os.ReadFile(filepath.Join(dst, "img", "og-logo.png"))
	require.NoError(t, err)
	require.Equal(t, "png", string(data))
}

func TestCopyTree_Skip(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, WriteFile(filepath.Join(src, "dist", "sitemap.xml"), []byte("x")))
	require.NoError(t, WriteFile(filepath.Join(src, "favicon.ico"), []byte("ico")))

	dst := t.TempDir()
	n, err := CopyTree(src, dst, func(path string) bool { return filepath.Base(path) == "dist" })
	require.NoError(t, err)
	require.Equal(t, 1, n)

	_, err = os.Stat(filepath.Join(dst, "dist"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestCopyTree_MissingSource(t *testing.T) {
	n, err := CopyTree(filepath.Join(t.TempDir(), "missing"), t.TempDir(), nil)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestDirSize(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteFile(filepath.Join(dir, "a"), []byte("12345")))
	require.NoError(t, WriteFile(filepath.Join(dir, "b", "c"), []byte("123")))

	size, err := DirSize(dir)
	require.NoError(t, err)
	require.EqualValues(t, 8, size)
}

func TestStaging_PublishReplacesOutput(t *testing.T) {
	final := filepath.Join(t.TempDir(), "dist")
	require.NoError(t, WriteFile(filepath.Join(final, "stale.txt"), []byte("old")))

	stage, err := NewStaging(final)
	require.NoError(t, err)
	defer stage.Cleanup()
	require.Equal(t, filepath.Dir(final), filepath.Dir(stage.Dir))

	require.NoError(t, stage.WriteFile("sitemap.xml", []byte("<urlset/>")))
	require.NoError(t, stage.Publish())

	_, err = os.Stat(filepath.Join(final, "stale.txt"))
	require.ErrorIs(t, err, os.ErrNotExist)
	data, err := os.ReadFile(filepath.Join(final, "sitemap.xml"))
	require.NoError(t, err)
	require.Equal(t, "<urlset/>", string(data))

	_, err = os.Stat(final + ".old")
	require.ErrorIs(t, err, os.ErrNotExist)
	require.Error(t, stage.Publish())
}

func TestStaging_CleanupDiscardsUnpublished(t *testing.T) {
	final := filepath.Join(t.TempDir(), "dist")
	stage, err := NewStaging(final)
	require.NoError(t, err)
	dir := stage.Dir

	stage.Cleanup()
	_, err = os.Stat(dir)
	require.ErrorIs(t, err, os.ErrNotExist)
	_, err = os.Stat(final)
	require.ErrorIs(t, err, os.ErrNotExist)
}
