package discovery

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string, size int) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), make([]byte, size), 0o600))
}

func TestDiscover_FiltersByExtensionAndSkipsDirs(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "b.MOV", 3)
	touch(t, dir, "a.mp4", 10)
	touch(t, dir, "notes.txt", 1)
	touch(t, dir, "noext", 1)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "processed"), 0o700))
	touch(t, filepath.Join(dir, "processed"), "old.mp4", 1)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "folder.mp4"), 0o700))

	got, err := New().Discover(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, Target{
		Path:        filepath.Join(dir, "a.mp4"),
		Name:        "a.mp4",
		Title:       "a",
		Size:        10,
		ContentType: "video/mp4",
	}, got[0])
	assert.Equal(t, "b.MOV", got[1].Name)
	assert.Equal(t, "b", got[1].Title)
	assert.Equal(t, "video/quicktime", got[1].ContentType)
}

func TestDiscover_FollowsSymlinks(t *testing.T) {
	dir := t.TempDir()
	elsewhere := t.TempDir()
	touch(t, elsewhere, "real.bin", 7)
	require.NoError(t, os.Mkdir(filepath.Join(elsewhere, "sub"), 0o700))

	if err := os.Symlink(filepath.Join(elsewhere, "real.bin"), filepath.Join(dir, "linked.mp4")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(elsewhere, "missing.bin"), filepath.Join(dir, "dead.mp4")))
	require.NoError(t, os.Symlink(filepath.Join(elsewhere, "sub"), filepath.Join(dir, "dirlink.mp4")))

	got, err := New().Discover(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, Target{
		Path:        filepath.Join(dir, "linked.mp4"),
		Name:        "linked.mp4",
		Title:       "linked",
		Size:        7,
		ContentType: "video/mp4",
	}, got[0])
}

func TestDiscover_EmptyDirIsNotAnError(t *testing.T) {
	got, err := New().Discover(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDiscover_MissingDir(t *testing.T) {
	_, err := New().Discover(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestDiscover_Options(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, ".hidden.mp4", 1)
	touch(t, dir, "clip.webm", 1)

	got, err := New(WithExtensions("webm", "mp4"), WithSkipHidden(true)).Discover(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "clip.webm", got[0].Name)
}

func TestDiscover_RelativePathBecomesAbsolute(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "clip.mp4", 1)
	t.Chdir(dir)

	got, err := New().Discover(context.Background(), ".")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, filepath.IsAbs(got[0].Path))
}

func TestDiscover_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "clip.mp4", 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Discover(ctx, dir)
	require.ErrorIs(t, err, context.Canceled)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "video/x-matroska", ContentType("a.MKV"))
	assert.Equal(t, "video/mpeg", ContentType("a.mpeg"))
	assert.Equal(t, FallbackContentType, ContentType("a.unknownext"))
}
