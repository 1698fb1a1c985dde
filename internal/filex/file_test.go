package filex

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureSubDir_CreatesDirectory(t *testing.T) {
	tmp := t.TempDir()

	got, err := EnsureSubDir(tmp, "processed")
	require.NoError(t, err)

	want := filepath.Join(tmp, "processed")
	require.Equal(t, want, got)

	fi, err := os.Stat(want)
	require.NoError(t, err)
	require.True(t, fi.IsDir(), "should create a directory")

	if runtime.GOOS != "windows" {
		perm := fi.Mode().Perm()
		require.Equal(t, os.FileMode(0o700), perm&0o700)
	}
}

func TestEnsureSubDir_Idempotent(t *testing.T) {
	tmp := t.TempDir()

	first, err := EnsureSubDir(tmp, "too_large")
	require.NoError(t, err)

	second, err := EnsureSubDir(tmp, "too_large")
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestEnsureSubDir_FailsIfFileWithSameNameExists(t *testing.T) {
	tmp := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "processed"), []byte("x"), 0o660))

	_, err := EnsureSubDir(tmp, "processed")
	require.Error(t, err, "should fail when a file exists with the same name")
}

func TestMoveInto_MovesFileAndKeepsName(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "clip.mp4")
	require.NoError(t, os.WriteFile(src, []byte("video"), 0o600))

	dst, err := MoveInto(src, tmp, "processed")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(tmp, "processed", "clip.mp4"), dst)

	_, err = os.Stat(src)
	require.True(t, os.IsNotExist(err))

	b, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, "video", string(b))
}

func TestMoveInto_MissingSourceReturnsMoveError(t *testing.T) {
	tmp := t.TempDir()

	_, err := MoveInto(filepath.Join(tmp, "gone.mp4"), tmp, "processed")

	var me *MoveError
	require.ErrorAs(t, err, &me)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestMoveInto_CrossDeviceFallsBackToCopy(t *testing.T) {
	orig := rename
	t.Cleanup(func() { rename = orig })
	rename = func(oldpath, newpath string) error {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: syscall.EXDEV}
	}

	tmp := t.TempDir()
	src := filepath.Join(tmp, "big.mov")
	require.NoError(t, os.WriteFile(src, []byte("bytes"), 0o640))

	dst, err := MoveInto(src, tmp, "too_large")
	require.NoError(t, err)

	_, err = os.Stat(src)
	require.True(t, errors.Is(err, os.ErrNotExist))

	b, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, "bytes", string(b))
}
