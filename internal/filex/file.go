// Package filex holds the filesystem helpers used to relocate files once the
// pipeline has reached a terminal outcome for them.
package filex

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
)

// MoveError reports a failed relocation. The file is left where it was.
type MoveError struct {
	Src string
	Dst string
	Err error
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("move %s to %s: %v", e.Src, e.Dst, e.Err)
}

func (e *MoveError) Unwrap() error {
	return e.Err
}

// EnsureSubDir creates parent/name if it does not exist and returns its path.
func EnsureSubDir(parent, name string) (string, error) {
	dir := filepath.Join(parent, name)

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// MoveInto moves src into parent/subdir (creating it if needed), keeping the
// base name, and returns the new path. A rename across filesystems falls
// back to copy-and-remove.
func MoveInto(src, parent, subdir string) (string, error) {
	dir, err := EnsureSubDir(parent, subdir)
	if err != nil {
		return "", &MoveError{Src: src, Dst: filepath.Join(parent, subdir), Err: err}
	}

	dst := filepath.Join(dir, filepath.Base(src))
	if err := move(src, dst); err != nil {
		return "", &MoveError{Src: src, Dst: dst, Err: err}
	}
	return dst, nil
}

var rename = os.Rename

func move(src, dst string) error {
	err := rename(src, dst)
	if err == nil {
		return nil
	}

	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) || !errors.Is(linkErr.Err, syscall.EXDEV) {
		return err
	}

	if err := copyFile(src, dst); err != nil {
		_ = os.Remove(dst)
		return err
	}
	return os.Remove(src)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
