package transfer

import (
	"context"
	"fmt"
	"os"
)

// Local copies between paths of the local file system, keeping the source
// mode and modification time.
type Local struct{}

func (Local) Get(_ context.Context, src, dst string) error {
	return copyFile(src, dst)
}

func (Local) Put(_ context.Context, src, dst string) error {
	return copyFile(src, dst)
}

func (Local) Close() error { return nil }

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("copy %s: not a regular file", src)
	}

	if err := copyTo(dst, in, info.Mode().Perm()); err != nil {
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
