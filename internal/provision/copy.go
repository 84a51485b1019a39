package provision

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CopyIfNewer copies src to dst unless dst already exists and src is not
// newer than it. Parent directories of dst are created as needed.
//
// The copy carries over the permission bits and the modification time of
// src, so calling CopyIfNewer again with an unchanged src copies nothing.
// It reports whether a copy happened.
func CopyIfNewer(src, dst string) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return false, fmt.Errorf("failed to create directory %s: %w", filepath.Dir(dst), err)
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", src, err)
	}

	if dstInfo, err := os.Stat(dst); err == nil {
		if !srcInfo.ModTime().After(dstInfo.ModTime()) {
			return false, nil
		}
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to stat %s: %w", dst, err)
	}

	if err := copyFile(src, dst, srcInfo.Mode().Perm()); err != nil {
		return false, err
	}
	if err := os.Chmod(dst, srcInfo.Mode().Perm()); err != nil {
		return false, fmt.Errorf("failed to set mode on %s: %w", dst, err)
	}
	if err := os.Chtimes(dst, srcInfo.ModTime(), srcInfo.ModTime()); err != nil {
		return false, fmt.Errorf("failed to set times on %s: %w", dst, err)
	}
	return true, nil
}

// copyFile streams src into dst, creating or truncating dst with mode.
func copyFile(src, dst string, mode os.FileMode) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", src, err)
	}
	defer func() { _ = srcFile.Close() }()

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", dst, err)
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		_ = dstFile.Close()
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	if err := dstFile.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", dst, err)
	}
	return nil
}
