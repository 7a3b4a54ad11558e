// Package fsutil holds the copy and replace primitives shared by the archive
// store, the relocator, and the publish synchronizer.
package fsutil

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// CopyFile copies src to dst, overwriting dst if it exists. The file mode and
// modification time of src are carried over.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("fsutil: open %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("fsutil: stat %s: %w", src, err)
	}
	if info.IsDir() {
		return fmt.Errorf("fsutil: copy %s: is a directory", src)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("fsutil: create %s: %w", filepath.Dir(dst), err)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("fsutil: create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("fsutil: copy %s -> %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("fsutil: close %s: %w", dst, err)
	}

	// O_TRUNC keeps the old mode on an existing file.
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return fmt.Errorf("fsutil: chmod %s: %w", dst, err)
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("fsutil: chtimes %s: %w", dst, err)
	}
	return nil
}

// CopyTree deep-copies the directory src to dst. dst must not exist yet.
// Symbolic links are followed and their targets copied. The copy is staged in
// a temporary sibling of dst and renamed into place, so a failed copy never
// leaves a partial dst behind.
func CopyTree(src, dst string) error {
	tmp, err := stage(src, dst)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.RemoveAll(tmp)
		return fmt.Errorf("fsutil: finalize %s: %w", dst, err)
	}
	return nil
}

// ReplaceTree deep-copies src over dst. No file from a previous copy survives
// alongside the new one, and dst is only touched once the copy has succeeded.
func ReplaceTree(src, dst string) error {
	tmp, err := stage(src, dst)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dst); err != nil {
		os.RemoveAll(tmp)
		return fmt.Errorf("fsutil: remove %s: %w", dst, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.RemoveAll(tmp)
		return fmt.Errorf("fsutil: finalize %s: %w", dst, err)
	}
	return nil
}

// stage copies src into a fresh temporary directory next to dst and returns
// its path.
func stage(src, dst string) (string, error) {
	info, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("fsutil: stat %s: %w", src, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("fsutil: copy tree %s: not a directory", src)
	}

	parent := filepath.Dir(dst)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return "", fmt.Errorf("fsutil: create %s: %w", parent, err)
	}
	tmp, err := os.MkdirTemp(parent, "."+filepath.Base(dst)+"-*.tmp")
	if err != nil {
		return "", fmt.Errorf("fsutil: create temp for %s: %w", dst, err)
	}
	if err := copyDir(src, tmp, map[string]bool{}); err != nil {
		os.RemoveAll(tmp)
		return "", fmt.Errorf("fsutil: copy tree %s -> %s: %w", src, dst, err)
	}
	// MkdirTemp creates 0700.
	if err := os.Chmod(tmp, info.Mode().Perm()|0o700); err != nil {
		os.RemoveAll(tmp)
		return "", fmt.Errorf("fsutil: chmod %s: %w", dst, err)
	}
	return tmp, nil
}

// copyDir copies the contents of src into the existing directory dst,
// following symbolic links. seen holds the resolved directories being copied
// higher up the tree; a link back to one of them is a cycle.
func copyDir(src, dst string, seen map[string]bool) error {
	root, err := filepath.EvalSymlinks(src)
	if err != nil {
		return err
	}
	if seen[root] {
		return fmt.Errorf("symlink cycle at %s", src)
	}
	seen[root] = true
	defer delete(seen, root)

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.Type()&fs.ModeSymlink != 0 {
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("follow %s: %w", path, err)
			}
			if !info.IsDir() {
				return CopyFile(path, target)
			}
			if err := os.MkdirAll(target, info.Mode().Perm()|0o700); err != nil {
				return err
			}
			return copyDir(path, target, seen)
		}

		switch {
		case d.IsDir():
			info, err := d.Info()
			if err != nil {
				return err
			}
			return os.MkdirAll(target, info.Mode().Perm()|0o700)
		case d.Type().IsRegular():
			return CopyFile(path, target)
		}
		// Sockets, pipes and devices have no place in a published tree.
		return nil
	})
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// IsFile reports whether path exists and is a regular file.
func IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// WriteFileAtomic writes data to a temp file next to path and renames it into
// place, so readers never observe a partially written file.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("fsutil: create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("fsutil: create temp for %s: %w", path, err)
	}
	if _, writeErr := tmp.Write(data); writeErr != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("fsutil: write %s: %w", path, writeErr)
	}
	if closeErr := tmp.Close(); closeErr != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("fsutil: close %s: %w", path, closeErr)
	}
	if chmodErr := os.Chmod(tmp.Name(), 0o644); chmodErr != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("fsutil: chmod %s: %w", path, chmodErr)
	}
	if renameErr := os.Rename(tmp.Name(), path); renameErr != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("fsutil: finalize %s: %w", path, renameErr)
	}
	return nil
}
