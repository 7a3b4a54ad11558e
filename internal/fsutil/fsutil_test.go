package fsutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.html")
	writeFile(t, src, "<p>hello</p>")

	mtime := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	if err := os.Chtimes(src, mtime, mtime); err != nil {
		t.Fatal(err)
	}

	t.Run("new destination in missing dir", func(t *testing.T) {
		dst := filepath.Join(dir, "nested", "b.html")
		if err := CopyFile(src, dst); err != nil {
			t.Fatal(err)
		}
		if got := readFile(t, dst); got != "<p>hello</p>" {
			t.Errorf("content = %q", got)
		}
		info, err := os.Stat(dst)
		if err != nil {
			t.Fatal(err)
		}
		if !info.ModTime().Equal(mtime) {
			t.Errorf("mtime = %v, want %v", info.ModTime(), mtime)
		}
	})

	t.Run("overwrites existing", func(t *testing.T) {
		dst := filepath.Join(dir, "c.html")
		writeFile(t, dst, "a much longer stale body that must be truncated")
		if err := CopyFile(src, dst); err != nil {
			t.Fatal(err)
		}
		if got := readFile(t, dst); got != "<p>hello</p>" {
			t.Errorf("content = %q", got)
		}
	})

	t.Run("missing source", func(t *testing.T) {
		if err := CopyFile(filepath.Join(dir, "nope"), filepath.Join(dir, "x")); err == nil {
			t.Error("expected error for missing source")
		}
	})

	t.Run("directory source", func(t *testing.T) {
		if err := CopyFile(dir, filepath.Join(t.TempDir(), "x")); err == nil {
			t.Error("expected error when source is a directory")
		}
	})
}

func TestReplaceTree(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	writeFile(t, filepath.Join(src, "plot.png"), "new")
	writeFile(t, filepath.Join(src, "sub", "data.json"), "{}")
	writeFile(t, filepath.Join(dst, "plot.png"), "old")
	writeFile(t, filepath.Join(dst, "stale.png"), "stale")

	if err := ReplaceTree(src, dst); err != nil {
		t.Fatal(err)
	}

	if got := readFile(t, filepath.Join(dst, "plot.png")); got != "new" {
		t.Errorf("plot.png = %q, want new", got)
	}
	if got := readFile(t, filepath.Join(dst, "sub", "data.json")); got != "{}" {
		t.Errorf("sub/data.json = %q", got)
	}
	if _, err := os.Stat(filepath.Join(dst, "stale.png")); !os.IsNotExist(err) {
		t.Error("stale.png should not survive a replace")
	}
}

func TestCopyTree_SourceNotDir(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "file")
	writeFile(t, src, "x")
	if err := CopyTree(src, filepath.Join(dir, "out")); err == nil {
		t.Error("expected error when source is a file")
	}
}

func TestIsDirIsFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	writeFile(t, file, "x")

	if !IsDir(dir) || IsDir(file) || IsDir(filepath.Join(dir, "missing")) {
		t.Error("IsDir mismatch")
	}
	if !IsFile(file) || IsFile(dir) || IsFile(filepath.Join(dir, "missing")) {
		t.Error("IsFile mismatch")
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "archive", "index.qmd")

	if err := WriteFileAtomic(path, []byte("one")); err != nil {
		t.Fatal(err)
	}
	if err := WriteFileAtomic(path, []byte("two")); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, path); got != "two" {
		t.Errorf("content = %q, want two", got)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the final file, found %d entries", len(entries))
	}
}

func symlink(t *testing.T, target, link string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(link), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
}

func TestCopyTree_FollowsSymlinks(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "report_files")
	writeFile(t, filepath.Join(dir, "shared", "plot.png"), "png")
	writeFile(t, filepath.Join(dir, "libs", "quarto.js"), "js")
	writeFile(t, filepath.Join(src, "figure-html", "own.png"), "own")
	symlink(t, filepath.Join(dir, "shared", "plot.png"), filepath.Join(src, "figure-html", "link.png"))
	symlink(t, filepath.Join(dir, "libs"), filepath.Join(src, "libs"))

	dst := filepath.Join(dir, "store", "report_2024-06-01_files")
	if err := CopyTree(src, dst); err != nil {
		t.Fatal(err)
	}

	if got := readFile(t, filepath.Join(dst, "figure-html", "link.png")); got != "png" {
		t.Errorf("link.png = %q, want the link target's content", got)
	}
	if got := readFile(t, filepath.Join(dst, "libs", "quarto.js")); got != "js" {
		t.Errorf("libs/quarto.js = %q", got)
	}
	info, err := os.Lstat(filepath.Join(dst, "figure-html", "link.png"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		t.Error("copy should hold a regular file, not a link")
	}
}

func TestReplaceTree_FailureKeepsDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "store", "site_libs")
	writeFile(t, filepath.Join(src, "a.css"), "new")
	symlink(t, filepath.Join(dir, "gone"), filepath.Join(src, "b.css"))
	writeFile(t, filepath.Join(dst, "a.css"), "old")

	if err := ReplaceTree(src, dst); err == nil {
		t.Fatal("expected error for a dangling link")
	}
	if got := readFile(t, filepath.Join(dst, "a.css")); got != "old" {
		t.Errorf("a.css = %q, destination should be untouched", got)
	}

	entries, err := os.ReadDir(filepath.Dir(dst))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temporary copy left behind: %d entries", len(entries))
	}
}

func TestCopyTree_FailureLeavesNoDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	writeFile(t, filepath.Join(src, "a.png"), "png")
	symlink(t, filepath.Join(dir, "gone"), filepath.Join(src, "b.png"))

	dst := filepath.Join(dir, "out")
	if err := CopyTree(src, dst); err == nil {
		t.Fatal("expected error for a dangling link")
	}
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Errorf("partial destination left behind (err=%v)", err)
	}
}

func TestCopyTree_SymlinkCycle(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	writeFile(t, filepath.Join(src, "a.png"), "png")
	symlink(t, src, filepath.Join(src, "loop"))

	if err := CopyTree(src, filepath.Join(dir, "out")); err == nil {
		t.Fatal("expected error for a link cycle")
	}
}
