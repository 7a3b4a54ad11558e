package publish

import (
	"os"
	"path/filepath"
	"reflect"
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

func TestSync(t *testing.T) {
	dir := t.TempDir()
	store := filepath.Join(dir, "archived_reports")
	dest := filepath.Join(dir, "docs", "archive")

	writeFile(t, filepath.Join(store, "report_2024-06-01.html"), "june")
	writeFile(t, filepath.Join(store, "report_2024-06-01_files", "plot.png"), "png")
	writeFile(t, filepath.Join(store, "charts", "a.png"), "chart")

	mtime := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	if err := os.Chtimes(filepath.Join(store, "report_2024-06-01.html"), mtime, mtime); err != nil {
		t.Fatal(err)
	}

	// Stale state in the destination from an earlier sync.
	writeFile(t, filepath.Join(dest, "report_2024-06-01.html"), "old")
	writeFile(t, filepath.Join(dest, "charts", "removed.png"), "stale")
	writeFile(t, filepath.Join(dest, "index.html"), "generated elsewhere")

	items, err := Sync(store, dest)
	if err != nil {
		t.Fatal(err)
	}

	want := []Item{
		{Name: "charts", Dir: true},
		{Name: "report_2024-06-01.html"},
		{Name: "report_2024-06-01_files", Dir: true},
	}
	if !reflect.DeepEqual(items, want) {
		t.Errorf("items = %+v, want %+v", items, want)
	}

	if got := readFile(t, filepath.Join(dest, "report_2024-06-01.html")); got != "june" {
		t.Errorf("report = %q, want june", got)
	}
	info, err := os.Stat(filepath.Join(dest, "report_2024-06-01.html"))
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(mtime) {
		t.Errorf("mtime not preserved: %v", info.ModTime())
	}
	if got := readFile(t, filepath.Join(dest, "report_2024-06-01_files", "plot.png")); got != "png" {
		t.Errorf("plot = %q", got)
	}
	if _, err := os.Stat(filepath.Join(dest, "charts", "removed.png")); !os.IsNotExist(err) {
		t.Error("file removed from the store survived in the publish tree")
	}
	if got := readFile(t, filepath.Join(dest, "index.html")); got != "generated elsewhere" {
		t.Error("entries not in the store must be left alone")
	}
}

func TestSync_RebuildFromScratch(t *testing.T) {
	dir := t.TempDir()
	store := filepath.Join(dir, "archived_reports")
	dest := filepath.Join(dir, "docs", "archive")
	writeFile(t, filepath.Join(store, "report_2024-01-01.html"), "jan")
	writeFile(t, filepath.Join(store, "site_libs", "quarto.js"), "js")

	if _, err := Sync(store, dest); err != nil {
		t.Fatal(err)
	}
	if err := os.RemoveAll(filepath.Join(dir, "docs")); err != nil {
		t.Fatal(err)
	}
	if _, err := Sync(store, dest); err != nil {
		t.Fatal(err)
	}

	if got := readFile(t, filepath.Join(dest, "report_2024-01-01.html")); got != "jan" {
		t.Errorf("report = %q", got)
	}
	if got := readFile(t, filepath.Join(dest, "site_libs", "quarto.js")); got != "js" {
		t.Errorf("site_libs = %q", got)
	}
}

func TestSync_MissingStore(t *testing.T) {
	dir := t.TempDir()
	items, err := Sync(filepath.Join(dir, "missing"), filepath.Join(dir, "docs", "archive"))
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Errorf("items = %+v", items)
	}
}
