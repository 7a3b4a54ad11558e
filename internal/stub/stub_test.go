package stub

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRender(t *testing.T) {
	got, err := Render("Market Research", "2024-06-01", "../_report-template.qmd")
	if err != nil {
		t.Fatal(err)
	}
	want := `---
title: "Market Research: 2024-06-01"
date: "2024-06-01"
params:
  report_date: "2024-06-01"
---

{{< include ../_report-template.qmd >}}
`
	if string(got) != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestNew(t *testing.T) {
	date := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	t.Run("creates dated stub", func(t *testing.T) {
		dir := t.TempDir()
		path, err := New(dir, Options{Date: date})
		if err != nil {
			t.Fatal(err)
		}
		want := filepath.Join(dir, "reports", "2024-06-01-market-report.qmd")
		if path != want {
			t.Errorf("path = %q, want %q", path, want)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), "{{< include ../_report-template.qmd >}}") {
			t.Errorf("stub should include the template:\n%s", data)
		}
		if !strings.Contains(string(data), `title: "Market Research: 2024-06-01"`) {
			t.Errorf("stub title missing:\n%s", data)
		}
	})

	t.Run("custom layout", func(t *testing.T) {
		dir := t.TempDir()
		path, err := New(dir, Options{
			Dir:      "issues/2024",
			Template: "templates/weekly.qmd",
			Suffix:   "weekly",
			Title:    "Weekly Brief",
			Date:     date,
		})
		if err != nil {
			t.Fatal(err)
		}
		if filepath.Base(path) != "2024-06-01-weekly.qmd" {
			t.Errorf("name = %q", filepath.Base(path))
		}
		data, _ := os.ReadFile(path)
		if !strings.Contains(string(data), "{{< include ../../templates/weekly.qmd >}}") {
			t.Errorf("include path wrong:\n%s", data)
		}
		if !strings.Contains(string(data), `"Weekly Brief: 2024-06-01"`) {
			t.Errorf("title wrong:\n%s", data)
		}
	})

	t.Run("refuses to overwrite", func(t *testing.T) {
		dir := t.TempDir()
		if _, err := New(dir, Options{Date: date}); err != nil {
			t.Fatal(err)
		}
		if _, err := New(dir, Options{Date: date}); err == nil {
			t.Error("expected error for existing stub")
		}
	})
}
