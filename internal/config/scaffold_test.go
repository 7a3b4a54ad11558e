package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestScaffoldProject(t *testing.T) {
	t.Run("creates all files in empty dir", func(t *testing.T) {
		dir := t.TempDir()

		created, err := ScaffoldProject(dir)
		if err != nil {
			t.Fatal(err)
		}

		expected := []string{
			filepath.Join(dir, "archivist.toml"),
			filepath.Join(dir, "archived_reports"),
			filepath.Join(dir, ".gitignore"),
		}
		if len(created) != len(expected) {
			t.Fatalf("created %d paths, want %d: %v", len(created), len(expected), created)
		}
		for i, want := range expected {
			if created[i] != want {
				t.Errorf("created[%d] = %q, want %q", i, created[i], want)
			}
		}

		info, err := os.Stat(filepath.Join(dir, "archived_reports"))
		if err != nil || !info.IsDir() {
			t.Errorf("archived_reports should be a directory: %v", err)
		}

		content, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
		if err != nil {
			t.Fatalf(".gitignore: %v", err)
		}
		if !strings.Contains(string(content), ".archivist/") {
			t.Error(".gitignore should contain .archivist/")
		}

		if _, err := Load(filepath.Join(dir, "archivist.toml")); err != nil {
			t.Errorf("scaffolded config should load: %v", err)
		}
	})

	t.Run("skips existing files", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "archivist.toml"), []byte("existing"), 0644); err != nil {
			t.Fatal(err)
		}

		created, err := ScaffoldProject(dir)
		if err != nil {
			t.Fatal(err)
		}

		expected := []string{
			filepath.Join(dir, "archived_reports"),
			filepath.Join(dir, ".gitignore"),
		}
		if len(created) != len(expected) {
			t.Fatalf("created %d paths, want %d: %v", len(created), len(expected), created)
		}
		for i, want := range expected {
			if created[i] != want {
				t.Errorf("created[%d] = %q, want %q", i, created[i], want)
			}
		}

		content, err := os.ReadFile(filepath.Join(dir, "archivist.toml"))
		if err != nil {
			t.Fatal(err)
		}
		if string(content) != "existing" {
			t.Error("archivist.toml was overwritten")
		}
	})

	t.Run("all present returns empty list", func(t *testing.T) {
		dir := t.TempDir()
		if _, err := ScaffoldProject(dir); err != nil {
			t.Fatal(err)
		}

		created, err := ScaffoldProject(dir)
		if err != nil {
			t.Fatal(err)
		}
		if len(created) != 0 {
			t.Errorf("expected empty list, got %v", created)
		}
	})

	t.Run("appends entry to existing gitignore without entry", func(t *testing.T) {
		dir := t.TempDir()
		if _, err := ScaffoldProject(dir); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("_site/"), 0644); err != nil {
			t.Fatal(err)
		}

		created, err := ScaffoldProject(dir)
		if err != nil {
			t.Fatal(err)
		}
		if len(created) != 1 || created[0] != filepath.Join(dir, ".gitignore") {
			t.Errorf("expected only .gitignore in created, got %v", created)
		}
		content, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
		if err != nil {
			t.Fatal(err)
		}
		if string(content) != "_site/\n.archivist/\n" {
			t.Errorf(".gitignore = %q", content)
		}
	})
}
