package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// initTestRepo creates a temporary git repo with one commit and returns
// its path. It configures local user.name and user.email so commits work.
func initTestRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()

	cmds := [][]string{
		{"git", "init"},
		{"git", "config", "user.email", "test@test.com"},
		{"git", "config", "user.name", "Test"},
		{"git", "checkout", "-b", "main"},
	}
	for _, args := range cmds {
		cmd := exec.Command(args[0], args[1:]...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("%v failed: %s (%v)", args, out, err)
		}
	}

	if err := os.WriteFile(filepath.Join(dir, "report.qmd"), []byte("# report\n"), 0644); err != nil {
		t.Fatal(err)
	}
	for _, args := range [][]string{
		{"git", "add", "."},
		{"git", "commit", "-m", "initial commit"},
	} {
		cmd := exec.Command(args[0], args[1:]...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("%v failed: %s (%v)", args, out, err)
		}
	}

	return dir
}

func TestShortHash(t *testing.T) {
	dir := initTestRepo(t)
	r := NewRunner(dir)

	t.Run("explicit length", func(t *testing.T) {
		h, err := r.ShortHash(7)
		if err != nil {
			t.Fatal(err)
		}
		if len(h) != 7 {
			t.Errorf("got %q, want 7 characters", h)
		}
	})

	t.Run("git default length", func(t *testing.T) {
		h, err := r.ShortHash(0)
		if err != nil {
			t.Fatal(err)
		}
		if len(h) < 4 {
			t.Errorf("got %q, expected an abbreviated hash", h)
		}
	})

	t.Run("matches last commit", func(t *testing.T) {
		h, err := r.ShortHash(7)
		if err != nil {
			t.Fatal(err)
		}
		last, err := r.LastCommit()
		if err != nil {
			t.Fatal(err)
		}
		if !strings.HasPrefix(last, h[:4]) {
			t.Errorf("last commit %q does not start with %q", last, h[:4])
		}
		if !strings.Contains(last, "initial commit") {
			t.Errorf("last commit %q missing subject", last)
		}
	})
}

func TestShortHash_NotARepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	r := NewRunner(t.TempDir())
	if _, err := r.ShortHash(7); err == nil {
		t.Error("expected error outside a repository")
	}
}

func TestCurrentBranch(t *testing.T) {
	dir := initTestRepo(t)
	r := NewRunner(dir)

	branch, err := r.CurrentBranch()
	if err != nil {
		t.Fatal(err)
	}
	if branch != "main" {
		t.Errorf("got %q, want %q", branch, "main")
	}
}
