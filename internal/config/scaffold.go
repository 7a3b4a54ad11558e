package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ScaffoldProject prepares dir for archiving. It creates archivist.toml, the
// persistent archive store directory, and makes sure the run journal is
// excluded from version control. Files that already exist are left
// untouched. Returns the list of created or modified paths.
func ScaffoldProject(dir string) ([]string, error) {
	var created []string

	tomlPath := filepath.Join(dir, FileName)
	if _, err := os.Stat(tomlPath); os.IsNotExist(err) {
		if _, initErr := InitFile(dir); initErr != nil {
			return created, initErr
		}
		created = append(created, tomlPath)
	}

	storeDir := filepath.Join(dir, Defaults().Paths.ArchiveDir)
	if _, err := os.Stat(storeDir); os.IsNotExist(err) {
		if mkErr := os.MkdirAll(storeDir, 0755); mkErr != nil {
			return created, fmt.Errorf("scaffold: create %s: %w", storeDir, mkErr)
		}
		created = append(created, storeDir)
	}

	// The journal and run state are local to one checkout.
	const gitignoreEntry = ".archivist/"
	gitignorePath := filepath.Join(dir, ".gitignore")
	existing, err := os.ReadFile(gitignorePath)
	if os.IsNotExist(err) {
		if writeErr := os.WriteFile(gitignorePath, []byte(gitignoreEntry+"\n"), 0644); writeErr != nil {
			return created, fmt.Errorf("scaffold: write %s: %w", gitignorePath, writeErr)
		}
		created = append(created, gitignorePath)
	} else if err != nil {
		return created, fmt.Errorf("scaffold: read %s: %w", gitignorePath, err)
	} else if !strings.Contains(string(existing), gitignoreEntry) {
		content := string(existing)
		if len(content) > 0 && content[len(content)-1] != '\n' {
			content += "\n"
		}
		content += gitignoreEntry + "\n"
		if writeErr := os.WriteFile(gitignorePath, []byte(content), 0644); writeErr != nil {
			return created, fmt.Errorf("scaffold: write %s: %w", gitignorePath, writeErr)
		}
		created = append(created, gitignorePath)
	}

	return created, nil
}
