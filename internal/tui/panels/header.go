package panels

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HeaderProps holds all data needed to render the header bar.
type HeaderProps struct {
	ProjectName string
	StoreDir    string
	Reports     int
	LastRun     string // e.g. "2024-06-01 ✓"; empty when no run is recorded
}

// AbbreviatePath returns a display-friendly path, replacing the home directory
// with "~" and converting backslashes to forward slashes.
func AbbreviatePath(path string) string {
	if path == "" {
		return ""
	}
	if home, err := os.UserHomeDir(); err == nil && strings.HasPrefix(path, home) {
		path = "~" + path[len(home):]
	}
	return strings.ReplaceAll(path, "\\", "/")
}

// RenderHeader renders the header bar. accentStyle is applied to the full
// header width.
func RenderHeader(props HeaderProps, width int, accentStyle lipgloss.Style) string {
	name := props.ProjectName
	if name == "" {
		name = "archivist"
	}
	last := props.LastRun
	if last == "" {
		last = "never"
	}
	text := fmt.Sprintf(" %s  │  %s  │  %d archived  │  last run: %s",
		name, AbbreviatePath(props.StoreDir), props.Reports, last)
	return accentStyle.Width(width).MaxWidth(width).Render(text)
}
