// Package tui provides a bubbletea + lipgloss browser for the report archive.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/LISSConsulting/LISSTech.Archivist/internal/pipeline"
)

// defaultAccentColor is the default accent color (indigo).
const defaultAccentColor = "#7D56F4"

var (
	colorWhite  = lipgloss.Color("#FAFAFA")
	colorGray   = lipgloss.Color("#888888")
	colorBlue   = lipgloss.Color("#5B9BD5")
	colorGreen  = lipgloss.Color("#6BCB77")
	colorYellow = lipgloss.Color("#FFD93D")
	colorRed    = lipgloss.Color("#FF6B6B")
)

var (
	footerStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	timestampStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			Width(11)

	renameStyle = lipgloss.NewStyle().
			Foreground(colorBlue)

	copyStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	skipStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	resultStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(colorWhite)
)

// kindStyle returns the style for an event kind.
func kindStyle(k pipeline.Kind) lipgloss.Style {
	switch k {
	case pipeline.KindRename, pipeline.KindDetect:
		return renameStyle
	case pipeline.KindCopy:
		return copyStyle
	case pipeline.KindSkip:
		return skipStyle
	case pipeline.KindError:
		return errorStyle
	case pipeline.KindDone:
		return resultStyle
	default:
		return infoStyle
	}
}

// singleLine collapses whitespace runs, including newlines, to one space.
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
