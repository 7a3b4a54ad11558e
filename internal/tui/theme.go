package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/LISSConsulting/LISSTech.Archivist/internal/pipeline"
)

// Theme holds accent-color-derived styles.
type Theme struct {
	accentStyle     lipgloss.Style // header background
	selectedStyle   lipgloss.Style // selected list row
	borderFocused   lipgloss.Style // focused panel border
	borderUnfocused lipgloss.Style // unfocused panel border
}

// NewTheme creates a Theme from a hex accent color string (e.g. "#7D56F4").
// If accentColor is empty, the default accent color is used.
func NewTheme(accentColor string) Theme {
	color := defaultAccentColor
	if accentColor != "" {
		color = accentColor
	}
	c := lipgloss.Color(color)
	return Theme{
		accentStyle: lipgloss.NewStyle().
			Background(c).
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true),
		selectedStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(c),
		borderFocused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c),
		borderUnfocused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorGray),
	}
}

// AccentHeaderStyle returns the style for the header bar.
func (t Theme) AccentHeaderStyle() lipgloss.Style {
	return t.accentStyle
}

// SelectedStyle returns the style for the highlighted list row.
func (t Theme) SelectedStyle() lipgloss.Style {
	return t.selectedStyle
}

// PanelBorderStyle returns the border style for a panel based on whether it
// currently holds keyboard focus.
func (t Theme) PanelBorderStyle(focused bool) lipgloss.Style {
	if focused {
		return t.borderFocused
	}
	return t.borderUnfocused
}

// RenderEvent renders a journal event as a single terminal line, truncating
// the message to fit width.
func (t Theme) RenderEvent(ev pipeline.Event, width int) string {
	ts := timestampStyle.Render(fmt.Sprintf("[%s]", ev.Timestamp.Format("15:04:05")))
	msg := singleLine(ev.Message)
	limit := width - 12
	if limit < 20 {
		limit = 20
	}
	if runes := []rune(msg); len(runes) > limit {
		msg = string(runes[:limit-1]) + "…"
	}
	return fmt.Sprintf("%s  %s", ts, kindStyle(ev.Kind).Render(msg))
}
