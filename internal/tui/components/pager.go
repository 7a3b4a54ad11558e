package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Pager is a scrollable read-only text panel that wraps bubbles/viewport.
// Replacing the content scrolls back to the top.
type Pager struct {
	vp     viewport.Model
	lines  []string // rendered (pre-styled) lines
	width  int
	height int
}

// NewPager creates an empty Pager with the given dimensions.
func NewPager(w, h int) Pager {
	return Pager{vp: viewport.New(w, h), width: w, height: h}
}

// SetLines replaces the content and scrolls to the top.
func (p Pager) SetLines(lines []string) Pager {
	p.lines = make([]string, len(lines))
	copy(p.lines, lines)
	p.vp.SetContent(strings.Join(p.lines, "\n"))
	p.vp.GotoTop()
	return p
}

// Lines returns the current content.
func (p Pager) Lines() []string {
	return p.lines
}

// SetSize resizes the pager.
func (p Pager) SetSize(w, h int) Pager {
	p.width = w
	p.height = h
	p.vp.Width = w
	p.vp.Height = h
	return p
}

// AtTop reports whether the pager is scrolled to the first line.
func (p Pager) AtTop() bool {
	return p.vp.AtTop()
}

// Update handles scroll keys and mouse events.
func (p Pager) Update(msg tea.Msg) (Pager, tea.Cmd) {
	var cmd tea.Cmd
	p.vp, cmd = p.vp.Update(msg)
	return p, cmd
}

// View renders the visible part of the content.
func (p Pager) View() string {
	return p.vp.View()
}
