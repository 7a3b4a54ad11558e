package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/LISSConsulting/LISSTech.Archivist/internal/fsutil"
	"github.com/LISSConsulting/LISSTech.Archivist/internal/index"
	"github.com/LISSConsulting/LISSTech.Archivist/internal/pipeline"
	"github.com/LISSConsulting/LISSTech.Archivist/internal/relocate"
	"github.com/LISSConsulting/LISSTech.Archivist/internal/tui/components"
	"github.com/LISSConsulting/LISSTech.Archivist/internal/tui/panels"
)

// FocusTarget identifies which panel receives keys.
type FocusTarget int

const (
	FocusReports FocusTarget = iota
	FocusDetail
)

// Options configures the browser.
type Options struct {
	ProjectName string
	StoreDir    string
	AccentColor string
	Reports     []panels.Report
	Events      []pipeline.Event // most recent session journal; may be nil
	LastRun     string
}

// Model is the root bubbletea model for the archive browser.
type Model struct {
	opts    Options
	theme   Theme
	reports panels.ReportsPanel
	detail  components.Pager
	focus   FocusTarget
	width   int
	height  int

	selected *panels.Report
	quitting bool
}

// New creates the browser Model with an 80x24 starting size.
func New(opts Options) Model {
	th := NewTheme(opts.AccentColor)
	m := Model{
		opts:    opts,
		theme:   th,
		reports: panels.NewReportsPanel(opts.Reports, 0, 0, th.SelectedStyle()),
		detail:  components.NewPager(0, 0),
	}
	m = m.resize(80, 24)
	m.detail = m.detail.SetLines(m.detailLines(m.reports.Selected()))
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Selected returns the report chosen with enter, or nil if the user quit.
func (m Model) Selected() *panels.Report {
	return m.selected
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.resize(msg.Width, msg.Height), nil

	case panels.ReportHighlightedMsg:
		r := msg.Report
		m.detail = m.detail.SetLines(m.detailLines(&r))
		return m, nil

	case panels.ReportSelectedMsg:
		r := msg.Report
		m.selected = &r
		m.quitting = true
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "tab", "shift+tab":
			if m.focus == FocusReports {
				m.focus = FocusDetail
			} else {
				m.focus = FocusReports
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	if m.focus == FocusDetail {
		m.detail, cmd = m.detail.Update(msg)
	} else {
		m.reports, cmd = m.reports.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width < 40 || m.height < 10 {
		return fmt.Sprintf("Terminal too small (%dx%d); need at least 40x10.", m.width, m.height)
	}

	header := panels.RenderHeader(panels.HeaderProps{
		ProjectName: m.opts.ProjectName,
		StoreDir:    m.opts.StoreDir,
		Reports:     m.reports.Len(),
		LastRun:     m.opts.LastRun,
	}, m.width, m.theme.AccentHeaderStyle())

	left := m.theme.PanelBorderStyle(m.focus == FocusReports).Render(m.reports.View())
	right := m.theme.PanelBorderStyle(m.focus == FocusDetail).Render(m.detail.View())
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	footer := footerStyle.Render(" j/k move  enter select  tab switch panel  q quit")
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// resize lays out a sidebar of a third of the width and a detail pane, both
// bordered, between the header and footer rows.
func (m Model) resize(w, h int) Model {
	m.width = w
	m.height = h
	bodyH := h - 2 - 2 // header, footer, borders
	if bodyH < 1 {
		bodyH = 1
	}
	leftW := w / 3
	if leftW < 24 {
		leftW = 24
	}
	rightW := w - leftW - 4
	if rightW < 1 {
		rightW = 1
	}
	m.reports = m.reports.SetSize(leftW, bodyH)
	m.detail = m.detail.SetSize(rightW, bodyH)
	return m
}

// detailLines describes r followed by the latest run journal.
func (m Model) detailLines(r *panels.Report) []string {
	var lines []string
	if r != nil {
		row := func(label, value string) {
			lines = append(lines, labelStyle.Render(label)+value)
		}
		row("Report", r.Label)
		row("Version", r.Version)
		row("Path", panels.AbbreviatePath(r.Path))
		row("Size", panels.FormatSize(r.Size))
		if !r.Modified.IsZero() {
			row("Modified", r.Modified.Format("2006-01-02 15:04"))
		}
		if r.Resources != "" {
			row("Resources", panels.AbbreviatePath(r.Resources))
		} else {
			row("Resources", "none")
		}
		lines = append(lines, "")
	}

	if len(m.opts.Events) > 0 {
		lines = append(lines, "Last run")
		for _, ev := range m.opts.Events {
			lines = append(lines, m.theme.RenderEvent(ev, m.width*2/3))
		}
	}
	return lines
}

// LoadReports lists the reports archived under storeRoot, newest first, in the
// order the archive index lists them.
func LoadReports(storeRoot string, b index.Builder, conv relocate.Convention) ([]panels.Report, error) {
	entries, err := b.Scan(storeRoot)
	if err != nil {
		return nil, err
	}
	reports := make([]panels.Report, 0, len(entries))
	for _, e := range entries {
		r := panels.Report{
			Label:   e.Label,
			Version: strings.TrimPrefix(e.Label, conv.Base+"_"),
			Path:    filepath.Join(storeRoot, e.Href),
		}
		if info, err := os.Stat(r.Path); err == nil {
			r.Size = info.Size()
			r.Modified = info.ModTime()
		}
		if res := filepath.Join(storeRoot, conv.ResourceName(e.Label)); fsutil.IsDir(res) {
			r.Resources = res
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// Run starts the browser in the alternate screen and returns the selected
// report, or nil if the user quit without choosing.
func Run(m Model) (*panels.Report, error) {
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return nil, fmt.Errorf("tui: %w", err)
	}
	if fm, ok := final.(Model); ok {
		return fm.Selected(), nil
	}
	return nil, nil
}
