// Package panels provides the panel components for the archive browser.
package panels

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/dustin/go-humanize"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Report is one archived report as shown in the browser.
type Report struct {
	Label     string    // e.g. "report_2024-06-01"
	Version   string    // e.g. "2024-06-01"
	Path      string    // absolute path of the archived primary file
	Resources string    // archived resource dir; empty when none
	Size      int64     // primary file size in bytes
	Modified  time.Time // primary file mtime
}

// ReportSelectedMsg is emitted when the user presses enter on a report.
type ReportSelectedMsg struct{ Report Report }

// ReportHighlightedMsg is emitted when the cursor moves to another report.
type ReportHighlightedMsg struct{ Report Report }

type reportItem struct{ r Report }

func (i reportItem) Title() string { return i.r.Version }

func (i reportItem) Description() string {
	if i.r.Resources != "" {
		return fmt.Sprintf("%s  +files", FormatSize(i.r.Size))
	}
	return FormatSize(i.r.Size)
}

func (i reportItem) FilterValue() string { return i.r.Label }

// reportDelegate renders one compact line per report.
type reportDelegate struct {
	selected lipgloss.Style
}

func (d reportDelegate) Height() int                             { return 1 }
func (d reportDelegate) Spacing() int                            { return 0 }
func (d reportDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d reportDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(reportItem)
	if !ok {
		return
	}
	s := fmt.Sprintf("%s  %s", item.Title(), item.Description())
	if index == m.Index() {
		s = d.selected.Render("> " + s)
	} else {
		s = "  " + s
	}
	fmt.Fprint(w, s)
}

// ReportsPanel lists archived reports, newest first.
type ReportsPanel struct {
	list    list.Model
	reports []Report
	width   int
	height  int
}

// NewReportsPanel creates a panel over reports. selected styles the
// highlighted row.
func NewReportsPanel(reports []Report, w, h int, selected lipgloss.Style) ReportsPanel {
	items := make([]list.Item, len(reports))
	for i, r := range reports {
		items[i] = reportItem{r: r}
	}
	l := list.New(items, reportDelegate{selected: selected}, w, h)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	return ReportsPanel{list: l, reports: reports, width: w, height: h}
}

// Len is the number of listed reports.
func (p ReportsPanel) Len() int {
	return len(p.reports)
}

// Selected returns the highlighted report, or nil when the list is empty.
func (p ReportsPanel) Selected() *Report {
	if item, ok := p.list.SelectedItem().(reportItem); ok {
		r := item.r
		return &r
	}
	return nil
}

// SetSize resizes the panel.
func (p ReportsPanel) SetSize(w, h int) ReportsPanel {
	p.width = w
	p.height = h
	p.list.SetSize(w, h)
	return p
}

// Update handles navigation keys. Moving the cursor emits
// ReportHighlightedMsg; enter emits ReportSelectedMsg.
func (p ReportsPanel) Update(msg tea.Msg) (ReportsPanel, tea.Cmd) {
	before := p.list.Index()
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			p.list, cmd = p.list.Update(tea.KeyMsg{Type: tea.KeyDown})
		case "k", "up":
			p.list, cmd = p.list.Update(tea.KeyMsg{Type: tea.KeyUp})
		case "enter":
			if sel := p.Selected(); sel != nil {
				r := *sel
				return p, func() tea.Msg { return ReportSelectedMsg{Report: r} }
			}
			return p, nil
		default:
			p.list, cmd = p.list.Update(msg)
		}
	default:
		p.list, cmd = p.list.Update(msg)
	}
	if p.list.Index() != before {
		if sel := p.Selected(); sel != nil {
			r := *sel
			return p, tea.Batch(cmd, func() tea.Msg { return ReportHighlightedMsg{Report: r} })
		}
	}
	return p, cmd
}

// View renders the list, or a placeholder when nothing is archived.
func (p ReportsPanel) View() string {
	if len(p.reports) == 0 {
		return lipgloss.NewStyle().
			Width(p.width).Height(p.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(lipgloss.Color("#888888")).
			Render("No archived reports yet.")
	}
	return p.list.View()
}

// FormatSize renders a byte count with binary units: "512 B", "3.4 KiB".
func FormatSize(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}
