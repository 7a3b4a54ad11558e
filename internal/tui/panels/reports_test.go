package panels

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func reports() []Report {
	return []Report{
		{Label: "report_2024-06-03", Version: "2024-06-03", Size: 10},
		{Label: "report_2024-06-02", Version: "2024-06-02", Size: 2048, Resources: "/s/report_2024-06-02_files"},
		{Label: "report_2024-06-01", Version: "2024-06-01", Size: 5},
	}
}

func TestNewReportsPanel_Empty(t *testing.T) {
	p := NewReportsPanel(nil, 40, 5, lipgloss.NewStyle())
	if p.Selected() != nil {
		t.Error("expected nil selection on empty panel")
	}
	if !strings.Contains(p.View(), "No archived reports yet.") {
		t.Errorf("empty view = %q", p.View())
	}
}

func TestReportsPanel_Navigation(t *testing.T) {
	p := NewReportsPanel(reports(), 40, 10, lipgloss.NewStyle())
	if p.Len() != 3 {
		t.Fatalf("Len() = %d", p.Len())
	}
	if sel := p.Selected(); sel == nil || sel.Version != "2024-06-03" {
		t.Fatalf("initial selection = %+v", sel)
	}

	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	if sel := p.Selected(); sel == nil || sel.Version != "2024-06-02" {
		t.Errorf("after j, selection = %+v", sel)
	}
	if cmd == nil {
		t.Error("moving should emit a command")
	}

	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	if sel := p.Selected(); sel == nil || sel.Version != "2024-06-03" {
		t.Errorf("after k, selection = %+v", sel)
	}

	// Up at the top does not move and emits no highlight.
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyUp})
	if sel := p.Selected(); sel == nil || sel.Version != "2024-06-03" {
		t.Errorf("after up at top, selection = %+v", sel)
	}
}

func TestReportsPanel_Enter(t *testing.T) {
	p := NewReportsPanel(reports(), 40, 10, lipgloss.NewStyle())
	_, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should emit a command")
	}
	msg, ok := cmd().(ReportSelectedMsg)
	if !ok {
		t.Fatalf("got %T, want ReportSelectedMsg", cmd())
	}
	if msg.Report.Version != "2024-06-03" {
		t.Errorf("selected %q", msg.Report.Version)
	}

	empty := NewReportsPanel(nil, 40, 10, lipgloss.NewStyle())
	if _, cmd := empty.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("enter on empty list should do nothing")
	}
}

func TestReportDelegate_Render(t *testing.T) {
	p := NewReportsPanel(reports(), 40, 10, lipgloss.NewStyle())
	d := reportDelegate{selected: lipgloss.NewStyle()}

	var buf bytes.Buffer
	d.Render(&buf, p.list, 0, reportItem{r: reports()[0]})
	if !strings.HasPrefix(buf.String(), "> 2024-06-03") {
		t.Errorf("selected row = %q", buf.String())
	}

	buf.Reset()
	d.Render(&buf, p.list, 1, reportItem{r: reports()[1]})
	if got := buf.String(); got != "  2024-06-02  2.0 KiB  +files" {
		t.Errorf("row = %q", got)
	}

	// Render with wrong item type writes nothing.
	buf.Reset()
	var other list.Item = otherItem{}
	d.Render(&buf, p.list, 0, other)
	if buf.Len() != 0 {
		t.Errorf("unexpected output %q", buf.String())
	}
}

type otherItem struct{}

func (otherItem) FilterValue() string { return "" }

func TestFormatSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{-1, "0 B"},
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{3500, "3.4 KiB"},
		{20 * 1024, "20 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
	}
	for _, tt := range tests {
		if got := FormatSize(tt.n); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestRenderHeader(t *testing.T) {
	got := RenderHeader(HeaderProps{ProjectName: "Market Research", StoreDir: "/tmp/store", Reports: 3}, 120, lipgloss.NewStyle())
	for _, want := range []string{"Market Research", "/tmp/store", "3 archived", "last run: never"} {
		if !strings.Contains(got, want) {
			t.Errorf("header missing %q: %q", want, got)
		}
	}
	if fallback := RenderHeader(HeaderProps{}, 120, lipgloss.NewStyle()); !strings.Contains(fallback, "archivist") {
		t.Errorf("header should fall back to archivist: %q", fallback)
	}
}

func TestAbbreviatePath(t *testing.T) {
	if AbbreviatePath("") != "" {
		t.Error("empty path should stay empty")
	}
	if got := AbbreviatePath(`C:\work\store`); got != "C:/work/store" {
		t.Errorf("got %q", got)
	}
}
