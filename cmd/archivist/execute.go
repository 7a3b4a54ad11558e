package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/LISSConsulting/LISSTech.Archivist/internal/config"
	"github.com/LISSConsulting/LISSTech.Archivist/internal/pipeline"
	"github.com/LISSConsulting/LISSTech.Archivist/internal/runlog"
	"github.com/LISSConsulting/LISSTech.Archivist/internal/state"
	"github.com/LISSConsulting/LISSTech.Archivist/internal/stub"
	"github.com/LISSConsulting/LISSTech.Archivist/internal/tui"
	"github.com/LISSConsulting/LISSTech.Archivist/internal/tui/panels"
	verpkg "github.com/LISSConsulting/LISSTech.Archivist/internal/version"
)

// executeRun archives the rendered outputs named by args, or by the trigger
// environment variable when args is empty.
func executeRun(ctx context.Context, configPath string, args []string, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	outputs := pipeline.Outputs(args, cfg.Trigger.Env, os.LookupEnv)

	p := newPipeline(cfg, out)
	tracker := newStateTracker(cfg)
	if journal := openJournal(cfg, out); journal != nil {
		defer journal.Close()
		p.Journal = journal
		tracker.st.Session = journal.Path()
	}

	res, runErr := p.Run(ctx, outputs)
	tracker.finish(res, runErr)
	return runErr
}

// executeIndex rebuilds the archive index from the store.
func executeIndex(configPath string, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	_, err = newPipeline(cfg, out).RebuildIndex()
	return err
}

// executeSync mirrors the store into the publish tree.
func executeSync(configPath string, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	_, err = newPipeline(cfg, out).Sync()
	return err
}

// executeList prints the archived reports, newest first.
func executeList(configPath string, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	reports, err := tui.LoadReports(cfg.ArchiveDir(), pipeline.IndexBuilder(cfg), pipeline.Convention(cfg))
	if err != nil {
		return err
	}
	fmt.Fprint(out, formatReportList(reports))
	return nil
}

// executeBrowse opens the interactive archive browser and prints the path of
// the chosen report.
func executeBrowse(configPath string, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	reports, err := tui.LoadReports(cfg.ArchiveDir(), pipeline.IndexBuilder(cfg), pipeline.Convention(cfg))
	if err != nil {
		return err
	}
	st, err := state.Load(cfg.Root)
	if err != nil {
		return err
	}

	m := tui.New(tui.Options{
		ProjectName: cfg.Project.Name,
		StoreDir:    cfg.ArchiveDir(),
		AccentColor: cfg.TUI.AccentColor,
		Reports:     reports,
		Events:      latestSession(cfg.LogDir()),
		LastRun:     lastRun(st),
	})
	selected, err := tui.Run(m)
	if err != nil {
		return err
	}
	if selected != nil {
		fmt.Fprintln(out, selected.Path)
	}
	return nil
}

// executeStub writes today's report definition.
func executeStub(configPath string, opts stub.Options, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if opts.Title == "" {
		opts.Title = cfg.Project.Name
	}
	if opts.Date.IsZero() && cfg.Version.Date != "" {
		if d, err := time.Parse(verpkg.DateLayout, cfg.Version.Date); err == nil {
			opts.Date = d
		}
	}
	path, err := stub.New(cfg.Root, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Created %s\n", path)
	return nil
}

// showStatus prints the last recorded run and the runs of its session log.
func showStatus(configPath string, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	st, err := state.Load(cfg.Root)
	if err != nil {
		return err
	}
	var runs []runlog.RunSummary
	if log := openSession(st.Session, cfg.LogDir()); log != nil {
		runs, _ = log.Runs()
		_ = log.Close()
	}
	fmt.Fprint(out, formatStatus(st, runs))
	return nil
}

// openSession reopens the run log at path, or the newest one in dir when path
// is empty or gone. It returns nil when there is none.
func openSession(path, dir string) *runlog.JSONL {
	if path == "" || !fileExists(path) {
		files, err := runlog.Sessions(dir)
		if err != nil || len(files) == 0 {
			return nil
		}
		path = files[0]
	}
	log, err := runlog.Open(path)
	if err != nil {
		return nil
	}
	return log
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// latestSession returns the events of the last run in the newest run log, or
// nil.
func latestSession(dir string) []pipeline.Event {
	log := openSession("", dir)
	if log == nil {
		return nil
	}
	defer log.Close()
	return lastRunEvents(log)
}

// lastRunEvents returns the events of the last finished run in r.
func lastRunEvents(r runlog.Reader) []pipeline.Event {
	runs, err := r.Runs()
	if err != nil || len(runs) == 0 {
		return nil
	}
	events, err := r.RunLog(runs[len(runs)-1].Number)
	if err != nil {
		return nil
	}
	return events
}

// lastRun summarises st for the browser header.
func lastRun(st state.RunState) string {
	if st.FinishedAt.IsZero() {
		return ""
	}
	mark := "✓"
	if !st.Passed {
		mark = "✗"
	}
	label := st.FinishedAt.Local().Format("2006-01-02 15:04")
	if st.Version != "" {
		label = st.Version + " @ " + label
	}
	return label + " " + mark
}

func formatScaffoldResult(created []string) string {
	if len(created) == 0 {
		return "All files already exist. Nothing to do.\n"
	}
	var b strings.Builder
	for _, path := range created {
		fmt.Fprintf(&b, "  Created %s\n", path)
	}
	return b.String()
}

var (
	listVersionStyle = lipgloss.NewStyle().Bold(true)
	listDimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
)

// formatReportList renders one line per archived report.
func formatReportList(reports []panels.Report) string {
	if len(reports) == 0 {
		return "No archived reports yet.\n"
	}
	var b strings.Builder
	for _, r := range reports {
		line := fmt.Sprintf("  %s  %s", listVersionStyle.Render(fmt.Sprintf("%-20s", r.Version)),
			listDimStyle.Render(fmt.Sprintf("%8s", panels.FormatSize(r.Size))))
		if r.Resources != "" {
			line += listDimStyle.Render("  +files")
		}
		b.WriteString(line + "\n")
	}
	fmt.Fprintf(&b, "\n%d report(s)\n", len(reports))
	return b.String()
}

// formatStatus renders the last run state followed by the runs of its
// session log.
func formatStatus(st state.RunState, runs []runlog.RunSummary) string {
	if st.StartedAt.IsZero() && st.FinishedAt.IsZero() {
		return "No run recorded. Run 'archivist run' first.\n"
	}

	var b strings.Builder
	b.WriteString("Archivist Status\n")
	b.WriteString("────────────────\n")

	if st.Version != "" {
		fmt.Fprintf(&b, "  %-20s %s\n", "Version:", st.Version)
	}
	if st.Branch != "" {
		fmt.Fprintf(&b, "  %-20s %s\n", "Branch:", st.Branch)
	}
	if st.Commit != "" {
		fmt.Fprintf(&b, "  %-20s %s\n", "Last commit:", st.Commit)
	}
	for _, p := range st.Processed {
		fmt.Fprintf(&b, "  %-20s %s\n", "Archived:", p)
	}
	for _, p := range st.Skipped {
		fmt.Fprintf(&b, "  %-20s %s\n", "Missing:", p)
	}
	if st.Ignored > 0 {
		fmt.Fprintf(&b, "  %-20s %d\n", "Ignored outputs:", st.Ignored)
	}
	fmt.Fprintf(&b, "  %-20s %d\n", "Index entries:", st.Indexed)

	if !st.StartedAt.IsZero() && !st.FinishedAt.IsZero() {
		dur := st.FinishedAt.Sub(st.StartedAt).Round(time.Millisecond)
		fmt.Fprintf(&b, "  %-20s %s\n", "Duration:", dur)
	}
	if st.Session != "" {
		fmt.Fprintf(&b, "  %-20s %s\n", "Run log:", st.Session)
	}

	switch {
	case st.FinishedAt.IsZero():
		fmt.Fprintf(&b, "  %-20s %s\n", "Result:", "interrupted")
	case st.Passed:
		fmt.Fprintf(&b, "  %-20s %s\n", "Result:", "pass")
	default:
		fmt.Fprintf(&b, "  %-20s fail (%s)\n", "Result:", st.Error)
	}

	if len(runs) > 0 {
		b.WriteString("\nSession runs\n")
		for _, r := range runs {
			b.WriteString(formatRunSummary(r) + "\n")
		}
	}
	return b.String()
}

// formatRunSummary renders one session run as a single line.
func formatRunSummary(r runlog.RunSummary) string {
	mark := "✓"
	if r.Failed {
		mark = "✗"
	}
	what := "nothing archived"
	if r.Archived > 0 {
		what = fmt.Sprintf("%d archived", r.Archived)
		if r.Version != "" {
			what += " (" + r.Version + ")"
		}
	}
	line := fmt.Sprintf("  #%-3d %s %s  %s", r.Number, mark, r.StartAt.Local().Format("15:04:05"), what)
	if r.Failed && r.Message != "" {
		line += ": " + r.Message
	}
	return line
}
