package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LISSConsulting/LISSTech.Archivist/internal/config"
	"github.com/LISSConsulting/LISSTech.Archivist/internal/git"
	"github.com/LISSConsulting/LISSTech.Archivist/internal/pipeline"
	"github.com/LISSConsulting/LISSTech.Archivist/internal/runlog"
	"github.com/LISSConsulting/LISSTech.Archivist/internal/state"
	verpkg "github.com/LISSConsulting/LISSTech.Archivist/internal/version"
)

// newPipeline wires a pipeline for cfg that logs to out.
func newPipeline(cfg *config.Config, out io.Writer) *pipeline.Pipeline {
	return &pipeline.Pipeline{
		Config: cfg,
		Namer:  newNamer(cfg),
		Log:    out,
	}
}

// newNamer builds the version namer from [version].
func newNamer(cfg *config.Config) verpkg.Namer {
	n := verpkg.Namer{Fixed: cfg.Version.Date}
	if !cfg.Version.HashSuffix {
		return n
	}
	switch cfg.Version.HashSource {
	case config.HashSourceContent:
		n.Hash = verpkg.ContentHash(cfg.Version.HashLength)
	default:
		n.Hash = verpkg.GitHash(git.NewRunner(cfg.Root), cfg.Version.HashLength)
	}
	return n
}

// openJournal starts a new run log and prunes old ones. A journal that cannot
// be opened is reported on out and the run continues without one.
func openJournal(cfg *config.Config, out io.Writer) *runlog.JSONL {
	dir := cfg.LogDir()
	journal, err := runlog.NewJSONL(dir)
	if err != nil {
		fmt.Fprintf(out, "[%s]  journal: %v\n", time.Now().Format("15:04:05"), err)
		return nil
	}
	if err := runlog.EnforceRetention(dir, cfg.Log.Retention); err != nil {
		fmt.Fprintf(out, "[%s]  journal: %v\n", time.Now().Format("15:04:05"), err)
	}
	return journal
}

// stateTracker records the outcome of one run to .archivist/state.json.
type stateTracker struct {
	root string
	st   state.RunState
}

func newStateTracker(cfg *config.Config) *stateTracker {
	t := &stateTracker{
		root: cfg.Root,
		st:   state.RunState{StartedAt: time.Now()},
	}
	g := git.NewRunner(cfg.Root)
	if branch, err := g.CurrentBranch(); err == nil {
		t.st.Branch = branch
	}
	if commit, err := g.LastCommit(); err == nil {
		t.st.Commit = commit
	}
	return t
}

// finish records res and saves the state. Save errors are ignored; the state
// file only feeds `archivist status`.
func (t *stateTracker) finish(res pipeline.Result, runErr error) {
	t.st.Record(res, runErr, time.Now())
	_ = state.Save(t.root, t.st)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM. The
// pipeline checks it between artifacts, so a copy in flight completes.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigs:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigs)
	}()
	return ctx, cancel
}
