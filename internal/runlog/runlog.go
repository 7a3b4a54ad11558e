// Package runlog persists pipeline events to a JSONL session log and provides
// indexed read-back of past runs. One log is created per archivist invocation
// in cmd/archivist/wiring.go; `archivist status` and the browser reopen them.
package runlog

import (
	"time"

	"github.com/LISSConsulting/LISSTech.Archivist/internal/pipeline"
)

// Reader retrieves past run data from a session log.
type Reader interface {
	Runs() ([]RunSummary, error)
	RunLog(n int) ([]pipeline.Event, error)
}

// RunSummary summarises one finished pipeline run.
type RunSummary struct {
	Number   int
	Version  string // last version archived; empty when nothing was
	Archived int    // reports committed to the store
	Failed   bool
	Message  string // final event message
	StartAt  time.Time
	EndAt    time.Time
}
