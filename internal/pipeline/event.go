package pipeline

import "time"

// Kind identifies the type of a pipeline event.
type Kind int

const (
	KindInfo   Kind = iota // General informational message
	KindStart              // Run starting
	KindDetect             // Resource directory detection
	KindRename             // File or directory renamed in the publish tree
	KindCopy               // File or directory copied
	KindSkip               // Output ignored or skipped
	KindIndex              // Archive index regenerated
	KindSync               // Store mirrored into the publish tree
	KindError              // Run failed
	KindDone               // Run finished normally
)

var kindNames = [...]string{"info", "start", "detect", "rename", "copy", "skip", "index", "sync", "error", "done"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Event is a structured record of one action taken during a run. Every event
// is printed to Pipeline.Log and appended to Pipeline.Journal when set.
type Event struct {
	Kind      Kind
	Timestamp time.Time
	Message   string

	// Paths touched by the action, when there are any.
	Src string
	Dst string

	Version string
}
