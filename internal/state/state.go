// Package state persists a summary of the most recent archive run to
// .archivist/state.json so `archivist status` can report it later.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/LISSConsulting/LISSTech.Archivist/internal/fsutil"
	"github.com/LISSConsulting/LISSTech.Archivist/internal/pipeline"
)

// RunState is the last run's outcome.
type RunState struct {
	Version    string    `json:"version"`
	Processed  []string  `json:"processed"`
	Skipped    []string  `json:"skipped,omitempty"`
	Ignored    int       `json:"ignored"`
	Indexed    int       `json:"indexed"`
	Branch     string    `json:"branch"`
	Commit     string    `json:"commit"`
	Session    string    `json:"session"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Passed     bool      `json:"passed"`
	Error      string    `json:"error,omitempty"`
}

// fileName is the path within the state directory.
const fileName = "state.json"

// DirName is the directory that holds the state file and run logs.
const DirName = ".archivist"

// Record copies the outcome of a pipeline run into s.
func (s *RunState) Record(res pipeline.Result, runErr error, finished time.Time) {
	s.Processed = s.Processed[:0]
	for _, a := range res.Processed {
		s.Processed = append(s.Processed, a.Primary)
		s.Version = string(a.Version)
	}
	s.Skipped = res.Skipped
	s.Ignored = len(res.Ignored)
	s.Indexed = res.Indexed
	s.FinishedAt = finished
	s.Passed = runErr == nil
	s.Error = ""
	if runErr != nil {
		s.Error = runErr.Error()
	}
}

// Load reads the run state from .archivist/state.json in dir.
// Returns a zero RunState (not an error) if the file does not exist.
func Load(dir string) (RunState, error) {
	path := filepath.Join(dir, DirName, fileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return RunState{}, nil
		}
		return RunState{}, fmt.Errorf("state: read: %w", err)
	}

	var s RunState
	if jsonErr := json.Unmarshal(data, &s); jsonErr != nil {
		return RunState{}, fmt.Errorf("state: parse: %w", jsonErr)
	}
	return s, nil
}

// Save writes the run state to .archivist/state.json in dir, creating the
// directory if needed. Readers never observe a partial write.
func Save(dir string, s RunState) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("state: marshal: %w", err)
	}
	if err := fsutil.WriteFileAtomic(filepath.Join(dir, DirName, fileName), data); err != nil {
		return fmt.Errorf("state: %w", err)
	}
	return nil
}
