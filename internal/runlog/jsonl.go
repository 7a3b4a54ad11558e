package runlog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/LISSConsulting/LISSTech.Archivist/internal/pipeline"
)

// JSONL is a session log backed by an append-only JSONL file. Each line is a
// JSON-serialized pipeline.Event. The file is synced after every Append so a
// hook killed mid-run still leaves a readable journal.
//
// Session identity: "<unix-timestamp>-<pid>.jsonl".
type JSONL struct {
	file *os.File
	mu   sync.Mutex
	idx  *fileIndex
	pos  int64 // current write position in the file
}

// NewJSONL creates a new session JSONL log in dir. dir is created with
// os.MkdirAll if it does not exist.
func NewJSONL(dir string) (*JSONL, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("runlog: mkdir %q: %w", dir, err)
	}
	sessionID := fmt.Sprintf("%d-%d", time.Now().Unix(), os.Getpid())
	return Open(filepath.Join(dir, sessionID+".jsonl"))
}

// Open opens the session log at path, creating it if needed, and rebuilds the
// run index from the lines already in it. Appends continue the session.
func Open(path string) (*JSONL, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("runlog: open %q: %w", path, err)
	}
	j := &JSONL{file: f, idx: newFileIndex()}
	if err := j.replay(); err != nil {
		_ = f.Close()
		return nil, err
	}
	return j, nil
}

// replay indexes every well-formed line and leaves the file positioned at its
// end. Malformed lines keep their bytes in the offsets but are not indexed.
func (j *JSONL) replay() error {
	r := bufio.NewReader(j.file)
	var pos int64
	for {
		line, err := r.ReadBytes('\n')
		if len(line) > 0 {
			var ev pipeline.Event
			if jsonErr := json.Unmarshal(bytes.TrimSpace(line), &ev); jsonErr == nil {
				j.idx.onAppend(ev, pos, int64(len(line)))
			}
			pos += int64(len(line))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("runlog: read %q: %w", j.file.Name(), err)
		}
	}
	j.pos = pos
	return nil
}

// Path is the session file path.
func (j *JSONL) Path() string {
	return j.file.Name()
}

// Append serializes ev as a JSON line, writes it to the file, and syncs.
// It is safe to call from multiple goroutines.
func (j *JSONL) Append(ev pipeline.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("runlog: marshal: %w", err)
	}
	data = append(data, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()

	lineOffset := j.pos
	if _, err := j.file.Write(data); err != nil {
		return fmt.Errorf("runlog: write: %w", err)
	}
	if err := j.file.Sync(); err != nil {
		return fmt.Errorf("runlog: sync: %w", err)
	}
	lineLen := int64(len(data))
	j.pos += lineLen
	j.idx.onAppend(ev, lineOffset, lineLen)
	return nil
}

// Close closes the underlying file.
func (j *JSONL) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.file.Close()
}

// Runs returns summaries for all finished runs in this session. The returned
// slice is a copy and safe to mutate.
func (j *JSONL) Runs() ([]RunSummary, error) {
	j.mu.Lock()
	result := make([]RunSummary, len(j.idx.summaries))
	copy(result, j.idx.summaries)
	j.mu.Unlock()
	return result, nil
}

// RunLog returns the full event log for a finished run. Returns an error if
// run n has not finished (or was never started).
func (j *JSONL) RunLog(n int) ([]pipeline.Event, error) {
	j.mu.Lock()
	r, ok := j.idx.ranges[n]
	j.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("runlog: run %d not found", n)
	}
	size := r.end - r.start
	if size <= 0 {
		return nil, nil
	}
	buf := make([]byte, size)
	if _, err := j.file.ReadAt(buf, r.start); err != nil {
		return nil, fmt.Errorf("runlog: read run %d: %w", n, err)
	}
	return decode(bytes.NewReader(buf), fmt.Sprintf("run %d", n))
}

// Sessions lists the session log files in dir, newest first. Returns nil if
// dir does not exist.
func Sessions(dir string) ([]string, error) {
	files, err := sessionFiles(dir)
	if err != nil {
		return nil, err
	}
	sort.Sort(sort.Reverse(sort.StringSlice(files)))
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = filepath.Join(dir, f)
	}
	return out, nil
}

// ReadFile decodes every event in a session log. Malformed lines are skipped.
func ReadFile(path string) ([]pipeline.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("runlog: open %q: %w", path, err)
	}
	defer f.Close()
	return decode(f, filepath.Base(path))
}

// EnforceRetention removes the oldest session log files in dir, keeping at most
// maxKeep files. If maxKeep is 0, no files are removed. Returns nil if dir does
// not exist or is empty.
func EnforceRetention(dir string, maxKeep int) error {
	if maxKeep <= 0 {
		return nil
	}
	files, err := sessionFiles(dir)
	if err != nil {
		return err
	}

	toDelete := len(files) - maxKeep
	for i := 0; i < toDelete; i++ {
		path := filepath.Join(dir, files[i])
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("runlog: remove %q: %w", path, err)
		}
	}
	return nil
}

// sessionFiles returns the .jsonl names in dir, oldest first.
func sessionFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("runlog: read dir %q: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".jsonl") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files) // timestamp-prefixed names sort chronologically
	return files, nil
}

func decode(r io.Reader, what string) ([]pipeline.Event, error) {
	var events []pipeline.Event
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev pipeline.Event
		if err := json.Unmarshal(line, &ev); err != nil {
			log.Printf("runlog: skipping malformed line in %s: %v", what, err)
			continue
		}
		events = append(events, ev)
	}
	if err := sc.Err(); err != nil {
		return events, fmt.Errorf("runlog: scan %s: %w", what, err)
	}
	return events, nil
}
