package runlog

import "github.com/LISSConsulting/LISSTech.Archivist/internal/pipeline"

// runRange is the [start, end) byte range of one run in the JSONL file.
// start is the offset of the KindStart line; end is the first byte after the
// closing KindDone or KindError line.
type runRange struct {
	start int64
	end   int64
}

// fileIndex keeps in-memory byte-offset bookmarks per finished run so RunLog
// can read a run back with a single ReadAt.
type fileIndex struct {
	summaries []RunSummary     // ordered by completion
	ranges    map[int]runRange // run Number → byte range
	pending   *pendingRun      // run being written (nil if none)
}

type pendingRun struct {
	startOffset int64
	summary     RunSummary
}

func newFileIndex() *fileIndex {
	return &fileIndex{ranges: make(map[int]runRange)}
}

// onAppend updates the index after ev was written at lineOffset.
func (idx *fileIndex) onAppend(ev pipeline.Event, lineOffset, lineLen int64) {
	switch ev.Kind {
	case pipeline.KindStart:
		idx.pending = &pendingRun{
			startOffset: lineOffset,
			summary: RunSummary{
				Number:  len(idx.summaries) + 1,
				StartAt: ev.Timestamp,
			},
		}
	case pipeline.KindRename:
		// One primary rename per archived report; resource renames carry no Src.
		if idx.pending != nil && ev.Src != "" {
			idx.pending.summary.Archived++
			idx.pending.summary.Version = ev.Version
		}
	case pipeline.KindDone, pipeline.KindError:
		if idx.pending == nil {
			return
		}
		s := idx.pending.summary
		s.Failed = ev.Kind == pipeline.KindError
		s.Message = ev.Message
		s.EndAt = ev.Timestamp
		idx.ranges[s.Number] = runRange{
			start: idx.pending.startOffset,
			end:   lineOffset + lineLen,
		}
		idx.summaries = append(idx.summaries, s)
		idx.pending = nil
	}
}
