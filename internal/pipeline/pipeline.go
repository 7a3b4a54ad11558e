// Package pipeline runs the post-render archive workflow: version each
// rendered report, relocate it, commit it to the Persistent Archive Store,
// regenerate the Archive Index, and mirror the store into the publish tree.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/LISSConsulting/LISSTech.Archivist/internal/archive"
	"github.com/LISSConsulting/LISSTech.Archivist/internal/config"
	"github.com/LISSConsulting/LISSTech.Archivist/internal/index"
	"github.com/LISSConsulting/LISSTech.Archivist/internal/publish"
	"github.com/LISSConsulting/LISSTech.Archivist/internal/relocate"
	"github.com/LISSConsulting/LISSTech.Archivist/internal/version"
)

// Journal persists pipeline events. *runlog.JSONL satisfies this interface.
type Journal interface {
	Append(ev Event) error
}

// Pipeline wires the archive components for one project.
type Pipeline struct {
	Config  *config.Config
	Namer   version.Namer
	Log     io.Writer        // output destination; defaults to os.Stdout
	Journal Journal          // optional
	Now     func() time.Time // event clock; defaults to time.Now

	store *archive.Store
}

// Result summarises a run.
type Result struct {
	Processed []relocate.Artifact
	Skipped   []string // watched outputs missing on disk
	Ignored   []string // outputs that are not the watched report
	Indexed   int
	Synced    []publish.Item
}

// Convention derives the relocation naming convention from cfg.
func Convention(cfg *config.Config) relocate.Convention {
	return relocate.Convention{
		Base:           cfg.Report.BaseName,
		Ext:            cfg.Report.Extension,
		ResourceSuffix: cfg.Report.ResourceSuffix,
		LatestSuffix:   cfg.Report.LatestSuffix,
	}
}

// IndexBuilder derives the archive index builder from cfg. The latest alias
// is never listed.
func IndexBuilder(cfg *config.Config) index.Builder {
	return index.Builder{
		Ext:         cfg.Report.Extension,
		Exclude:     []string{Convention(cfg).LatestName()},
		Title:       cfg.Index.Title,
		Heading:     cfg.Index.Heading,
		Placeholder: cfg.Index.Placeholder,
		FrontMatter: cfg.Index.FrontMatter,
	}
}

// Run archives every watched report among outputs. Outputs that are not the
// watched report are ignored and missing ones are skipped. The index and the
// publish mirror are refreshed only when at least one report was archived.
// A relocation or store failure stops the run and is returned.
func (p *Pipeline) Run(ctx context.Context, outputs []string) (Result, error) {
	var res Result
	if len(outputs) == 0 {
		p.emit(Event{Kind: KindDone, Message: "No rendered outputs, nothing to archive"})
		return res, nil
	}

	conv := Convention(p.Config)
	rel := relocate.New(conv)
	p.emit(Event{Kind: KindStart, Message: fmt.Sprintf("Archiving rendered outputs (%d)", len(outputs))})

	for _, out := range outputs {
		if err := ctx.Err(); err != nil {
			p.emit(Event{Kind: KindError, Message: fmt.Sprintf("Run stopped: %v", err)})
			return res, err
		}

		path := p.Config.Abs(out)
		if !conv.Matches(path) {
			res.Ignored = append(res.Ignored, path)
			p.emit(Event{Kind: KindSkip, Src: path, Message: fmt.Sprintf("Ignoring %s", p.rel(path))})
			continue
		}

		a, err := p.archiveOne(rel, path)
		if errors.Is(err, relocate.ErrMissing) {
			res.Skipped = append(res.Skipped, path)
			p.emit(Event{Kind: KindSkip, Src: path, Message: fmt.Sprintf("Skipping %s: not on disk", p.rel(path))})
			continue
		}
		if err != nil {
			p.emit(Event{Kind: KindError, Src: path, Message: err.Error()})
			return res, fmt.Errorf("pipeline: %s: %w", p.rel(path), err)
		}
		res.Processed = append(res.Processed, a)
	}

	if len(res.Processed) == 0 {
		p.emit(Event{Kind: KindDone, Message: "No report archived, index left untouched"})
		return res, nil
	}

	n, err := p.RebuildIndex()
	if err != nil {
		p.emit(Event{Kind: KindError, Message: err.Error()})
		return res, err
	}
	res.Indexed = n

	items, err := p.Sync()
	if err != nil {
		p.emit(Event{Kind: KindError, Message: err.Error()})
		return res, err
	}
	res.Synced = items

	last := res.Processed[len(res.Processed)-1]
	p.emit(Event{
		Kind:    KindDone,
		Version: string(last.Version),
		Message: fmt.Sprintf("Archive complete: %d report(s) archived, %d listed", len(res.Processed), res.Indexed),
	})
	return res, nil
}

// archiveOne versions and relocates the report at path, then commits it to
// the store: primary file, shared assets, resource dir, report definition.
func (p *Pipeline) archiveOne(rel *relocate.Relocator, path string) (relocate.Artifact, error) {
	id := p.Namer.Name(path)
	v := string(id)
	rel.OnDetect = func(resources string, found bool) {
		if found {
			p.emit(Event{Kind: KindDetect, Version: v, Src: resources,
				Message: fmt.Sprintf("Resource directory found: %s", p.rel(resources))})
		} else {
			p.emit(Event{Kind: KindDetect, Version: v, Src: path, Message: "No resource directory"})
		}
	}
	a, err := rel.Relocate(path, id)
	if err != nil {
		return a, err
	}

	p.emit(Event{Kind: KindRename, Version: v, Src: a.Original, Dst: a.Primary,
		Message: fmt.Sprintf("Renamed %s -> %s", p.rel(a.Original), p.rel(a.Primary))})
	if a.HasResources() {
		p.emit(Event{Kind: KindRename, Version: v, Dst: a.Resources,
			Message: fmt.Sprintf("Renamed resources -> %s", p.rel(a.Resources))})
	}
	p.emit(Event{Kind: KindCopy, Version: v, Src: a.Primary, Dst: a.Latest,
		Message: fmt.Sprintf("Updated %s", p.rel(a.Latest))})

	store, err := p.openStore()
	if err != nil {
		return a, err
	}

	dst, err := store.Commit(a)
	if err != nil {
		return a, err
	}
	p.emit(Event{Kind: KindCopy, Version: v, Src: a.Primary, Dst: dst,
		Message: fmt.Sprintf("Archived %s", p.rel(dst))})

	refreshed, err := store.RefreshSharedAssets(p.Config.SharedAssetDirs()...)
	if err != nil {
		return a, err
	}
	for _, r := range refreshed {
		p.emit(Event{Kind: KindCopy, Version: v, Src: r.Src, Dst: r.Dst,
			Message: fmt.Sprintf("Refreshed %s", p.rel(r.Dst))})
	}

	resDst, err := store.CommitResources(a)
	if err != nil {
		return a, err
	}
	if resDst != "" {
		p.emit(Event{Kind: KindCopy, Version: v, Src: a.Resources, Dst: resDst,
			Message: fmt.Sprintf("Archived %s", p.rel(resDst))})
	}

	sa := archive.SourceArchive{Root: p.Config.SourceArchiveDir()}
	srcDst, err := sa.Save(p.Config.SourceFile(), p.Config.Report.BaseName, id)
	switch {
	case errors.Is(err, archive.ErrNoSource):
		p.emit(Event{Kind: KindSkip, Version: v, Src: p.Config.SourceFile(),
			Message: fmt.Sprintf("No %s to archive", p.Config.Report.SourceFile)})
	case err != nil:
		return a, err
	default:
		p.emit(Event{Kind: KindCopy, Version: v, Src: p.Config.SourceFile(), Dst: srcDst,
			Message: fmt.Sprintf("Archived %s", p.rel(srcDst))})
	}
	return a, nil
}

// RebuildIndex regenerates the archive index from the store and returns the
// number of listed reports.
func (p *Pipeline) RebuildIndex() (int, error) {
	dest := p.Config.IndexFile()
	n, err := IndexBuilder(p.Config).Build(p.Config.ArchiveDir(), dest)
	if err != nil {
		return 0, fmt.Errorf("pipeline: %w", err)
	}
	p.emit(Event{Kind: KindIndex, Dst: dest, Message: fmt.Sprintf("Index rebuilt: %s (%d reports)", p.rel(dest), n)})
	return n, nil
}

// Sync mirrors the store into the publish archive subtree and, when enabled,
// writes the standalone HTML index next to it.
func (p *Pipeline) Sync() ([]publish.Item, error) {
	dest := p.Config.PublishArchiveDir()
	items, err := publish.Sync(p.Config.ArchiveDir(), dest)
	if err != nil {
		return items, fmt.Errorf("pipeline: %w", err)
	}
	p.emit(Event{Kind: KindSync, Src: p.Config.ArchiveDir(), Dst: dest,
		Message: fmt.Sprintf("Synced %d item(s) to %s", len(items), p.rel(dest))})

	if p.Config.Index.HTML {
		doc, err := os.ReadFile(p.Config.IndexFile())
		if err != nil {
			return items, fmt.Errorf("pipeline: read index: %w", err)
		}
		htmlPath := filepath.Join(dest, "index.html")
		if err := IndexBuilder(p.Config).WriteHTML(doc, htmlPath); err != nil {
			return items, fmt.Errorf("pipeline: %w", err)
		}
		p.emit(Event{Kind: KindIndex, Dst: htmlPath, Message: fmt.Sprintf("Wrote %s", p.rel(htmlPath))})
	}
	return items, nil
}

func (p *Pipeline) openStore() (*archive.Store, error) {
	if p.store != nil {
		return p.store, nil
	}
	s, err := archive.Open(p.Config.ArchiveDir())
	if err != nil {
		return nil, err
	}
	p.store = s
	return s, nil
}

// emit timestamps ev, writes it to Log and appends it to Journal.
func (p *Pipeline) emit(ev Event) {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	ev.Timestamp = now()

	w := p.Log
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintf(w, "[%s]  %s\n", ev.Timestamp.Format("15:04:05"), ev.Message)

	if p.Journal != nil {
		if err := p.Journal.Append(ev); err != nil {
			fmt.Fprintf(w, "[%s]  journal: %v\n", ev.Timestamp.Format("15:04:05"), err)
		}
	}
}

// rel shortens path for display relative to the project root.
func (p *Pipeline) rel(path string) string {
	if r, err := filepath.Rel(p.Config.Root, path); err == nil && !filepath.IsAbs(r) && r != "" && r[0] != '.' {
		return filepath.ToSlash(r)
	}
	return path
}
