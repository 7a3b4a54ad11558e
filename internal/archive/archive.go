// Package archive manages the Persistent Archive Store: an append-only
// directory outside the publish tree that holds every versioned report, its
// resource directory, and the shared styling and chart assets.
//
// The store only ever copies from the publish tree. The freshly rendered
// report stays in place for the latest alias and for publishing.
package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/LISSConsulting/LISSTech.Archivist/internal/fsutil"
	"github.com/LISSConsulting/LISSTech.Archivist/internal/relocate"
	"github.com/LISSConsulting/LISSTech.Archivist/internal/version"
)

// ErrNoSource means the report definition to archive was not found.
var ErrNoSource = errors.New("archive: source document missing")

// Store is a Persistent Archive Store rooted at a directory.
type Store struct {
	Root string
}

// Refreshed records one shared asset copied into the store.
type Refreshed struct {
	Src string
	Dst string
}

// Open returns a Store at root, creating the directory if needed.
func Open(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("archive: mkdir %q: %w", root, err)
	}
	return &Store{Root: root}, nil
}

// Commit copies the versioned primary file into the store and returns the
// stored path. A file with the same version is overwritten.
func (s *Store) Commit(a relocate.Artifact) (string, error) {
	dst := filepath.Join(s.Root, filepath.Base(a.Primary))
	if err := fsutil.CopyFile(a.Primary, dst); err != nil {
		return "", fmt.Errorf("archive: commit %s: %w", a.Version, err)
	}
	return dst, nil
}

// CommitResources deep-copies the artifact's resource directory into the
// store under its versioned name, replacing any directory already there.
// It returns "" when the artifact has no resources.
func (s *Store) CommitResources(a relocate.Artifact) (string, error) {
	if !a.HasResources() {
		return "", nil
	}
	dst := filepath.Join(s.Root, filepath.Base(a.Resources))
	if err := fsutil.ReplaceTree(a.Resources, dst); err != nil {
		return "", fmt.Errorf("archive: commit resources %s: %w", a.Version, err)
	}
	return dst, nil
}

// RefreshSharedAssets replaces the store's copy of each shared asset
// directory with the current one. Directories that were not rendered this run
// are left alone.
func (s *Store) RefreshSharedAssets(dirs ...string) ([]Refreshed, error) {
	var out []Refreshed
	for _, src := range dirs {
		if !fsutil.IsDir(src) {
			continue
		}
		dst := filepath.Join(s.Root, filepath.Base(src))
		if err := fsutil.ReplaceTree(src, dst); err != nil {
			return out, fmt.Errorf("archive: refresh %s: %w", filepath.Base(src), err)
		}
		out = append(out, Refreshed{Src: src, Dst: dst})
	}
	return out, nil
}

// Entries lists the top-level names in the store, sorted. A missing store
// has no entries.
func (s *Store) Entries() ([]string, error) {
	entries, err := os.ReadDir(s.Root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("archive: read %q: %w", s.Root, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// SourceArchive keeps audit copies of the report definition, one per version.
type SourceArchive struct {
	Root string
}

// Save copies src to <root>/<base>_<id><ext of src> and returns the
// destination path.
func (sa SourceArchive) Save(src, base string, id version.ID) (string, error) {
	if !fsutil.IsFile(src) {
		return "", fmt.Errorf("%w: %s", ErrNoSource, src)
	}
	dst := filepath.Join(sa.Root, base+"_"+string(id)+filepath.Ext(src))
	if err := fsutil.CopyFile(src, dst); err != nil {
		return "", fmt.Errorf("archive: save source %s: %w", id, err)
	}
	return dst, nil
}
