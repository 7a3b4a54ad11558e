// Package relocate renames a freshly rendered report and its companion
// resource directory to their versioned names and refreshes the stable
// "latest" alias.
package relocate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/LISSConsulting/LISSTech.Archivist/internal/fsutil"
	"github.com/LISSConsulting/LISSTech.Archivist/internal/version"
)

var (
	// ErrNotWatched means the path is not the watched report artifact.
	ErrNotWatched = errors.New("relocate: not a watched artifact")
	// ErrMissing means the primary file is not on disk.
	ErrMissing = errors.New("relocate: primary file missing")
)

// Convention names the watched artifact and how its companions are derived.
type Convention struct {
	Base           string // "report"
	Ext            string // ".html"
	ResourceSuffix string // "_files"
	LatestSuffix   string // "-latest"
}

// DefaultConvention matches the report.html / report_files layout a Quarto
// render produces.
func DefaultConvention() Convention {
	return Convention{
		Base:           "report",
		Ext:            ".html",
		ResourceSuffix: "_files",
		LatestSuffix:   "-latest",
	}
}

// Matches reports whether path names the watched primary file.
func (c Convention) Matches(path string) bool {
	name := filepath.Base(path)
	ext := filepath.Ext(name)
	return ext == c.Ext && name[:len(name)-len(ext)] == c.Base
}

// ResourceName derives the resource directory name for a primary base name.
// The same transformation is applied before and after a rename.
func (c Convention) ResourceName(base string) string {
	return base + c.ResourceSuffix
}

// VersionedBase is the base name a report takes once versioned.
func (c Convention) VersionedBase(id version.ID) string {
	return c.Base + "_" + string(id)
}

// LatestName is the file name of the stable alias.
func (c Convention) LatestName() string {
	return c.Base + c.LatestSuffix + c.Ext
}

// Artifact is a relocated report.
type Artifact struct {
	Version   version.ID
	Original  string // path reported by the renderer
	Primary   string // versioned primary file
	Resources string // versioned resource dir; empty when none was rendered
	Latest    string // stable alias copy
}

// HasResources reports whether a resource directory travelled with the report.
func (a Artifact) HasResources() bool {
	return a.Resources != ""
}

// Relocator moves rendered artifacts to their versioned names.
type Relocator struct {
	Convention Convention

	// OnDetect, when set, is called with the resource dir path and whether it
	// exists, before anything is renamed.
	OnDetect func(resources string, found bool)

	rename func(oldpath, newpath string) error
}

// New creates a Relocator for the given convention.
func New(c Convention) *Relocator {
	return &Relocator{Convention: c, rename: os.Rename}
}

// Relocate versions the artifact at path with id. The steps run strictly in
// order: detect the resource dir, rename the primary, rename the resource
// dir, copy the latest alias. If a later step fails the renames are undone,
// leaving the rendered files where the renderer put them.
func (r *Relocator) Relocate(path string, id version.ID) (Artifact, error) {
	c := r.Convention
	if !c.Matches(path) {
		return Artifact{}, fmt.Errorf("%w: %s", ErrNotWatched, path)
	}
	if !fsutil.IsFile(path) {
		return Artifact{}, fmt.Errorf("%w: %s", ErrMissing, path)
	}
	rename := r.rename
	if rename == nil {
		rename = os.Rename
	}

	dir := filepath.Dir(path)
	resDir := filepath.Join(dir, c.ResourceName(c.Base))
	hasResources := fsutil.IsDir(resDir)
	if r.OnDetect != nil {
		r.OnDetect(resDir, hasResources)
	}

	newBase := c.VersionedBase(id)
	a := Artifact{
		Version:  id,
		Original: path,
		Primary:  filepath.Join(dir, newBase+c.Ext),
		Latest:   filepath.Join(dir, c.LatestName()),
	}

	if err := rename(path, a.Primary); err != nil {
		return Artifact{}, fmt.Errorf("relocate: rename %s -> %s: %w", path, a.Primary, err)
	}

	if hasResources {
		target := filepath.Join(dir, c.ResourceName(newBase))
		if err := moveDir(rename, resDir, target); err != nil {
			return Artifact{}, rollback(rename, err, [2]string{a.Primary, path})
		}
		a.Resources = target
	}

	if err := fsutil.CopyFile(a.Primary, a.Latest); err != nil {
		err = fmt.Errorf("latest alias: %w", err)
		if a.HasResources() {
			return Artifact{}, rollback(rename, err, [2]string{a.Resources, resDir}, [2]string{a.Primary, path})
		}
		return Artifact{}, rollback(rename, err, [2]string{a.Primary, path})
	}
	return a, nil
}

// rollback undoes renames, each given as {current, original}, and wraps
// cause with any rollback failure.
func rollback(rename func(string, string) error, cause error, moves ...[2]string) error {
	for _, m := range moves {
		if err := rename(m[0], m[1]); err != nil {
			return fmt.Errorf("relocate: %w (rollback of %s failed: %v)", cause, m[0], err)
		}
	}
	return fmt.Errorf("relocate: %w", cause)
}

// moveDir renames src to dst. A directory left at dst by an earlier run with
// the same version is removed first; rename refuses non-empty targets.
func moveDir(rename func(string, string) error, src, dst string) error {
	if err := os.RemoveAll(dst); err != nil {
		return fmt.Errorf("remove %s: %w", dst, err)
	}
	if err := rename(src, dst); err != nil {
		return fmt.Errorf("rename %s -> %s: %w", src, dst, err)
	}
	return nil
}
