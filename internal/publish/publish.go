// Package publish mirrors the Persistent Archive Store into the publish
// directory's archive subtree. The subtree is a projection of the store and
// can be deleted and rebuilt from it at any time.
package publish

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/LISSConsulting/LISSTech.Archivist/internal/fsutil"
)

// Item is one top-level store entry copied into the publish tree.
type Item struct {
	Name string
	Dir  bool
}

// Sync copies every top-level entry of storeRoot into dest. Files are
// overwritten in place; directories are removed and copied afresh so files
// dropped from the store also disappear from dest. A missing store syncs
// nothing.
func Sync(storeRoot, dest string) ([]Item, error) {
	entries, err := os.ReadDir(storeRoot)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("publish: read store %q: %w", storeRoot, err)
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, fmt.Errorf("publish: mkdir %q: %w", dest, err)
	}

	var items []Item
	for _, e := range entries {
		src := filepath.Join(storeRoot, e.Name())
		dst := filepath.Join(dest, e.Name())

		switch {
		case e.IsDir():
			if err := fsutil.ReplaceTree(src, dst); err != nil {
				return items, fmt.Errorf("publish: %w", err)
			}
			items = append(items, Item{Name: e.Name(), Dir: true})
		case e.Type().IsRegular():
			if err := fsutil.CopyFile(src, dst); err != nil {
				return items, fmt.Errorf("publish: %w", err)
			}
			items = append(items, Item{Name: e.Name()})
		}
	}
	return items, nil
}
