// Package dataset enumerates labeled training images, fingerprints training
// sets for versioning, and folds reviewer corrections back into the data.
package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Label values as stored in the on-disk layout: keep/ is the positive class
// of the pipeline (label 0), exclude/ is the class to cull (label 1).
const (
	LabelKeep    = 0
	LabelExclude = 1
)

// LabelName maps a numeric label back to its directory name.
func LabelName(label int) string {
	if label == LabelExclude {
		return "exclude"
	}
	return "keep"
}

// Dataset is a loaded labeled image set. Paths and Labels are parallel and
// stay index-aligned through the whole pipeline.
type Dataset struct {
	Paths  []string
	Labels []int
}

// KeepCount returns the number of keep-labeled images.
func (d *Dataset) KeepCount() int {
	n := 0
	for _, l := range d.Labels {
		if l == LabelKeep {
			n++
		}
	}
	return n
}

// ExcludeCount returns the number of exclude-labeled images.
func (d *Dataset) ExcludeCount() int {
	return len(d.Labels) - d.KeepCount()
}

// imageExtensions are the accepted file extensions, matched case-sensitively.
var imageExtensions = map[string]bool{".jpg": true, ".png": true}

// Load scans root/keep and root/exclude for images and returns a Dataset in
// keep-then-exclude order. Either subdirectory may be absent; each group is
// sorted by filename for deterministic ordering.
func Load(root string) (*Dataset, error) {
	if _, err := os.Stat(root); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDataNotFound, root)
		}
		return nil, fmt.Errorf("cannot stat dataset root %s: %w", root, err)
	}

	ds := &Dataset{}
	for _, group := range []struct {
		dir   string
		label int
	}{
		{filepath.Join(root, "keep"), LabelKeep},
		{filepath.Join(root, "exclude"), LabelExclude},
	} {
		paths, err := listImages(group.dir)
		if err != nil {
			return nil, err
		}
		for _, p := range paths {
			ds.Paths = append(ds.Paths, p)
			ds.Labels = append(ds.Labels, group.label)
		}
	}

	if len(ds.Paths) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrEmptyDataset, root)
	}
	return ds, nil
}

// listImages returns the sorted image files directly under dir.
// A missing dir yields an empty slice, not an error.
func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot read %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if imageExtensions[filepath.Ext(e.Name())] {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}
