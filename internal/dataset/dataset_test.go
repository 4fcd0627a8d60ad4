package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeImage(t *testing.T, dir, name string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte("img"), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_KeepThenExcludeSorted(t *testing.T) {
	root := t.TempDir()
	writeImage(t, filepath.Join(root, "keep"), "b.jpg")
	writeImage(t, filepath.Join(root, "keep"), "a.png")
	writeImage(t, filepath.Join(root, "exclude"), "z.jpg")

	ds, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ds.Paths) != 3 {
		t.Fatalf("got %d paths, want 3", len(ds.Paths))
	}
	wantOrder := []string{
		filepath.Join(root, "keep", "a.png"),
		filepath.Join(root, "keep", "b.jpg"),
		filepath.Join(root, "exclude", "z.jpg"),
	}
	for i, want := range wantOrder {
		if ds.Paths[i] != want {
			t.Errorf("path[%d] = %s, want %s", i, ds.Paths[i], want)
		}
	}
	wantLabels := []int{LabelKeep, LabelKeep, LabelExclude}
	for i, want := range wantLabels {
		if ds.Labels[i] != want {
			t.Errorf("label[%d] = %d, want %d", i, ds.Labels[i], want)
		}
	}
	if ds.KeepCount() != 2 || ds.ExcludeCount() != 1 {
		t.Errorf("counts = %d/%d, want 2/1", ds.KeepCount(), ds.ExcludeCount())
	}
}

func TestLoad_IgnoresOtherExtensions(t *testing.T) {
	root := t.TempDir()
	writeImage(t, filepath.Join(root, "keep"), "a.jpg")
	writeImage(t, filepath.Join(root, "keep"), "a.JPG") // extension match is case-sensitive
	writeImage(t, filepath.Join(root, "keep"), "notes.txt")

	ds, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ds.Paths) != 1 {
		t.Fatalf("got %d paths, want 1", len(ds.Paths))
	}
}

func TestLoad_MissingSubdirIsEmptyGroup(t *testing.T) {
	root := t.TempDir()
	writeImage(t, filepath.Join(root, "exclude"), "a.jpg")

	ds, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ds.KeepCount() != 0 || ds.ExcludeCount() != 1 {
		t.Fatalf("counts = %d/%d, want 0/1", ds.KeepCount(), ds.ExcludeCount())
	}
}

func TestLoad_EmptyDataset(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "keep"), 0o755); err != nil {
		t.Fatal(err)
	}
	_, err := Load(root)
	if !errors.Is(err, ErrEmptyDataset) {
		t.Fatalf("err = %v, want ErrEmptyDataset", err)
	}
}

func TestLoad_MissingRoot(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, ErrDataNotFound) {
		t.Fatalf("err = %v, want ErrDataNotFound", err)
	}
}
