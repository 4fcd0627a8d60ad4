package dataset

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIngestCorrections_PartialFailure(t *testing.T) {
	src := t.TempDir()
	data := t.TempDir()
	writeImage(t, src, "still_0001.jpg")
	writeImage(t, src, "still_0002.jpg")

	corrections := []Correction{
		{Filename: "still_0001.jpg", NewLabel: "keep"},
		{Filename: "still_0002.jpg", NewLabel: "exclude"},
		{Filename: "missing.jpg", NewLabel: "keep"},
		{Filename: "still_0001.jpg", NewLabel: "maybe"},
		{Filename: "", NewLabel: "keep"},
	}

	result, err := IngestCorrections(corrections, "batch7", src, data)
	if err != nil {
		t.Fatalf("IngestCorrections: %v", err)
	}
	if result.Moved != 2 {
		t.Errorf("Moved = %d, want 2", result.Moved)
	}
	if len(result.Errors) != 3 {
		t.Errorf("Errors = %d (%v), want 3", len(result.Errors), result.Errors)
	}

	// Destination names carry the batch prefix.
	for _, want := range []string{
		filepath.Join(data, "keep", "batch7_still_0001.jpg"),
		filepath.Join(data, "exclude", "batch7_still_0002.jpg"),
	} {
		if _, err := os.Stat(want); err != nil {
			t.Errorf("expected %s to exist: %v", want, err)
		}
	}

	// Source files are retained (copy, not move).
	if _, err := os.Stat(filepath.Join(src, "still_0001.jpg")); err != nil {
		t.Errorf("source file was removed: %v", err)
	}
}

func TestIngestCorrections_RepeatedBatchesDoNotCollide(t *testing.T) {
	data := t.TempDir()

	for _, batch := range []string{"run1", "run2"} {
		src := t.TempDir()
		writeImage(t, src, "still_0001.jpg")
		result, err := IngestCorrections(
			[]Correction{{Filename: "still_0001.jpg", NewLabel: "keep"}}, batch, src, data)
		if err != nil {
			t.Fatal(err)
		}
		if result.Moved != 1 {
			t.Fatalf("batch %s: Moved = %d, want 1", batch, result.Moved)
		}
	}

	entries, err := os.ReadDir(filepath.Join(data, "keep"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d files in keep/, want 2", len(entries))
	}
}
