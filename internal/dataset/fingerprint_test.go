package dataset

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFingerprint_Idempotent(t *testing.T) {
	dir := t.TempDir()
	a := writeImage(t, dir, "a.jpg")
	b := writeImage(t, dir, "b.jpg")

	f1, err := Fingerprint([]string{a, b})
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	if len(f1) != 8 {
		t.Fatalf("fingerprint length = %d, want 8", len(f1))
	}

	// Input order must not matter.
	f2, err := Fingerprint([]string{b, a})
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	if f1 != f2 {
		t.Errorf("fingerprints differ across orderings: %s vs %s", f1, f2)
	}
}

func TestFingerprint_ChangesOnMtime(t *testing.T) {
	dir := t.TempDir()
	a := writeImage(t, dir, "a.jpg")

	f1, err := Fingerprint([]string{a})
	if err != nil {
		t.Fatal(err)
	}
	newTime := time.Now().Add(2 * time.Hour)
	if err := os.Chtimes(a, newTime, newTime); err != nil {
		t.Fatal(err)
	}
	f2, err := Fingerprint([]string{a})
	if err != nil {
		t.Fatal(err)
	}
	if f1 == f2 {
		t.Error("fingerprint unchanged after mtime change")
	}
}

func TestFingerprint_ChangesOnMembership(t *testing.T) {
	dir := t.TempDir()
	a := writeImage(t, dir, "a.jpg")
	b := writeImage(t, dir, "b.jpg")

	f1, err := Fingerprint([]string{a})
	if err != nil {
		t.Fatal(err)
	}
	f2, err := Fingerprint([]string{a, b})
	if err != nil {
		t.Fatal(err)
	}
	if f1 == f2 {
		t.Error("fingerprint unchanged after adding a file")
	}
}

func TestFingerprint_MissingFile(t *testing.T) {
	if _, err := Fingerprint([]string{filepath.Join(t.TempDir(), "nope.jpg")}); err == nil {
		t.Fatal("expected error for missing file")
	}
}
