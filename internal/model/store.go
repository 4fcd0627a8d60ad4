// Package model persists classifier binaries and their metadata. The store is
// the single source of truth for the current model; superseded versions move
// to an archive directory and are never deleted.
package model

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// archiveStamp is the timestamp layout baked into archive file names.
const archiveStamp = "20060102_150405"

// Store owns the model binary at Path and its metadata sibling.
//
// Persist is not safe for concurrent use against the same Path; the caller
// holds at most one retrain in flight (see train.Orchestrator's lock).
type Store struct {
	Path string
	// Now supplies archive timestamps; defaults to time.Now. Injected so
	// tests can use deterministic clocks.
	Now func() time.Time
}

// NewStore returns a Store for the model at path.
func NewStore(path string) *Store {
	return &Store{Path: path, Now: time.Now}
}

// Exists reports whether a current model binary is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.Path)
	return err == nil
}

// ReadModel returns the current model binary.
func (s *Store) ReadModel() ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("cannot read model %s: %w", s.Path, err)
	}
	return data, nil
}

// ReadMetadata returns the current model's metadata, or nil if no metadata
// file exists.
func (s *Store) ReadMetadata() (*Metadata, error) {
	p := MetadataPath(s.Path)
	if _, err := os.Stat(p); os.IsNotExist(err) {
		return nil, nil
	}
	return LoadMetadata(p)
}

// Persist replaces the current model with modelBytes and meta.
//
// If a model already exists it is archived first, together with its metadata
// if present; only then is the new binary written. A crash between archival
// and overwrite therefore never leaves zero copies of the previous model.
// Both the binary and the metadata are written via temp-file + rename so a
// failed write cannot leave a half-written current model.
func (s *Store) Persist(modelBytes []byte, meta *Metadata) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("cannot create model dir: %w", err)
	}

	if s.Exists() {
		if err := s.archiveCurrent(); err != nil {
			return fmt.Errorf("cannot archive current model: %w", err)
		}
	}

	if err := atomicWrite(s.Path, modelBytes, 0o644); err != nil {
		return fmt.Errorf("cannot write model %s: %w", s.Path, err)
	}

	mb, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot marshal metadata: %w", err)
	}
	metaPath := MetadataPath(s.Path)
	if err := atomicWrite(metaPath, mb, 0o644); err != nil {
		return fmt.Errorf("cannot write metadata %s: %w", metaPath, err)
	}
	return nil
}

// ArchiveDir returns the archive directory for this store.
func (s *Store) ArchiveDir() string {
	return filepath.Join(filepath.Dir(s.Path), "archive")
}

// archiveCurrent copies the current binary and its metadata (if present) into
// the archive, suffixed with a UTC timestamp to the second. Existing archives
// are never overwritten; a same-second collision gets a numeric suffix.
func (s *Store) archiveCurrent() error {
	dir := s.ArchiveDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	now := s.Now
	if now == nil {
		now = time.Now
	}
	stamp := now().UTC().Format(archiveStamp)

	base := filepath.Base(s.Path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	dst := filepath.Join(dir, fmt.Sprintf("%s_%s%s", stem, stamp, ext))
	for n := 1; ; n++ {
		if _, err := os.Stat(dst); os.IsNotExist(err) {
			break
		}
		dst = filepath.Join(dir, fmt.Sprintf("%s_%s_%d%s", stem, stamp, n, ext))
	}

	if err := copyFile(s.Path, dst); err != nil {
		return err
	}

	metaPath := MetadataPath(s.Path)
	if _, err := os.Stat(metaPath); err == nil {
		if err := copyFile(metaPath, MetadataPath(dst)); err != nil {
			return err
		}
	}
	return nil
}

// atomicWrite writes data next to path and renames it into place.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
