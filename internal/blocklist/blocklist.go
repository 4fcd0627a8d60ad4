// Package blocklist maintains the persisted set of permanently rejected
// stills, keyed by a 64-bit perceptual hash so renamed or re-cropped copies
// of the same frame collide across runs.
package blocklist

import (
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/corona10/goimagehash"
	"github.com/gofrs/flock"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// FileVersion is the current blocklist schema version.
const FileVersion = 1

// Entry is one rejected image.
type Entry struct {
	// Hash is the 8×8 DCT perceptual hash as a 16-hex-character string.
	Hash        string `json:"hash"`
	Description string `json:"description"`
	// Source is the originating image path, relative to a stable root when
	// one was supplied at add time.
	Source  string `json:"source"`
	AddedAt string `json:"addedAt"`
}

// File is the on-disk blocklist layout.
type File struct {
	Version int     `json:"version"`
	Entries []Entry `json:"entries"`
}

// Blocklist owns the blocklist file at Path and is its sole writer.
// Appends are read-modify-write atomic via a sibling flock; a single writer
// per file is assumed beyond that.
type Blocklist struct {
	Path string
	// Now supplies entry timestamps; defaults to time.Now.
	Now func() time.Time
}

// New returns a Blocklist backed by path.
func New(path string) *Blocklist {
	return &Blocklist{Path: path, Now: time.Now}
}

// HashImage computes the perceptual hash of the image at path.
func HashImage(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("cannot open image %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("cannot decode image %s: %w", path, err)
	}

	h, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return "", fmt.Errorf("cannot hash image %s: %w", path, err)
	}
	return fmt.Sprintf("%016x", h.GetHash()), nil
}

// Add hashes the image at imagePath and appends an entry. The source path is
// recorded relative to root when root is non-empty. Returns the computed
// hash; a hash already present fails with ErrDuplicateEntry and leaves the
// file untouched.
func (b *Blocklist) Add(imagePath, description, root string) (string, error) {
	hash, err := HashImage(imagePath)
	if err != nil {
		return "", err
	}

	source := imagePath
	if root != "" {
		if rel, err := filepath.Rel(root, imagePath); err == nil {
			source = rel
		}
	}

	unlock, err := b.lock()
	if err != nil {
		return "", err
	}
	defer unlock()

	bf, err := b.load()
	if err != nil {
		return "", err
	}
	for _, e := range bf.Entries {
		if e.Hash == hash {
			return hash, fmt.Errorf("%w: %s (first seen as %s)", ErrDuplicateEntry, hash, e.Source)
		}
	}

	now := b.Now
	if now == nil {
		now = time.Now
	}
	bf.Entries = append(bf.Entries, Entry{
		Hash:        hash,
		Description: description,
		Source:      source,
		AddedAt:     now().UTC().Format(time.RFC3339),
	})
	if err := b.save(bf); err != nil {
		return "", err
	}
	return hash, nil
}

// Contains reports whether hash is blocklisted. Exact equality only; no
// Hamming-distance matching is performed.
func (b *Blocklist) Contains(hash string) (bool, error) {
	bf, err := b.load()
	if err != nil {
		return false, err
	}
	for _, e := range bf.Entries {
		if e.Hash == hash {
			return true, nil
		}
	}
	return false, nil
}

// ContainsImage hashes the image at path and checks it against the set.
func (b *Blocklist) ContainsImage(path string) (hash string, blocked bool, err error) {
	hash, err = HashImage(path)
	if err != nil {
		return "", false, err
	}
	blocked, err = b.Contains(hash)
	return hash, blocked, err
}

// Entries returns all entries in insertion order.
func (b *Blocklist) Entries() ([]Entry, error) {
	bf, err := b.load()
	if err != nil {
		return nil, err
	}
	return bf.Entries, nil
}

// load reads the blocklist file; a missing file is an empty blocklist.
func (b *Blocklist) load() (*File, error) {
	data, err := os.ReadFile(b.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return &File{Version: FileVersion}, nil
		}
		return nil, fmt.Errorf("cannot read blocklist %s: %w", b.Path, err)
	}
	var bf File
	if err := json.Unmarshal(data, &bf); err != nil {
		return nil, fmt.Errorf("invalid blocklist JSON %s: %w", b.Path, err)
	}
	if bf.Version == 0 {
		bf.Version = FileVersion
	}
	return &bf, nil
}

// save writes the blocklist via temp-file + rename.
func (b *Blocklist) save(bf *File) error {
	data, err := json.MarshalIndent(bf, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot marshal blocklist: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(b.Path), filepath.Base(b.Path)+".tmp-*")
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
	if err := os.Rename(tmpName, b.Path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("cannot write blocklist %s: %w", b.Path, err)
	}
	return nil
}

// lock takes the sibling flock guarding read-modify-write appends.
func (b *Blocklist) lock() (func(), error) {
	if err := os.MkdirAll(filepath.Dir(b.Path), 0o755); err != nil {
		return nil, fmt.Errorf("cannot create blocklist dir: %w", err)
	}
	l := flock.New(b.Path + ".lock")
	if err := l.Lock(); err != nil {
		return nil, fmt.Errorf("cannot lock blocklist: %w", err)
	}
	return func() { _ = l.Unlock() }, nil
}
