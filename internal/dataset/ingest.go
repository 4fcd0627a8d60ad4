package dataset

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Correction is one reviewer decision: the named still from the current batch
// should be filed under NewLabel in the training data.
type Correction struct {
	Filename string `json:"filename"`
	NewLabel string `json:"newLabel"`
}

// IngestResult is returned by IngestCorrections.
type IngestResult struct {
	Moved  int      // corrections successfully copied into the dataset
	Errors []string // per-item failures, in input order
}

// IngestCorrections copies corrected stills from srcDir into the labeled
// dataset under dataDir. The source file is retained; the destination name is
// prefixed with batchID so identically named stills from different batches
// never collide.
//
// Per-item failures (missing source, invalid label) are collected and do not
// abort the remaining items.
func IngestCorrections(corrections []Correction, batchID, srcDir, dataDir string) (*IngestResult, error) {
	for _, sub := range []string{"keep", "exclude"} {
		if err := os.MkdirAll(filepath.Join(dataDir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("cannot create dataset dir: %w", err)
		}
	}

	result := &IngestResult{}
	for _, c := range corrections {
		if c.Filename == "" || c.NewLabel == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("invalid correction: filename=%q label=%q", c.Filename, c.NewLabel))
			continue
		}
		if c.NewLabel != "keep" && c.NewLabel != "exclude" {
			result.Errors = append(result.Errors, fmt.Sprintf("invalid label %q for %s", c.NewLabel, c.Filename))
			continue
		}

		src := filepath.Join(srcDir, c.Filename)
		if _, err := os.Stat(src); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("image not found: %s", c.Filename))
			continue
		}

		dst := filepath.Join(dataDir, c.NewLabel, batchID+"_"+c.Filename)
		if err := copyFile(src, dst); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to copy %s: %v", c.Filename, err))
			continue
		}
		result.Moved++
	}
	return result, nil
}

// copyFile copies src to dst, preserving the source file's permissions.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	st, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, st.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
