package dataset

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Fingerprint derives a short stable identifier for a training set from the
// image paths and their modification times. Two calls over an unchanged file
// set produce the same value; any path, membership, or mtime change produces
// a different one.
//
// The fingerprint is for metadata traceability only. Content-identical files
// under different names do not collide here; visual dedup is the blocklist's
// job.
func Fingerprint(paths []string) (string, error) {
	lines := make([]string, 0, len(paths))
	for _, p := range paths {
		st, err := os.Stat(p)
		if err != nil {
			return "", fmt.Errorf("cannot stat %s: %w", p, err)
		}
		lines = append(lines, fmt.Sprintf("%s|%d", p, st.ModTime().UnixNano()))
	}
	sort.Strings(lines)

	h := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(h[:])[:8], nil
}
