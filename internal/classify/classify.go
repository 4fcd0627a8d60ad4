// Package classify runs the trained classifier over candidate stills and
// produces the ordered result records consumed by the review layer.
package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/framecull/framecull/internal/blocklist"
	"github.com/framecull/framecull/internal/classifier"
	"github.com/framecull/framecull/internal/dataset"
	"github.com/framecull/framecull/internal/embedding"
)

// Result is one classification record. An empty Label marks an extraction
// failure and serializes as JSON null with confidence 0.
type Result struct {
	Path       string
	Label      string
	Confidence float64
}

// MarshalJSON emits {"path", "label", "confidence"} with a null label for
// extraction failures, matching the review layer's contract.
func (r Result) MarshalJSON() ([]byte, error) {
	var label *string
	if r.Label != "" {
		label = &r.Label
	}
	return json.Marshal(struct {
		Path       string  `json:"path"`
		Label      *string `json:"label"`
		Confidence float64 `json:"confidence"`
	}{r.Path, label, r.Confidence})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (r *Result) UnmarshalJSON(data []byte) error {
	var raw struct {
		Path       string  `json:"path"`
		Label      *string `json:"label"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Path = raw.Path
	r.Confidence = raw.Confidence
	if raw.Label != nil {
		r.Label = *raw.Label
	} else {
		r.Label = ""
	}
	return nil
}

// Runner classifies stills with an embedding provider and a fitted
// classifier, consulting the blocklist before anything reaches review.
type Runner struct {
	Provider   embedding.Provider
	Classifier classifier.Classifier
	// Blocklist filters permanently rejected stills; nil disables filtering.
	Blocklist *blocklist.Blocklist
	Log       *zap.Logger
}

// Run classifies paths in order. Blocklisted stills are dropped before
// classification; per-image extraction failures yield a null-label result
// and never abort the batch.
func (r *Runner) Run(ctx context.Context, paths []string) ([]Result, error) {
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}

	var results []Result
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return results, fmt.Errorf("classify: %w", err)
		}

		if r.Blocklist != nil {
			hash, blocked, err := r.Blocklist.ContainsImage(p)
			if err != nil {
				// Unhashable image: fall through to classification rather
				// than silently dropping a reviewable still.
				log.Debug("blocklist hash failed", zap.String("path", p), zap.Error(err))
			} else if blocked {
				log.Info("still blocklisted, skipping",
					zap.String("path", p), zap.String("hash", hash))
				continue
			}
		}

		vec, err := r.Provider.Embed(ctx, p)
		if err != nil {
			log.Warn("embedding failed", zap.String("path", p), zap.Error(err))
			results = append(results, Result{Path: p, Label: "", Confidence: 0})
			continue
		}

		probs, err := r.Classifier.Proba([][]float32{vec})
		if err != nil {
			return results, fmt.Errorf("classify %s: %w", p, err)
		}
		pred := dataset.LabelKeep
		if probs[0][dataset.LabelExclude] >= 0.5 {
			pred = dataset.LabelExclude
		}
		results = append(results, Result{
			Path:       p,
			Label:      dataset.LabelName(pred),
			Confidence: probs[0][pred],
		})
	}
	return results, nil
}

// FindImages recursively lists .jpg/.jpeg/.png files under dir, sorted.
func FindImages(dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".jpg", ".jpeg", ".png":
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cannot scan %s: %w", dir, err)
	}
	sort.Strings(out)
	return out, nil
}
