package train

import (
	"context"
	"fmt"
	"os"

	"github.com/framecull/framecull/internal/eval"
	"github.com/framecull/framecull/internal/model"
)

// Recommendation strings returned by Advise. Callers match on these exact
// values, so they are part of the compare contract.
const (
	AdviceNoBaseline  = "no baseline, retrain to create one"
	AdviceKeepCurrent = "current model performs better; retrain not recommended"
	AdviceRetrain     = "retrain recommended"
	AdviceOptional    = "minor improvement, retrain optional"
)

// retrainThresholdPct is the accuracy improvement above which a retrain is
// recommended rather than optional.
const retrainThresholdPct = 5.0

// Comparison is the result of a dry-run retrain measured against the current
// model's persisted metrics.
type Comparison struct {
	CurrentAccuracy *float64     `json:"current_accuracy,omitempty"`
	NewMetrics      eval.Summary `json:"new_metrics"`
	Recommendation  string       `json:"recommendation"`
	// ImprovementPct is nil when there is no baseline or no improvement.
	ImprovementPct *float64 `json:"improvement_pct,omitempty"`
}

// Advise is the pure decision rule over the current and candidate accuracy
// means. current == nil means no baseline metadata exists. Identical inputs
// always yield the identical recommendation.
func Advise(current *float64, candidate float64) (string, *float64) {
	if current == nil {
		return AdviceNoBaseline, nil
	}
	if candidate <= *current {
		return AdviceKeepCurrent, nil
	}
	pct := (candidate - *current) / *current * 100
	if pct > retrainThresholdPct {
		return AdviceRetrain, &pct
	}
	return AdviceOptional, &pct
}

// Compare runs a dry-run retrain over dataDir and compares the resulting
// accuracy mean against the metadata at metaPath (if present).
func (o *Orchestrator) Compare(ctx context.Context, dataDir, metaPath string) (*Comparison, error) {
	result, err := o.Run(ctx, Options{DataDir: dataDir, DryRun: true})
	if err != nil {
		return nil, fmt.Errorf("dry-run retrain: %w", err)
	}

	cmp := &Comparison{NewMetrics: result.Metrics}

	if _, err := os.Stat(metaPath); err == nil {
		meta, err := model.LoadMetadata(metaPath)
		if err != nil {
			return nil, err
		}
		acc := meta.Metrics.AccuracyMean
		cmp.CurrentAccuracy = &acc
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("cannot stat metadata %s: %w", metaPath, err)
	}

	cmp.Recommendation, cmp.ImprovementPct = Advise(cmp.CurrentAccuracy, result.Metrics.AccuracyMean)
	return cmp, nil
}
