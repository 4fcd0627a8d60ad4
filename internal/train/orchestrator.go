// Package train runs the full train-evaluate-persist cycle and the dry-run
// compare-before-commit decision procedure.
package train

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"github.com/framecull/framecull/internal/classifier"
	"github.com/framecull/framecull/internal/dataset"
	"github.com/framecull/framecull/internal/embedding"
	"github.com/framecull/framecull/internal/eval"
	"github.com/framecull/framecull/internal/model"
)

// Timeout bounds one retrain invocation. Exceeding it aborts the cycle;
// nothing is archived or persisted because persistence is the last stage.
const Timeout = 300 * time.Second

// Options configures one orchestrator run.
type Options struct {
	DataDir   string
	ModelPath string
	// DryRun evaluates only: nothing is persisted, nothing is archived.
	DryRun bool
}

// Result is returned by a completed run.
type Result struct {
	Metrics      eval.Summary
	Info         model.TrainingInfo
	Fingerprint  string
	Skipped      []string // images dropped after extraction failure
	Confusion    eval.ConfusionMatrix
	Holdout      eval.Metrics
	BalanceRatio float64
	Imbalanced   bool
}

// Orchestrator wires the dataset loader, embedding provider, evaluator and
// model store into one retrain cycle.
type Orchestrator struct {
	Provider      embedding.Provider
	NewClassifier eval.Factory
	// EncodeModel serializes a fitted classifier for persistence.
	EncodeModel func(classifier.Classifier) ([]byte, error)
	Log         *zap.Logger
}

// New returns an Orchestrator using the default logistic-regression
// classifier and codec.
func New(provider embedding.Provider, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		Provider:      provider,
		NewClassifier: func() classifier.Classifier { return classifier.NewLogisticRegression() },
		EncodeModel:   encodeDefault,
		Log:           log,
	}
}

func encodeDefault(c classifier.Classifier) ([]byte, error) {
	lr, ok := c.(*classifier.LogisticRegression)
	if !ok {
		return nil, fmt.Errorf("cannot serialize classifier of type %T", c)
	}
	return classifier.Encode(lr)
}

// Run executes one full cycle: load → embed → cross-validate → fit on the
// entire dataset → persist (unless DryRun). The caller bounds ctx with
// Timeout; cancellation aborts between images and between stages.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*Result, error) {
	if !opts.DryRun {
		unlock, err := acquireModelLock(opts.ModelPath)
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	ds, err := dataset.Load(opts.DataDir)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	o.Log.Info("dataset loaded",
		zap.Int("keep", ds.KeepCount()),
		zap.Int("exclude", ds.ExcludeCount()))

	fingerprint, err := dataset.Fingerprint(ds.Paths)
	if err != nil {
		return nil, fmt.Errorf("fingerprint dataset: %w", err)
	}

	X, y, skipped, err := o.extract(ctx, ds)
	if err != nil {
		return nil, err
	}
	if len(X) == 0 {
		return nil, fmt.Errorf("extract embeddings: %w", ErrNoUsableSamples)
	}
	// Labels are dropped together with failed embeddings; a length mismatch
	// here means index alignment is broken and results would be garbage.
	if len(X) != len(y) {
		return nil, fmt.Errorf("embedding/label misalignment: %d embeddings, %d labels", len(X), len(y))
	}

	result := &Result{Fingerprint: fingerprint, Skipped: skipped}
	result.Info = trainingInfo(y)
	result.BalanceRatio, result.Imbalanced = eval.CheckBalance(y)
	if result.Imbalanced {
		o.Log.Warn("class imbalance",
			zap.Float64("ratio", result.BalanceRatio),
			zap.Int("keep", result.Info.KeepCount),
			zap.Int("exclude", result.Info.ExcludeCount))
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}
	result.Metrics, err = eval.CrossValidate(o.NewClassifier, X, y, eval.DefaultFolds)
	if err != nil {
		return nil, fmt.Errorf("cross-validate: %w", err)
	}

	result.Confusion, result.Holdout, err = eval.HoldoutReport(o.NewClassifier, X, y)
	if err != nil {
		// The holdout report is operator sugar; CV metrics stand on their own.
		o.Log.Warn("holdout report unavailable", zap.Error(err))
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("fit final classifier: %w", err)
	}
	final := o.NewClassifier()
	if err := final.Fit(X, y); err != nil {
		return nil, fmt.Errorf("fit final classifier: %w", err)
	}

	if opts.DryRun {
		o.Log.Info("dry run complete, nothing persisted",
			zap.Float64("accuracy_mean", result.Metrics.AccuracyMean))
		return result, nil
	}

	blob, err := o.EncodeModel(final)
	if err != nil {
		return nil, fmt.Errorf("serialize model: %w", err)
	}

	store := model.NewStore(opts.ModelPath)
	meta := &model.Metadata{
		Version:      MetadataVersion(store),
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		DataHash:     fingerprint,
		Metrics:      result.Metrics,
		TrainingInfo: result.Info,
	}
	if o.Provider != nil {
		meta.ModelID = o.Provider.ModelID()
	}
	if err := store.Persist(blob, meta); err != nil {
		return nil, fmt.Errorf("persist model: %w", err)
	}
	o.Log.Info("model persisted",
		zap.String("path", opts.ModelPath),
		zap.String("data_hash", fingerprint),
		zap.Float64("accuracy_mean", result.Metrics.AccuracyMean))
	return result, nil
}

// extract embeds every dataset image sequentially. Per-image failures are
// logged and the image and its label are dropped together, keeping the two
// slices index-aligned.
func (o *Orchestrator) extract(ctx context.Context, ds *dataset.Dataset) (X [][]float32, y []int, skipped []string, err error) {
	for i, p := range ds.Paths {
		if err := ctx.Err(); err != nil {
			return nil, nil, nil, fmt.Errorf("extract embeddings: %w", err)
		}
		vec, err := o.Provider.Embed(ctx, p)
		if err != nil {
			o.Log.Warn("embedding failed, skipping image",
				zap.String("path", p), zap.Error(err))
			skipped = append(skipped, p)
			continue
		}
		X = append(X, vec)
		y = append(y, ds.Labels[i])
	}
	return X, y, skipped, nil
}

func trainingInfo(y []int) model.TrainingInfo {
	info := model.TrainingInfo{TotalImages: len(y)}
	for _, l := range y {
		if l == dataset.LabelKeep {
			info.KeepCount++
		} else {
			info.ExcludeCount++
		}
	}
	if info.ExcludeCount > 0 {
		info.ClassRatio = float64(info.KeepCount) / float64(info.ExcludeCount)
	}
	return info
}

// MetadataVersion returns the next metadata version for the store: one past
// the current model's version, or 1 for a fresh store.
func MetadataVersion(store *model.Store) int {
	meta, err := store.ReadMetadata()
	if err != nil || meta == nil {
		return 1
	}
	return meta.Version + 1
}

// acquireModelLock takes the single-flight lock guarding persistence against
// the same model path. Archival-then-overwrite has no other mutual exclusion.
func acquireModelLock(modelPath string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(modelPath), 0o755); err != nil {
		return nil, fmt.Errorf("cannot create model dir: %w", err)
	}
	l := flock.New(modelPath + ".lock")
	locked, err := l.TryLock()
	if err != nil {
		return nil, fmt.Errorf("cannot acquire model lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w (lock: %s)", ErrRetrainInFlight, modelPath+".lock")
	}
	return func() { _ = l.Unlock() }, nil
}
