// Package classifier defines the trainable binary classifier contract and a
// logistic-regression implementation used as the default algorithm.
package classifier

import "errors"

// Classifier is a trainable binary probabilistic classifier. Any concrete
// algorithm implementing it is substitutable.
type Classifier interface {
	// Fit trains on parallel embeddings X and labels y (0 or 1).
	Fit(X [][]float32, y []int) error
	// Predict returns the predicted label per row of X.
	Predict(X [][]float32) ([]int, error)
	// Proba returns per-class probabilities per row of X, indexed by class.
	Proba(X [][]float32) ([][]float64, error)
}

// ErrNotFitted indicates Predict/Proba was called before Fit.
var ErrNotFitted = errors.New("classifier is not fitted")

// ErrShapeMismatch indicates X and y lengths or row dimensions disagree.
var ErrShapeMismatch = errors.New("training data shape mismatch")
