// Package eval scores a trainable classifier against a labeled embedding set
// using stratified cross-validation. The fold-level mean and spread are the
// system's truth signal for how good a data+model combination is.
package eval

import (
	"fmt"
	"math/rand"

	"github.com/framecull/framecull/internal/classifier"
)

// DefaultFolds is the cross-validation fold count.
const DefaultFolds = 5

// Seed fixes fold assignment so repeated evaluations over the same data
// produce identical splits.
const Seed = 42

// imbalanceThreshold is the majority/minority class ratio above which a
// warning is emitted.
const imbalanceThreshold = 2.0

// Factory constructs a fresh unfitted classifier for one fold.
type Factory func() classifier.Classifier

// CrossValidate runs stratified k-fold cross-validation and returns the
// per-metric mean and standard deviation across folds. Empty folds (possible
// when a class holds fewer samples than k) are skipped.
func CrossValidate(newClassifier Factory, X [][]float32, y []int, k int) (Summary, error) {
	if len(X) == 0 || len(X) != len(y) {
		return Summary{}, fmt.Errorf("cannot cross-validate: %d embeddings, %d labels", len(X), len(y))
	}
	if k <= 1 {
		k = DefaultFolds
	}

	folds := stratifiedFolds(y, k, Seed)

	var scores []Metrics
	for fi, test := range folds {
		if len(test) == 0 {
			continue
		}
		inTest := make(map[int]bool, len(test))
		for _, i := range test {
			inTest[i] = true
		}

		var trainX [][]float32
		var trainY []int
		for i := range X {
			if !inTest[i] {
				trainX = append(trainX, X[i])
				trainY = append(trainY, y[i])
			}
		}

		c := newClassifier()
		if err := c.Fit(trainX, trainY); err != nil {
			return Summary{}, fmt.Errorf("fold %d fit: %w", fi, err)
		}

		testX := make([][]float32, len(test))
		actual := make([]int, len(test))
		for j, i := range test {
			testX[j] = X[i]
			actual[j] = y[i]
		}
		predicted, err := c.Predict(testX)
		if err != nil {
			return Summary{}, fmt.Errorf("fold %d predict: %w", fi, err)
		}
		scores = append(scores, Score(actual, predicted))
	}

	if len(scores) == 0 {
		return Summary{}, fmt.Errorf("no usable folds for %d samples", len(y))
	}
	return Summarize(scores), nil
}

// HoldoutReport fits on a single stratified 80/20 split and returns the
// confusion matrix plus holdout metrics. This is for operator inspection
// only; persisted metrics always come from CrossValidate.
func HoldoutReport(newClassifier Factory, X [][]float32, y []int) (ConfusionMatrix, Metrics, error) {
	folds := stratifiedFolds(y, 5, Seed)
	test := folds[0]
	if len(test) == 0 || len(test) == len(y) {
		return ConfusionMatrix{}, Metrics{}, fmt.Errorf("too few samples for a holdout split: %d", len(y))
	}

	inTest := make(map[int]bool, len(test))
	for _, i := range test {
		inTest[i] = true
	}
	var trainX [][]float32
	var trainY []int
	for i := range X {
		if !inTest[i] {
			trainX = append(trainX, X[i])
			trainY = append(trainY, y[i])
		}
	}

	c := newClassifier()
	if err := c.Fit(trainX, trainY); err != nil {
		return ConfusionMatrix{}, Metrics{}, fmt.Errorf("holdout fit: %w", err)
	}

	testX := make([][]float32, len(test))
	actual := make([]int, len(test))
	for j, i := range test {
		testX[j] = X[i]
		actual[j] = y[i]
	}
	predicted, err := c.Predict(testX)
	if err != nil {
		return ConfusionMatrix{}, Metrics{}, fmt.Errorf("holdout predict: %w", err)
	}

	cm := Confusion(actual, predicted)
	return cm, cm.Metrics(), nil
}

// CheckBalance returns the majority/minority class ratio and whether it
// exceeds the imbalance threshold. Imbalance warns but never blocks training.
func CheckBalance(y []int) (ratio float64, imbalanced bool) {
	counts := [2]int{}
	for _, l := range y {
		counts[l]++
	}
	minority, majority := counts[0], counts[1]
	if minority > majority {
		minority, majority = majority, minority
	}
	if minority == 0 {
		return 0, false
	}
	ratio = float64(majority) / float64(minority)
	return ratio, ratio > imbalanceThreshold
}

// stratifiedFolds assigns sample indices to k folds, shuffling each class
// independently with the given seed and dealing round-robin so every fold
// keeps the overall class proportions as closely as k allows. When a class
// holds fewer than k samples some folds simply go without; fold count is
// never reduced.
func stratifiedFolds(y []int, k int, seed int64) [][]int {
	byClass := map[int][]int{}
	for i, l := range y {
		byClass[l] = append(byClass[l], i)
	}

	rng := rand.New(rand.NewSource(seed))
	folds := make([][]int, k)
	// Deterministic class order: 0 then 1.
	for label := 0; label <= 1; label++ {
		idx := append([]int(nil), byClass[label]...)
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		for j, i := range idx {
			folds[j%k] = append(folds[j%k], i)
		}
	}
	return folds
}
