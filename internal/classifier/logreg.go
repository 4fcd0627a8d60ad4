package classifier

import (
	"fmt"
	"math"
)

// Training hyperparameters. Fixed values keep Fit deterministic for a given
// training set, mirroring a fixed random_state in the evaluation protocol.
const (
	defaultIterations = 1000
	defaultLearnRate  = 0.5
	defaultL2         = 1e-4
)

// LogisticRegression is a batch-gradient-descent binary logistic regression
// over unit-norm embeddings. The zero value is unfitted; use NewLogisticRegression.
type LogisticRegression struct {
	Weights    []float64
	Bias       float64
	Iterations int
	LearnRate  float64
	L2         float64
}

// NewLogisticRegression returns a classifier with default hyperparameters.
func NewLogisticRegression() *LogisticRegression {
	return &LogisticRegression{
		Iterations: defaultIterations,
		LearnRate:  defaultLearnRate,
		L2:         defaultL2,
	}
}

// Fit trains the model with full-batch gradient descent from a zero
// initialization. Deterministic: same data in, same weights out.
func (m *LogisticRegression) Fit(X [][]float32, y []int) error {
	if len(X) == 0 || len(X) != len(y) {
		return fmt.Errorf("%w: %d rows, %d labels", ErrShapeMismatch, len(X), len(y))
	}
	dim := len(X[0])
	for i, row := range X {
		if len(row) != dim {
			return fmt.Errorf("%w: row %d has dim %d, want %d", ErrShapeMismatch, i, len(row), dim)
		}
	}

	if m.Iterations <= 0 {
		m.Iterations = defaultIterations
	}
	if m.LearnRate <= 0 {
		m.LearnRate = defaultLearnRate
	}

	m.Weights = make([]float64, dim)
	m.Bias = 0

	n := float64(len(X))
	gradW := make([]float64, dim)
	for iter := 0; iter < m.Iterations; iter++ {
		for j := range gradW {
			gradW[j] = 0
		}
		gradB := 0.0

		for i, row := range X {
			p := m.forward(row)
			diff := p - float64(y[i])
			for j, v := range row {
				gradW[j] += diff * float64(v)
			}
			gradB += diff
		}

		for j := range m.Weights {
			m.Weights[j] -= m.LearnRate * (gradW[j]/n + m.L2*m.Weights[j])
		}
		m.Bias -= m.LearnRate * gradB / n
	}
	return nil
}

// Predict returns 0 (keep) or 1 (exclude) per row.
func (m *LogisticRegression) Predict(X [][]float32) ([]int, error) {
	probs, err := m.Proba(X)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(probs))
	for i, p := range probs {
		if p[1] >= 0.5 {
			out[i] = 1
		}
	}
	return out, nil
}

// Proba returns [P(keep), P(exclude)] per row.
func (m *LogisticRegression) Proba(X [][]float32) ([][]float64, error) {
	if m.Weights == nil {
		return nil, ErrNotFitted
	}
	out := make([][]float64, len(X))
	for i, row := range X {
		if len(row) != len(m.Weights) {
			return nil, fmt.Errorf("%w: row %d has dim %d, want %d", ErrShapeMismatch, i, len(row), len(m.Weights))
		}
		p := m.forward(row)
		out[i] = []float64{1 - p, p}
	}
	return out, nil
}

// forward computes P(label=1) for one embedding.
func (m *LogisticRegression) forward(row []float32) float64 {
	z := m.Bias
	for j, v := range row {
		z += m.Weights[j] * float64(v)
	}
	return sigmoid(z)
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
