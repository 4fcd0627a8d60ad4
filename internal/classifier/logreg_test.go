package classifier

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

// separableData returns a trivially separable training set: positive first
// component → class 0, negative → class 1.
func separableData() ([][]float32, []int) {
	X := [][]float32{
		{0.9, 0.1}, {0.8, -0.1}, {0.95, 0.0}, {0.7, 0.2},
		{-0.9, 0.1}, {-0.8, -0.1}, {-0.95, 0.0}, {-0.7, 0.2},
	}
	y := []int{0, 0, 0, 0, 1, 1, 1, 1}
	return X, y
}

func TestLogisticRegression_FitPredict(t *testing.T) {
	X, y := separableData()
	m := NewLogisticRegression()
	if err := m.Fit(X, y); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	pred, err := m.Predict(X)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	for i := range y {
		if pred[i] != y[i] {
			t.Errorf("pred[%d] = %d, want %d", i, pred[i], y[i])
		}
	}
}

func TestLogisticRegression_ProbaSumsToOne(t *testing.T) {
	X, y := separableData()
	m := NewLogisticRegression()
	if err := m.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	probs, err := m.Proba(X)
	if err != nil {
		t.Fatalf("Proba: %v", err)
	}
	for i, p := range probs {
		if len(p) != 2 {
			t.Fatalf("probs[%d] has %d classes, want 2", i, len(p))
		}
		if math.Abs(p[0]+p[1]-1) > 1e-9 {
			t.Errorf("probs[%d] sums to %f", i, p[0]+p[1])
		}
	}
}

func TestLogisticRegression_Deterministic(t *testing.T) {
	X, y := separableData()
	m1 := NewLogisticRegression()
	m2 := NewLogisticRegression()
	if err := m1.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	if err := m2.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(m1.Weights, m2.Weights) || m1.Bias != m2.Bias {
		t.Error("two fits over the same data produced different models")
	}
}

func TestLogisticRegression_NotFitted(t *testing.T) {
	m := NewLogisticRegression()
	if _, err := m.Proba([][]float32{{0, 0}}); !errors.Is(err, ErrNotFitted) {
		t.Fatalf("err = %v, want ErrNotFitted", err)
	}
}

func TestLogisticRegression_ShapeMismatch(t *testing.T) {
	m := NewLogisticRegression()
	if err := m.Fit([][]float32{{1, 0}}, []int{0, 1}); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("err = %v, want ErrShapeMismatch", err)
	}
	if err := m.Fit([][]float32{{1, 0}, {1}}, []int{0, 1}); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("err = %v, want ErrShapeMismatch", err)
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	X, y := separableData()
	m := NewLogisticRegression()
	if err := m.Fit(X, y); err != nil {
		t.Fatal(err)
	}

	blob, err := Encode(m)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(blob)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(got.Weights, m.Weights) || got.Bias != m.Bias {
		t.Error("decoded model differs from encoded model")
	}
}

func TestCodec_RejectsGarbage(t *testing.T) {
	if _, err := Decode([]byte("not a model")); err == nil {
		t.Fatal("expected error for bad magic")
	}
	if _, err := Encode(NewLogisticRegression()); !errors.Is(err, ErrNotFitted) {
		t.Fatalf("err = %v, want ErrNotFitted", err)
	}
}
