package eval

import "math"

// Metrics holds the four scores of a single evaluation fold. Precision,
// recall and F1 are for the positive class (exclude, label 1).
type Metrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// Summary aggregates fold metrics as mean and standard deviation. These are
// the headline numbers persisted with a model.
type Summary struct {
	AccuracyMean  float64 `json:"accuracy_mean"`
	AccuracyStd   float64 `json:"accuracy_std"`
	PrecisionMean float64 `json:"precision_mean"`
	PrecisionStd  float64 `json:"precision_std"`
	RecallMean    float64 `json:"recall_mean"`
	RecallStd     float64 `json:"recall_std"`
	F1Mean        float64 `json:"f1_mean"`
	F1Std         float64 `json:"f1_std"`
}

// ConfusionMatrix counts outcomes of a binary evaluation.
// Rows are actual, columns predicted; index 0 = keep, 1 = exclude.
type ConfusionMatrix [2][2]int

// Score computes Metrics from parallel actual and predicted labels.
func Score(actual, predicted []int) Metrics {
	cm := Confusion(actual, predicted)
	return cm.Metrics()
}

// Confusion tallies a confusion matrix from parallel actual and predicted labels.
func Confusion(actual, predicted []int) ConfusionMatrix {
	var cm ConfusionMatrix
	for i := range actual {
		cm[actual[i]][predicted[i]]++
	}
	return cm
}

// Metrics derives accuracy/precision/recall/F1 from the matrix.
// Undefined ratios (zero denominators) score 0, never NaN.
func (cm ConfusionMatrix) Metrics() Metrics {
	tp := float64(cm[1][1])
	fp := float64(cm[0][1])
	fn := float64(cm[1][0])
	tn := float64(cm[0][0])

	var m Metrics
	if total := tp + fp + fn + tn; total > 0 {
		m.Accuracy = (tp + tn) / total
	}
	if tp+fp > 0 {
		m.Precision = tp / (tp + fp)
	}
	if tp+fn > 0 {
		m.Recall = tp / (tp + fn)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	return m
}

// Summarize reduces per-fold metrics to mean and population standard deviation.
func Summarize(folds []Metrics) Summary {
	n := float64(len(folds))
	if n == 0 {
		return Summary{}
	}

	meanStd := func(get func(Metrics) float64) (float64, float64) {
		var sum float64
		for _, f := range folds {
			sum += get(f)
		}
		mean := sum / n
		var sq float64
		for _, f := range folds {
			d := get(f) - mean
			sq += d * d
		}
		return mean, math.Sqrt(sq / n)
	}

	var s Summary
	s.AccuracyMean, s.AccuracyStd = meanStd(func(m Metrics) float64 { return m.Accuracy })
	s.PrecisionMean, s.PrecisionStd = meanStd(func(m Metrics) float64 { return m.Precision })
	s.RecallMean, s.RecallStd = meanStd(func(m Metrics) float64 { return m.Recall })
	s.F1Mean, s.F1Std = meanStd(func(m Metrics) float64 { return m.F1 })
	return s
}
