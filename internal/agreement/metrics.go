// Package agreement computes inter-annotator agreement between a predicted and an
// actual label sequence: confusion matrix, Cohen's kappa, per-label precision,
// recall and F1, and the list of disagreeing items. Every function is pure.
package agreement

import (
	"errors"
	"fmt"
)

// ErrLengthMismatch is returned when the two sequences are empty or not paired 1:1.
var ErrLengthMismatch = errors.New("label sequences must be non-empty and of equal length")

type Metrics struct {
	Accuracy   float64            `json:"accuracy"`
	Precision  map[string]float64 `json:"precision"`
	Recall     map[string]float64 `json:"recall"`
	F1         map[string]float64 `json:"f1_score"`
	Support    map[string]int     `json:"support"`
	Kappa      float64            `json:"kappa"`
	Strength   Strength           `json:"strength"`
	Matrix     ConfusionMatrix    `json:"confusion_matrix"`
	SampleSize int                `json:"sample_size"`
}

// Compute derives agreement metrics for paired sequences where predicted[i] and
// actual[i] describe the same item.
func Compute(predicted, actual []string) (*Metrics, error) {
	if err := checkPaired(predicted, actual); err != nil {
		return nil, err
	}

	matrix := NewConfusionMatrix(predicted, actual)
	n := len(actual)

	m := &Metrics{
		Accuracy:   float64(matrix.Trace()) / float64(n),
		Precision:  make(map[string]float64, len(matrix.Labels)),
		Recall:     make(map[string]float64, len(matrix.Labels)),
		F1:         make(map[string]float64, len(matrix.Labels)),
		Support:    make(map[string]int, len(matrix.Labels)),
		Kappa:      CohenKappa(matrix),
		Matrix:     matrix,
		SampleSize: n,
	}
	m.Strength = Interpret(m.Kappa)

	for i, label := range matrix.Labels {
		support := matrix.RowSum(i)
		m.Support[label] = support
		if support == 0 {
			m.Precision[label] = 0
			m.Recall[label] = 0
			m.F1[label] = 0
			continue
		}

		tp := matrix.Counts[i][i]
		predictedAs := matrix.ColSum(i)

		var precision float64
		if predictedAs > 0 {
			precision = float64(tp) / float64(predictedAs)
		}
		recall := float64(tp) / float64(support)

		m.Precision[label] = precision
		m.Recall[label] = recall
		m.F1[label] = harmonicMean(precision, recall)
	}

	return m, nil
}

// Labels returns the sorted label universe of the computation.
func (m *Metrics) Labels() []string {
	return m.Matrix.Labels
}

// MeanF1 averages F1 across every observed label, zero-support labels included.
func (m *Metrics) MeanF1() float64 {
	if len(m.F1) == 0 {
		return 0
	}
	var sum float64
	for _, v := range m.F1 {
		sum += v
	}
	return sum / float64(len(m.F1))
}

func harmonicMean(precision, recall float64) float64 {
	if precision+recall == 0 {
		return 0
	}
	return 2 * precision * recall / (precision + recall)
}

func checkPaired(predicted, actual []string) error {
	if len(predicted) == 0 || len(actual) == 0 || len(predicted) != len(actual) {
		return fmt.Errorf("%w: predicted=%d actual=%d", ErrLengthMismatch, len(predicted), len(actual))
	}
	return nil
}
