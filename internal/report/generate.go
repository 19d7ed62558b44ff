package report

import (
	"fmt"
	"time"

	"github.com/DjordjeVuckovic/agreement-lab/internal/agreement"
)

// Entries below this many items get a sample size warning.
const minReliableSample = 50

func Generate(name string, inputs []Input) (*Report, error) {
	r := &Report{
		Name:        name,
		GeneratedAt: time.Now().UTC(),
		Entries:     make([]Entry, 0, len(inputs)),
	}

	for _, in := range inputs {
		e, err := evaluate(in)
		if err != nil {
			return nil, fmt.Errorf("test type %q: %w", in.TestType, err)
		}
		r.Entries = append(r.Entries, *e)
	}

	return r, nil
}

func evaluate(in Input) (*Entry, error) {
	m, err := agreement.Compute(in.Predicted, in.Actual)
	if err != nil {
		return nil, err
	}
	discrepancies, err := agreement.Discrepancies(in.Predicted, in.Actual, in.Meta, agreement.DiscrepancyOptions{
		PositiveLabel: in.PositiveLabel,
	})
	if err != nil {
		return nil, err
	}

	e := &Entry{
		TestType:      in.TestType,
		Metrics:       m,
		MeanF1:        m.MeanF1(),
		Discrepancies: discrepancies,
	}
	if len(in.Groups) > 0 {
		e.ByGroup, err = agreement.ComputeByGroup(in.Predicted, in.Actual, in.Groups)
		if err != nil {
			return nil, err
		}
	}
	e.Recommendations = recommend(m)

	return e, nil
}

func recommend(m *agreement.Metrics) []string {
	var out []string

	switch m.Strength {
	case agreement.StrengthPoor, agreement.StrengthSlight, agreement.StrengthFair:
		out = append(out, fmt.Sprintf("kappa %.3f is %s: review the annotation guide before trusting this classifier", m.Kappa, m.Strength))
	case agreement.StrengthModerate:
		out = append(out, fmt.Sprintf("kappa %.3f is moderate: arbitrate the disagreements before drawing conclusions", m.Kappa))
	}

	for _, label := range m.Labels() {
		if m.Support[label] > 0 && m.F1[label] < 0.5 {
			out = append(out, fmt.Sprintf("label %s has F1 %.3f: inspect its confusions", label, m.F1[label]))
		}
	}

	if m.SampleSize < minReliableSample {
		out = append(out, fmt.Sprintf("only %d items: collect at least %d for a stable estimate", m.SampleSize, minReliableSample))
	}

	return out
}
