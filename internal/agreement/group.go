package agreement

import "fmt"

// ComputeByGroup computes Metrics separately for each distinct value in groups.
// Items with an empty group are collected under "unknown".
func ComputeByGroup(predicted, actual, groups []string) (map[string]*Metrics, error) {
	if err := checkPaired(predicted, actual); err != nil {
		return nil, err
	}
	if len(groups) != len(actual) {
		return nil, fmt.Errorf("%w: groups=%d actual=%d", ErrLengthMismatch, len(groups), len(actual))
	}

	type pair struct{ predicted, actual []string }
	buckets := make(map[string]*pair)
	for i, g := range groups {
		if g == "" {
			g = "unknown"
		}
		b, ok := buckets[g]
		if !ok {
			b = &pair{}
			buckets[g] = b
		}
		b.predicted = append(b.predicted, predicted[i])
		b.actual = append(b.actual, actual[i])
	}

	out := make(map[string]*Metrics, len(buckets))
	for g, b := range buckets {
		m, err := Compute(b.predicted, b.actual)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", g, err)
		}
		out[g] = m
	}
	return out, nil
}
