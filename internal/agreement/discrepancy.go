package agreement

import (
	"fmt"
	"sort"
)

type DiscrepancyType string

const (
	Misclassification DiscrepancyType = "misclassification"
	FalsePositive     DiscrepancyType = "false_positive"
	FalseNegative     DiscrepancyType = "false_negative"
)

// ItemMeta is caller-supplied context for the item at the same index.
type ItemMeta struct {
	ItemID     int64    `json:"item_id"`
	Confidence *float64 `json:"confidence,omitempty"`
	Group      string   `json:"group,omitempty"`
	CallID     string   `json:"call_id,omitempty"`
	Verbatim   string   `json:"verbatim,omitempty"`
}

type Discrepancy struct {
	Index     int             `json:"index"`
	Predicted string          `json:"predicted"`
	Actual    string          `json:"actual"`
	Type      DiscrepancyType `json:"type"`
	ItemMeta
}

type DiscrepancyOptions struct {
	// PositiveLabel turns mismatches that involve it into false positives or
	// false negatives. Empty means every mismatch is a misclassification.
	PositiveLabel string
}

// Discrepancies lists every disagreeing item, most confident prediction first.
// meta may be nil; otherwise it must be paired with the sequences.
func Discrepancies(predicted, actual []string, meta []ItemMeta, opts DiscrepancyOptions) ([]Discrepancy, error) {
	if err := checkPaired(predicted, actual); err != nil {
		return nil, err
	}
	if meta != nil && len(meta) != len(actual) {
		return nil, fmt.Errorf("%w: meta=%d actual=%d", ErrLengthMismatch, len(meta), len(actual))
	}

	out := make([]Discrepancy, 0)
	for i := range actual {
		if predicted[i] == actual[i] {
			continue
		}

		d := Discrepancy{
			Index:     i,
			Predicted: predicted[i],
			Actual:    actual[i],
			Type:      classify(predicted[i], actual[i], opts.PositiveLabel),
		}
		if meta != nil {
			d.ItemMeta = meta[i]
		}
		out = append(out, d)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return confidenceOf(out[i]) > confidenceOf(out[j])
	})

	return out, nil
}

func classify(predicted, actual, positive string) DiscrepancyType {
	if positive == "" {
		return Misclassification
	}
	switch {
	case predicted == positive && actual != positive:
		return FalsePositive
	case predicted != positive && actual == positive:
		return FalseNegative
	default:
		return Misclassification
	}
}

// items without a confidence sort after every scored item
func confidenceOf(d Discrepancy) float64 {
	if d.Confidence == nil {
		return -1
	}
	return *d.Confidence
}
