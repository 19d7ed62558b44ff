package agreement

import "sort"

// ConfusionMatrix counts paired labels. Counts[i][j] is the number of items whose
// actual label is Labels[i] and whose predicted label is Labels[j].
type ConfusionMatrix struct {
	Labels []string `json:"labels"`
	Counts [][]int  `json:"counts"`
}

// NewConfusionMatrix builds the matrix over the sorted union of labels seen in
// either sequence. Callers must pass sequences of equal length.
func NewConfusionMatrix(predicted, actual []string) ConfusionMatrix {
	labels := labelUniverse(predicted, actual)
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}

	counts := make([][]int, len(labels))
	for i := range counts {
		counts[i] = make([]int, len(labels))
	}
	for i := range actual {
		counts[index[actual[i]]][index[predicted[i]]]++
	}

	return ConfusionMatrix{Labels: labels, Counts: counts}
}

func (m ConfusionMatrix) Total() int {
	var n int
	for _, row := range m.Counts {
		for _, c := range row {
			n += c
		}
	}
	return n
}

func (m ConfusionMatrix) Trace() int {
	var t int
	for i := range m.Counts {
		t += m.Counts[i][i]
	}
	return t
}

// RowSum is the number of items whose actual label is Labels[i].
func (m ConfusionMatrix) RowSum(i int) int {
	var s int
	for _, c := range m.Counts[i] {
		s += c
	}
	return s
}

// ColSum is the number of items predicted as Labels[j].
func (m ConfusionMatrix) ColSum(j int) int {
	var s int
	for i := range m.Counts {
		s += m.Counts[i][j]
	}
	return s
}

// Count returns the cell for an (actual, predicted) label pair, 0 for unknown labels.
func (m ConfusionMatrix) Count(actual, predicted string) int {
	i, j := m.indexOf(actual), m.indexOf(predicted)
	if i < 0 || j < 0 {
		return 0
	}
	return m.Counts[i][j]
}

func (m ConfusionMatrix) indexOf(label string) int {
	i := sort.SearchStrings(m.Labels, label)
	if i < len(m.Labels) && m.Labels[i] == label {
		return i
	}
	return -1
}

func labelUniverse(predicted, actual []string) []string {
	seen := make(map[string]struct{}, 8)
	for _, l := range predicted {
		seen[l] = struct{}{}
	}
	for _, l := range actual {
		seen[l] = struct{}{}
	}

	labels := make([]string, 0, len(seen))
	for l := range seen {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}
