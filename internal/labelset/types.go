package labelset

import (
	"strconv"

	"github.com/DjordjeVuckovic/agreement-lab/internal/agreement"
	"github.com/DjordjeVuckovic/agreement-lab/internal/report"
)

// LabelSet is a YAML file of paired label sequences, one per test type.
type LabelSet struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Tests       []Test `yaml:"tests"`
}

type Test struct {
	TestType      string      `yaml:"test_type"`
	PositiveLabel string      `yaml:"positive_label,omitempty"`
	Pairs         []LabelPair `yaml:"pairs"`
}

type LabelPair struct {
	ItemID     int64    `yaml:"item_id"`
	Predicted  string   `yaml:"predicted"`
	Actual     string   `yaml:"actual"`
	Confidence *float64 `yaml:"confidence,omitempty"`
	Group      string   `yaml:"group,omitempty"`
	CallID     string   `yaml:"call_id,omitempty"`
	Verbatim   string   `yaml:"verbatim,omitempty"`
}

// Input converts the test into report input. Groups are only set when at
// least one pair carries a group.
func (t *Test) Input() report.Input {
	in := report.Input{
		TestType:      t.TestType,
		PositiveLabel: t.PositiveLabel,
		Predicted:     make([]string, len(t.Pairs)),
		Actual:        make([]string, len(t.Pairs)),
		Meta:          make([]agreement.ItemMeta, len(t.Pairs)),
	}

	grouped := false
	groups := make([]string, len(t.Pairs))
	for i, p := range t.Pairs {
		in.Predicted[i] = p.Predicted
		in.Actual[i] = p.Actual
		in.Meta[i] = agreement.ItemMeta{
			ItemID:     p.ItemID,
			Confidence: p.Confidence,
			Group:      p.Group,
			CallID:     p.CallID,
			Verbatim:   p.Verbatim,
		}
		groups[i] = p.Group
		grouped = grouped || p.Group != ""
	}
	if grouped {
		in.Groups = groups
	}
	return in
}

// Inputs converts every test of the set.
func (s *LabelSet) Inputs() []report.Input {
	out := make([]report.Input, len(s.Tests))
	for i := range s.Tests {
		out[i] = s.Tests[i].Input()
	}
	return out
}

func pairName(t Test, i int) string {
	if t.Pairs[i].ItemID != 0 {
		return strconv.FormatInt(t.Pairs[i].ItemID, 10)
	}
	return "#" + strconv.Itoa(i)
}
