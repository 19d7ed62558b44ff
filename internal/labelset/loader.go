// Package labelset reads paired predicted/actual label files used by the
// command line agreement report.
package labelset

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

func LoadFromFile(path string) (*LabelSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read label set file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*LabelSet, error) {
	var s LabelSet
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse label set YAML: %w", err)
	}
	if len(s.Tests) == 0 {
		return nil, fmt.Errorf("label set has no tests")
	}

	seen := make(map[string]struct{}, len(s.Tests))
	for i, t := range s.Tests {
		if t.TestType == "" {
			return nil, fmt.Errorf("test at index %d has no test_type", i)
		}
		if _, dup := seen[t.TestType]; dup {
			return nil, fmt.Errorf("duplicate test_type %q", t.TestType)
		}
		seen[t.TestType] = struct{}{}

		if len(t.Pairs) == 0 {
			return nil, fmt.Errorf("test %q has no pairs", t.TestType)
		}
		for j, p := range t.Pairs {
			if p.Predicted == "" || p.Actual == "" {
				return nil, fmt.Errorf("test %q pair %s is missing a label", t.TestType, pairName(t, j))
			}
			if p.Confidence != nil && (*p.Confidence < 0 || *p.Confidence > 1) {
				return nil, fmt.Errorf("test %q pair %s has confidence outside [0,1]", t.TestType, pairName(t, j))
			}
		}
	}

	return &s, nil
}
