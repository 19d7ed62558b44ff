package labelset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSet = `
name: baseline
tests:
  - test_type: Classification
    pairs:
      - { item_id: 1, predicted: A, actual: A, group: fam-1 }
      - { item_id: 2, predicted: A, actual: B, confidence: 0.9 }
      - { item_id: 3, predicted: B, actual: B, group: fam-2 }
      - { item_id: 4, predicted: B, actual: B }
  - test_type: Prediction
    positive_label: CLIENT_POSITIF
    pairs:
      - { predicted: CLIENT_POSITIF, actual: CLIENT_NEUTRE }
`

func TestParse(t *testing.T) {
	t.Run("valid label set", func(t *testing.T) {
		s, err := Parse([]byte(validSet))
		require.NoError(t, err)
		assert.Equal(t, "baseline", s.Name)
		require.Len(t, s.Tests, 2)
		assert.Len(t, s.Tests[0].Pairs, 4)
		require.NotNil(t, s.Tests[0].Pairs[1].Confidence)
		assert.Equal(t, 0.9, *s.Tests[0].Pairs[1].Confidence)
	})

	t.Run("converts to report input", func(t *testing.T) {
		s, err := Parse([]byte(validSet))
		require.NoError(t, err)

		inputs := s.Inputs()
		require.Len(t, inputs, 2)
		assert.Equal(t, []string{"A", "A", "B", "B"}, inputs[0].Predicted)
		assert.Equal(t, []string{"A", "B", "B", "B"}, inputs[0].Actual)
		assert.Equal(t, []string{"fam-1", "", "fam-2", ""}, inputs[0].Groups)
		assert.Equal(t, int64(2), inputs[0].Meta[1].ItemID)

		assert.Nil(t, inputs[1].Groups)
		assert.Equal(t, "CLIENT_POSITIF", inputs[1].PositiveLabel)
	})

	errorCases := []struct {
		name string
		yaml string
	}{
		{name: "malformed", yaml: "tests: [ {"},
		{name: "no tests", yaml: "name: empty\n"},
		{name: "missing test type", yaml: "tests:\n  - pairs:\n      - { predicted: A, actual: A }\n"},
		{name: "duplicate test type", yaml: "tests:\n  - test_type: t\n    pairs: [ { predicted: A, actual: A } ]\n  - test_type: t\n    pairs: [ { predicted: A, actual: A } ]\n"},
		{name: "no pairs", yaml: "tests:\n  - test_type: t\n"},
		{name: "missing label", yaml: "tests:\n  - test_type: t\n    pairs: [ { item_id: 3, predicted: A } ]\n"},
		{name: "confidence out of range", yaml: "tests:\n  - test_type: t\n    pairs: [ { predicted: A, actual: A, confidence: 2 } ]\n"},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validSet), 0o600))

	s, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Len(t, s.Tests, 2)

	_, err = LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
