package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DjordjeVuckovic/agreement-lab/internal/agreement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport(t *testing.T) *Report {
	t.Helper()
	conf := 0.9
	r, err := Generate("baseline", []Input{
		{
			TestType:  "Classification",
			Predicted: []string{"A", "A", "B", "B"},
			Actual:    []string{"A", "B", "B", "B"},
			Meta: []agreement.ItemMeta{
				{ItemID: 1}, {ItemID: 2, Confidence: &conf}, {ItemID: 3}, {ItemID: 4},
			},
			Groups: []string{"g1", "g1", "g2", "g2"},
		},
		{
			TestType:  "Prediction",
			Predicted: []string{"X", "Y"},
			Actual:    []string{"X", "Y"},
		},
	})
	require.NoError(t, err)
	return r
}

func TestGenerate(t *testing.T) {
	r := sampleReport(t)

	require.Len(t, r.Entries, 2)
	e := r.Entries[0]
	assert.Equal(t, "Classification", e.TestType)
	assert.InDelta(t, 0.75, e.Metrics.Accuracy, 1e-9)
	assert.InDelta(t, 0.5, e.Metrics.Kappa, 1e-9)
	require.Len(t, e.Discrepancies, 1)
	assert.Equal(t, int64(2), e.Discrepancies[0].ItemID)
	assert.Len(t, e.ByGroup, 2)
	assert.NotEmpty(t, e.Recommendations)

	assert.InDelta(t, 1.0, r.Entries[1].Metrics.Kappa, 1e-9)
	assert.Nil(t, r.Entries[1].ByGroup)
}

func TestGenerate_LengthMismatch(t *testing.T) {
	_, err := Generate("bad", []Input{{TestType: "t", Predicted: []string{"A"}, Actual: []string{"A", "B"}}})
	assert.ErrorIs(t, err, agreement.ErrLengthMismatch)
	assert.Contains(t, err.Error(), `"t"`)
}

func TestWriteCSV(t *testing.T) {
	r := sampleReport(t)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(r, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Test Type,Accuracy,Kappa,F1 Average", lines[0])
	// F1: A = 2/3, B = 0.8
	assert.Equal(t, "Classification,0.750,0.500,0.733", lines[1])
	assert.Equal(t, "Prediction,1.000,1.000,1.000", lines[2])
}

func TestWriteJSON_Lossless(t *testing.T) {
	r := sampleReport(t)
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, WriteJSON(r, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Entries, 2)
	got := decoded.Entries[0].Metrics
	want := r.Entries[0].Metrics
	assert.Equal(t, want.Accuracy, got.Accuracy)
	assert.Equal(t, want.Kappa, got.Kappa)
	assert.Equal(t, want.F1, got.F1)
	assert.Equal(t, want.Matrix, got.Matrix)
	assert.Equal(t, r.Entries[0].MeanF1, decoded.Entries[0].MeanF1)
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	WriteTable(sampleReport(t), &buf)

	out := buf.String()
	assert.Contains(t, out, "Agreement Report: baseline")
	assert.Contains(t, out, "Classification")
	assert.Contains(t, out, "actual \\ predicted")
	assert.Contains(t, out, "misclassification")
}
