package report

import (
	"time"

	"github.com/DjordjeVuckovic/agreement-lab/internal/agreement"
)

// Input is one test type to evaluate: a paired predicted/actual sequence
// with optional per-item context.
type Input struct {
	TestType      string
	Predicted     []string
	Actual        []string
	Meta          []agreement.ItemMeta
	Groups        []string
	PositiveLabel string
}

type Report struct {
	Name        string    `json:"name"`
	GeneratedAt time.Time `json:"generated_at"`
	Entries     []Entry   `json:"entries"`
}

type Entry struct {
	TestType        string                        `json:"test_type"`
	Metrics         *agreement.Metrics            `json:"metrics"`
	MeanF1          float64                       `json:"f1_average"`
	ByGroup         map[string]*agreement.Metrics `json:"by_group,omitempty"`
	Discrepancies   []agreement.Discrepancy       `json:"discrepancies"`
	Recommendations []string                      `json:"recommendations,omitempty"`
}
