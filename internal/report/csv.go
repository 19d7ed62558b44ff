package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

var csvHeader = []string{"Test Type", "Accuracy", "Kappa", "F1 Average"}

// WriteCSV writes one row per test type with three decimals per value.
func WriteCSV(r *Report, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range r.Entries {
		row := []string{
			e.TestType,
			fmt.Sprintf("%.3f", e.Metrics.Accuracy),
			fmt.Sprintf("%.3f", e.Metrics.Kappa),
			fmt.Sprintf("%.3f", e.MeanF1),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %q: %w", e.TestType, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteCSVFile(r *Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv report: %w", err)
	}
	defer f.Close()
	return WriteCSV(r, f)
}
