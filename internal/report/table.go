package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// discrepancies shown per test type
const maxTableDiscrepancies = 10

func WriteTable(r *Report, w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "\n=== Agreement Report: %s ===\n", r.Name)

	writeSummaryTable(tw, r)
	for i := range r.Entries {
		e := &r.Entries[i]
		fmt.Fprintf(tw, "\n--- %s ---\n\n", e.TestType)
		writeLabelTable(tw, e)
		writeMatrix(tw, e)
		writeDiscrepancies(tw, e)
		for _, rec := range e.Recommendations {
			fmt.Fprintf(tw, "* %s\n", rec)
		}
	}

	tw.Flush()
}

func writeSummaryTable(tw *tabwriter.Writer, r *Report) {
	fmt.Fprintln(tw)
	header := []string{"Test Type", "Items", "Accuracy", "Kappa", "Strength", "F1 Average", "Discrepancies"}
	writeRow(tw, header)
	writeSeparator(tw, len(header))

	for _, e := range r.Entries {
		writeRow(tw, []string{
			e.TestType,
			fmt.Sprintf("%d", e.Metrics.SampleSize),
			fmt.Sprintf("%.4f", e.Metrics.Accuracy),
			fmt.Sprintf("%.4f", e.Metrics.Kappa),
			string(e.Metrics.Strength),
			fmt.Sprintf("%.4f", e.MeanF1),
			fmt.Sprintf("%d", len(e.Discrepancies)),
		})
	}
}

func writeLabelTable(tw *tabwriter.Writer, e *Entry) {
	header := []string{"Label", "Support", "Precision", "Recall", "F1"}
	writeRow(tw, header)
	writeSeparator(tw, len(header))

	m := e.Metrics
	for _, label := range m.Labels() {
		writeRow(tw, []string{
			label,
			fmt.Sprintf("%d", m.Support[label]),
			fmt.Sprintf("%.4f", m.Precision[label]),
			fmt.Sprintf("%.4f", m.Recall[label]),
			fmt.Sprintf("%.4f", m.F1[label]),
		})
	}
	fmt.Fprintln(tw)
}

// rows are actual labels, columns predicted
func writeMatrix(tw *tabwriter.Writer, e *Entry) {
	m := e.Metrics.Matrix
	writeRow(tw, append([]string{"actual \\ predicted"}, m.Labels...))
	for i, label := range m.Labels {
		row := []string{label}
		for _, c := range m.Counts[i] {
			row = append(row, fmt.Sprintf("%d", c))
		}
		writeRow(tw, row)
	}
	fmt.Fprintln(tw)
}

func writeDiscrepancies(tw *tabwriter.Writer, e *Entry) {
	if len(e.Discrepancies) == 0 {
		return
	}

	header := []string{"Item", "Predicted", "Actual", "Confidence", "Type"}
	writeRow(tw, header)
	writeSeparator(tw, len(header))

	for i, d := range e.Discrepancies {
		if i == maxTableDiscrepancies {
			fmt.Fprintf(tw, "... %d more\n", len(e.Discrepancies)-maxTableDiscrepancies)
			break
		}
		item := fmt.Sprintf("#%d", d.Index)
		if d.ItemID != 0 {
			item = fmt.Sprintf("%d", d.ItemID)
		}
		conf := "-"
		if d.Confidence != nil {
			conf = fmt.Sprintf("%.2f", *d.Confidence)
		}
		writeRow(tw, []string{item, d.Predicted, d.Actual, conf, string(d.Type)})
	}
	fmt.Fprintln(tw)
}

func writeRow(tw *tabwriter.Writer, cells []string) {
	fmt.Fprintln(tw, strings.Join(cells, "\t"))
}

func writeSeparator(tw *tabwriter.Writer, n int) {
	sep := make([]string, n)
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(tw, sep)
}
