package report

import (
	"fmt"
	"io"
	"math"

	"github.com/KaramelBytes/immo-eda/internal/correlation"
	"github.com/olekukonko/tablewriter"
)

// WriteSelection prints sel as a two-column table of feature and r.
func WriteSelection(w io.Writer, sel correlation.Selection) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{"Feature", "r"})
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, f := range sel {
		tw.Append([]string{f.Name, formatCorr(f.Corr)})
	}
	tw.Render()
}

// WriteSchema prints one row per column with its kind and missing share.
func WriteSchema(w io.Writer, cols []ColumnSummary) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{"Column", "Kind", "Non-null", "Missing %", "Unique"})
	for _, c := range cols {
		pct := 0.0
		if total := c.NonNull + c.Missing; total > 0 {
			pct = float64(c.Missing) * 100 / float64(total)
		}
		tw.Append([]string{
			safeName(c.Name),
			string(c.Kind),
			fmt.Sprintf("%d", c.NonNull),
			fmt.Sprintf("%.1f", pct),
			fmt.Sprintf("%d", c.Unique),
		})
	}
	tw.Render()
}

func formatCorr(r float64) string {
	if math.IsNaN(r) {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", r)
}
