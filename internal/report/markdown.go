package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/immo-eda/internal/table"
)

// Markdown renders the report in bracketed sections.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n", len(r.Columns)))
	if len(r.Removed) > 0 {
		keys := make([]string, 0, len(r.Removed))
		for k := range r.Removed {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString(fmt.Sprintf("Removed by %s: %d\n", k, r.Removed[k]))
		}
	}

	if len(r.Columns) > 0 {
		b.WriteString("\n[SCHEMA]\n")
		for _, c := range r.Columns {
			total := c.NonNull + c.Missing
			missPct := 0.0
			if total > 0 {
				missPct = float64(c.Missing) * 100.0 / float64(total)
			}
			b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", safeName(c.Name), c.Kind, c.NonNull, missPct))
			switch c.Kind {
			case table.KindNumeric:
				if c.NonNull > 0 {
					b.WriteString(fmt.Sprintf("; min %.4g, max %.4g, mean %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Std))
				}
			default:
				if len(c.TopValues) > 0 {
					b.WriteString("; top: ")
					for i, kv := range c.TopValues {
						if i > 0 {
							b.WriteString(", ")
						}
						b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
					}
					if c.Unique > len(c.TopValues) {
						b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
					}
				}
			}
			b.WriteString("\n")
		}
	}

	var dropped []string
	for _, m := range r.Missing {
		if m.Dropped {
			dropped = append(dropped, fmt.Sprintf("%s (%.1f%%)", m.Column, m.Percent))
		}
	}
	if len(dropped) > 0 {
		b.WriteString("\n[DROPPED COLUMNS]\n")
		for _, d := range dropped {
			b.WriteString("- " + d + "\n")
		}
	}

	if len(r.Encoded) > 0 {
		b.WriteString("\n[ENCODING]\n")
		steps := make([]string, 0, len(r.Encoded))
		for k := range r.Encoded {
			steps = append(steps, k)
		}
		sort.Strings(steps)
		for _, s := range steps {
			b.WriteString(fmt.Sprintf("- %s: %s\n", s, strings.Join(r.Encoded[s], ", ")))
		}
	}

	if len(r.TargetCor) > 0 {
		b.WriteString(fmt.Sprintf("\n[CORRELATIONS WITH %s]\n", strings.ToUpper(r.Target)))
		for _, f := range r.TargetCor {
			if math.IsNaN(f.Corr) {
				b.WriteString(fmt.Sprintf("- %s: undefined\n", f.Name))
				continue
			}
			b.WriteString(fmt.Sprintf("- %s: r=%.3f\n", f.Name, f.Corr))
		}
	}

	b.WriteString(fmt.Sprintf("\n[SELECTED FEATURES] (|r| >= %.2f, redundancy r >= %.2f)\n", r.Thres1, r.Thres2))
	if len(r.Selection) == 0 {
		b.WriteString("- none\n")
	}
	for _, f := range r.Selection {
		b.WriteString(fmt.Sprintf("- %s: %.2f\n", f.Name, f.Corr))
	}

	if len(r.Outputs) > 0 {
		b.WriteString("\n[OUTPUTS]\n")
		for _, o := range r.Outputs {
			b.WriteString("- " + o + "\n")
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
