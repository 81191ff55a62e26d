// Package report summarizes a pipeline run as Markdown: dataset schema,
// missing values, correlations with the target and the selected features.
package report

import (
	"math"
	"sort"

	"github.com/KaramelBytes/immo-eda/internal/clean"
	"github.com/KaramelBytes/immo-eda/internal/correlation"
	"github.com/KaramelBytes/immo-eda/internal/table"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Options controls how much detail a report carries.
type Options struct {
	// TopValues is the number of most frequent categories listed per text column.
	TopValues int
	// TopCorrelations limits the target correlation list; 0 lists all.
	TopCorrelations int
}

// DefaultOptions returns reasonable defaults for a listings report.
func DefaultOptions() Options {
	return Options{TopValues: 5, TopCorrelations: 15}
}

// Report is a markdown-friendly summary of one run.
type Report struct {
	Name    string
	Rows    int
	Columns []ColumnSummary

	Missing   []clean.MissingStat
	Removed   map[string]int
	Encoded   map[string][]string
	Target    string
	TargetCor correlation.Selection
	Thres1    float64
	Thres2    float64
	Selection correlation.Selection
	Outputs   []string
	Warnings  []string
}

// ColumnSummary captures the kind and statistics of one column.
type ColumnSummary struct {
	Name    string
	Kind    table.Kind
	NonNull int
	Missing int
	Unique  int
	// Numeric stats
	Min  float64
	Max  float64
	Mean float64
	Std  float64
	// Text and bool columns
	TopValues []CategoryCount
}

type CategoryCount struct {
	Value string
	Count int
}

// Summarize computes a ColumnSummary for every column of t.
func Summarize(t *table.Table, opt Options) []ColumnSummary {
	out := make([]ColumnSummary, 0, t.Width())
	for _, c := range t.Columns() {
		s := ColumnSummary{Name: c.Name(), Kind: c.Kind()}
		s.Missing = table.MissingCount(c)
		s.NonNull = c.Len() - s.Missing

		counts := make(map[string]int)
		var order []string
		for i := 0; i < c.Len(); i++ {
			if c.IsMissing(i) {
				continue
			}
			v := c.Format(i)
			if _, seen := counts[v]; !seen {
				order = append(order, v)
			}
			counts[v]++
		}
		s.Unique = len(counts)

		if n, ok := c.(*table.Numeric); ok {
			vals := n.Present()
			if len(vals) > 0 {
				s.Min = floats.Min(vals)
				s.Max = floats.Max(vals)
				s.Mean, s.Std = stat.MeanStdDev(vals, nil)
				if len(vals) < 2 {
					s.Std = 0
				}
			}
		} else if opt.TopValues > 0 {
			sort.SliceStable(order, func(a, b int) bool { return counts[order[a]] > counts[order[b]] })
			lim := opt.TopValues
			if len(order) < lim {
				lim = len(order)
			}
			for _, v := range order[:lim] {
				s.TopValues = append(s.TopValues, CategoryCount{Value: v, Count: counts[v]})
			}
		}
		out = append(out, s)
	}
	return out
}

// RankedTargetCorrelations orders the target column of m by descending |r|,
// NaN last, keeping at most limit entries (0 keeps all).
func RankedTargetCorrelations(m *correlation.Matrix, limit int) correlation.Selection {
	all := m.TargetCorrelations()
	sort.SliceStable(all, func(a, b int) bool {
		ra, rb := all[a].Corr, all[b].Corr
		if math.IsNaN(rb) {
			return !math.IsNaN(ra)
		}
		if math.IsNaN(ra) {
			return false
		}
		return math.Abs(ra) > math.Abs(rb)
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all
}
