package chart

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/KaramelBytes/immo-eda/internal/correlation"
	"github.com/KaramelBytes/immo-eda/internal/table"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
)

// Whole draws a single heatmap over all rows in HeatmapsBy.
const Whole = "whole"

// UnknownCategory labels rows whose grouping value is missing.
const UnknownCategory = "Unknown"

// HeatmapOptions controls heatmap rendering.
type HeatmapOptions struct {
	// Ext is the output extension including the dot.
	Ext string
	// Annotate writes the coefficient into each visible cell.
	Annotate bool
	// CellSize is the size of one matrix cell; the image grows with the matrix.
	CellSize vg.Length
	// TickRotation in degrees for the x-axis labels.
	TickRotation float64
}

// DefaultHeatmapOptions mirrors the notebook figures: annotated cells and
// x labels tilted by 15 degrees.
func DefaultHeatmapOptions() HeatmapOptions {
	return HeatmapOptions{
		Ext:          ".png",
		Annotate:     true,
		CellSize:     0.55 * vg.Inch,
		TickRotation: 15,
	}
}

// lowerGrid exposes the strict lower triangle of a correlation matrix as a
// heat map grid. Row 0 of the matrix is drawn at the top.
type lowerGrid struct{ m *correlation.Matrix }

func (g lowerGrid) Dims() (c, r int) { return g.m.Len(), g.m.Len() }
func (g lowerGrid) X(c int) float64  { return float64(c) }
func (g lowerGrid) Y(r int) float64  { return float64(r) }
func (g lowerGrid) Min() float64     { return -1 }
func (g lowerGrid) Max() float64     { return 1 }

func (g lowerGrid) Z(c, r int) float64 {
	i := g.m.Len() - 1 - r
	if c >= i {
		return math.NaN()
	}
	return g.m.Value(i, c)
}

// Heatmap renders m as a heatmap with a diverging blue-red palette fixed to
// [-1, 1]. The upper triangle and the diagonal are masked.
func Heatmap(m *correlation.Matrix, title, path string, opt HeatmapOptions) error {
	n := m.Len()
	if n < 2 {
		return fmt.Errorf("heatmap %s: %w", title, ErrTooFewColumns)
	}
	if opt.CellSize <= 0 {
		opt.CellSize = DefaultHeatmapOptions().CellSize
	}

	cmap := moreland.SmoothBlueRed()
	cmap.SetMax(1)
	cmap.SetMin(-1)
	cmap.SetConvergePoint(0)

	grid := lowerGrid{m: m}
	hm := plotter.NewHeatMap(grid, cmap.Palette(255))
	hm.Min, hm.Max = -1, 1

	p := plot.New()
	p.Title.Text = title
	p.Add(hm)

	names := m.Names()
	p.NominalX(names...)
	rev := make([]string, n)
	for k := range names {
		rev[k] = names[n-1-k]
	}
	p.NominalY(rev...)
	p.X.Tick.Label.Rotation = opt.TickRotation * math.Pi / 180
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter

	if opt.Annotate {
		var xys plotter.XYs
		var labels []string
		for r := 0; r < n; r++ {
			for c := 0; c < n; c++ {
				z := grid.Z(c, r)
				if math.IsNaN(z) {
					continue
				}
				xys = append(xys, plotter.XY{X: float64(c), Y: float64(r)})
				labels = append(labels, fmt.Sprintf("%.2f", z))
			}
		}
		if len(xys) > 0 {
			lbl, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
			if err != nil {
				return fmt.Errorf("heatmap labels: %w", err)
			}
			for i := range lbl.TextStyle {
				lbl.TextStyle[i].XAlign = text.XCenter
				lbl.TextStyle[i].YAlign = text.YCenter
				lbl.TextStyle[i].Font.Size = vg.Points(7)
			}
			p.Add(lbl)
		}
	}

	side := vg.Length(n)*opt.CellSize + 2*vg.Inch
	return save(p, side, side, path)
}

// HeatmapsBy draws one heatmap per value of the by column, or a single one
// when by is Whole, into dir. Columns holding fewer than two distinct values
// are left out, and target is moved first. Rows with a missing by value form
// the UnknownCategory group. It returns the written paths.
func HeatmapsBy(t *table.Table, by, target, dir string, opt HeatmapOptions) ([]string, error) {
	if opt.Ext == "" {
		opt.Ext = DefaultHeatmapOptions().Ext
	}
	if target == "" {
		target = correlation.DefaultTarget
	}
	varied := make([]string, 0, t.Width())
	for _, c := range t.Columns() {
		if distinct(c) > 1 {
			varied = append(varied, c.Name())
		}
	}
	work, err := t.Select(varied...)
	if err != nil {
		return nil, err
	}

	if by == "" || by == Whole {
		m, err := correlation.Compute(work, target)
		if err != nil {
			return nil, fmt.Errorf("heatmap whole: %w", err)
		}
		path := filepath.Join(dir, "heatmap_whole"+opt.Ext)
		if err := Heatmap(m, "Correlation Heatmap - for all data", path, opt); err != nil {
			return nil, err
		}
		return []string{path}, nil
	}

	col, ok := t.Column(by)
	if !ok {
		return nil, fmt.Errorf("heatmap by %q: %w", by, table.ErrColumnNotFound)
	}
	var order []string
	groups := make(map[string][]int)
	for i := 0; i < t.Rows(); i++ {
		key := UnknownCategory
		if !col.IsMissing(i) {
			key = col.Format(i)
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}
	if len(order) == 0 {
		return nil, fmt.Errorf("heatmap by %q: %w", by, ErrNoData)
	}

	var written []string
	for _, key := range order {
		m, err := correlation.Compute(work.Subset(groups[key]), target)
		if err != nil {
			return written, fmt.Errorf("heatmap by %s=%s: %w", by, key, err)
		}
		path := filepath.Join(dir, fmt.Sprintf("heatmap_%s_%s%s", slug(by), slug(key), opt.Ext))
		title := fmt.Sprintf("Correlation Heatmap by %s: %s", by, key)
		if err := Heatmap(m, title, path, opt); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// distinct counts distinct present values, stopping at two.
func distinct(c table.Column) int {
	first, seen := "", false
	for i := 0; i < c.Len(); i++ {
		if c.IsMissing(i) {
			continue
		}
		v := c.Format(i)
		if !seen {
			first, seen = v, true
			continue
		}
		if v != first {
			return 2
		}
	}
	if seen {
		return 1
	}
	return 0
}
