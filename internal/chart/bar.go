package chart

import (
	"fmt"
	"image/color"
	"strconv"

	"github.com/KaramelBytes/immo-eda/internal/correlation"
	"github.com/KaramelBytes/immo-eda/internal/table"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
)

var (
	green = color.RGBA{G: 128, A: 255}
	red   = color.RGBA{R: 220, A: 255}
	blue  = color.RGBA{R: 59, G: 76, B: 192, A: 255}
)

// RowsColumnsBar draws the row and column counts of t side by side.
func RowsColumnsBar(t *table.Table, path string) error {
	p := plot.New()
	p.Title.Text = "Rows and Columns Count"
	p.X.Label.Text = "Categories"
	p.Y.Label.Text = "Count"
	p.Legend.Top = true

	counts := []float64{float64(t.Rows()), float64(t.Width())}
	names := []string{"Rows", "Columns"}
	colors := []color.Color{green, red}
	for i, v := range counts {
		b, err := plotter.NewBarChart(plotter.Values{v}, vg.Points(40))
		if err != nil {
			return fmt.Errorf("rows/columns bar: %w", err)
		}
		b.XMin = float64(i)
		b.Color = colors[i]
		b.LineStyle.Width = 0
		p.Add(b)
		p.Legend.Add(names[i], b)
	}
	if err := addValueLabels(p, counts, func(v float64) string { return strconv.Itoa(int(v)) }); err != nil {
		return err
	}
	p.NominalX(names...)
	p.Y.Min = 0
	return save(p, 6*vg.Inch, 4.5*vg.Inch, path)
}

// SelectionBar draws each selected feature's correlation with the target.
func SelectionBar(sel correlation.Selection, target, path string) error {
	if len(sel) == 0 {
		return fmt.Errorf("selection bar: %w", ErrNoData)
	}
	vals := make(plotter.Values, len(sel))
	for i, f := range sel {
		vals[i] = f.Corr
	}
	b, err := plotter.NewBarChart(vals, vg.Points(18))
	if err != nil {
		return fmt.Errorf("selection bar: %w", err)
	}
	b.Color = blue
	b.LineStyle.Width = 0

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Selected features by correlation with %s", target)
	p.Y.Label.Text = "Pearson r"
	p.Add(b, plotter.NewGrid())
	if err := addValueLabels(p, vals, func(v float64) string { return fmt.Sprintf("%.2f", v) }); err != nil {
		return err
	}
	p.NominalX(sel.Names()...)
	p.X.Tick.Label.Rotation = 0.5
	p.X.Tick.Label.XAlign = text.XRight
	p.Y.Min, p.Y.Max = -1, 1

	w := vg.Length(len(sel))*0.6*vg.Inch + 2*vg.Inch
	return save(p, w, 4.5*vg.Inch, path)
}

// addValueLabels writes each bar's value just above it.
func addValueLabels(p *plot.Plot, vals []float64, format func(float64) string) error {
	xys := make(plotter.XYs, len(vals))
	labels := make([]string, len(vals))
	for i, v := range vals {
		xys[i] = plotter.XY{X: float64(i), Y: v}
		labels[i] = format(v)
	}
	lbl, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return fmt.Errorf("bar labels: %w", err)
	}
	for i := range lbl.TextStyle {
		lbl.TextStyle[i].XAlign = text.XCenter
		if vals[i] < 0 {
			lbl.TextStyle[i].YAlign = text.YTop
		}
	}
	p.Add(lbl)
	return nil
}
