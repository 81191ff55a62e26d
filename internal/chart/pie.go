package chart

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/KaramelBytes/immo-eda/internal/table"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Slice is one category of a pie chart.
type Slice struct {
	Label string
	Count int
	Color color.Color
}

// pie draws slices clockwise from twelve o'clock, each annotated with its
// share in percent.
type pie struct {
	slices []Slice
	total  int
	style  text.Style
}

func (pc *pie) Plot(c draw.Canvas, plt *plot.Plot) {
	center := vg.Point{X: (c.Min.X + c.Max.X) / 2, Y: (c.Min.Y + c.Max.Y) / 2}
	r := vg.Length(math.Min(float64(c.Max.X-c.Min.X), float64(c.Max.Y-c.Min.Y))) * 0.45

	start := math.Pi / 2
	for _, s := range pc.slices {
		if s.Count == 0 {
			continue
		}
		frac := float64(s.Count) / float64(pc.total)
		sweep := -2 * math.Pi * frac

		var path vg.Path
		path.Move(center)
		path.Arc(center, r, start, sweep)
		path.Close()
		c.SetColor(s.Color)
		c.Fill(path)

		mid := start + sweep/2
		at := vg.Point{
			X: center.X + vg.Length(math.Cos(mid))*r*0.6,
			Y: center.Y + vg.Length(math.Sin(mid))*r*0.6,
		}
		c.FillText(pc.style, at, fmt.Sprintf("%.1f%%", frac*100))
		start += sweep
	}
}

type swatch struct{ color color.Color }

func (s swatch) Thumbnail(c *draw.Canvas) {
	pts := []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	}
	c.FillPolygon(s.color, c.ClipPolygonY(pts))
}

// pieColor starts with magenta and red, then follows the plotutil palette.
func pieColor(i int) color.Color {
	switch i {
	case 0:
		return color.RGBA{R: 255, B: 255, A: 255}
	case 1:
		return color.RGBA{R: 204, A: 204}
	}
	return plotutil.Color(i)
}

// CountSlices counts the present values of column, largest first; ties keep
// first-seen order.
func CountSlices(t *table.Table, column string) ([]Slice, error) {
	col, ok := t.Column(column)
	if !ok {
		return nil, fmt.Errorf("count %q: %w", column, table.ErrColumnNotFound)
	}
	idx := make(map[string]int)
	var out []Slice
	for i := 0; i < col.Len(); i++ {
		if col.IsMissing(i) {
			continue
		}
		v := col.Format(i)
		k, seen := idx[v]
		if !seen {
			k = len(out)
			idx[v] = k
			out = append(out, Slice{Label: v})
		}
		out[k].Count++
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Count > out[b].Count })
	for i := range out {
		out[i].Color = pieColor(i)
	}
	return out, nil
}

// CategoryPie draws the distribution of column as a pie chart with a
// "label - count" legend.
func CategoryPie(t *table.Table, column, title, path string) error {
	slices, err := CountSlices(t, column)
	if err != nil {
		return err
	}
	total := 0
	for _, s := range slices {
		total += s.Count
	}
	if total == 0 {
		return fmt.Errorf("pie %q: %w", column, ErrNoData)
	}

	p := plot.New()
	if title == "" {
		title = column
	}
	p.Title.Text = title
	p.HideAxes()

	style := p.Legend.TextStyle
	style.Color = color.White
	style.XAlign = text.XCenter
	style.YAlign = text.YCenter
	p.Add(&pie{slices: slices, total: total, style: style})

	p.Legend.Top = true
	p.Legend.Left = false
	for _, s := range slices {
		p.Legend.Add(fmt.Sprintf("%s - %d", s.Label, s.Count), swatch{color: s.Color})
	}
	return save(p, 6*vg.Inch, 6*vg.Inch, path)
}
