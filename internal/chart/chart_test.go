package chart

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/immo-eda/internal/correlation"
	"github.com/KaramelBytes/immo-eda/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var nan = math.NaN()

func assertPNG(t *testing.T, path string) {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("\x89PNG")), "%s is not a PNG", path)
}

func listings(t *testing.T) *table.Table {
	t.Helper()
	tab, err := table.FromColumns(
		table.NewNumeric("price", []float64{300, 150, 420, 260, 200, 480}),
		table.NewNumeric("bedrooms", []float64{3, 1, 4, 2, 1, 5}),
		table.NewNumeric("area", []float64{150, 60, 190, 120, 55, 240}),
		table.NewNumeric("country", []float64{1, 1, 1, 1, 1, 1}),
		table.NewText("type", []string{"House", "Apartment", "House", "House", "Apartment", ""},
			[]bool{true, true, true, true, true, false}),
	)
	require.NoError(t, err)
	return tab
}

func TestLowerGridMasksUpperTriangle(t *testing.T) {
	m, err := correlation.NewMatrix([]string{"price", "a", "b"}, [][]float64{
		{1, 0.2, 0.3},
		{0.2, 1, 0.4},
		{0.3, 0.4, 1},
	})
	require.NoError(t, err)
	g := lowerGrid{m: m}
	// r = 0 is the bottom row, which holds matrix row 2 ("b").
	assert.Equal(t, 0.3, g.Z(0, 0))
	assert.Equal(t, 0.4, g.Z(1, 0))
	assert.True(t, math.IsNaN(g.Z(2, 0)), "diagonal masked")
	assert.Equal(t, 0.2, g.Z(0, 1))
	assert.True(t, math.IsNaN(g.Z(1, 1)))
	for c := 0; c < 3; c++ {
		assert.True(t, math.IsNaN(g.Z(c, 2)), "top row is fully masked")
	}
}

func TestHeatmapWritesImage(t *testing.T) {
	m, err := correlation.Compute(listings(t), "price")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "out", "heat.png")
	require.NoError(t, Heatmap(m, "test", path, DefaultHeatmapOptions()))
	assertPNG(t, path)

	one, err := correlation.NewMatrix([]string{"price"}, [][]float64{{1}})
	require.NoError(t, err)
	assert.ErrorIs(t, Heatmap(one, "x", path, DefaultHeatmapOptions()), ErrTooFewColumns)
}

func TestHeatmapsByWhole(t *testing.T) {
	dir := t.TempDir()
	paths, err := HeatmapsBy(listings(t), Whole, "price", dir, DefaultHeatmapOptions())
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "heatmap_whole.png")}, paths)
	assertPNG(t, paths[0])
}

func TestHeatmapsByCategory(t *testing.T) {
	dir := t.TempDir()
	paths, err := HeatmapsBy(listings(t), "type", "price", dir, DefaultHeatmapOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "heatmap_type_house.png"),
		filepath.Join(dir, "heatmap_type_apartment.png"),
		filepath.Join(dir, "heatmap_type_unknown.png"),
	}, paths)
	for _, p := range paths {
		assertPNG(t, p)
	}

	_, err = HeatmapsBy(listings(t), "region", "price", dir, DefaultHeatmapOptions())
	assert.ErrorIs(t, err, table.ErrColumnNotFound)
}

func TestRowsColumnsBar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shape.png")
	require.NoError(t, RowsColumnsBar(listings(t), path))
	assertPNG(t, path)
}

func TestSelectionBar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selection.svg")
	sel := correlation.Selection{{Name: "area", Corr: 0.9}, {Name: "floor", Corr: -0.4}}
	require.NoError(t, SelectionBar(sel, "price", path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "<svg")

	assert.ErrorIs(t, SelectionBar(nil, "price", path), ErrNoData)
}

func TestCategoryPie(t *testing.T) {
	slices, err := CountSlices(listings(t), "type")
	require.NoError(t, err)
	require.Len(t, slices, 2)
	assert.Equal(t, "House", slices[0].Label)
	assert.Equal(t, 3, slices[0].Count)
	assert.Equal(t, "Apartment", slices[1].Label)
	assert.Equal(t, 2, slices[1].Count)

	path := filepath.Join(t.TempDir(), "types.png")
	require.NoError(t, CategoryPie(listings(t), "type", "Property Types", path))
	assertPNG(t, path)

	empty, err := table.FromColumns(table.NewText("type", []string{""}, []bool{false}))
	require.NoError(t, err)
	assert.ErrorIs(t, CategoryPie(empty, "type", "", path), ErrNoData)
	_, err = CountSlices(empty, "nope")
	assert.ErrorIs(t, err, table.ErrColumnNotFound)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "liège", slug(" Liège"))
	assert.Equal(t, "a_b_c", slug("A b/c"))
	assert.Equal(t, "empty", slug(""))
}
