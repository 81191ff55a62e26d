package correlation

import (
	"errors"
	"math"
	"testing"

	"github.com/KaramelBytes/immo-eda/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var nan = math.NaN()

func listings(t *testing.T) *table.Table {
	t.Helper()
	tab, err := table.FromColumns(
		table.NewText("type", []string{"House", "Apartment", "House", "House", "Apartment", "House"}, nil),
		table.NewNumeric("bedrooms", []float64{3, 1, 4, 2, 1, 5}),
		table.NewNumeric("price", []float64{300, 150, 420, 260, nan, 480}),
		table.NewNumeric("area", []float64{150, 60, 190, nan, 55, 240}),
		table.NewNumeric("floor", []float64{0, 3, 1, 2, 5, 4}),
		table.NewNumeric("constant", []float64{1, 1, 1, 1, 1, 1}),
		table.NewNumeric("sparse", []float64{nan, nan, nan, 7, nan, nan}),
	)
	require.NoError(t, err)
	return tab
}

func TestComputeOrderAndShape(t *testing.T) {
	m, err := Compute(listings(t), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"price", "bedrooms", "area", "floor", "constant", "sparse"}, m.Names())
	assert.Equal(t, "price", m.Target())

	for i := 0; i < m.Len(); i++ {
		for j := 0; j < m.Len(); j++ {
			a, b := m.Value(i, j), m.Value(j, i)
			if math.IsNaN(a) {
				assert.True(t, math.IsNaN(b), "(%d,%d)", i, j)
				continue
			}
			assert.Equal(t, a, b, "(%d,%d)", i, j)
			assert.GreaterOrEqual(t, a, -1.0)
			assert.LessOrEqual(t, a, 1.0)
		}
	}
	for _, name := range []string{"price", "bedrooms", "area", "floor"} {
		v, ok := m.At(name, name)
		require.True(t, ok)
		assert.Equal(t, 1.0, v, name)
	}
	v, _ := m.At("constant", "constant")
	assert.True(t, math.IsNaN(v), "zero variance diagonal is NaN")
	v, _ = m.At("sparse", "sparse")
	assert.True(t, math.IsNaN(v), "single value diagonal is NaN")
	v, _ = m.At("price", "constant")
	assert.True(t, math.IsNaN(v))
}

func TestComputePairwiseDeletion(t *testing.T) {
	tab, err := table.FromColumns(
		table.NewNumeric("price", []float64{1, 2, 3, 4, nan}),
		table.NewNumeric("x", []float64{2, 4, nan, 8, 10}),
		table.NewNumeric("y", []float64{nan, 5, 4, 3, 2}),
	)
	require.NoError(t, err)
	m, err := Compute(tab, "price")
	require.NoError(t, err)

	// price/x share rows 0, 1, 3 where x = 2*price.
	v, _ := m.At("price", "x")
	assert.InDelta(t, 1.0, v, 1e-12)
	// price/y share rows 1, 2, 3.
	v, _ = m.At("price", "y")
	assert.InDelta(t, -1.0, v, 1e-12)
	// x/y share rows 1, 3, 4.
	v, _ = m.At("x", "y")
	assert.InDelta(t, -1.0, v, 1e-12)
}

func TestComputeDoesNotMutate(t *testing.T) {
	tab := listings(t)
	before := tab.Names()
	_, err := Compute(tab, "price")
	require.NoError(t, err)
	assert.Equal(t, before, tab.Names())
	p, _ := tab.Numeric("price")
	assert.True(t, math.IsNaN(p.Values[4]))
}

func TestComputeTargetErrors(t *testing.T) {
	tab := listings(t)
	_, err := Compute(tab, "rent")
	assert.True(t, errors.Is(err, ErrNoTarget))
	_, err = Compute(tab, "type")
	assert.True(t, errors.Is(err, ErrTargetNotNumeric))
}

func TestPearsonDegenerate(t *testing.T) {
	assert.True(t, math.IsNaN(Pearson([]float64{1}, []float64{2})))
	assert.True(t, math.IsNaN(Pearson([]float64{1, nan}, []float64{nan, 2})))
	assert.True(t, math.IsNaN(Pearson([]float64{1, 2, 3}, []float64{4, 4, 4})))
}

func matrix(t *testing.T, names []string, vals [][]float64) *Matrix {
	t.Helper()
	m, err := NewMatrix(names, vals)
	require.NoError(t, err)
	return m
}

func TestNewMatrixValidates(t *testing.T) {
	_, err := NewMatrix([]string{"price", "a"}, [][]float64{{1, 0.5}, {0.4, 1}})
	assert.ErrorContains(t, err, "not symmetric")
	_, err = NewMatrix([]string{"price", "a"}, [][]float64{{1, 0.5}})
	assert.Error(t, err)
	_, err = NewMatrix([]string{"price", "price"}, [][]float64{{1, 0}, {0, 1}})
	assert.ErrorContains(t, err, "duplicate")
}

func TestSelectDropsWeakerRedundantFeature(t *testing.T) {
	m := matrix(t, []string{"price", "A", "B"}, [][]float64{
		{1, 0.9, 0.5},
		{0.9, 1, 0.95},
		{0.5, 0.95, 1},
	})
	sel := Select(m, 0.1, 0.3)
	assert.Equal(t, Selection{{Name: "A", Corr: 0.9}}, sel)
}

func TestSelectAdmitsEverythingAtLooseThresholds(t *testing.T) {
	m, err := Compute(listings(t), "price")
	require.NoError(t, err)
	sel := Select(m, 0, 1)

	var want []string
	for _, f := range m.TargetCorrelations() {
		if !math.IsNaN(f.Corr) {
			want = append(want, f.Name)
		}
	}
	assert.ElementsMatch(t, want, sel.Names())
	assert.ElementsMatch(t, []string{"bedrooms", "area", "floor"}, sel.Names())
	for i := 1; i < len(sel); i++ {
		assert.GreaterOrEqual(t, math.Abs(sel[i-1].Corr), math.Abs(sel[i].Corr))
	}
}

func TestSelectImpossibleThreshold(t *testing.T) {
	m, err := Compute(listings(t), "price")
	require.NoError(t, err)
	assert.Empty(t, Select(m, 1.1, 0.3))
}

func TestSelectTransitiveOrder(t *testing.T) {
	// A~B and B~C are redundant, A~C is not. B is dropped by A and still
	// eliminates C.
	m := matrix(t, []string{"price", "C", "A", "B"}, [][]float64{
		{1, 0.7, 0.9, 0.8},
		{0.7, 1, 0.1, 0.5},
		{0.9, 0.1, 1, 0.5},
		{0.8, 0.5, 0.5, 1},
	})
	assert.Equal(t, []string{"A"}, Select(m, 0.1, 0.3).Names())
}

func TestSelectTieKeepsEarlierColumn(t *testing.T) {
	m := matrix(t, []string{"price", "A", "B"}, [][]float64{
		{1, 0.8, -0.8},
		{0.8, 1, 0.9},
		{-0.8, 0.9, 1},
	})
	assert.Equal(t, Selection{{Name: "A", Corr: 0.8}}, Select(m, 0.1, 0.3))
}

func TestSelectIgnoresNegativeCollinearity(t *testing.T) {
	m := matrix(t, []string{"price", "A", "B"}, [][]float64{
		{1, 0.9, 0.5},
		{0.9, 1, -0.95},
		{0.5, -0.95, 1},
	})
	assert.Equal(t, []string{"A", "B"}, Select(m, 0.1, 0.3).Names())
}

func TestSelectOrdersByAbsoluteCorrelation(t *testing.T) {
	m := matrix(t, []string{"price", "a", "b", "c", "d"}, [][]float64{
		{1, 0.2, -0.7, nan, 0.05},
		{0.2, 1, 0, 0, 0},
		{-0.7, 0, 1, 0, 0},
		{nan, 0, 0, 1, 0},
		{0.05, 0, 0, 0, 1},
	})
	sel := Select(m, 0.1, 0.3)
	assert.Equal(t, []string{"b", "a"}, sel.Names())
	v, ok := sel.Lookup("b")
	assert.True(t, ok)
	assert.Equal(t, -0.7, v)
	_, ok = sel.Lookup("c")
	assert.False(t, ok)
}

func TestSubset(t *testing.T) {
	m := matrix(t, []string{"price", "a", "b"}, [][]float64{
		{1, 0.2, 0.3},
		{0.2, 1, 0.4},
		{0.3, 0.4, 1},
	})
	s, err := m.Subset([]string{"price", "b"})
	require.NoError(t, err)
	v, _ := s.At("price", "b")
	assert.Equal(t, 0.3, v)
	assert.Equal(t, 2, s.Len())
	_, err = m.Subset([]string{"zzz"})
	assert.ErrorIs(t, err, table.ErrColumnNotFound)
}
