// Package correlation computes Pearson correlation matrices over the numeric
// columns of a table and selects a reduced, non-redundant feature set.
package correlation

import (
	"errors"
	"fmt"
	"math"

	"github.com/KaramelBytes/immo-eda/internal/table"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// DefaultTarget is the column every other feature is compared against.
const DefaultTarget = "price"

var (
	// ErrNoTarget is returned when the target column is absent.
	ErrNoTarget = errors.New("target column not found")
	// ErrTargetNotNumeric is returned when the target column is not numeric.
	ErrTargetNotNumeric = errors.New("target column is not numeric")
)

// Matrix is a labelled, symmetric correlation matrix. Row and column 0 hold
// the target. Undefined coefficients are NaN.
type Matrix struct {
	names []string
	pos   map[string]int
	data  *mat.SymDense
}

// NewMatrix builds a Matrix from explicit values; names[0] is the target.
// values must be square and symmetric.
func NewMatrix(names []string, values [][]float64) (*Matrix, error) {
	n := len(names)
	if n == 0 {
		return nil, errors.New("new matrix: no columns")
	}
	if len(values) != n {
		return nil, fmt.Errorf("new matrix: %d names but %d rows", n, len(values))
	}
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		if len(values[i]) != n {
			return nil, fmt.Errorf("new matrix: row %d has %d values, want %d", i, len(values[i]), n)
		}
		for j := i; j < n; j++ {
			a, b := values[i][j], values[j][i]
			if a != b && !(math.IsNaN(a) && math.IsNaN(b)) {
				return nil, fmt.Errorf("new matrix: not symmetric at (%s, %s)", names[i], names[j])
			}
			sym.SetSym(i, j, a)
		}
	}
	return newMatrix(names, sym)
}

func newMatrix(names []string, data *mat.SymDense) (*Matrix, error) {
	pos := make(map[string]int, len(names))
	for i, n := range names {
		if _, dup := pos[n]; dup {
			return nil, fmt.Errorf("new matrix: duplicate column %q", n)
		}
		pos[n] = i
	}
	return &Matrix{names: append([]string(nil), names...), pos: pos, data: data}, nil
}

// Compute returns the pairwise Pearson matrix over the numeric columns of t,
// target first and the rest in table order. Each coefficient uses only the
// rows where both columns are present. t is not modified.
func Compute(t *table.Table, target string) (*Matrix, error) {
	if target == "" {
		target = DefaultTarget
	}
	c, ok := t.Column(target)
	if !ok {
		return nil, fmt.Errorf("compute correlation %q: %w", target, ErrNoTarget)
	}
	tc, ok := c.(*table.Numeric)
	if !ok {
		return nil, fmt.Errorf("compute correlation %q: %w (%s)", target, ErrTargetNotNumeric, c.Kind())
	}

	cols := []*table.Numeric{tc}
	names := []string{target}
	for _, col := range t.Columns() {
		n, ok := col.(*table.Numeric)
		if !ok || col.Name() == target {
			continue
		}
		cols = append(cols, n)
		names = append(names, col.Name())
	}

	k := len(cols)
	sym := mat.NewSymDense(k, nil)
	for i := 0; i < k; i++ {
		sym.SetSym(i, i, self(cols[i].Values))
		for j := i + 1; j < k; j++ {
			sym.SetSym(i, j, Pearson(cols[i].Values, cols[j].Values))
		}
	}
	return newMatrix(names, sym)
}

// Pearson returns the correlation of x and y over rows where both are
// present. It is NaN with fewer than two such rows or when either side has
// zero variance there.
func Pearson(x, y []float64) float64 {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	if stat.Variance(xs, nil) == 0 || stat.Variance(ys, nil) == 0 {
		return math.NaN()
	}
	return clamp(stat.Correlation(xs, ys, nil))
}

// self is the diagonal entry: 1 when the column varies, NaN otherwise.
func self(x []float64) float64 {
	present := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	if len(present) < 2 || stat.Variance(present, nil) == 0 {
		return math.NaN()
	}
	return 1
}

func clamp(r float64) float64 {
	switch {
	case math.IsNaN(r):
		return r
	case r > 1:
		return 1
	case r < -1:
		return -1
	}
	return r
}

// Names returns the column labels, target first.
func (m *Matrix) Names() []string { return append([]string(nil), m.names...) }

// Target returns the label of row 0.
func (m *Matrix) Target() string { return m.names[0] }

// Len returns the matrix order.
func (m *Matrix) Len() int { return len(m.names) }

// Value returns entry (i, j).
func (m *Matrix) Value(i, j int) float64 { return m.data.At(i, j) }

// At returns the coefficient between two labelled columns.
func (m *Matrix) At(a, b string) (float64, bool) {
	i, ok := m.pos[a]
	if !ok {
		return math.NaN(), false
	}
	j, ok := m.pos[b]
	if !ok {
		return math.NaN(), false
	}
	return m.data.At(i, j), true
}

// TargetCorrelations returns every non-target column with its correlation to
// the target, in matrix order.
func (m *Matrix) TargetCorrelations() Selection {
	out := make(Selection, 0, len(m.names)-1)
	for j := 1; j < len(m.names); j++ {
		out = append(out, Feature{Name: m.names[j], Corr: m.data.At(0, j)})
	}
	return out
}

// Subset returns the sub-matrix for names, in the given order.
func (m *Matrix) Subset(names []string) (*Matrix, error) {
	idx := make([]int, len(names))
	for k, n := range names {
		i, ok := m.pos[n]
		if !ok {
			return nil, fmt.Errorf("subset %q: %w", n, table.ErrColumnNotFound)
		}
		idx[k] = i
	}
	sym := mat.NewSymDense(len(names), nil)
	for a := range idx {
		for b := a; b < len(idx); b++ {
			sym.SetSym(a, b, m.data.At(idx[a], idx[b]))
		}
	}
	return newMatrix(names, sym)
}
