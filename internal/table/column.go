package table

import (
	"math"
	"strconv"
)

// Kind names the storage variant of a column.
type Kind string

const (
	KindNumeric Kind = "numeric"
	KindText    Kind = "text"
	KindBool    Kind = "bool"
)

// Column is one of *Numeric, *Text or *Bool. The set is closed: the
// unexported methods keep other packages from adding variants.
type Column interface {
	Name() string
	Kind() Kind
	Len() int
	IsMissing(i int) bool
	// Format renders row i the way it is written to CSV. Missing cells render
	// as the empty string.
	Format(i int) string

	take(rows []int) Column
	withName(name string) Column
}

// Numeric stores float64 values; NaN marks a missing cell.
type Numeric struct {
	name   string
	Values []float64
}

// NewNumeric wraps values without copying them.
func NewNumeric(name string, values []float64) *Numeric {
	return &Numeric{name: name, Values: values}
}

// NewNumericMissing returns a column of n missing values.
func NewNumericMissing(name string, n int) *Numeric {
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = math.NaN()
	}
	return &Numeric{name: name, Values: vals}
}

func (c *Numeric) Name() string { return c.name }
func (c *Numeric) Kind() Kind { return KindNumeric }
func (c *Numeric) Len() int { return len(c.Values) }
func (c *Numeric) IsMissing(i int) bool { return math.IsNaN(c.Values[i]) }
func (c *Numeric) SetMissing(i int) { c.Values[i] = math.NaN() }
func (c *Numeric) Set(i int, v float64) { c.Values[i] = v }
func (c *Numeric) withName(n string) Column { return &Numeric{name: n, Values: c.Values} }

func (c *Numeric) Format(i int) string {
	v := c.Values[i]
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Present returns the non-missing values in row order.
func (c *Numeric) Present() []float64 {
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func (c *Numeric) take(rows []int) Column {
	vals := make([]float64, len(rows))
	for i, r := range rows {
		vals[i] = c.Values[r]
	}
	return &Numeric{name: c.name, Values: vals}
}

// Text stores strings with a validity mask.
type Text struct {
	name   string
	Values []string
	Valid  []bool
}

// NewText wraps values. A nil valid slice marks every value present.
func NewText(name string, values []string, valid []bool) *Text {
	if valid == nil {
		valid = make([]bool, len(values))
		for i := range valid {
			valid[i] = true
		}
	}
	return &Text{name: name, Values: values, Valid: valid}
}

func (c *Text) Name() string { return c.name }
func (c *Text) Kind() Kind { return KindText }
func (c *Text) Len() int { return len(c.Values) }
func (c *Text) IsMissing(i int) bool { return !c.Valid[i] }
func (c *Text) withName(n string) Column {
	return &Text{name: n, Values: c.Values, Valid: c.Valid}
}

func (c *Text) Set(i int, v string) {
	c.Values[i] = v
	c.Valid[i] = true
}

func (c *Text) SetMissing(i int) {
	c.Values[i] = ""
	c.Valid[i] = false
}

func (c *Text) Format(i int) string {
	if !c.Valid[i] {
		return ""
	}
	return c.Values[i]
}

func (c *Text) take(rows []int) Column {
	vals := make([]string, len(rows))
	valid := make([]bool, len(rows))
	for i, r := range rows {
		vals[i] = c.Values[r]
		valid[i] = c.Valid[r]
	}
	return &Text{name: c.name, Values: vals, Valid: valid}
}

// Bool is a nullable boolean column.
type Bool struct {
	name   string
	Values []bool
	Valid  []bool
}

// NewBool wraps values. A nil valid slice marks every value present.
func NewBool(name string, values []bool, valid []bool) *Bool {
	if valid == nil {
		valid = make([]bool, len(values))
		for i := range valid {
			valid[i] = true
		}
	}
	return &Bool{name: name, Values: values, Valid: valid}
}

func (c *Bool) Name() string { return c.name }
func (c *Bool) Kind() Kind { return KindBool }
func (c *Bool) Len() int { return len(c.Values) }
func (c *Bool) IsMissing(i int) bool { return !c.Valid[i] }
func (c *Bool) withName(n string) Column {
	return &Bool{name: n, Values: c.Values, Valid: c.Valid}
}

func (c *Bool) Set(i int, v bool) {
	c.Values[i] = v
	c.Valid[i] = true
}

func (c *Bool) Format(i int) string {
	if !c.Valid[i] {
		return ""
	}
	if c.Values[i] {
		return "True"
	}
	return "False"
}

func (c *Bool) take(rows []int) Column {
	vals := make([]bool, len(rows))
	valid := make([]bool, len(rows))
	for i, r := range rows {
		vals[i] = c.Values[r]
		valid[i] = c.Valid[r]
	}
	return &Bool{name: c.name, Values: vals, Valid: valid}
}

// MissingCount counts missing cells in c.
func MissingCount(c Column) int {
	n := 0
	for i := 0; i < c.Len(); i++ {
		if c.IsMissing(i) {
			n++
		}
	}
	return n
}
