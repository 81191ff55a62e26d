package table

import (
	"errors"
	"fmt"
)

var (
	// ErrColumnNotFound is returned when a named column does not exist.
	ErrColumnNotFound = errors.New("column not found")
	// ErrLengthMismatch is returned when a column does not match the table's row count.
	ErrLengthMismatch = errors.New("column length mismatch")
)

// Table is an ordered set of equally long, positionally aligned columns.
type Table struct {
	// Index holds the row keys read from the first CSV column; nil when the
	// input had no index column.
	Index     []string
	IndexName string

	rows int
	cols []Column
	pos  map[string]int
}

// New returns an empty table with a fixed row count.
func New(rows int) *Table {
	return &Table{rows: rows, pos: make(map[string]int)}
}

// FromColumns builds a table; all columns must share the same length.
func FromColumns(cols ...Column) (*Table, error) {
	rows := 0
	if len(cols) > 0 {
		rows = cols[0].Len()
	}
	t := New(rows)
	for _, c := range cols {
		if err := t.Set(c); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Rows returns the row count.
func (t *Table) Rows() int { return t.rows }

// Width returns the column count.
func (t *Table) Width() int { return len(t.cols) }

// Names returns column names in order.
func (t *Table) Names() []string {
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.Name()
	}
	return out
}

// Columns returns the columns in order. The slice is a copy; the columns are not.
func (t *Table) Columns() []Column {
	out := make([]Column, len(t.cols))
	copy(out, t.cols)
	return out
}

// Column looks up a column by name.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.pos[name]
	if !ok {
		return nil, false
	}
	return t.cols[i], true
}

// Has reports whether the table has a column called name.
func (t *Table) Has(name string) bool {
	_, ok := t.pos[name]
	return ok
}

// Numeric returns the named column if it exists and is numeric.
func (t *Table) Numeric(name string) (*Numeric, bool) {
	c, ok := t.Column(name)
	if !ok {
		return nil, false
	}
	n, ok := c.(*Numeric)
	return n, ok
}

// Text returns the named column if it exists and is text.
func (t *Table) Text(name string) (*Text, bool) {
	c, ok := t.Column(name)
	if !ok {
		return nil, false
	}
	s, ok := c.(*Text)
	return s, ok
}

// NamesOfKind lists column names of one kind in table order.
func (t *Table) NamesOfKind(k Kind) []string {
	var out []string
	for _, c := range t.cols {
		if c.Kind() == k {
			out = append(out, c.Name())
		}
	}
	return out
}

// Set appends c, or replaces the column with the same name in place.
func (t *Table) Set(c Column) error {
	if c.Len() != t.rows {
		return fmt.Errorf("set %q: %w: have %d rows, column has %d", c.Name(), ErrLengthMismatch, t.rows, c.Len())
	}
	if i, ok := t.pos[c.Name()]; ok {
		t.cols[i] = c
		return nil
	}
	t.pos[c.Name()] = len(t.cols)
	t.cols = append(t.cols, c)
	return nil
}

// Rename changes a column's name keeping its position.
func (t *Table) Rename(from, to string) error {
	i, ok := t.pos[from]
	if !ok {
		return fmt.Errorf("rename %q: %w", from, ErrColumnNotFound)
	}
	if from == to {
		return nil
	}
	if _, clash := t.pos[to]; clash {
		return fmt.Errorf("rename %q: column %q already exists", from, to)
	}
	t.cols[i] = t.cols[i].withName(to)
	delete(t.pos, from)
	t.pos[to] = i
	return nil
}

// Drop removes columns. Nothing is removed if any name is unknown.
func (t *Table) Drop(names ...string) error {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		if _, ok := t.pos[n]; !ok {
			return fmt.Errorf("drop %q: %w", n, ErrColumnNotFound)
		}
		drop[n] = true
	}
	if len(drop) == 0 {
		return nil
	}
	kept := t.cols[:0]
	for _, c := range t.cols {
		if !drop[c.Name()] {
			kept = append(kept, c)
		}
	}
	t.cols = kept
	t.reindex()
	return nil
}

// KeepRows restricts the table to the given row positions, in that order.
func (t *Table) KeepRows(rows []int) {
	for i, c := range t.cols {
		t.cols[i] = c.take(rows)
	}
	if t.Index != nil {
		idx := make([]string, len(rows))
		for i, r := range rows {
			idx[i] = t.Index[r]
		}
		t.Index = idx
	}
	t.rows = len(rows)
}

// Subset returns a new table holding the given rows; t is unchanged.
func (t *Table) Subset(rows []int) *Table {
	out := t.Clone()
	out.KeepRows(rows)
	return out
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	all := make([]int, t.rows)
	for i := range all {
		all[i] = i
	}
	out := &Table{rows: t.rows, IndexName: t.IndexName, pos: make(map[string]int, len(t.cols))}
	if t.Index != nil {
		out.Index = append([]string(nil), t.Index...)
	}
	for _, c := range t.cols {
		out.pos[c.Name()] = len(out.cols)
		out.cols = append(out.cols, c.take(all))
	}
	return out
}

// Select returns a new table holding only the named columns, in the given order.
func (t *Table) Select(names ...string) (*Table, error) {
	out := New(t.rows)
	out.Index, out.IndexName = t.Index, t.IndexName
	for _, n := range names {
		c, ok := t.Column(n)
		if !ok {
			return nil, fmt.Errorf("select %q: %w", n, ErrColumnNotFound)
		}
		if err := out.Set(c); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (t *Table) reindex() {
	t.pos = make(map[string]int, len(t.cols))
	for i, c := range t.cols {
		t.pos[c.Name()] = i
	}
}
