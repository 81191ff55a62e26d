// Package clean holds the in-place cleaning steps applied to a raw listings
// table before encoding.
package clean

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/KaramelBytes/immo-eda/internal/table"
	"go.uber.org/zap"
)

// DefaultMissingPercent is the missing ratio at which a column is dropped.
const DefaultMissingPercent = 60

// DefaultRareMinCount is the minimum category count kept by ReplaceRare.
const DefaultRareMinCount = 20

// Keep selects which row of a duplicate group survives.
type Keep int

const (
	KeepFirst Keep = iota
	KeepLast
	// KeepNone removes every row that has a duplicate.
	KeepNone
)

// ParseKeep maps "first", "last" and "none"/"false" to a Keep.
func ParseKeep(s string) (Keep, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first":
		return KeepFirst, nil
	case "last":
		return KeepLast, nil
	case "none", "false":
		return KeepNone, nil
	}
	return KeepFirst, fmt.Errorf("invalid keep %q (use first|last|none)", s)
}

// MissingStat is the missing-value share of one column.
type MissingStat struct {
	Column  string  `json:"column"`
	Missing int     `json:"missing"`
	Percent float64 `json:"percent"`
	Dropped bool    `json:"dropped"`
}

// Cleaner applies cleaning steps to a table in place and logs each one.
type Cleaner struct {
	t   *table.Table
	log *zap.SugaredLogger

	// NumberFormat drives number parsing in CoerceNumeric and ReplaceRare.
	// The zero value auto-detects separators per value.
	NumberFormat table.LoadOptions
}

// New wraps t. A nil logger discards output.
func New(t *table.Table, log *zap.SugaredLogger) *Cleaner {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Cleaner{t: t, log: log}
}

// Table returns the table being cleaned.
func (c *Cleaner) Table() *table.Table { return c.t }

// RemoveColumnsByMissing drops every column whose missing share is at least
// percent, unless it is listed in exceptions, then drops toDrop regardless.
// Stats are computed before anything is dropped. Nothing is dropped if a
// toDrop column does not exist.
func (c *Cleaner) RemoveColumnsByMissing(percent float64, exceptions, toDrop []string) ([]MissingStat, error) {
	keep := make(map[string]bool, len(exceptions))
	for _, e := range exceptions {
		keep[e] = true
	}
	for _, name := range toDrop {
		if !c.t.Has(name) {
			return nil, fmt.Errorf("remove columns: drop %q: %w", name, table.ErrColumnNotFound)
		}
	}

	rows := c.t.Rows()
	stats := make([]MissingStat, 0, c.t.Width())
	drop := make(map[string]bool)
	var order []string
	for _, col := range c.t.Columns() {
		st := MissingStat{Column: col.Name(), Missing: table.MissingCount(col)}
		if rows > 0 {
			st.Percent = float64(st.Missing) * 100 / float64(rows)
			st.Dropped = st.Percent >= percent && !keep[col.Name()]
		}
		if st.Dropped {
			drop[col.Name()] = true
			order = append(order, col.Name())
		}
		stats = append(stats, st)
	}
	for _, name := range toDrop {
		if !drop[name] {
			drop[name] = true
			order = append(order, name)
		}
	}
	for i := range stats {
		stats[i].Dropped = drop[stats[i].Column]
	}
	if err := c.t.Drop(order...); err != nil {
		return stats, fmt.Errorf("remove columns: %w", err)
	}
	c.log.Infow("removed columns by missing ratio", "threshold", percent, "columns", order)
	return stats, nil
}

// RemoveDuplicates removes rows that repeat the values of subset (all
// columns when subset is empty). Missing cells compare equal to each other.
// It returns the number of rows removed.
func (c *Cleaner) RemoveDuplicates(subset []string, keep Keep) (int, error) {
	cols := c.t.Columns()
	if len(subset) > 0 {
		cols = cols[:0:0]
		for _, name := range subset {
			col, ok := c.t.Column(name)
			if !ok {
				return 0, fmt.Errorf("remove duplicates by %q: %w", name, table.ErrColumnNotFound)
			}
			cols = append(cols, col)
		}
	}

	n := c.t.Rows()
	keys := make([]string, n)
	count := make(map[string]int, n)
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.Reset()
		for _, col := range cols {
			if col.IsMissing(i) {
				sb.WriteByte(0)
			} else {
				sb.WriteString(col.Format(i))
			}
			sb.WriteByte(0x1f)
		}
		keys[i] = sb.String()
		count[keys[i]]++
	}

	kept := make([]int, 0, n)
	switch keep {
	case KeepFirst:
		seen := make(map[string]bool, len(count))
		for i, k := range keys {
			if !seen[k] {
				seen[k] = true
				kept = append(kept, i)
			}
		}
	case KeepLast:
		seen := make(map[string]bool, len(count))
		for i := n - 1; i >= 0; i-- {
			if !seen[keys[i]] {
				seen[keys[i]] = true
				kept = append(kept, i)
			}
		}
		sort.Ints(kept)
	case KeepNone:
		for i, k := range keys {
			if count[k] == 1 {
				kept = append(kept, i)
			}
		}
	default:
		return 0, fmt.Errorf("remove duplicates: unknown keep %d", keep)
	}

	removed := n - len(kept)
	if removed > 0 {
		c.t.KeepRows(kept)
	}
	c.log.Infow("removed duplicate rows", "subset", subset, "removed", removed)
	return removed, nil
}

// NormalizeText trims, lowercases and capitalizes every text value that does
// not start with "http". It returns the columns it visited.
func (c *Cleaner) NormalizeText() []string {
	var done []string
	for _, col := range c.t.Columns() {
		txt, ok := col.(*table.Text)
		if !ok {
			continue
		}
		for i, v := range txt.Values {
			if txt.IsMissing(i) || strings.HasPrefix(v, "http") {
				continue
			}
			txt.Values[i] = capitalize(strings.ToLower(strings.TrimSpace(v)))
		}
		done = append(done, col.Name())
	}
	c.log.Infow("normalized text columns", "columns", done)
	return done
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// RemoveByColumnValues removes rows whose value in column is one of values.
// Missing cells never match. It returns the number of rows removed.
func (c *Cleaner) RemoveByColumnValues(column string, values []string) (int, error) {
	col, ok := c.t.Column(column)
	if !ok {
		return 0, fmt.Errorf("remove rows by %q: %w", column, table.ErrColumnNotFound)
	}
	bad := make(map[string]bool, len(values))
	for _, v := range values {
		bad[v] = true
	}
	kept := make([]int, 0, c.t.Rows())
	for i := 0; i < c.t.Rows(); i++ {
		if !col.IsMissing(i) && bad[col.Format(i)] {
			continue
		}
		kept = append(kept, i)
	}
	removed := c.t.Rows() - len(kept)
	if removed > 0 {
		c.t.KeepRows(kept)
	}
	c.log.Infow("removed rows by value", "column", column, "values", values, "removed", removed)
	return removed, nil
}

// CoerceNumeric converts columns to numeric; values that do not parse become
// missing. With no names it converts every text column where most present
// values parse as numbers. It returns the converted columns.
func (c *Cleaner) CoerceNumeric(columns ...string) ([]string, error) {
	auto := len(columns) == 0
	if auto {
		columns = c.t.NamesOfKind(table.KindText)
	}
	var done []string
	for _, name := range columns {
		col, ok := c.t.Column(name)
		if !ok {
			return done, fmt.Errorf("coerce %q: %w", name, table.ErrColumnNotFound)
		}
		if col.Kind() == table.KindNumeric {
			continue
		}
		out, parsed, present := c.toNumeric(col)
		if auto && parsed*2 <= present {
			continue
		}
		if err := c.t.Set(out); err != nil {
			return done, err
		}
		c.log.Debugw("coerced column to numeric", "column", name, "unparsed", present-parsed)
		done = append(done, name)
	}
	c.log.Infow("coerced numeric columns", "columns", done)
	return done, nil
}

func (c *Cleaner) toNumeric(col table.Column) (out *table.Numeric, parsed, present int) {
	out = table.NewNumericMissing(col.Name(), col.Len())
	for i := 0; i < col.Len(); i++ {
		if col.IsMissing(i) {
			continue
		}
		present++
		switch v := col.(type) {
		case *table.Numeric:
			out.Values[i] = v.Values[i]
			parsed++
		case *table.Bool:
			out.Values[i] = boolToFloat(v.Values[i])
			parsed++
		default:
			if x, ok := table.ParseNumber(col.Format(i), c.NumberFormat); ok {
				out.Values[i] = x
				parsed++
			}
		}
	}
	return out, parsed, present
}

// ConvertFlags turns boolean-like columns into numeric 1/0 columns: bool
// columns, and text columns whose only present value is "True". Missing
// stays missing. It returns the converted columns.
func (c *Cleaner) ConvertFlags() []string {
	var done []string
	for _, col := range c.t.Columns() {
		var out *table.Numeric
		switch v := col.(type) {
		case *table.Bool:
			out = table.NewNumericMissing(col.Name(), col.Len())
			for i := range v.Values {
				if v.Valid[i] {
					out.Values[i] = boolToFloat(v.Values[i])
				}
			}
		case *table.Text:
			if !onlyTrue(v) {
				continue
			}
			out = table.NewNumericMissing(col.Name(), col.Len())
			for i := range v.Values {
				if v.Valid[i] {
					out.Values[i] = 1
				}
			}
		default:
			continue
		}
		// Lengths match by construction.
		_ = c.t.Set(out)
		done = append(done, col.Name())
	}
	c.log.Infow("converted flag columns", "columns", done)
	return done
}

func onlyTrue(t *table.Text) bool {
	seen := false
	for i, v := range t.Values {
		if !t.Valid[i] {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(v), "true") {
			return false
		}
		seen = true
	}
	return seen
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// ErrRareReplacement is returned when a replacement value does not fit the
// column kind.
var ErrRareReplacement = errors.New("replacement does not fit column")

// ReplaceRare replaces categories of column seen fewer than minCount times
// with replacement, or with missing when replacement is nil. It returns the
// number of cells changed.
func (c *Cleaner) ReplaceRare(column string, replacement *string, minCount int) (int, error) {
	col, ok := c.t.Column(column)
	if !ok {
		return 0, fmt.Errorf("replace rare %q: %w", column, table.ErrColumnNotFound)
	}
	counts := make(map[string]int)
	for i := 0; i < col.Len(); i++ {
		if !col.IsMissing(i) {
			counts[col.Format(i)]++
		}
	}
	rare := func(i int) bool { return !col.IsMissing(i) && counts[col.Format(i)] < minCount }

	changed := 0
	switch v := col.(type) {
	case *table.Text:
		for i := range v.Values {
			if !rare(i) {
				continue
			}
			if replacement == nil {
				v.SetMissing(i)
			} else {
				v.Set(i, *replacement)
			}
			changed++
		}
	case *table.Numeric:
		repl := math.NaN()
		if replacement != nil {
			x, ok := table.ParseNumber(*replacement, c.NumberFormat)
			if !ok {
				return 0, fmt.Errorf("replace rare %q with %q: %w", column, *replacement, ErrRareReplacement)
			}
			repl = x
		}
		for i := range v.Values {
			if rare(i) {
				v.Values[i] = repl
				changed++
			}
		}
	default:
		return 0, fmt.Errorf("replace rare %q: %w (%s)", column, ErrRareReplacement, col.Kind())
	}
	c.log.Infow("replaced rare values", "column", column, "min_count", minCount, "changed", changed)
	return changed, nil
}
