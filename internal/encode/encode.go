// Package encode turns categorical listing columns into numeric features:
// region derivation, one-hot preparation, target encoding and ordinal label
// encoding.
package encode

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/KaramelBytes/immo-eda/internal/lookup"
	"github.com/KaramelBytes/immo-eda/internal/table"
)

// Column-name suffixes and placeholders written by this package.
const (
	TargetSuffix = "_target_encoding"
	LabelSuffix  = "_label_encoding"
	Unknown      = "unknown"
)

// Defaults for the listing dataset.
var (
	DefaultOneHotExclude = []string{"locality", "epcScore", "floodZoneType", "buildingCondition"}
	DefaultTargetColumns = []string{"postCode"}
	DefaultLabelColumns  = []string{"floodZoneType", "buildingCondition", "epcScore"}
)

// DefaultFlagPrefix selects the boolean-like columns filled by FillFlags.
const DefaultFlagPrefix = "has"

// ErrTargetNotNumeric is returned when target encoding is asked to average a
// non-numeric column.
var ErrTargetNotNumeric = errors.New("target column is not numeric")

// EncodingMap maps a category to the mean target value of its rows. A NaN
// mean means every target value in the group was missing.
type EncodingMap map[string]float64

// DeriveRegion writes regionCol from provinceCol through regions. Missing
// and unmapped provinces get the default region. regionCol is overwritten
// if it exists.
func DeriveRegion(t *table.Table, provinceCol, regionCol string, regions *lookup.Regions) error {
	src, ok := t.Column(provinceCol)
	if !ok {
		return fmt.Errorf("derive region from %q: %w", provinceCol, table.ErrColumnNotFound)
	}
	out := make([]string, t.Rows())
	for i := range out {
		if src.IsMissing(i) {
			out[i] = regions.Default
			continue
		}
		out[i] = regions.RegionOf(src.Format(i))
	}
	return t.Set(table.NewText(regionCol, out, nil))
}

// PrepareOneHot fills missing entries of every text column not in exclude
// with "unknown" and returns the columns it touched. It does not expand
// them into indicator columns; see ExpandOneHot. Excluded names that do not
// exist are ignored.
func PrepareOneHot(t *table.Table, exclude []string) []string {
	skip := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		skip[e] = true
	}
	var done []string
	for _, c := range t.Columns() {
		txt, ok := c.(*table.Text)
		if !ok || skip[c.Name()] {
			continue
		}
		for i := range txt.Values {
			if txt.IsMissing(i) {
				txt.Set(i, Unknown)
			}
		}
		done = append(done, c.Name())
	}
	return done
}

// ExpandOneHot adds a 0/1 numeric column "col_value" per distinct value of
// each named column, values in first-seen order. Rows where the source is
// missing get 0 in every indicator. With dropSource the source columns are
// removed afterwards. It returns the indicator names.
func ExpandOneHot(t *table.Table, columns []string, dropSource bool) ([]string, error) {
	var created []string
	for _, name := range columns {
		src, ok := t.Column(name)
		if !ok {
			return created, fmt.Errorf("one-hot %q: %w", name, table.ErrColumnNotFound)
		}
		var order []string
		ind := make(map[string]*table.Numeric)
		for i := 0; i < t.Rows(); i++ {
			if src.IsMissing(i) {
				continue
			}
			v := src.Format(i)
			if _, seen := ind[v]; !seen {
				order = append(order, v)
				ind[v] = table.NewNumeric(name+"_"+v, make([]float64, t.Rows()))
			}
			ind[v].Values[i] = 1
		}
		for _, v := range order {
			if err := t.Set(ind[v]); err != nil {
				return created, err
			}
			created = append(created, ind[v].Name())
		}
	}
	if dropSource {
		if err := t.Drop(columns...); err != nil {
			return created, err
		}
	}
	return created, nil
}

// TargetEncode writes "col_target_encoding" for each column: the mean of
// target over the rows sharing the row's category. Rows with a missing
// category are missing. Numeric columns such as postCode are grouped by
// their formatted value. The maps are a snapshot of the current table.
func TargetEncode(t *table.Table, columns []string, target string) (map[string]EncodingMap, error) {
	tc, ok := t.Column(target)
	if !ok {
		return nil, fmt.Errorf("target encode %q: %w", target, table.ErrColumnNotFound)
	}
	tv, ok := tc.(*table.Numeric)
	if !ok {
		return nil, fmt.Errorf("target encode %q: %w", target, ErrTargetNotNumeric)
	}
	maps := make(map[string]EncodingMap, len(columns))
	for _, name := range columns {
		src, ok := t.Column(name)
		if !ok {
			return maps, fmt.Errorf("target encode %q: %w", name, table.ErrColumnNotFound)
		}
		sum := make(map[string]float64)
		cnt := make(map[string]int)
		for i := 0; i < t.Rows(); i++ {
			if src.IsMissing(i) {
				continue
			}
			k := src.Format(i)
			if _, seen := cnt[k]; !seen {
				cnt[k] = 0
			}
			if !math.IsNaN(tv.Values[i]) {
				sum[k] += tv.Values[i]
				cnt[k]++
			}
		}
		em := make(EncodingMap, len(cnt))
		for k, n := range cnt {
			if n == 0 {
				em[k] = math.NaN()
				continue
			}
			em[k] = sum[k] / float64(n)
		}
		out := table.NewNumericMissing(name+TargetSuffix, t.Rows())
		for i := 0; i < t.Rows(); i++ {
			if src.IsMissing(i) {
				continue
			}
			out.Values[i] = em[src.Format(i)]
		}
		if err := t.Set(out); err != nil {
			return maps, err
		}
		maps[name] = em
	}
	return maps, nil
}

// LabelEncode ranks each column. Columns with a rank table in ranks get a
// new "col_label_encoding" column; categories the table does not rank, or
// ranks as null, become missing. Other columns are replaced in place by
// ranks 0, 1, 2... in order of first appearance, so the codes depend on row
// order. Missing cells stay missing.
func LabelEncode(t *table.Table, columns []string, ranks *lookup.Ranks) error {
	for _, name := range columns {
		src, ok := t.Column(name)
		if !ok {
			return fmt.Errorf("label encode %q: %w", name, table.ErrColumnNotFound)
		}
		var out *table.Numeric
		if ranks != nil && ranks.Has(name) {
			out = table.NewNumericMissing(name+LabelSuffix, t.Rows())
			for i := 0; i < t.Rows(); i++ {
				if src.IsMissing(i) {
					continue
				}
				if r, ok := ranks.Rank(name, src.Format(i)); ok {
					out.Values[i] = r
				}
			}
		} else {
			out = table.NewNumericMissing(name, t.Rows())
			codes := make(map[string]float64)
			for i := 0; i < t.Rows(); i++ {
				if src.IsMissing(i) {
					continue
				}
				k := src.Format(i)
				code, seen := codes[k]
				if !seen {
					code = float64(len(codes))
					codes[k] = code
				}
				out.Values[i] = code
			}
		}
		if err := t.Set(out); err != nil {
			return err
		}
	}
	return nil
}

// FillFlags sets missing entries to 0 (numeric) or false (bool) in every
// column whose name starts with prefix, and returns those columns. Text
// columns are left alone.
func FillFlags(t *table.Table, prefix string) []string {
	if prefix == "" {
		prefix = DefaultFlagPrefix
	}
	var done []string
	for _, c := range t.Columns() {
		if !strings.HasPrefix(c.Name(), prefix) {
			continue
		}
		switch col := c.(type) {
		case *table.Numeric:
			for i, v := range col.Values {
				if math.IsNaN(v) {
					col.Values[i] = 0
				}
			}
		case *table.Bool:
			for i := range col.Values {
				if !col.Valid[i] {
					col.Set(i, false)
				}
			}
		default:
			continue
		}
		done = append(done, c.Name())
	}
	return done
}
