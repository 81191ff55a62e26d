// Package lookup holds the named, versioned lookup tables that carry domain
// knowledge for encoding: province to region grouping and ordinal ranks for
// label encoding. The defaults are embedded; a YAML file can replace them.
package lookup

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed tables/*.yaml
var embedded embed.FS

// RegionGroup lists the provinces belonging to one region.
type RegionGroup struct {
	Name      string   `yaml:"name"`
	Provinces []string `yaml:"provinces"`
}

// Regions maps provinces to regions. Lookups ignore case and surrounding
// space; unmapped provinces resolve to Default.
type Regions struct {
	Version int           `yaml:"version"`
	Default string        `yaml:"default"`
	Groups  []RegionGroup `yaml:"regions"`

	index map[string]string
}

// RegionOf returns the region for province, or r.Default.
func (r *Regions) RegionOf(province string) string {
	if reg, ok := r.index[fold(province)]; ok {
		return reg
	}
	return r.Default
}

// Names returns the region names, default last unless already listed.
func (r *Regions) Names() []string {
	out := make([]string, 0, len(r.Groups)+1)
	seen := map[string]bool{}
	for _, g := range r.Groups {
		if !seen[g.Name] {
			out = append(out, g.Name)
			seen[g.Name] = true
		}
	}
	if r.Default != "" && !seen[r.Default] {
		out = append(out, r.Default)
	}
	return out
}

func (r *Regions) build() error {
	if strings.TrimSpace(r.Default) == "" {
		return fmt.Errorf("regions v%d: default region is required", r.Version)
	}
	r.index = make(map[string]string)
	for _, g := range r.Groups {
		if g.Name == "" {
			return fmt.Errorf("regions v%d: region without name", r.Version)
		}
		for _, p := range g.Provinces {
			key := fold(p)
			if prev, dup := r.index[key]; dup && prev != g.Name {
				return fmt.Errorf("regions v%d: province %q listed under %s and %s", r.Version, p, prev, g.Name)
			}
			r.index[key] = g.Name
		}
	}
	return nil
}

// Ranks holds per-column ordinal rank tables. A nil rank marks a category
// that encodes to missing on purpose.
type Ranks struct {
	Version int                            `yaml:"version"`
	Columns map[string]map[string]*float64 `yaml:"columns"`

	index map[string]map[string]*float64
}

// Has reports whether a rank table exists for column.
func (r *Ranks) Has(column string) bool {
	_, ok := r.index[column]
	return ok
}

// Rank returns the rank of category in column's table. ok is false when the
// category is unmapped or mapped to null.
func (r *Ranks) Rank(column, category string) (rank float64, ok bool) {
	tbl, found := r.index[column]
	if !found {
		return 0, false
	}
	v, found := tbl[fold(category)]
	if !found || v == nil {
		return 0, false
	}
	return *v, true
}

// ColumnNames lists the columns with a rank table.
func (r *Ranks) ColumnNames() []string {
	out := make([]string, 0, len(r.index))
	for c := range r.index {
		out = append(out, c)
	}
	return out
}

func (r *Ranks) build() error {
	r.index = make(map[string]map[string]*float64, len(r.Columns))
	for col, tbl := range r.Columns {
		idx := make(map[string]*float64, len(tbl))
		for cat, v := range tbl {
			key := fold(cat)
			if _, dup := idx[key]; dup {
				return fmt.Errorf("ranks v%d: %s: category %q listed twice", r.Version, col, cat)
			}
			idx[key] = v
		}
		r.index[col] = idx
	}
	return nil
}

// ParseRegions decodes a regions table from YAML.
func ParseRegions(data []byte) (*Regions, error) {
	var r Regions
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse regions: %w", err)
	}
	if err := r.build(); err != nil {
		return nil, err
	}
	return &r, nil
}

// ParseRanks decodes rank tables from YAML.
func ParseRanks(data []byte) (*Ranks, error) {
	var r Ranks
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse ranks: %w", err)
	}
	if err := r.build(); err != nil {
		return nil, err
	}
	return &r, nil
}

// DefaultRegions returns the embedded Belgian province grouping.
func DefaultRegions() (*Regions, error) {
	b, err := embedded.ReadFile("tables/regions.yaml")
	if err != nil {
		return nil, err
	}
	return ParseRegions(b)
}

// DefaultRanks returns the embedded rank tables.
func DefaultRanks() (*Ranks, error) {
	b, err := embedded.ReadFile("tables/ranks.yaml")
	if err != nil {
		return nil, err
	}
	return ParseRanks(b)
}

// LoadRegions reads a regions table from path, or the embedded one when path
// is empty.
func LoadRegions(path string) (*Regions, error) {
	if path == "" {
		return DefaultRegions()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read regions: %w", err)
	}
	return ParseRegions(b)
}

// LoadRanks reads rank tables from path, or the embedded ones when path is
// empty.
func LoadRanks(path string) (*Ranks, error) {
	if path == "" {
		return DefaultRanks()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ranks: %w", err)
	}
	return ParseRanks(b)
}

// fold normalizes keys so cleaned ("Antwerp", "To_restore") and raw
// ("ANTWERP", "TO_RESTORE") spellings match.
func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
