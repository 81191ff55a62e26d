package lookup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegions(t *testing.T) {
	r, err := DefaultRegions()
	require.NoError(t, err)
	assert.Equal(t, 1, r.Version)

	cases := map[string]string{
		"Antwerp":         "Flanders",
		"West flanders":   "Flanders",
		"FLEMISH BRABANT": "Flanders",
		"Namur":           "Walloon",
		"liège":           "Walloon",
		" Luxembourg ":    "Walloon",
		"Brussels":        "Brussels",
		"Atlantis":        "Brussels",
		"":                "Brussels",
	}
	for in, want := range cases {
		assert.Equal(t, want, r.RegionOf(in), "province %q", in)
	}
	assert.Equal(t, []string{"Flanders", "Walloon", "Brussels"}, r.Names())
}

func TestDefaultRanks(t *testing.T) {
	r, err := DefaultRanks()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"floodZoneType", "buildingCondition", "epcScore"}, r.ColumnNames())

	v, ok := r.Rank("epcScore", "A++")
	require.True(t, ok)
	assert.Equal(t, 8.0, v)

	v, ok = r.Rank("buildingCondition", "To_restore")
	require.True(t, ok)
	assert.Equal(t, 0.0, v)

	v, ok = r.Rank("floodZoneType", "NON_FLOOD_ZONE")
	require.True(t, ok)
	assert.Equal(t, 8.0, v)

	_, ok = r.Rank("epcScore", "G_C")
	assert.False(t, ok, "composite scores map to missing")
	_, ok = r.Rank("epcScore", "Z")
	assert.False(t, ok, "unmapped scores map to missing")
	_, ok = r.Rank("postCode", "1000")
	assert.False(t, ok)
	assert.False(t, r.Has("postCode"))
}

func TestParseRegionsRejectsBadTables(t *testing.T) {
	_, err := ParseRegions([]byte("version: 2\nregions: []\n"))
	assert.Error(t, err, "missing default")

	_, err = ParseRegions([]byte(`version: 2
default: X
regions:
  - name: A
    provinces: [p]
  - name: B
    provinces: [P]
`))
	assert.ErrorContains(t, err, "listed under")

	_, err = ParseRegions([]byte("regions: {"))
	assert.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ranks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`version: 3
columns:
  kitchen:
    basic: 0
    equipped: 1
    unknown: null
`), 0o644))
	r, err := LoadRanks(path)
	require.NoError(t, err)
	assert.Equal(t, 3, r.Version)
	v, ok := r.Rank("kitchen", "Equipped")
	assert.True(t, ok)
	assert.Equal(t, 1.0, v)
	_, ok = r.Rank("kitchen", "unknown")
	assert.False(t, ok)

	_, err = LoadRanks(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	def, err := LoadRegions("")
	require.NoError(t, err)
	assert.Equal(t, "Brussels", def.Default)
}
