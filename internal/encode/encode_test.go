package encode

import (
	"math"
	"testing"

	"github.com/KaramelBytes/immo-eda/internal/lookup"
	"github.com/KaramelBytes/immo-eda/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var nan = math.NaN()

func TestDeriveRegion(t *testing.T) {
	regions, err := lookup.DefaultRegions()
	require.NoError(t, err)
	tab, err := table.FromColumns(
		table.NewText("province", []string{"Antwerp", "Namur", "Atlantis", "", "Brussels"},
			[]bool{true, true, true, false, true}),
	)
	require.NoError(t, err)

	require.NoError(t, DeriveRegion(tab, "province", "region", regions))
	region, ok := tab.Text("region")
	require.True(t, ok)
	assert.Equal(t, []string{"Flanders", "Walloon", "Brussels", "Brussels", "Brussels"}, region.Values)
	assert.Equal(t, 0, table.MissingCount(region))

	err = DeriveRegion(tab, "county", "region", regions)
	assert.ErrorIs(t, err, table.ErrColumnNotFound)
}

func TestPrepareOneHot(t *testing.T) {
	tab, err := table.FromColumns(
		table.NewText("type", []string{"House", ""}, []bool{true, false}),
		table.NewText("locality", []string{"", "Gent"}, []bool{false, true}),
		table.NewNumeric("price", []float64{1, nan}),
	)
	require.NoError(t, err)

	done := PrepareOneHot(tab, []string{"locality", "epcScore"})
	assert.Equal(t, []string{"type"}, done)
	typ, _ := tab.Text("type")
	assert.Equal(t, "unknown", typ.Format(1))
	loc, _ := tab.Text("locality")
	assert.True(t, loc.IsMissing(0), "excluded column untouched")
	price, _ := tab.Numeric("price")
	assert.True(t, price.IsMissing(1), "numeric column untouched")
	assert.Equal(t, 3, tab.Width(), "no indicator columns added")
}

func TestExpandOneHot(t *testing.T) {
	tab, err := table.FromColumns(
		table.NewText("type", []string{"House", "Apartment", "", "House"}, []bool{true, true, false, true}),
	)
	require.NoError(t, err)
	created, err := ExpandOneHot(tab, []string{"type"}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"type_House", "type_Apartment"}, created)
	assert.Equal(t, []string{"type_House", "type_Apartment"}, tab.Names())
	house, _ := tab.Numeric("type_House")
	assert.Equal(t, []float64{1, 0, 0, 1}, house.Values)

	_, err = ExpandOneHot(tab, []string{"nope"}, false)
	assert.ErrorIs(t, err, table.ErrColumnNotFound)
}

func TestTargetEncode(t *testing.T) {
	tab, err := table.FromColumns(
		table.NewText("cat", []string{"X", "X", "Y", "", "Z"}, []bool{true, true, true, false, true}),
		table.NewNumeric("postCode", []float64{1000, 1000, 9000, 9000, nan}),
		table.NewNumeric("price", []float64{100, 200, 300, 400, nan}),
	)
	require.NoError(t, err)

	maps, err := TargetEncode(tab, []string{"cat", "postCode"}, "price")
	require.NoError(t, err)

	assert.Equal(t, 150.0, maps["cat"]["X"])
	assert.Equal(t, 300.0, maps["cat"]["Y"])
	assert.True(t, math.IsNaN(maps["cat"]["Z"]), "all-missing group")

	enc, ok := tab.Numeric("cat" + TargetSuffix)
	require.True(t, ok)
	assert.Equal(t, 150.0, enc.Values[0])
	assert.Equal(t, 150.0, enc.Values[1])
	assert.Equal(t, 300.0, enc.Values[2])
	assert.True(t, enc.IsMissing(3), "missing category")
	assert.True(t, enc.IsMissing(4), "group with no target values")

	pc, _ := tab.Numeric("postCode" + TargetSuffix)
	assert.Equal(t, 150.0, pc.Values[0])
	assert.Equal(t, 350.0, pc.Values[3])
	assert.Equal(t, 350.0, maps["postCode"]["9000"])
}

func TestTargetEncodeErrors(t *testing.T) {
	tab, err := table.FromColumns(
		table.NewText("cat", []string{"X"}, nil),
		table.NewText("price", []string{"cheap"}, nil),
	)
	require.NoError(t, err)
	_, err = TargetEncode(tab, []string{"cat"}, "price")
	assert.ErrorIs(t, err, ErrTargetNotNumeric)
	_, err = TargetEncode(tab, []string{"cat"}, "rent")
	assert.ErrorIs(t, err, table.ErrColumnNotFound)
}

func TestLabelEncodeWithRanks(t *testing.T) {
	ranks, err := lookup.DefaultRanks()
	require.NoError(t, err)
	tab, err := table.FromColumns(
		table.NewText("epcScore", []string{"A++", "G", "G_C", "Q", ""}, []bool{true, true, true, true, false}),
		table.NewText("buildingCondition", []string{"As_new", "Good", "To_restore", "Good", "Good"}, nil),
	)
	require.NoError(t, err)

	require.NoError(t, LabelEncode(tab, []string{"epcScore", "buildingCondition"}, ranks))
	epc, ok := tab.Numeric("epcScore" + LabelSuffix)
	require.True(t, ok)
	assert.Equal(t, 8.0, epc.Values[0])
	assert.Equal(t, 0.0, epc.Values[1])
	assert.True(t, epc.IsMissing(2), "composite score")
	assert.True(t, epc.IsMissing(3), "unmapped score")
	assert.True(t, epc.IsMissing(4))

	bc, _ := tab.Numeric("buildingCondition" + LabelSuffix)
	assert.Equal(t, []float64{5, 3, 0, 3, 3}, bc.Values)

	src, ok := tab.Text("epcScore")
	require.True(t, ok, "source column kept")
	assert.Equal(t, "A++", src.Values[0])
}

func TestLabelEncodeFirstAppearance(t *testing.T) {
	tab, err := table.FromColumns(
		table.NewText("kitchen", []string{"Basic", "Equipped", "", "Basic", "Luxury"},
			[]bool{true, true, false, true, true}),
	)
	require.NoError(t, err)
	require.NoError(t, LabelEncode(tab, []string{"kitchen"}, nil))

	k, ok := tab.Numeric("kitchen")
	require.True(t, ok, "replaced in place by a numeric column")
	assert.Equal(t, 0.0, k.Values[0])
	assert.Equal(t, 1.0, k.Values[1])
	assert.True(t, k.IsMissing(2))
	assert.Equal(t, 0.0, k.Values[3])
	assert.Equal(t, 2.0, k.Values[4])
	assert.Equal(t, []string{"kitchen"}, tab.Names())

	assert.ErrorIs(t, LabelEncode(tab, []string{"nope"}, nil), table.ErrColumnNotFound)
}

func TestFillFlags(t *testing.T) {
	tab, err := table.FromColumns(
		table.NewNumeric("hasGarden", []float64{1, nan}),
		table.NewBool("hasLift", []bool{true, false}, []bool{true, false}),
		table.NewText("hasNote", []string{"", "x"}, []bool{false, true}),
		table.NewNumeric("gardenArea", []float64{nan, 3}),
	)
	require.NoError(t, err)

	done := FillFlags(tab, "")
	assert.Equal(t, []string{"hasGarden", "hasLift"}, done)
	g, _ := tab.Numeric("hasGarden")
	assert.Equal(t, []float64{1, 0}, g.Values)
	lift, _ := tab.Column("hasLift")
	assert.Equal(t, "False", lift.Format(1))
	note, _ := tab.Text("hasNote")
	assert.True(t, note.IsMissing(0))
	area, _ := tab.Numeric("gardenArea")
	assert.True(t, area.IsMissing(0))
}
