package report

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/KaramelBytes/immo-eda/internal/clean"
	"github.com/KaramelBytes/immo-eda/internal/correlation"
	"github.com/KaramelBytes/immo-eda/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(t *testing.T) *table.Table {
	t.Helper()
	tab, err := table.FromColumns(
		table.NewNumeric("price", []float64{100, 200, 300, math.NaN()}),
		table.NewText("type", []string{"HOUSE", "APARTMENT", "HOUSE", ""}, []bool{true, true, true, false}),
		table.NewBool("hasGarden", []bool{true, false, true, false}, []bool{true, true, true, true}),
	)
	require.NoError(t, err)
	return tab
}

func TestSummarize(t *testing.T) {
	cols := Summarize(sample(t), DefaultOptions())
	require.Len(t, cols, 3)

	p := cols[0]
	assert.Equal(t, table.KindNumeric, p.Kind)
	assert.Equal(t, 3, p.NonNull)
	assert.Equal(t, 1, p.Missing)
	assert.Equal(t, 100.0, p.Min)
	assert.Equal(t, 300.0, p.Max)
	assert.InDelta(t, 200.0, p.Mean, 1e-9)
	assert.InDelta(t, 100.0, p.Std, 1e-9)
	assert.Empty(t, p.TopValues)

	ty := cols[1]
	assert.Equal(t, 2, ty.Unique)
	require.Len(t, ty.TopValues, 2)
	assert.Equal(t, CategoryCount{Value: "HOUSE", Count: 2}, ty.TopValues[0])
	assert.Equal(t, CategoryCount{Value: "APARTMENT", Count: 1}, ty.TopValues[1])

	g := cols[2]
	assert.Equal(t, 0, g.Missing)
	assert.Equal(t, CategoryCount{Value: "True", Count: 2}, g.TopValues[0])
}

func TestSummarizeLimitsTopValues(t *testing.T) {
	cols := Summarize(sample(t), Options{TopValues: 1})
	assert.Len(t, cols[1].TopValues, 1)
	cols = Summarize(sample(t), Options{})
	assert.Empty(t, cols[1].TopValues)
}

func TestRankedTargetCorrelations(t *testing.T) {
	m, err := correlation.NewMatrix([]string{"price", "a", "b", "c"}, [][]float64{
		{1, 0.2, math.NaN(), -0.7},
		{0.2, 1, 0, 0},
		{math.NaN(), 0, math.NaN(), 0},
		{-0.7, 0, 0, 1},
	})
	require.NoError(t, err)
	got := RankedTargetCorrelations(m, 0)
	require.Equal(t, []string{"c", "a", "b"}, got.Names())
	assert.Len(t, RankedTargetCorrelations(m, 2), 2)
}

func TestMarkdownSections(t *testing.T) {
	r := &Report{
		Name:    "listings.csv",
		Rows:    4,
		Columns: Summarize(sample(t), DefaultOptions()),
		Missing: []clean.MissingStat{
			{Column: "pool", Missing: 4, Percent: 100, Dropped: true},
			{Column: "price", Missing: 1, Percent: 25},
		},
		Removed:   map[string]int{"duplicates": 2},
		Encoded:   map[string][]string{"label": {"epcScore"}},
		Target:    "price",
		TargetCor: correlation.Selection{{Name: "area", Corr: 0.81}, {Name: "x", Corr: math.NaN()}},
		Thres1:    0.1,
		Thres2:    0.3,
		Selection: correlation.Selection{{Name: "area", Corr: 0.81}},
		Outputs:   []string{"charts/heatmap_whole.png"},
		Warnings:  []string{"column pool dropped"},
	}
	md := r.Markdown()
	for _, want := range []string{
		"[DATASET SUMMARY]",
		"File: listings.csv",
		"Rows: 4",
		"Removed by duplicates: 2",
		"[SCHEMA]",
		"- price: numeric (non-null 3, missing 25.0%)",
		"top: HOUSE(2), APARTMENT(1)",
		"[DROPPED COLUMNS]\n- pool (100.0%)",
		"[ENCODING]\n- label: epcScore",
		"[CORRELATIONS WITH PRICE]",
		"- area: r=0.810",
		"- x: undefined",
		"[SELECTED FEATURES] (|r| >= 0.10, redundancy r >= 0.30)\n- area: 0.81",
		"[OUTPUTS]",
		"[NOTES]\n- column pool dropped",
	} {
		assert.Contains(t, md, want)
	}
	assert.NotContains(t, md, "- price (25.0%)")
}

func TestMarkdownEmptySelection(t *testing.T) {
	md := (&Report{Thres1: 0.1, Thres2: 0.3}).Markdown()
	assert.Contains(t, md, "- none")
	assert.NotContains(t, md, "[SCHEMA]")
	assert.NotContains(t, md, "[NOTES]")
}

func TestWriteTables(t *testing.T) {
	var buf bytes.Buffer
	WriteSelection(&buf, correlation.Selection{{Name: "area", Corr: 0.5}, {Name: "b", Corr: math.NaN()}})
	out := buf.String()
	assert.Contains(t, strings.ToUpper(out), "FEATURE")
	assert.Contains(t, out, "0.500")
	assert.Contains(t, out, "n/a")

	buf.Reset()
	WriteSchema(&buf, Summarize(sample(t), DefaultOptions()))
	assert.Contains(t, buf.String(), "hasGarden")
	assert.Contains(t, buf.String(), "25.0")
}
