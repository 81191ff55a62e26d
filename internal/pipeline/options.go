package pipeline

import (
	"github.com/KaramelBytes/immo-eda/internal/chart"
	"github.com/KaramelBytes/immo-eda/internal/clean"
	"github.com/KaramelBytes/immo-eda/internal/correlation"
	"github.com/KaramelBytes/immo-eda/internal/encode"
	"github.com/KaramelBytes/immo-eda/internal/lookup"
	"github.com/KaramelBytes/immo-eda/internal/table"
)

// Options describes one run. Start from DefaultOptions.
type Options struct {
	Input  string
	Load   table.LoadOptions
	// Target is the numeric column features are correlated with.
	Target string

	Clean      CleanOptions
	// CleanedCSV, when set, receives the cleaned table before encoding.
	CleanedCSV string

	Encode EncodeOptions

	Thres1 float64
	Thres2 float64

	// OutputDir receives report.md and run.json. Empty disables both.
	OutputDir string
	// ChartsDir receives all images. Empty disables charts.
	ChartsDir string
	// HeatmapBy lists "whole" and/or column names, one heatmap set each.
	HeatmapBy []string
	Heatmap   chart.HeatmapOptions
	// Overview adds the rows/columns bar and the type distribution pie.
	Overview  bool
	// PieColumn is the category column drawn by the overview pie.
	PieColumn string
}

// CleanOptions configures the optional cleaning stage.
type CleanOptions struct {
	Enabled         bool
	MissingPercent  float64
	KeepColumns     []string
	DropColumns     []string
	// DedupeKey empty compares whole rows.
	DedupeKey       []string
	DedupeKeep      clean.Keep
	FilterColumn    string
	FilterValues    []string
	RareColumns     []string
	RareMinCount    int
	// RareReplacement nil means missing.
	RareReplacement *string
}

// EncodeOptions configures region derivation and categorical encoding.
type EncodeOptions struct {
	ProvinceColumn string
	RegionColumn   string
	Regions        *lookup.Regions
	Ranks          *lookup.Ranks

	OneHotExclude []string
	// OneHotExpand replaces prepared text columns by indicator columns.
	OneHotExpand  bool
	TargetColumns []string
	LabelColumns  []string
	FlagPrefix    string
}

// DefaultOptions returns the settings of the reference analysis: cleaned
// listings in, price as target, heatmaps for the whole set, by type and by
// region.
func DefaultOptions() Options {
	return Options{
		Load:   table.DefaultLoadOptions(),
		Target: correlation.DefaultTarget,
		Clean: CleanOptions{
			MissingPercent: clean.DefaultMissingPercent,
			DedupeKey:      []string{"id"},
			RareMinCount:   clean.DefaultRareMinCount,
		},
		Encode: EncodeOptions{
			ProvinceColumn: "province",
			RegionColumn:   "region",
			OneHotExclude:  encode.DefaultOneHotExclude,
			TargetColumns:  encode.DefaultTargetColumns,
			LabelColumns:   encode.DefaultLabelColumns,
			FlagPrefix:     encode.DefaultFlagPrefix,
		},
		Thres1:    correlation.DefaultThres1,
		Thres2:    correlation.DefaultThres2,
		HeatmapBy: []string{chart.Whole, "type", "region"},
		Heatmap:   chart.DefaultHeatmapOptions(),
		PieColumn: "type",
	}
}
