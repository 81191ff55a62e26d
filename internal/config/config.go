package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/KaramelBytes/immo-eda/internal/chart"
	"github.com/KaramelBytes/immo-eda/internal/clean"
	"github.com/KaramelBytes/immo-eda/internal/lookup"
	"github.com/KaramelBytes/immo-eda/internal/pipeline"
	"github.com/KaramelBytes/immo-eda/internal/utils"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	envPrefix = "IMMO"
	dirName   = ".immo"
)

// Global configuration structure.
type Global struct {
	// Input
	Delimiter   string `mapstructure:"delimiter" yaml:"delimiter"`
	Encoding    string `mapstructure:"encoding" yaml:"encoding"`
	IndexColumn bool   `mapstructure:"index_column" yaml:"index_column"`
	Decimal     string `mapstructure:"decimal" yaml:"decimal"`
	Thousands   string `mapstructure:"thousands" yaml:"thousands"`
	Target      string `mapstructure:"target" yaml:"target"`

	// Cleaning
	MissingPercent float64  `mapstructure:"missing_percent" yaml:"missing_percent"`
	KeepColumns    []string `mapstructure:"keep_columns" yaml:"keep_columns"`
	DropColumns    []string `mapstructure:"drop_columns" yaml:"drop_columns"`
	DedupeKey      []string `mapstructure:"dedupe_key" yaml:"dedupe_key"`
	DedupeKeep     string   `mapstructure:"dedupe_keep" yaml:"dedupe_keep"`
	FilterColumn   string   `mapstructure:"filter_column" yaml:"filter_column"`
	FilterValues   []string `mapstructure:"filter_values" yaml:"filter_values"`
	RareColumns    []string `mapstructure:"rare_columns" yaml:"rare_columns"`
	RareMinCount   int      `mapstructure:"rare_min_count" yaml:"rare_min_count"`

	// Encoding
	OneHotExclude  []string `mapstructure:"one_hot_exclude" yaml:"one_hot_exclude"`
	OneHotExpand   bool     `mapstructure:"one_hot_expand" yaml:"one_hot_expand"`
	TargetColumns  []string `mapstructure:"target_columns" yaml:"target_columns"`
	LabelColumns   []string `mapstructure:"label_columns" yaml:"label_columns"`
	FlagPrefix     string   `mapstructure:"flag_prefix" yaml:"flag_prefix"`
	ProvinceColumn string   `mapstructure:"province_column" yaml:"province_column"`
	RegionColumn   string   `mapstructure:"region_column" yaml:"region_column"`
	// Lookup table overrides; empty uses the built-in tables.
	RegionsFile string `mapstructure:"regions_file" yaml:"regions_file"`
	RanksFile   string `mapstructure:"ranks_file" yaml:"ranks_file"`

	// Feature selection
	Thres1 float64 `mapstructure:"thres1" yaml:"thres1"`
	Thres2 float64 `mapstructure:"thres2" yaml:"thres2"`

	// Output
	OutputDir     string   `mapstructure:"output_dir" yaml:"output_dir"`
	ChartsDir     string   `mapstructure:"charts_dir" yaml:"charts_dir"`
	ChartFormat   string   `mapstructure:"chart_format" yaml:"chart_format"`
	HeatmapBy     []string `mapstructure:"heatmap_by" yaml:"heatmap_by"`
	HeatmapLabels bool     `mapstructure:"heatmap_labels" yaml:"heatmap_labels"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// DefaultPath returns ~/.immo/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, dirName, "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.immo/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	d := pipeline.DefaultOptions()
	v.SetDefault("delimiter", ",")
	v.SetDefault("encoding", "utf-8")
	v.SetDefault("index_column", true)
	v.SetDefault("decimal", ".")
	v.SetDefault("thousands", "")
	v.SetDefault("target", d.Target)

	v.SetDefault("missing_percent", d.Clean.MissingPercent)
	v.SetDefault("keep_columns", []string{})
	v.SetDefault("drop_columns", []string{})
	v.SetDefault("dedupe_key", d.Clean.DedupeKey)
	v.SetDefault("dedupe_keep", "first")
	v.SetDefault("filter_column", "")
	v.SetDefault("filter_values", []string{})
	v.SetDefault("rare_columns", []string{})
	v.SetDefault("rare_min_count", d.Clean.RareMinCount)

	v.SetDefault("one_hot_exclude", d.Encode.OneHotExclude)
	v.SetDefault("one_hot_expand", false)
	v.SetDefault("target_columns", d.Encode.TargetColumns)
	v.SetDefault("label_columns", d.Encode.LabelColumns)
	v.SetDefault("flag_prefix", d.Encode.FlagPrefix)
	v.SetDefault("province_column", d.Encode.ProvinceColumn)
	v.SetDefault("region_column", d.Encode.RegionColumn)
	v.SetDefault("regions_file", "")
	v.SetDefault("ranks_file", "")

	v.SetDefault("thres1", d.Thres1)
	v.SetDefault("thres2", d.Thres2)

	v.SetDefault("output_dir", "output")
	v.SetDefault("charts_dir", "")
	v.SetDefault("chart_format", "png")
	v.SetDefault("heatmap_by", d.HeatmapBy)
	v.SetDefault("heatmap_labels", true)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. A .env file found in the working
// directory or one of its parents is loaded first; variables already set in
// the environment win over it.
func Load(cfgFile string) (*Global, error) {
	if env, err := utils.FindUp("", ".env"); err == nil && env != "" {
		if err := godotenv.Load(env); err != nil {
			return nil, fmt.Errorf("load %s: %w", env, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	setDefaults(v)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, dirName))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// Lists from env arrive as one comma-separated string.
	for _, l := range []*[]string{
		&c.KeepColumns, &c.DropColumns, &c.DedupeKey, &c.FilterValues, &c.RareColumns,
		&c.OneHotExclude, &c.TargetColumns, &c.LabelColumns, &c.HeatmapBy,
	} {
		*l = splitList(*l)
	}
	if c.ChartsDir == "" && c.OutputDir != "" {
		c.ChartsDir = filepath.Join(c.OutputDir, "charts")
	}
	return &c, nil
}

func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// ParseSeparator maps a flag or config value to a rune: "comma", "semicolon",
// "tab", "space", "none" or a single character. Empty means 0.
func ParseSeparator(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "":
		return 0, nil
	case "comma":
		return ',', nil
	case "semicolon":
		return ';', nil
	case "tab", `\t`:
		return '\t', nil
	case "space":
		return ' ', nil
	case "dot", "period":
		return '.', nil
	case "none":
		return 0, nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("invalid separator %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

// PipelineOptions converts c into options for input. Lookup files are read
// here so a bad override fails before any work starts.
func (c *Global) PipelineOptions(input string) (pipeline.Options, error) {
	opt := pipeline.DefaultOptions()
	opt.Input = input
	var err error
	if opt.Load.Delimiter, err = ParseSeparator(c.Delimiter); err != nil {
		return opt, fmt.Errorf("delimiter: %w", err)
	}
	if opt.Load.DecimalSeparator, err = ParseSeparator(c.Decimal); err != nil {
		return opt, fmt.Errorf("decimal: %w", err)
	}
	if opt.Load.ThousandsSeparator, err = ParseSeparator(c.Thousands); err != nil {
		return opt, fmt.Errorf("thousands: %w", err)
	}
	opt.Load.Encoding = c.Encoding
	opt.Load.IndexColumn = c.IndexColumn
	if c.Target != "" {
		opt.Target = c.Target
	}

	keep, err := clean.ParseKeep(c.DedupeKeep)
	if err != nil {
		return opt, err
	}
	opt.Clean = pipeline.CleanOptions{
		MissingPercent: c.MissingPercent,
		KeepColumns:    c.KeepColumns,
		DropColumns:    c.DropColumns,
		DedupeKey:      c.DedupeKey,
		DedupeKeep:     keep,
		FilterColumn:   c.FilterColumn,
		FilterValues:   c.FilterValues,
		RareColumns:    c.RareColumns,
		RareMinCount:   c.RareMinCount,
	}

	if opt.Encode.Regions, err = lookup.LoadRegions(c.RegionsFile); err != nil {
		return opt, err
	}
	if opt.Encode.Ranks, err = lookup.LoadRanks(c.RanksFile); err != nil {
		return opt, err
	}
	opt.Encode.OneHotExclude = c.OneHotExclude
	opt.Encode.OneHotExpand = c.OneHotExpand
	opt.Encode.TargetColumns = c.TargetColumns
	opt.Encode.LabelColumns = c.LabelColumns
	if c.FlagPrefix != "" {
		opt.Encode.FlagPrefix = c.FlagPrefix
	}
	if c.ProvinceColumn != "" {
		opt.Encode.ProvinceColumn = c.ProvinceColumn
	}
	if c.RegionColumn != "" {
		opt.Encode.RegionColumn = c.RegionColumn
	}

	opt.Thres1, opt.Thres2 = c.Thres1, c.Thres2
	opt.OutputDir = c.OutputDir
	opt.ChartsDir = c.ChartsDir
	opt.HeatmapBy = c.HeatmapBy
	opt.Heatmap = chart.DefaultHeatmapOptions()
	opt.Heatmap.Annotate = c.HeatmapLabels
	if f := strings.TrimPrefix(strings.ToLower(c.ChartFormat), "."); f != "" {
		opt.Heatmap.Ext = "." + f
	}
	return opt, nil
}
