package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KaramelBytes/immo-eda/internal/clean"
	cfgpkg "github.com/KaramelBytes/immo-eda/internal/config"
	"github.com/KaramelBytes/immo-eda/internal/logging"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set immo configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := config()
		if err != nil {
			return err
		}
		b, err := yaml.Marshal(c)
		if err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(b))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Long:  "Set a config value and save to disk. List values are comma-separated.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := config()
		if err != nil {
			return err
		}
		if err := setKey(c, args[0], args[1]); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func setKey(c *cfgpkg.Global, key, val string) error {
	switch key {
	case "delimiter", "decimal", "thousands":
		if _, err := cfgpkg.ParseSeparator(val); err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		switch key {
		case "delimiter":
			c.Delimiter = val
		case "decimal":
			c.Decimal = val
		default:
			c.Thousands = val
		}
	case "encoding":
		switch strings.ToLower(val) {
		case "utf-8", "utf8", "latin1", "latin-1", "iso-8859-1", "windows-1252", "cp1252":
			c.Encoding = val
		default:
			return fmt.Errorf("invalid encoding: %s (use utf-8, latin1 or windows-1252)", val)
		}
	case "index_column":
		return setBool(&c.IndexColumn, key, val)
	case "target":
		c.Target = val
	case "missing_percent":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f < 0 || f > 100 {
			return fmt.Errorf("invalid percent for missing_percent: %v", val)
		}
		c.MissingPercent = f
	case "keep_columns":
		c.KeepColumns = splitCSV(val)
	case "drop_columns":
		c.DropColumns = splitCSV(val)
	case "dedupe_key":
		c.DedupeKey = splitCSV(val)
	case "dedupe_keep":
		if _, err := clean.ParseKeep(val); err != nil {
			return err
		}
		c.DedupeKeep = val
	case "filter_column":
		c.FilterColumn = val
	case "filter_values":
		c.FilterValues = splitCSV(val)
	case "rare_columns":
		c.RareColumns = splitCSV(val)
	case "rare_min_count":
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid int for rare_min_count: %v", val)
		}
		c.RareMinCount = i
	case "one_hot_exclude":
		c.OneHotExclude = splitCSV(val)
	case "one_hot_expand":
		return setBool(&c.OneHotExpand, key, val)
	case "target_columns":
		c.TargetColumns = splitCSV(val)
	case "label_columns":
		c.LabelColumns = splitCSV(val)
	case "flag_prefix":
		c.FlagPrefix = val
	case "province_column":
		c.ProvinceColumn = val
	case "region_column":
		c.RegionColumn = val
	case "regions_file":
		c.RegionsFile = val
	case "ranks_file":
		c.RanksFile = val
	case "thres1", "thres2":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid float for %s: %w", key, err)
		}
		if key == "thres1" {
			c.Thres1 = f
		} else {
			c.Thres2 = f
		}
	case "output_dir":
		c.OutputDir = val
	case "charts_dir":
		c.ChartsDir = val
	case "chart_format":
		switch strings.TrimPrefix(strings.ToLower(val), ".") {
		case "png", "svg", "pdf", "jpg", "jpeg", "tif", "tiff", "eps":
			c.ChartFormat = val
		default:
			return fmt.Errorf("invalid chart_format: %s", val)
		}
	case "heatmap_by":
		c.HeatmapBy = splitCSV(val)
	case "heatmap_labels":
		return setBool(&c.HeatmapLabels, key, val)
	case "log_level":
		if _, err := logging.ParseLevel(val); err != nil {
			return err
		}
		c.LogLevel = val
	case "log_format":
		switch val {
		case "console", "json":
			c.LogFormat = val
		default:
			return fmt.Errorf("invalid log_format: %s (use console or json)", val)
		}
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func setBool(dst *bool, key, val string) error {
	b, err := strconv.ParseBool(val)
	if err != nil {
		return fmt.Errorf("invalid bool for %s: %v", key, val)
	}
	*dst = b
	return nil
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
