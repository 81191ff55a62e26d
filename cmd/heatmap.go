package cmd

import (
	"strings"

	"github.com/KaramelBytes/immo-eda/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	hmBy       []string
	hmDir      string
	hmFormat   string
	hmNoLabels bool
	hmClean    bool
)

var heatmapCmd = &cobra.Command{
	Use:   "heatmap <file>",
	Short: "Draw correlation heatmaps for the whole table or per category",
	Long: `Draw lower-triangle correlation heatmaps. --by takes "whole" or column
names; each category value of a column gets its own image and rows with no
value are grouped as Unknown.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, log, err := setup(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		f := cmd.Flags()
		if f.Changed("by") {
			opt.HeatmapBy = hmBy
		}
		if f.Changed("dir") {
			opt.ChartsDir = hmDir
		}
		if hmFormat != "" {
			opt.Heatmap.Ext = "." + strings.TrimPrefix(strings.ToLower(hmFormat), ".")
		}
		if hmNoLabels {
			opt.Heatmap.Annotate = false
		}
		opt.Clean.Enabled = hmClean
		opt.OutputDir = ""
		opt.Overview = false
		if opt.ChartsDir == "" {
			opt.ChartsDir = "charts"
		}

		res, err := pipeline.Charts(cmd.Context(), opt, log)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, w := range res.Report.Warnings {
			printWarning(out, "%s", w)
		}
		for _, p := range res.Outputs {
			printSuccess(out, "Wrote %s", p)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(heatmapCmd)
	f := heatmapCmd.Flags()
	f.StringSliceVar(&hmBy, "by", nil, "whole and/or column names (default whole,type,region)")
	f.StringVar(&hmDir, "dir", "", "output directory (overrides config charts_dir)")
	f.StringVar(&hmFormat, "format", "", "image format: png|svg|pdf")
	f.BoolVar(&hmNoLabels, "no-labels", false, "omit the coefficient in each cell")
	f.BoolVar(&hmClean, "clean", false, "apply the cleaning stage first")
}
