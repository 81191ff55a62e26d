package cmd

import (
	"github.com/KaramelBytes/immo-eda/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	chDir    string
	chPie    string
	chFormat string
)

var chartsCmd = &cobra.Command{
	Use:   "charts <file>",
	Short: "Draw the overview charts: rows/columns bar and category pie",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, log, err := setup(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		if cmd.Flags().Changed("dir") {
			opt.ChartsDir = chDir
		}
		if opt.ChartsDir == "" {
			opt.ChartsDir = "charts"
		}
		if chPie != "" {
			opt.PieColumn = chPie
		}
		if chFormat != "" {
			opt.Heatmap.Ext = "." + chFormat
		}
		opt.HeatmapBy = nil
		opt.Overview = true
		opt.OutputDir = ""

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
	rootCmd.AddCommand(chartsCmd)
	f := chartsCmd.Flags()
	f.StringVar(&chDir, "dir", "", "output directory (overrides config charts_dir)")
	f.StringVar(&chPie, "pie", "", "category column for the pie chart (default type)")
	f.StringVar(&chFormat, "format", "", "image format: png|svg|pdf")
}
