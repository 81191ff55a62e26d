package cmd

import (
	"os"

	"github.com/KaramelBytes/immo-eda/internal/pipeline"
	"github.com/KaramelBytes/immo-eda/internal/report"
	"github.com/spf13/cobra"
)

var (
	runOutputDir string
	runChartsDir string
	runClean     bool
	runCleaned   string
	runThres1    float64
	runThres2    float64
	runBy        []string
	runExpand    bool
	runOverview  bool
	runNoCharts  bool
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Run the full analysis: clean, heatmaps, encode, correlate and select",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, log, err := setup(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		f := cmd.Flags()
		if f.Changed("output") {
			opt.OutputDir = runOutputDir
		}
		if f.Changed("charts") {
			opt.ChartsDir = runChartsDir
		}
		if runNoCharts {
			opt.ChartsDir = ""
		}
		opt.Clean.Enabled = runClean || runCleaned != ""
		opt.CleanedCSV = runCleaned
		if f.Changed("thres1") {
			opt.Thres1 = runThres1
		}
		if f.Changed("thres2") {
			opt.Thres2 = runThres2
		}
		if f.Changed("by") {
			opt.HeatmapBy = runBy
		}
		if runExpand {
			opt.Encode.OneHotExpand = true
		}
		opt.Overview = runOverview

		res, err := pipeline.Run(cmd.Context(), opt, log)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printInfo(out, "Selected features (|r| >= %.2f, redundancy r >= %.2f):", opt.Thres1, opt.Thres2)
		report.WriteSelection(out, res.Selection)
		for _, w := range res.Report.Warnings {
			printWarning(os.Stderr, "%s", w)
		}
		for _, p := range res.Outputs {
			printSuccess(out, "Wrote %s", p)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	f := runCmd.Flags()
	f.StringVarP(&runOutputDir, "output", "o", "", "directory for report.md and run.json (overrides config)")
	f.StringVar(&runChartsDir, "charts", "", "directory for images (overrides config)")
	f.BoolVar(&runNoCharts, "no-charts", false, "skip all images")
	f.BoolVar(&runClean, "clean", false, "apply the cleaning stage before encoding")
	f.StringVar(&runCleaned, "cleaned", "", "also write the cleaned table to this CSV (implies --clean)")
	f.Float64Var(&runThres1, "thres1", 0.1, "minimum |r| with the target")
	f.Float64Var(&runThres2, "thres2", 0.3, "pairwise r at which the weaker feature is dropped")
	f.StringSliceVar(&runBy, "by", nil, "heatmap groupings: whole and/or column names")
	f.BoolVar(&runExpand, "expand", false, "expand prepared text columns into one-hot indicators")
	f.BoolVar(&runOverview, "overview", false, "also draw the rows/columns bar and type pie")
}
