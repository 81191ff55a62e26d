package cmd

import (
	"fmt"

	"github.com/KaramelBytes/immo-eda/internal/pipeline"
	"github.com/KaramelBytes/immo-eda/internal/report"
	"github.com/KaramelBytes/immo-eda/internal/utils"
	"github.com/spf13/cobra"
)

var (
	corThres1 float64
	corThres2 float64
	corAll    bool
	corClean  bool
	corOutput string
)

var correlateCmd = &cobra.Command{
	Use:   "correlate <file>",
	Short: "Encode, correlate with the target and print the selected features",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, log, err := setup(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		f := cmd.Flags()
		if f.Changed("thres1") {
			opt.Thres1 = corThres1
		}
		if f.Changed("thres2") {
			opt.Thres2 = corThres2
		}
		opt.Clean.Enabled = corClean
		opt.OutputDir = ""
		opt.ChartsDir = ""

		res, err := pipeline.Run(cmd.Context(), opt, log)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if corAll {
			printInfo(out, "Correlation with %s:", opt.Target)
			report.WriteSelection(out, report.RankedTargetCorrelations(res.Matrix, 0))
		}
		printInfo(out, "Selected features (|r| >= %.2f, redundancy r >= %.2f):", opt.Thres1, opt.Thres2)
		report.WriteSelection(out, res.Selection)

		if corOutput != "" {
			if err := utils.SafeWriteFile(corOutput, []byte(res.Report.Markdown())); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			printSuccess(out, "Wrote report to %s", corOutput)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(correlateCmd)
	f := correlateCmd.Flags()
	f.Float64Var(&corThres1, "thres1", 0.1, "minimum |r| with the target")
	f.Float64Var(&corThres2, "thres2", 0.3, "pairwise r at which the weaker feature is dropped")
	f.BoolVar(&corAll, "all", false, "also print every feature's correlation with the target")
	f.BoolVar(&corClean, "clean", false, "apply the cleaning stage first")
	f.StringVarP(&corOutput, "output", "o", "", "write the Markdown report to this file")
}
