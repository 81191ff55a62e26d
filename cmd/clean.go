package cmd

import (
	"errors"

	"github.com/KaramelBytes/immo-eda/internal/clean"
	"github.com/KaramelBytes/immo-eda/internal/pipeline"
	"github.com/KaramelBytes/immo-eda/internal/report"
	"github.com/spf13/cobra"
)

var (
	clnOutput         string
	clnMissingPercent float64
	clnKeep           []string
	clnDrop           []string
	clnDedupe         []string
	clnDedupeKeep     string
	clnRare           []string
	clnRareMin        int
	clnSchema         bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean <file>",
	Short: "Clean a listings file and write the result as CSV",
	Long: `Clean a listings file and write the result as CSV. The row index is not
written, so pass --no-index when reading the cleaned file back.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if clnOutput == "" {
			return errors.New("--output is required")
		}
		opt, log, err := setup(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		f := cmd.Flags()
		opt.CleanedCSV = clnOutput
		opt.OutputDir = ""
		if f.Changed("missing") {
			opt.Clean.MissingPercent = clnMissingPercent
		}
		if f.Changed("keep") {
			opt.Clean.KeepColumns = clnKeep
		}
		if f.Changed("drop") {
			opt.Clean.DropColumns = clnDrop
		}
		if f.Changed("dedupe") {
			opt.Clean.DedupeKey = clnDedupe
		}
		if f.Changed("dedupe-keep") {
			keep, err := clean.ParseKeep(clnDedupeKeep)
			if err != nil {
				return err
			}
			opt.Clean.DedupeKeep = keep
		}
		if f.Changed("rare") {
			opt.Clean.RareColumns = clnRare
		}
		if f.Changed("rare-min") {
			opt.Clean.RareMinCount = clnRareMin
		}

		res, err := pipeline.Clean(cmd.Context(), opt, log)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if clnSchema {
			report.WriteSchema(out, report.Summarize(res.Cleaned, report.DefaultOptions()))
		}
		for _, m := range res.Report.Missing {
			if m.Dropped {
				printWarning(out, "Dropped %s (%.1f%% missing)", m.Column, m.Percent)
			}
		}
		printSuccess(out, "Wrote %d rows x %d columns to %s", res.Cleaned.Rows(), res.Cleaned.Width(), clnOutput)
		printInfo(out, "No index column written; read it back with --no-index")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	f := cleanCmd.Flags()
	f.StringVarP(&clnOutput, "output", "o", "", "cleaned CSV path (required)")
	f.Float64Var(&clnMissingPercent, "missing", 60, "drop columns with at least this percent missing")
	f.StringSliceVar(&clnKeep, "keep", nil, "columns never dropped for missing values")
	f.StringSliceVar(&clnDrop, "drop", nil, "columns always dropped")
	f.StringSliceVar(&clnDedupe, "dedupe", nil, "duplicate key columns (default id)")
	f.StringVar(&clnDedupeKeep, "dedupe-keep", "first", "which duplicate survives: first|last|none")
	f.StringSliceVar(&clnRare, "rare", nil, "columns whose rare categories become missing")
	f.IntVar(&clnRareMin, "rare-min", 20, "minimum category count kept by --rare")
	f.BoolVar(&clnSchema, "schema", false, "print the cleaned schema")
}
