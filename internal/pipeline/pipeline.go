// Package pipeline runs the listings analysis end to end: load, clean,
// heatmaps, encoding, correlation and feature selection, then writes a
// report and a run manifest.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/immo-eda/internal/chart"
	"github.com/KaramelBytes/immo-eda/internal/clean"
	"github.com/KaramelBytes/immo-eda/internal/correlation"
	"github.com/KaramelBytes/immo-eda/internal/encode"
	"github.com/KaramelBytes/immo-eda/internal/lookup"
	"github.com/KaramelBytes/immo-eda/internal/report"
	"github.com/KaramelBytes/immo-eda/internal/runlog"
	"github.com/KaramelBytes/immo-eda/internal/table"
	"github.com/KaramelBytes/immo-eda/internal/utils"
	"go.uber.org/zap"
)

const (
	ReportFileName    = "report.md"
	SelectionFileName = "selection.png"
)

// ErrNoInput is returned when Options.Input is empty.
var ErrNoInput = errors.New("no input file")

// Result holds everything a run produced.
type Result struct {
	// Cleaned is the table after cleaning and region derivation.
	Cleaned *table.Table
	// Encoded is the table the correlation matrix was computed from.
	Encoded   *table.Table
	Matrix    *correlation.Matrix
	Selection correlation.Selection
	Encodings map[string]encode.EncodingMap
	Report    *report.Report
	Manifest  *runlog.Manifest
	Outputs   []string
}

type runner struct {
	opt Options
	log *zap.SugaredLogger
	man *runlog.Manifest
	rep *report.Report
	res *Result
}

// Run executes every stage in order. ctx is checked between stages. When
// OutputDir is set the manifest is written even if a stage fails.
func Run(ctx context.Context, opt Options, logger *zap.Logger) (*Result, error) {
	return execute(ctx, opt, logger, "load", "clean", "region", "heatmaps", "encode", "correlate", "report")
}

// Clean loads the input and applies the cleaning stage only, writing
// CleanedCSV when set. Cleaning runs even if opt.Clean.Enabled is false.
func Clean(ctx context.Context, opt Options, logger *zap.Logger) (*Result, error) {
	opt.Clean.Enabled = true
	return execute(ctx, opt, logger, "load", "clean")
}

// Charts loads (and optionally cleans) the input, derives the region and
// draws the heatmaps and overview charts into ChartsDir.
func Charts(ctx context.Context, opt Options, logger *zap.Logger) (*Result, error) {
	return execute(ctx, opt, logger, "load", "clean", "region", "heatmaps")
}

func execute(ctx context.Context, opt Options, logger *zap.Logger, names ...string) (res *Result, err error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opt.Input == "" {
		return nil, ErrNoInput
	}
	if opt.Target == "" {
		opt.Target = correlation.DefaultTarget
	}
	r := &runner{
		opt: opt,
		log: logger.Sugar().With("input", opt.Input),
		man: runlog.New(opt.OutputDir, opt.Input, opt.Target),
		rep: &report.Report{
			Name:    filepath.Base(opt.Input),
			Target:  opt.Target,
			Thres1:  opt.Thres1,
			Thres2:  opt.Thres2,
			Removed: map[string]int{},
			Encoded: map[string][]string{},
		},
		res: &Result{},
	}
	r.res.Report = r.rep
	r.res.Manifest = r.man
	defer func() {
		r.man.Finish(err)
		if opt.OutputDir == "" {
			return
		}
		if serr := r.man.Save(); serr != nil && err == nil {
			err = fmt.Errorf("save manifest: %w", serr)
		}
	}()

	stages := map[string]func() error{
		"load":      r.load,
		"clean":     r.clean,
		"region":    r.region,
		"heatmaps":  r.heatmaps,
		"encode":    r.encode,
		"correlate": r.correlate,
		"report":    r.report,
	}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return r.res, fmt.Errorf("%s: %w", name, err)
		}
		start := time.Now()
		if err := stages[name](); err != nil {
			r.log.Errorw("stage failed", "stage", name, "error", err)
			return r.res, fmt.Errorf("%s: %w", name, err)
		}
		t := r.res.Encoded
		if t == nil {
			t = r.res.Cleaned
		}
		if t != nil {
			r.man.Record(name, t.Rows(), t.Width(), start, "")
		}
		r.log.Debugw("stage done", "stage", name, "elapsed", time.Since(start))
	}
	r.man.Selection = r.res.Selection
	return r.res, nil
}

func (r *runner) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.log.Warn(msg)
	r.rep.Warnings = append(r.rep.Warnings, msg)
}

func (r *runner) output(paths ...string) {
	r.res.Outputs = append(r.res.Outputs, paths...)
	r.rep.Outputs = append(r.rep.Outputs, paths...)
	r.man.AddOutput(paths...)
}

func (r *runner) load() error {
	t, err := table.Load(r.opt.Input, r.opt.Load)
	if err != nil {
		return err
	}
	r.log.Infow("loaded table", "rows", t.Rows(), "columns", t.Width())
	r.res.Cleaned = t
	return nil
}

func (r *runner) clean() error {
	co := r.opt.Clean
	if !co.Enabled {
		return nil
	}
	t := r.res.Cleaned
	c := clean.New(t, r.log)
	c.NumberFormat = r.opt.Load

	stats, err := c.RemoveColumnsByMissing(co.MissingPercent, co.KeepColumns, co.DropColumns)
	if err != nil {
		return err
	}
	r.rep.Missing = stats

	if key := present(t, co.DedupeKey); len(key) > 0 || len(co.DedupeKey) == 0 {
		n, err := c.RemoveDuplicates(key, co.DedupeKeep)
		if err != nil {
			return err
		}
		r.rep.Removed["duplicates"] = n
	} else {
		r.warn("duplicate key %s not found; duplicates kept", strings.Join(co.DedupeKey, ","))
	}

	c.NormalizeText()

	if co.FilterColumn != "" && len(co.FilterValues) > 0 {
		if t.Has(co.FilterColumn) {
			n, err := c.RemoveByColumnValues(co.FilterColumn, co.FilterValues)
			if err != nil {
				return err
			}
			r.rep.Removed[co.FilterColumn+" filter"] = n
		} else {
			r.warn("filter column %s not found", co.FilterColumn)
		}
	}

	if _, err := c.CoerceNumeric(); err != nil {
		return err
	}
	c.ConvertFlags()

	for _, col := range co.RareColumns {
		if !t.Has(col) {
			r.warn("rare-category column %s not found", col)
			continue
		}
		if _, err := c.ReplaceRare(col, co.RareReplacement, co.RareMinCount); err != nil {
			return err
		}
	}

	if r.opt.CleanedCSV != "" {
		if err := table.Save(t, r.opt.CleanedCSV, table.SaveOptions{Delimiter: r.opt.Load.Delimiter}); err != nil {
			return err
		}
		r.output(r.opt.CleanedCSV)
	}
	return nil
}

func (r *runner) region() error {
	eo := r.opt.Encode
	t := r.res.Cleaned
	if eo.ProvinceColumn == "" || eo.RegionColumn == "" {
		return nil
	}
	if !t.Has(eo.ProvinceColumn) {
		r.warn("province column %s not found; region not derived", eo.ProvinceColumn)
		return nil
	}
	regions := eo.Regions
	if regions == nil {
		var err error
		if regions, err = lookup.DefaultRegions(); err != nil {
			return err
		}
	}
	return encode.DeriveRegion(t, eo.ProvinceColumn, eo.RegionColumn, regions)
}

func (r *runner) heatmaps() error {
	dir := r.opt.ChartsDir
	if dir == "" {
		return nil
	}
	t := r.res.Cleaned
	for _, by := range r.opt.HeatmapBy {
		if by != chart.Whole && !t.Has(by) {
			r.warn("heatmap column %s not found", by)
			continue
		}
		paths, err := chart.HeatmapsBy(t, by, r.opt.Target, dir, r.opt.Heatmap)
		if err != nil {
			return err
		}
		r.output(paths...)
	}
	if !r.opt.Overview {
		return nil
	}
	shape := filepath.Join(dir, "rows_columns"+r.opt.Heatmap.Ext)
	if err := chart.RowsColumnsBar(t, shape); err != nil {
		return err
	}
	r.output(shape)
	if r.opt.PieColumn != "" && t.Has(r.opt.PieColumn) {
		pie := filepath.Join(dir, r.opt.PieColumn+"_distribution"+r.opt.Heatmap.Ext)
		switch err := chart.CategoryPie(t, r.opt.PieColumn, "", pie); {
		case errors.Is(err, chart.ErrNoData):
			r.warn("%s has no values; pie skipped", r.opt.PieColumn)
		case err != nil:
			return err
		default:
			r.output(pie)
		}
	}
	return nil
}

func (r *runner) encode() error {
	eo := r.opt.Encode
	t := r.res.Cleaned.Clone()
	r.res.Encoded = t

	prepared := encode.PrepareOneHot(t, eo.OneHotExclude)
	r.rep.Encoded["one-hot"] = prepared
	if eo.OneHotExpand && len(prepared) > 0 {
		created, err := encode.ExpandOneHot(t, prepared, true)
		if err != nil {
			return err
		}
		r.log.Infow("expanded one-hot columns", "sources", len(prepared), "indicators", len(created))
	}

	if cols := r.presentOrWarn(t, eo.TargetColumns, "target encoding"); len(cols) > 0 {
		maps, err := encode.TargetEncode(t, cols, r.opt.Target)
		if err != nil {
			return err
		}
		r.res.Encodings = maps
		r.rep.Encoded["target"] = cols
	}

	if cols := r.presentOrWarn(t, eo.LabelColumns, "label encoding"); len(cols) > 0 {
		ranks := eo.Ranks
		if ranks == nil {
			var err error
			if ranks, err = lookup.DefaultRanks(); err != nil {
				return err
			}
		}
		if err := encode.LabelEncode(t, cols, ranks); err != nil {
			return err
		}
		r.rep.Encoded["label"] = cols
	}

	flags := encode.FillFlags(t, eo.FlagPrefix)
	clean.New(t, r.log).ConvertFlags()
	r.rep.Encoded["flags"] = flags
	return nil
}

func (r *runner) correlate() error {
	m, err := correlation.Compute(r.res.Encoded, r.opt.Target)
	if err != nil {
		return err
	}
	r.res.Matrix = m
	r.res.Selection = correlation.Select(m, r.opt.Thres1, r.opt.Thres2)
	r.log.Infow("selected features",
		"candidates", m.Len()-1,
		"selected", len(r.res.Selection),
		"thres1", r.opt.Thres1,
		"thres2", r.opt.Thres2)
	return nil
}

func (r *runner) report() error {
	t := r.res.Cleaned
	r.rep.Rows = t.Rows()
	r.rep.Columns = report.Summarize(t, report.DefaultOptions())
	r.rep.TargetCor = report.RankedTargetCorrelations(r.res.Matrix, report.DefaultOptions().TopCorrelations)
	r.rep.Selection = r.res.Selection

	if r.opt.ChartsDir != "" && len(r.res.Selection) > 0 {
		path := filepath.Join(r.opt.ChartsDir, SelectionFileName)
		if err := chart.SelectionBar(r.res.Selection, r.opt.Target, path); err != nil {
			return err
		}
		r.output(path)
	}
	if r.opt.OutputDir == "" {
		return nil
	}
	if err := utils.EnsureDir(r.opt.OutputDir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	path := filepath.Join(r.opt.OutputDir, ReportFileName)
	r.output(path, r.man.Path())
	if err := utils.SafeWriteFile(path, []byte(r.rep.Markdown())); err != nil {
		return err
	}
	return nil
}

func (r *runner) presentOrWarn(t *table.Table, cols []string, step string) []string {
	out := present(t, cols)
	if len(out) < len(cols) {
		var missing []string
		for _, c := range cols {
			if !t.Has(c) {
				missing = append(missing, c)
			}
		}
		r.warn("%s skipped missing columns: %s", step, strings.Join(missing, ", "))
	}
	return out
}

// present keeps the names that exist in t, in order.
func present(t *table.Table, names []string) []string {
	var out []string
	for _, n := range names {
		if t.Has(n) {
			out = append(out, n)
		}
	}
	return out
}
