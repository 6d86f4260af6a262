package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/datadash/internal/analysis"
	"github.com/KaramelBytes/datadash/internal/ingest"
	"github.com/KaramelBytes/datadash/internal/metrics"
	"github.com/KaramelBytes/datadash/internal/report"
)

// loadFlags are the ingest flags shared by every command that reads a file.
type loadFlags struct {
	delimiter  string
	sheetName  string
	sheetIndex int
	maxRows    int
}

func (f *loadFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | '|' | 'tab' (sniffed if omitted)")
	cmd.Flags().StringVar(&f.sheetName, "sheet-name", "", "XLSX: sheet name to analyze")
	cmd.Flags().IntVar(&f.sheetIndex, "sheet-index", 0, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	cmd.Flags().IntVar(&f.maxRows, "max-rows", 0, "maximum rows to process (0 = config default, unlimited if unset)")
}

func (f *loadFlags) options(cmd *cobra.Command) (ingest.Options, error) {
	opt := ingest.Options{SheetName: f.sheetName, SheetIndex: f.sheetIndex}
	if cfg != nil {
		opt.MaxRows = cfg.MaxRows
	}
	if cmd.Flags().Changed("max-rows") {
		if f.maxRows < 0 {
			return opt, fmt.Errorf("--max-rows must not be negative")
		}
		opt.MaxRows = f.maxRows
	}
	switch f.delimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	case "|", "pipe":
		opt.Delimiter = '|'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", f.delimiter)
	}
	return opt, nil
}

// analyzeFlags extends loadFlags with what shapes the analysis and report.
type analyzeFlags struct {
	loadFlags
	sampleRows   int
	groupBy      []string
	decimal      string
	thousands    string
	outliers     bool
	outlierThr   float64
	zeroVariance string
}

func (f *analyzeFlags) bind(cmd *cobra.Command) {
	f.loadFlags.bind(cmd)
	cmd.Flags().StringVar(&f.decimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (strict parsing if omitted)")
	cmd.Flags().StringVar(&f.thousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space'")
	cmd.Flags().IntVar(&f.sampleRows, "sample-rows", 5, "number of sample rows to include")
	cmd.Flags().StringSliceVar(&f.groupBy, "group-by", nil, "comma-separated column names to group by (repeatable)")
	cmd.Flags().BoolVar(&f.outliers, "outliers", true, "compute robust outlier counts (MAD)")
	cmd.Flags().Float64Var(&f.outlierThr, "outlier-threshold", 3.5, "robust |z| threshold for outliers (MAD-based)")
	cmd.Flags().StringVar(&f.zeroVariance, "zero-variance", "", "correlation for constant columns: zero|nan")
}

// zeroVariance applies a --zero-variance flag value over the configured policy.
func zeroVariance(def analysis.ZeroVariancePolicy, flag string) (analysis.ZeroVariancePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(flag)) {
	case "":
		return def, nil
	case "zero", "0":
		return analysis.ZeroVarianceZero, nil
	case "nan":
		return analysis.ZeroVarianceNaN, nil
	default:
		return def, fmt.Errorf("unsupported --zero-variance: %s (use zero|nan)", flag)
	}
}

// options merges config defaults with explicitly set flags.
func (f *analyzeFlags) options(cmd *cobra.Command) (ingest.Options, report.Options, error) {
	iopt, err := f.loadFlags.options(cmd)
	if err != nil {
		return iopt, report.Options{}, err
	}
	aopt := analysis.DefaultOptions()
	ropt := report.Options{SampleRows: 5, GroupBy: f.groupBy}
	if cfg != nil {
		ropt.SampleRows = cfg.SampleRows
		aopt.Outliers = cfg.Outliers
		aopt.OutlierThreshold = cfg.OutlierThreshold
		aopt.ZeroVariance = analysis.ZeroVariancePolicy(strings.ToLower(cfg.ZeroVariance))
	}
	fl := cmd.Flags()
	if fl.Changed("sample-rows") {
		ropt.SampleRows = f.sampleRows
	}
	if fl.Changed("outliers") {
		aopt.Outliers = f.outliers
	}
	if fl.Changed("outlier-threshold") {
		if f.outlierThr <= 0 {
			return iopt, ropt, fmt.Errorf("--outlier-threshold must be positive")
		}
		aopt.OutlierThreshold = f.outlierThr
	}
	if aopt.ZeroVariance, err = zeroVariance(aopt.ZeroVariance, f.zeroVariance); err != nil {
		return iopt, ropt, err
	}
	// Locale separators
	switch strings.ToLower(strings.TrimSpace(f.decimal)) {
	case ",", "comma":
		aopt.DecimalSeparator = ','
	case ".", "dot":
		aopt.DecimalSeparator = '.'
	case "":
	default:
		return iopt, ropt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", f.decimal)
	}
	switch strings.ToLower(strings.TrimSpace(f.thousands)) {
	case ",":
		aopt.ThousandsSeparator = ','
	case ".":
		aopt.ThousandsSeparator = '.'
	case "space", " ":
		aopt.ThousandsSeparator = ' '
	case "":
	default:
		return iopt, ropt, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", f.thousands)
	}
	if aopt.ThousandsSeparator != 0 && aopt.DecimalSeparator == 0 {
		aopt.DecimalSeparator = '.'
	}
	ropt.Analysis = aopt
	return iopt, ropt, nil
}

// sourceURL turns a plain path into an absolute one; URLs pass through.
func sourceURL(arg string) string {
	if strings.Contains(arg, "://") {
		return arg
	}
	if abs, err := filepath.Abs(arg); err == nil {
		return abs
	}
	return arg
}

// load reads one file and records a failed run in the metrics.
func load(ctx context.Context, arg string, opt ingest.Options) (*ingest.Dataset, error) {
	start := time.Now()
	ds, err := ingest.Load(ctx, sourceURL(arg), opt)
	if err != nil {
		metrics.ObserveAnalysis(time.Since(start), metrics.OutcomeError, 0, 0, 0)
		logger.Debug("load failed", "file", arg, "error", err)
		return nil, err
	}
	logger.Debug("loaded", "file", arg, "fingerprint", ds.Fingerprint, "bytes", ds.Size, "rows", ds.TotalRows)
	return ds, nil
}

// analyze builds the report for ds and records the run.
func analyze(ds *ingest.Dataset, opt report.Options) *report.Report {
	start := time.Now()
	rep := report.Build(ds, opt)
	elapsed := time.Since(start)
	numeric := len(rep.Result.NumericColumns())
	metrics.ObserveAnalysis(elapsed, metrics.OutcomeSuccess, rep.Processed, numeric, len(rep.Result.Columns)-numeric)
	logger.Info("analysis complete",
		"run_id", rep.RunID,
		"file", ds.Name,
		"fingerprint", ds.Fingerprint,
		"rows", rep.Processed,
		"columns", len(rep.Result.Columns),
		"numeric", numeric,
		"duration", elapsed,
	)
	for _, w := range rep.Warnings {
		logger.Warn(w, "run_id", rep.RunID, "file", ds.Name)
	}
	return rep
}

// formatFlag resolves --format against the configured default.
func formatFlag(cmd *cobra.Command, val string) (report.Format, error) {
	if !cmd.Flags().Changed("format") && cfg != nil && cfg.DefaultFormat != "" {
		val = cfg.DefaultFormat
	}
	return report.ParseFormat(val)
}

func isTerminal(f *os.File) bool {
	st, err := f.Stat()
	if err != nil {
		return false
	}
	return st.Mode()&os.ModeCharDevice != 0
}
