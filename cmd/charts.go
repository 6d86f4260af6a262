package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/datadash/internal/analysis"
	"github.com/KaramelBytes/datadash/internal/charts"
	"github.com/KaramelBytes/datadash/internal/report"
)

var (
	chFlags        loadFlags
	chType         string
	chFormat       string
	chZeroVariance string
)

var chartsCmd = &cobra.Command{
	Use:   "charts <file>",
	Short: "Build chart data for the numeric columns of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := report.ParseFormat(chFormat)
		if err != nil {
			return err
		}
		if format == report.FormatMarkdown {
			return fmt.Errorf("charts support --format json|yaml")
		}
		iopt, err := chFlags.options(cmd)
		if err != nil {
			return err
		}
		ds, err := load(cmd.Context(), args[0], iopt)
		if err != nil {
			return err
		}
		aopt := analysis.DefaultOptions()
		aopt.Outliers = false
		if cfg != nil {
			aopt.ZeroVariance = analysis.ZeroVariancePolicy(strings.ToLower(cfg.ZeroVariance))
		}
		if aopt.ZeroVariance, err = zeroVariance(aopt.ZeroVariance, chZeroVariance); err != nil {
			return err
		}
		res := analysis.Analyze(ds.Table, aopt)
		numeric := res.NumericColumns()

		var v any
		if strings.EqualFold(strings.TrimSpace(chType), "all") {
			v, err = charts.BuildAll(ds.Table, numeric, aopt)
		} else {
			kind, kerr := charts.ParseKind(chType)
			if kerr != nil {
				return kerr
			}
			v, err = charts.Build(kind, ds.Table, numeric, aopt)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", ds.Name, err)
		}
		out, err := report.Encode(v, format)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chartsCmd)
	chFlags.bind(chartsCmd)
	chartsCmd.Flags().StringVarP(&chType, "type", "t", "all", "chart type: line|bar|scatter|heatmap|histogram|box|pie|radar|all")
	chartsCmd.Flags().StringVarP(&chFormat, "format", "f", string(report.FormatJSON), "output format: json|yaml")
	chartsCmd.Flags().StringVar(&chZeroVariance, "zero-variance", "", "heatmap value for constant columns: zero|nan")
}
