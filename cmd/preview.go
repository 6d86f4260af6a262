package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/datadash/internal/report"
)

var (
	pvFlags   loadFlags
	pvPage    int
	pvPerPage int
	pvFormat  string
)

var previewCmd = &cobra.Command{
	Use:   "preview <file>",
	Short: "Show one page of a file's rows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := report.ParseFormat(pvFormat)
		if err != nil {
			return err
		}
		iopt, err := pvFlags.options(cmd)
		if err != nil {
			return err
		}
		ds, err := load(cmd.Context(), args[0], iopt)
		if err != nil {
			return err
		}
		page := report.Preview(ds.Name, ds.Table, pvPage, pvPerPage)
		out, err := page.Render(format)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
	pvFlags.bind(previewCmd)
	previewCmd.Flags().IntVar(&pvPage, "page", 1, "1-based page to show")
	previewCmd.Flags().IntVar(&pvPerPage, "per-page", report.PreviewRows, "rows per page")
	previewCmd.Flags().StringVarP(&pvFormat, "format", "f", string(report.FormatMarkdown), "output format: md|json|yaml")
}
