package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/datadash/internal/report"
	"github.com/KaramelBytes/datadash/internal/search"
	"github.com/KaramelBytes/datadash/internal/utils"
)

var (
	anaFlags      analyzeFlags
	anaOutputPath string
	anaFormat     string
	anaFind       string
	anaRegex      bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a CSV/TSV/XLSX file and produce a concise summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := formatFlag(cmd, anaFormat)
		if err != nil {
			return err
		}
		iopt, ropt, err := anaFlags.options(cmd)
		if err != nil {
			return err
		}
		ds, err := load(cmd.Context(), args[0], iopt)
		if err != nil {
			return err
		}
		rep := analyze(ds, ropt)
		out, err := rep.Render(format)
		if err != nil {
			return err
		}

		if anaFind != "" {
			matches, err := search.Find(string(out), anaFind, search.Options{Regex: anaRegex})
			if err != nil {
				return fmt.Errorf("--find: %w", err)
			}
			marker := search.BracketMarker
			if anaOutputPath == "" && cmd.OutOrStdout() == os.Stdout && isTerminal(os.Stdout) {
				marker = search.ANSIMarker
			}
			out = []byte(search.Highlight(string(out), matches, marker))
			fmt.Fprintf(cmd.ErrOrStderr(), "%d match(es) for %q\n", len(matches), anaFind)
		}

		// Decide where to write: --output path or stdout
		if anaOutputPath != "" {
			if err := utils.SafeWriteFile(anaOutputPath, out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote analysis to %s\n", anaOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	anaFlags.bind(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the analysis")
	analyzeCmd.Flags().StringVarP(&anaFormat, "format", "f", string(report.FormatMarkdown), "output format: md|json|yaml")
	analyzeCmd.Flags().StringVar(&anaFind, "find", "", "highlight a term in the rendered output")
	analyzeCmd.Flags().BoolVar(&anaRegex, "regex", false, "treat --find as a regular expression")
}
