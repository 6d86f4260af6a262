package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/datadash/internal/ingest"
	"github.com/KaramelBytes/datadash/internal/report"
	"github.com/KaramelBytes/datadash/internal/utils"
)

var (
	abFlags     analyzeFlags
	abOutputDir string
	abFormat    string
	abQuiet     bool
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Analyze multiple CSV/TSV/XLSX files with progress and duplicate detection",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var files []string
		for _, f := range expandInputs(args) {
			if !ingest.Supported(f) {
				if !abQuiet {
					fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: skipping unsupported file %s\n", f)
				}
				continue
			}
			files = append(files, f)
		}
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}

		format, err := formatFlag(cmd, abFormat)
		if err != nil {
			return err
		}
		iopt, ropt, err := abFlags.options(cmd)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		seen := map[string]string{} // fingerprint -> first file
		total := len(files)
		for i, path := range files {
			if !abQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			ds, err := load(cmd.Context(), path, iopt)
			if err != nil {
				return err
			}
			if first, dup := seen[ds.Fingerprint]; dup {
				if !abQuiet {
					fmt.Fprintf(out, "⚠ Skipping %s: identical content to %s\n", path, first)
				}
				continue
			}
			seen[ds.Fingerprint] = path

			rep := analyze(ds, ropt)
			body, err := rep.Render(format)
			if err != nil {
				return err
			}
			if abOutputDir == "" {
				if !abQuiet {
					fmt.Fprintln(out, string(body))
				}
				continue
			}
			outFile := summaryPath(abOutputDir, path, iopt.SheetName, format)
			if err := utils.SafeWriteFile(outFile, body); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}
			if !abQuiet {
				fmt.Fprintf(out, "✓ Wrote %s\n", outFile)
			}
		}
		return nil
	},
}

// expandInputs resolves globs, keeps literal paths that exist and drops
// repeats. The result is sorted.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

// summaryPath picks <dir>/<base>[__sheet-x].summary.<ext>, adding a numeric
// suffix when the file already exists.
func summaryPath(dir, input, sheet string, format report.Format) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if sheet != "" {
		s := strings.ToLower(strings.TrimSpace(sheet))
		var b strings.Builder
		for _, r := range s {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				b.WriteRune(r)
			} else if r == ' ' || r == '-' || r == '_' {
				b.WriteRune('-')
			}
		}
		ss := strings.Trim(b.String(), "-")
		if ss == "" {
			ss = "sheet"
		}
		stem += "__sheet-" + ss
	}
	ext := string(format)
	outFile := filepath.Join(dir, stem+".summary."+ext)
	if _, err := os.Stat(outFile); err != nil {
		return outFile
	}
	for idx := 2; ; idx++ {
		cand := filepath.Join(dir, fmt.Sprintf("%s__%d.summary.%s", stem, idx, ext))
		if _, err := os.Stat(cand); os.IsNotExist(err) {
			return cand
		}
	}
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	abFlags.bind(analyzeBatchCmd)
	analyzeBatchCmd.Flags().StringVar(&abOutputDir, "output-dir", "", "write one summary file per input into this directory")
	analyzeBatchCmd.Flags().StringVarP(&abFormat, "format", "f", string(report.FormatMarkdown), "output format: md|json|yaml")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
}
