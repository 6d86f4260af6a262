package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resetFlags restores every flag of c and its children to its default so
// Changed state does not leak between invocations.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd is a helper to execute the root command with args and return stdout.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCmd(args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

func execCmd(args ...string) (string, error) {
	resetFlags(rootCmd)
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), err
}

// isolate points HOME at a temp dir so no real config is read.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func writeFile(t *testing.T, path, body string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

const salesCSV = "region,units,price\nnorth,3,2.5\nsouth,5,2.0\nnorth,7,1.5\n"

func TestCLI_AnalyzeMarkdown(t *testing.T) {
	home := isolate(t)
	path := writeFile(t, filepath.Join(home, "sales.csv"), salesCSV)

	out := runCmd(t, "analyze", path)
	for _, want := range []string{"[DATASET SUMMARY]", "[SUMMARY STATISTICS]", "| units | numeric | 3.00 | 7.00 | 5.00 |", "[CORRELATIONS]"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestCLI_AnalyzeJSONToFile(t *testing.T) {
	home := isolate(t)
	path := writeFile(t, filepath.Join(home, "sales.csv"), salesCSV)
	dest := filepath.Join(home, "out", "sales.json")

	runCmd(t, "analyze", path, "--format", "json", "--output", dest)
	b, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(b), `"region": "categorical"`) {
		t.Fatalf("unexpected json:\n%s", b)
	}
}

func TestCLI_AnalyzeFind(t *testing.T) {
	home := isolate(t)
	path := writeFile(t, filepath.Join(home, "sales.csv"), salesCSV)

	out := runCmd(t, "analyze", path, "--find", "UNITS")
	if !strings.Contains(out, "[[units]]") {
		t.Fatalf("expected highlighted match:\n%s", out)
	}
}

func TestCLI_AnalyzeErrors(t *testing.T) {
	home := isolate(t)
	xls := writeFile(t, filepath.Join(home, "old.xls"), "binary")
	if _, err := execCmd("analyze", xls); err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
	if _, err := execCmd("analyze", filepath.Join(home, "missing.csv")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	csv := writeFile(t, filepath.Join(home, "a.csv"), salesCSV)
	if _, err := execCmd("analyze", csv, "--delimiter", "#"); err == nil {
		t.Fatalf("expected delimiter error")
	}
	if _, err := execCmd("analyze", csv, "--zero-variance", "sometimes"); err == nil {
		t.Fatalf("expected zero-variance error")
	}
}

func TestCLI_Preview(t *testing.T) {
	home := isolate(t)
	path := writeFile(t, filepath.Join(home, "sales.csv"), salesCSV)

	out := runCmd(t, "preview", path, "--per-page", "2", "--page", "2")
	if !strings.Contains(out, "[FILE PREVIEW: sales.csv]") || !strings.Contains(out, "Showing rows 3-3 of 3 · Page 2 of 2") {
		t.Fatalf("unexpected preview:\n%s", out)
	}
}

func TestCLI_Charts(t *testing.T) {
	home := isolate(t)
	path := writeFile(t, filepath.Join(home, "sales.csv"), salesCSV)

	out := runCmd(t, "charts", path, "--type", "heatmap")
	if !strings.Contains(out, `"kind": "heatmap"`) {
		t.Fatalf("unexpected charts output:\n%s", out)
	}
	one := writeFile(t, filepath.Join(home, "one.csv"), "a,b\n1,x\n2,y\n")
	if _, err := execCmd("charts", one); err == nil {
		t.Fatalf("expected error for a single numeric column")
	}
}

func TestCLI_ChartsZeroVariance(t *testing.T) {
	home := isolate(t)
	path := writeFile(t, filepath.Join(home, "flat.csv"), "x,k\n1,3\n2,3\n")

	out := runCmd(t, "charts", path, "--type", "heatmap")
	if strings.Contains(out, "null") {
		t.Fatalf("zero policy should fill undefined cells with 0:\n%s", out)
	}
	out = runCmd(t, "charts", path, "--type", "heatmap", "--zero-variance", "nan")
	if !strings.Contains(out, "null") {
		t.Fatalf("nan policy should leave undefined cells empty:\n%s", out)
	}

	runCmd(t, "config", "set", "zero_variance", "nan")
	out = runCmd(t, "charts", path, "--type", "heatmap")
	if !strings.Contains(out, "null") {
		t.Fatalf("configured nan policy ignored:\n%s", out)
	}
	out = runCmd(t, "charts", path, "--type", "heatmap", "--zero-variance", "zero")
	if strings.Contains(out, "null") {
		t.Fatalf("flag should override config:\n%s", out)
	}
	if _, err := execCmd("charts", path, "--zero-variance", "maybe"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	home := isolate(t)
	runCmd(t, "config", "set", "sample_rows", "0")
	if _, err := os.Stat(filepath.Join(home, ".datadash", "config.yaml")); err != nil {
		t.Fatalf("config not saved: %v", err)
	}
	out := runCmd(t, "config", "show")
	if !strings.Contains(out, "sample_rows: 0") {
		t.Fatalf("unexpected config:\n%s", out)
	}
	if _, err := execCmd("config", "set", "nope", "1"); err == nil {
		t.Fatalf("expected unknown key error")
	}

	// sample_rows 0 suppresses the sample section
	path := writeFile(t, filepath.Join(home, "sales.csv"), salesCSV)
	out = runCmd(t, "analyze", path)
	if strings.Contains(out, "[HEAD AND SAMPLE ROWS]") {
		t.Fatalf("expected no sample rows:\n%s", out)
	}
}

func TestCLI_MetricsFile(t *testing.T) {
	home := isolate(t)
	path := writeFile(t, filepath.Join(home, "sales.csv"), salesCSV)
	prom := filepath.Join(home, "metrics", "datadash.prom")

	runCmd(t, "analyze", path, "--metrics-file", prom)
	b, err := os.ReadFile(prom)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	if !strings.Contains(string(b), `datadash_analyses_total{outcome="success"}`) {
		t.Fatalf("unexpected metrics:\n%s", b)
	}
}
