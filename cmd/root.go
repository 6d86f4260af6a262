package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/datadash/internal/config"
	"github.com/KaramelBytes/datadash/internal/metrics"
	"github.com/KaramelBytes/datadash/internal/utils"
)

var (
	// Global flags
	cfgFile     string
	debug       bool
	logJSON     bool
	metricsFile string

	// Loaded configuration
	cfg *cfgpkg.Global

	logger   = slog.New(slog.NewTextHandler(io.Discard, nil))
	registry *prometheus.Registry
)

var rootCmd = &cobra.Command{
	Use:   "datadash",
	Short: "datadash: summarise, correlate and chart tabular files",
	Long: `datadash loads CSV/TSV/XLSX files, infers which columns are numeric,
summarises every column, correlates the numeric ones and renders the result
as Markdown, JSON or YAML. It can also page through a file and build chart data.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		path := metricsFile
		if path == "" && cfg != nil {
			path = cfg.MetricsFile
		}
		if path == "" || registry == nil {
			return nil
		}
		if err := metrics.WriteTextfile(path, registry); err != nil {
			return err
		}
		logger.Debug("metrics written", "path", path)
		return nil
	},
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.datadash/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit logs as JSON")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile after the command")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = &cfgpkg.Global{DefaultFormat: "md", SampleRows: 5, ZeroVariance: "zero", Outliers: true, OutlierThreshold: 3.5, LogLevel: "info"}
	}
	cfg = c

	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	logger = utils.NewLogger(level, logJSON || cfg.LogJSON)

	reg, err := metrics.NewRegistry()
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: metrics disabled: %v\n", err)
		return
	}
	registry = reg
}
