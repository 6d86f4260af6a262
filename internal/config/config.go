package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	DefaultFormat string `mapstructure:"default_format" yaml:"default_format"`
	MaxRows       int    `mapstructure:"max_rows" yaml:"max_rows"`
	SampleRows    int    `mapstructure:"sample_rows" yaml:"sample_rows"`

	// Analysis
	ZeroVariance     string  `mapstructure:"zero_variance" yaml:"zero_variance"`
	Outliers         bool    `mapstructure:"outliers" yaml:"outliers"`
	OutlierThreshold float64 `mapstructure:"outlier_threshold" yaml:"outlier_threshold"`

	// Logging and metrics
	LogLevel    string `mapstructure:"log_level" yaml:"log_level"`
	LogJSON     bool   `mapstructure:"log_json" yaml:"log_json"`
	MetricsFile string `mapstructure:"metrics_file" yaml:"metrics_file"`
}

// Keys lists the settable configuration keys.
var Keys = []string{
	"default_format", "max_rows", "sample_rows",
	"zero_variance", "outliers", "outlier_threshold",
	"log_level", "log_json", "metrics_file",
}

// Dir returns ~/.datadash.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".datadash"), nil
}

// Path returns cfgFile, or ~/.datadash/config.yaml when it is empty.
func Path(cfgFile string) (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.datadash/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path, err := Path(cfgFile)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults; command flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("DATADASH")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("default_format", "md")
	v.SetDefault("max_rows", 0)
	v.SetDefault("sample_rows", 5)
	v.SetDefault("zero_variance", "zero")
	v.SetDefault("outliers", true)
	v.SetDefault("outlier_threshold", 3.5)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
	v.SetDefault("metrics_file", "")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read; a missing file is fine, a broken one is not
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, c.Validate()
}

// Validate checks enumerated and ranged settings.
func (c *Global) Validate() error {
	switch strings.ToLower(c.ZeroVariance) {
	case "zero", "nan":
	default:
		return fmt.Errorf("zero_variance must be zero or nan, got %q", c.ZeroVariance)
	}
	switch strings.ToLower(c.DefaultFormat) {
	case "md", "markdown", "json", "yaml", "yml":
	default:
		return fmt.Errorf("default_format must be md, json or yaml, got %q", c.DefaultFormat)
	}
	if c.MaxRows < 0 || c.SampleRows < 0 {
		return fmt.Errorf("max_rows and sample_rows must not be negative")
	}
	if c.OutlierThreshold <= 0 {
		return fmt.Errorf("outlier_threshold must be positive, got %v", c.OutlierThreshold)
	}
	return nil
}

// Set assigns a single key from its string form.
func (c *Global) Set(key, val string) error {
	switch key {
	case "default_format":
		c.DefaultFormat = strings.ToLower(val)
	case "max_rows":
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid int for max_rows: %v", val)
		}
		c.MaxRows = i
	case "sample_rows":
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid int for sample_rows: %v", val)
		}
		c.SampleRows = i
	case "zero_variance":
		c.ZeroVariance = strings.ToLower(val)
	case "outliers":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for outliers: %w", err)
		}
		c.Outliers = b
	case "outlier_threshold":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid float for outlier_threshold: %w", err)
		}
		c.OutlierThreshold = f
	case "log_level":
		c.LogLevel = strings.ToLower(val)
	case "log_json":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for log_json: %w", err)
		}
		c.LogJSON = b
	case "metrics_file":
		c.MetricsFile = val
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return c.Validate()
}
