package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.DefaultFormat != "md" || c.SampleRows != 5 || c.MaxRows != 0 {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.ZeroVariance != "zero" || !c.Outliers || c.OutlierThreshold != 3.5 {
		t.Fatalf("unexpected analysis defaults: %+v", c)
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := c.Set("max_rows", "250"); err != nil {
		t.Fatalf("set max_rows: %v", err)
	}
	if err := c.Set("zero_variance", "NaN"); err != nil {
		t.Fatalf("set zero_variance: %v", err)
	}
	if err := Save(c, ""); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, ".datadash", "config.yaml")); err != nil {
		t.Fatalf("config not written: %v", err)
	}
	got, err := Load("")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.MaxRows != 250 || got.ZeroVariance != "nan" {
		t.Fatalf("round trip lost values: %+v", got)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	if err := os.WriteFile(path, []byte("sample_rows: 9\ndefault_format: json\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("DATADASH_SAMPLE_ROWS", "2")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.SampleRows != 2 {
		t.Fatalf("env should win, got sample_rows=%d", c.SampleRows)
	}
	if c.DefaultFormat != "json" {
		t.Fatalf("file value lost, got %q", c.DefaultFormat)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	if err := os.WriteFile(path, []byte("zero_variance: maybe\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestSet_Rejects(t *testing.T) {
	c := &Global{DefaultFormat: "md", ZeroVariance: "zero", OutlierThreshold: 3.5}
	cases := [][2]string{
		{"max_rows", "-1"},
		{"outliers", "perhaps"},
		{"default_format", "pdf"},
		{"outlier_threshold", "0"},
		{"nope", "1"},
	}
	for _, tc := range cases {
		if err := c.Set(tc[0], tc[1]); err == nil {
			t.Errorf("Set(%q, %q) expected error", tc[0], tc[1])
		}
		// restore a valid baseline
		c.DefaultFormat, c.MaxRows, c.OutlierThreshold = "md", 0, 3.5
	}
}
