package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, ConfigFile), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.DataDir != dir {
		t.Errorf("DataDir = %s, want %s", cfg.DataDir, dir)
	}
	if cfg.Wait.DefaultTimeoutMs != 30_000 || cfg.Wait.MaxTimeoutMs != 120_000 {
		t.Errorf("wait defaults = %+v", cfg.Wait)
	}
	if cfg.Conflict.CategoricalExclusive {
		t.Error("categorical exclusion should default off")
	}
	if cfg.Conflict.HighSeverityConfidence != 0.75 {
		t.Errorf("high severity confidence = %f, want 0.75", cfg.Conflict.HighSeverityConfidence)
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
wait:
  default_timeout_ms: 5000
  max_timeout_ms: 60000
conflict:
  numeric_tolerance: 0.1
  categorical_exclusive: true
  high_severity_confidence: 0.9
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Wait.DefaultTimeoutMs != 5000 {
		t.Errorf("default timeout = %d, want 5000", cfg.Wait.DefaultTimeoutMs)
	}
	if cfg.Conflict.NumericTolerance != 0.1 || !cfg.Conflict.CategoricalExclusive {
		t.Errorf("conflict policy = %+v", cfg.Conflict)
	}
	if cfg.Conflict.HighSeverityConfidence != 0.9 {
		t.Errorf("high severity confidence = %f", cfg.Conflict.HighSeverityConfidence)
	}
}

func TestLoad_PartialFileKeepsOtherDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "conflict:\n  numeric_tolerance: 0.25\n")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Conflict.NumericTolerance != 0.25 {
		t.Errorf("numeric tolerance = %f, want 0.25", cfg.Conflict.NumericTolerance)
	}
	if cfg.Wait.DefaultTimeoutMs != 30_000 {
		t.Errorf("wait default lost: %+v", cfg.Wait)
	}
}

func TestLoad_MalformedYAMLIsError(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "wait: [broken")

	if _, err := Load(dir); err == nil {
		t.Error("malformed config should be a startup error")
	}
}

func TestLoad_InvalidValuesRejected(t *testing.T) {
	cases := map[string]string{
		"zero default timeout": "wait:\n  default_timeout_ms: 0\n  max_timeout_ms: 1000\n",
		"max below default":    "wait:\n  default_timeout_ms: 5000\n  max_timeout_ms: 100\n",
		"negative tolerance":   "conflict:\n  numeric_tolerance: -1\n",
		"confidence above 1":   "conflict:\n  high_severity_confidence: 1.5\n",
	}
	for name, content := range cases {
		dir := t.TempDir()
		writeConfig(t, dir, content)
		_, err := Load(dir)
		if err == nil {
			t.Errorf("%s: invalid config accepted", name)
			continue
		}
		if !strings.Contains(err.Error(), "config:") {
			t.Errorf("%s: error missing config prefix: %v", name, err)
		}
	}
}
