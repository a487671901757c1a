package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validCfg() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Query:   QueryConfig{Engine: "expr"},
		Output:  OutputConfig{Format: "json"},
		Store:   StoreConfig{Indent: 4},
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Fatalf("unexpected logging defaults %+v", cfg.Logging)
	}
	if cfg.Query.Engine != "expr" || cfg.Output.Format != "json" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.IndentString() != "    " || cfg.Store.StrictBooleans {
		t.Fatalf("unexpected store defaults %+v", cfg.Store)
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("JSONIO_QUERY_ENGINE", "CEL")
	t.Setenv("JSONIO_STORE_STRICT_BOOLEANS", "true")
	t.Setenv("JSONIO_LOGGING_FORMAT", "json")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Query.Engine != "cel" || !cfg.Store.StrictBooleans || cfg.Logging.Format != "json" {
		t.Fatalf("expected env overrides, got %+v", cfg)
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "jsonio.yaml")
	content := "output:\n  format: toml\nstore:\n  indent: 2\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Output.Format != "toml" || cfg.IndentString() != "  " {
		t.Fatalf("expected file values, got %+v", cfg)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("JSONIO_QUERY_ENGINE", "lua")

	_, err := Load("")
	if err == nil || !strings.Contains(err.Error(), "query.engine") {
		t.Fatalf("expected query.engine error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]struct {
		mutate func(*Config)
		field  string
	}{
		"level":  {mutate: func(c *Config) { c.Logging.Level = "trace" }, field: "logging.level"},
		"format": {mutate: func(c *Config) { c.Logging.Format = "xml" }, field: "logging.format"},
		"engine": {mutate: func(c *Config) { c.Query.Engine = "" }, field: "query.engine"},
		"output": {mutate: func(c *Config) { c.Output.Format = "yaml" }, field: "output.format"},
		"indent": {mutate: func(c *Config) { c.Store.Indent = -1 }, field: "store.indent"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := validCfg()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected error for %s", tc.field)
			}
			if !strings.Contains(err.Error(), tc.field) {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
	if err := validCfg().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}
