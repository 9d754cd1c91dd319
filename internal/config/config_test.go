package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseDefaultConfig(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("failed to parse default config: %v", err)
	}

	if cfg.Input.Dir != "./input" {
		t.Errorf("expected input dir './input', got %q", cfg.Input.Dir)
	}
	if cfg.Output.Dir != "./output" {
		t.Errorf("expected output dir './output', got %q", cfg.Output.Dir)
	}
	if cfg.Mapping.Dir != "./config" {
		t.Errorf("expected mapping dir './config', got %q", cfg.Mapping.Dir)
	}
	if !cfg.ApplySuggestedMapping() {
		t.Error("default config should apply suggested mappings")
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("expected port 8000, got %d", cfg.Server.Port)
	}
}

func TestParseMinimalConfig(t *testing.T) {
	data := []byte(`
input:
  dir: /data/exports
server:
  port: 9000
`)
	cfg, err := parse(data)
	if err != nil {
		t.Fatalf("failed to parse minimal config: %v", err)
	}

	if cfg.Input.Dir != "/data/exports" {
		t.Errorf("expected input dir '/data/exports', got %q", cfg.Input.Dir)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	// Defaults should still be set for unspecified fields
	if cfg.Output.Dir != "./output" {
		t.Errorf("expected default output dir, got %q", cfg.Output.Dir)
	}
	if cfg.Logging.Level != "INFO" {
		t.Errorf("expected default log level, got %q", cfg.Logging.Level)
	}
}

func TestApplySuggestedMappingDefaultsTrue(t *testing.T) {
	cfg, err := parse([]byte("input:\n  dir: ./x\n"))
	if err != nil {
		t.Fatalf("failed to parse config: %v", err)
	}
	if !cfg.ApplySuggestedMapping() {
		t.Error("unset apply_suggested should default to true")
	}

	cfg, err = parse([]byte("mapping:\n  apply_suggested: false\n"))
	if err != nil {
		t.Fatalf("failed to parse config: %v", err)
	}
	if cfg.ApplySuggestedMapping() {
		t.Error("apply_suggested: false should be honored")
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, DefaultConfigYAML, 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Input.Dir != "./input" {
		t.Error("expected input dir to be populated from file")
	}
}

func TestGetDataDir(t *testing.T) {
	cfg := &Config{}
	defaultDir := cfg.GetDataDir()
	if defaultDir == "" {
		t.Error("expected non-empty default data dir")
	}

	cfg.Output.DataDir = "/custom/path"
	if cfg.GetDataDir() != "/custom/path" {
		t.Errorf("expected '/custom/path', got %q", cfg.GetDataDir())
	}
}

func TestResolveConfigPathExplicit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, DefaultConfigYAML, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ResolveConfigPath(path)
	if err != nil {
		t.Fatalf("ResolveConfigPath: %v", err)
	}
	if got != path {
		t.Errorf("got %q, want %q", got, path)
	}

	if _, err := ResolveConfigPath(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}
