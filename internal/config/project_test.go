package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadProjectConfigMissingFileReturnsDefault(t *testing.T) {
	cfg, err := LoadProjectConfig(filepath.Join(t.TempDir(), "llamac.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Optimise || cfg.TargetTriple != "" {
		t.Fatalf("expected zero-value default config, got %+v", cfg)
	}
}

func TestLoadProjectConfigParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "llamac.yaml")
	content := "optimise: true\ntarget_triple: x86_64-unknown-linux-gnu\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	cfg, err := LoadProjectConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Optimise {
		t.Errorf("expected optimise: true")
	}
	if cfg.TargetTriple != "x86_64-unknown-linux-gnu" {
		t.Errorf("unexpected target triple: %q", cfg.TargetTriple)
	}
}

func TestOptLevelOrPrefersCLIFlag(t *testing.T) {
	cfg := DefaultProjectConfig()
	if cfg.OptLevelOr(true) != OptAggressive {
		t.Errorf("-O on the CLI should force OptAggressive regardless of config")
	}
	if cfg.OptLevelOr(false) != OptNone {
		t.Errorf("expected OptNone when neither CLI nor config request optimisation")
	}

	cfg.Optimise = true
	if cfg.OptLevelOr(false) != OptAggressive {
		t.Errorf("llamac.yaml's optimise: true should enable OptAggressive")
	}
}
