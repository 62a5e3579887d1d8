package config

import (
	"errors"
	"testing"

	"tabscope/domain/analysis"
	"tabscope/domain/core"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Server.Port)
	}
	defaults := analysis.DefaultConfig()
	if cfg.Engine.SignificanceLevel != defaults.SignificanceLevel {
		t.Errorf("Engine defaults not applied: %g", cfg.Engine.SignificanceLevel)
	}
	if len(cfg.Engine.OutlierMethods) != len(defaults.OutlierMethods) {
		t.Errorf("Unexpected outlier methods: %v", cfg.Engine.OutlierMethods)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("IQR_MULTIPLIER", "2.5")
	t.Setenv("OUTLIER_METHODS", "iqr, percentile")
	t.Setenv("ANALYSIS_WORKERS", "4")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Engine.OutlierParams.IQRMultiplier != 2.5 {
		t.Errorf("Expected multiplier 2.5, got %g", cfg.Engine.OutlierParams.IQRMultiplier)
	}
	want := []analysis.OutlierMethod{analysis.OutlierIQR, analysis.OutlierPercentile}
	if len(cfg.Engine.OutlierMethods) != 2 || cfg.Engine.OutlierMethods[0] != want[0] || cfg.Engine.OutlierMethods[1] != want[1] {
		t.Errorf("Expected %v, got %v", want, cfg.Engine.OutlierMethods)
	}
	if cfg.Engine.Workers != 4 {
		t.Errorf("Expected 4 workers, got %d", cfg.Engine.Workers)
	}
}

func TestLoad_InvalidEngineSettingRejected(t *testing.T) {
	t.Setenv("SIGNIFICANCE_LEVEL", "5")

	_, err := Load()
	if !errors.Is(err, core.ErrInvalidConfig) {
		t.Errorf("Expected invalid-config error, got %v", err)
	}
}

func TestRequireDatabase(t *testing.T) {
	cfg := &Config{}
	if err := cfg.RequireDatabase(); !errors.Is(err, core.ErrInvalidConfig) {
		t.Errorf("Missing URL should be an invalid-config error, got %v", err)
	}

	cfg.Database.URL = "postgres://localhost/db"
	if err := cfg.RequireDatabase(); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}
