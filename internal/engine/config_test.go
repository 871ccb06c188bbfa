package engine

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaultsWhenPathEmpty(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig(\"\"): %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	raw := []byte("window_days: 14\nmax_groups: 5\njitter_max: 25\n")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.WindowDays != 14 || cfg.MaxGroups != 5 || cfg.JitterMax != 25 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Timezone != "Asia/Seoul" {
		t.Errorf("untouched field lost its default: %q", cfg.Timezone)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	if err := os.WriteFile(path, []byte("max_groups: 0\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Errorf("expected validation error for max_groups: 0")
	}
}
