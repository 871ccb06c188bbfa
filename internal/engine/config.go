package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config carries the engine tuning knobs. Defaults reproduce production
// behavior; a YAML file may override them.
type Config struct {
	WindowDays         int     `yaml:"window_days"`
	MaxGroups          int     `yaml:"max_groups"`
	MaxTriples         int     `yaml:"max_triples"`
	TripleNeighborhood int     `yaml:"triple_neighborhood"`
	PairNeighborhood   int     `yaml:"pair_neighborhood"`
	PairTarget         int     `yaml:"pair_target"`
	JitterMax          float64 `yaml:"jitter_max"`
	Timezone           string  `yaml:"timezone"`
}

func DefaultConfig() Config {
	return Config{
		WindowDays:         30,
		MaxGroups:          10,
		MaxTriples:         6,
		TripleNeighborhood: 6,
		PairNeighborhood:   3,
		PairTarget:         9,
		JitterMax:          50,
		Timezone:           "Asia/Seoul",
	}
}

// LoadConfig reads a YAML override file on top of the defaults. A missing
// path returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read engine config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse engine config: %w", err)
	}
	if cfg.WindowDays <= 0 || cfg.MaxGroups <= 0 || cfg.JitterMax < 0 {
		return cfg, fmt.Errorf("engine config out of range: window_days=%d max_groups=%d jitter_max=%f", cfg.WindowDays, cfg.MaxGroups, cfg.JitterMax)
	}
	return cfg, nil
}
