package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads, defaults, and validates a council configuration file.
// The extension selects the decoder: .yaml/.yml use YAML, everything
// else is treated as JSON.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse yaml config: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse json config: %w", err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills the optional knobs the file may omit.
func (c *Config) applyDefaults() {
	if c.SessionPolicy.MaxPhaseTransitions == 0 {
		c.SessionPolicy.MaxPhaseTransitions = 12
	}
	if c.SessionPolicy.PhaseContextVerbosity == "" {
		c.SessionPolicy.PhaseContextVerbosity = VerbosityStandard
	}
	if c.Output.Type == "" {
		c.Output.Type = OutputNone
	}
	if c.Execution.DefaultExecutorProfile == "" {
		c.Execution.DefaultExecutorProfile = "default"
	}
	for i := range c.Phases {
		p := &c.Phases[i]
		if p.Governance.MajorityThreshold == 0 {
			p.Governance.MajorityThreshold = 0.5
		}
		if p.StopConditions.MaxRounds == 0 {
			p.StopConditions.MaxRounds = 3
		}
		if p.Fallback.Action == "" {
			p.Fallback.Action = FallbackEndSession
		}
		if p.Fallback.Resolution == "" {
			p.Fallback.Resolution = fmt.Sprintf("Phase %q ended without consensus.", p.ID)
		}
	}
}
