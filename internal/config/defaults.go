package config

import "github.com/roach88/playtree/internal/engine"

// Default returns a Config populated with defaults.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			MaxTraversalSteps: engine.DefaultMaxTraversalSteps,
		},
		Session: SessionConfig{
			DB: "playtree.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	if c.Engine.MaxTraversalSteps == 0 {
		c.Engine.MaxTraversalSteps = d.Engine.MaxTraversalSteps
	}
	if c.Session.DB == "" {
		c.Session.DB = d.Session.DB
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
}
