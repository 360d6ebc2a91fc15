package config

// Config is the root configuration structure.
type Config struct {
	Engine  EngineConfig  `toml:"engine" envPrefix:"ENGINE_"`
	Session SessionConfig `toml:"session" envPrefix:"SESSION_"`
	Log     LogConfig     `toml:"log" envPrefix:"LOG_"`
}

// EngineConfig holds playback engine tunables.
type EngineConfig struct {
	MaxTraversalSteps int `toml:"max_traversal_steps" env:"MAX_TRAVERSAL_STEPS"`
}

// SessionConfig holds session journal settings.
type SessionConfig struct {
	DB   string `toml:"db" env:"DB"`
	Seed int64  `toml:"seed" env:"SEED"` // 0 draws a fresh seed per session
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level" env:"LEVEL"`
	Format string `toml:"format" env:"FORMAT"`
}
