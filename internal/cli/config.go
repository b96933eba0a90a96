package cli

import (
	"github.com/kelseyhightower/envconfig"
)

// Config holds CLI configuration. Environment variables provide the
// base values; flags override them.
type Config struct {
	Storage  string `envconfig:"VOXNOTE_STORAGE" default:"redis"`
	RedisURL string `envconfig:"VOXNOTE_REDIS_URL" default:"redis://localhost:6379"`

	Output  string `ignored:"true"`
	Verbose bool   `ignored:"true"`
}

// DefaultConfig returns configuration seeded from the environment.
func DefaultConfig() *Config {
	cfg := &Config{Output: "text"}
	if err := envconfig.Process("", cfg); err != nil {
		// Only possible with malformed environment values.
		cfg.Storage = "redis"
		cfg.RedisURL = "redis://localhost:6379"
	}
	return cfg
}
