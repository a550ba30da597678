package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the gearXchange client configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
}

// DatabaseConfig holds storage settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
	// Ephemeral databases are created fresh on startup and removed on
	// shutdown; the marketplace treats the store as scratch state.
	Ephemeral    bool `yaml:"ephemeral"`
	SeedFixtures bool `yaml:"seed_fixtures"`
}

// AuthConfig selects the credential hashing scheme.
// "legacy" keeps hashes compatible with existing stored records;
// "bcrypt" uses per-hash random salts but invalidates old hashes.
type AuthConfig struct {
	Scheme string `yaml:"scheme"`
}

// Load reads and parses a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}

// Default returns the configuration used when no config file overrides it.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:         "./data/gearxchange.db",
			Ephemeral:    true,
			SeedFixtures: true,
		},
		Auth: AuthConfig{
			Scheme: "legacy",
		},
	}
}
