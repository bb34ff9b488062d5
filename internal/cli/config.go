package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the tagrel configuration, read from a TOML file.
//
// Example (~/.config/tagrel/config.toml):
//
//	case_sensitive = false
//
//	[store]
//	backend = "redis"
//	redis_addr = "localhost:6379"
type Config struct {
	// CaseSensitive controls tag name comparison in the graph.
	CaseSensitive bool `toml:"case_sensitive"`

	Store StoreConfig `toml:"store"`
}

// StoreConfig selects and configures the snapshot store backend.
type StoreConfig struct {
	// Backend is one of "file", "memory", "redis", or "mongo".
	Backend string `toml:"backend"`

	// Dir is the snapshot directory for the file backend.
	// Defaults to the XDG data directory.
	Dir string `toml:"dir"`

	// RedisAddr is the Redis server address for the redis backend.
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`

	// MongoURI is the connection string for the mongo backend.
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() Config {
	return Config{
		Store: StoreConfig{Backend: "file"},
	}
}

// LoadConfig reads the configuration from path, or from the default XDG
// location when path is empty. A missing file is not an error; defaults are
// returned.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		dir, err := configDir()
		if err != nil {
			return cfg, err
		}
		path = filepath.Join(dir, "config.toml")
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "file"
	}
	return cfg, nil
}
