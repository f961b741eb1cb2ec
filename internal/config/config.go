// Package config loads process level settings from an optional YAML file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/artcc/contribdeck/internal/github"
	"github.com/artcc/contribdeck/internal/store"
)

const (
	DefaultRefreshInterval   = 30 * time.Minute
	DefaultHeartbeatInterval = 30 * time.Second
)

type Config struct {
	APIURL            string        `yaml:"api_url"`
	DBPath            string        `yaml:"db_path"`
	RefreshInterval   time.Duration `yaml:"refresh_interval"`
	Debug             bool          `yaml:"debug"`
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`

	// Token is only read from GITHUB_TOKEN and only used by the CLI.
	Token string `yaml:"-"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	dbPath, err := store.DefaultDBPath()
	if err != nil {
		dbPath = "contribdeck.db"
	}
	return Config{
		APIURL:            github.DefaultEndpoint,
		DBPath:            dbPath,
		RefreshInterval:   DefaultRefreshInterval,
		HeartbeatInterval: DefaultHeartbeatInterval,
	}
}

// DefaultPath returns <UserConfigDir>/contribdeck/config.yaml
func DefaultPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "contribdeck", "config.yaml"), nil
}

// Load reads path on top of the defaults and applies environment overrides.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = DefaultRefreshInterval
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = DefaultHeartbeatInterval
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("CONTRIBDECK_DEBUG"); ok && v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse CONTRIBDECK_DEBUG: %w", err)
		}
		c.Debug = debug
	}
	if v, ok := lookup("CONTRIBDECK_API_URL"); ok && v != "" {
		c.APIURL = v
	}
	if v, ok := lookup("CONTRIBDECK_DB"); ok && v != "" {
		c.DBPath = v
	}
	if v, ok := lookup("GITHUB_TOKEN"); ok {
		c.Token = v
	}
	return nil
}
