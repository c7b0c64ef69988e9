package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.yaml.in/yaml/v4"
)

const DefaultPath = "config.yaml"

type Config struct {
	Endpoint string `yaml:"endpoint"`
	UserID   string `yaml:"user_id"`
	Mode     string `yaml:"mode"`

	Cache struct {
		Driver string `yaml:"driver"`
		Path   string `yaml:"path"`
	} `yaml:"cache"`

	Remote struct {
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"remote"`

	Sync struct {
		MissThreshold int `yaml:"miss_threshold"`
	} `yaml:"sync"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		File   string `yaml:"file"`
	} `yaml:"log"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Nudge struct {
		From string `yaml:"from"`
	} `yaml:"nudge"`
}

func Default() *Config {
	c := &Config{
		UserID: "demo_user",
		Mode:   "cache-first",
	}
	c.Cache.Driver = "bolt"
	c.Cache.Path = defaultCachePath()
	c.Sync.MissThreshold = 3
	c.Log.Level = "info"
	c.Log.Format = "text"
	c.Server.Addr = "127.0.0.1:8080"
	c.Nudge.From = "Habits <onboarding@resend.dev>"
	return c
}

func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "habits.db"
	}
	return filepath.Join(dir, "habits", "habits.db")
}

// Load reads the YAML file at path, or at $HABITS_CONFIG when path is empty.
// A file that was asked for explicitly must exist; a missing config.yaml in
// the working directory just means defaults. Environment overrides are
// applied last.
func Load(path string) (*Config, error) {
	explicit := true
	if path == "" {
		path = os.Getenv("HABITS_CONFIG")
	}
	if path == "" {
		path = DefaultPath
		explicit = false
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Endpoint = getenv("HABITS_ENDPOINT", c.Endpoint)
	c.UserID = getenv("HABITS_USER_ID", c.UserID)
	c.Mode = getenv("HABITS_MODE", c.Mode)
	c.Cache.Path = getenv("HABITS_CACHE_PATH", c.Cache.Path)
	c.Log.Level = getenv("HABITS_LOG_LEVEL", c.Log.Level)

	if v := os.Getenv("HABITS_REMOTE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("HABITS_REMOTE_TIMEOUT must be a duration: %v", err)
		}
		c.Remote.Timeout = d
	}
	if v := os.Getenv("HABITS_MISS_THRESHOLD"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HABITS_MISS_THRESHOLD must be a valid integer: %v", err)
		}
		c.Sync.MissThreshold = n
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Mode {
	case "cache-first", "network-only":
	default:
		return fmt.Errorf("mode must be cache-first or network-only, got %q", c.Mode)
	}
	switch c.Cache.Driver {
	case "bolt", "sqlite", "none":
	default:
		return fmt.Errorf("cache.driver must be bolt, sqlite or none, got %q", c.Cache.Driver)
	}
	if c.Remote.Timeout < 0 {
		return fmt.Errorf("remote.timeout must not be negative")
	}
	if c.Sync.MissThreshold < 1 {
		return fmt.Errorf("sync.miss_threshold must be at least 1")
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
