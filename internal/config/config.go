// Package config loads the optional wiring configuration file.
//
// Settings are resolved in three layers: built-in defaults, the TOML file,
// then WIRING_* environment variables. Command-line flags are applied by the
// CLI on top of the result.
//
// Environment variables:
//
//	WIRING_STRICT       strict policy (true/false)
//	WIRING_COMBINE      combined diagram output (true/false)
//	WIRING_FORMATS      comma-separated output formats
//	WIRING_PALETTE      path of an alternate color table
//	WIRING_CACHE_DIR    artifact cache directory
//	WIRING_REDIS_URL    use a Redis artifact cache
//	WIRING_SERVER_ADDR  listen address of "wiring serve"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	werrors "github.com/matzehuels/wiring/pkg/errors"
	"github.com/matzehuels/wiring/pkg/wiring"
)

// Formats accepted in the formats list.
var Formats = []string{"svg", "pdf", "png", "dot", "json"}

// Config holds all settings.
type Config struct {
	Strict        bool     `toml:"strict"`
	Combine       bool     `toml:"combine"`
	Formats       []string `toml:"formats"`
	FailOnWarning bool     `toml:"fail_on_warning"`
	// Palette is the path of an alternate color table, relative to the
	// config file.
	Palette string `toml:"palette"`

	Render RenderConfig `toml:"render"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// RenderConfig controls diagram appearance.
type RenderConfig struct {
	Font       string `toml:"font"`
	Background string `toml:"background"`
	TitleColor string `toml:"title_color"`
}

// CacheConfig selects the artifact cache.
type CacheConfig struct {
	Enabled  bool     `toml:"enabled"`
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url"`
	TTL      Duration `toml:"ttl"`
}

// ServerConfig configures "wiring serve".
type ServerConfig struct {
	Addr         string `toml:"addr"`
	MaxBodyBytes int64  `toml:"max_body_bytes"`
}

// Duration is a time.Duration written as a Go duration string ("168h").
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Formats: []string{"svg"},
		Render: RenderConfig{
			Font:       "Roboto",
			Background: "#CCCCCC",
			TitleColor: "lightblue",
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     Duration{7 * 24 * time.Hour},
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8080",
			MaxBodyBytes: 1 << 20,
		},
	}
}

// DefaultPath returns the config file location: $XDG_CONFIG_HOME/wiring/config.toml,
// falling back to ~/.config/wiring/config.toml.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "wiring", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "wiring", "config.toml"), nil
}

// Load reads the configuration at path, applies environment overrides and
// validates the result.
//
// An empty path loads [DefaultPath] if that file exists and the defaults
// otherwise. A named file that does not exist is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := Parse(data, cfg); err != nil {
			return nil, werrors.Wrap(werrors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
		if cfg.Palette != "" && !filepath.IsAbs(cfg.Palette) {
			cfg.Palette = filepath.Join(filepath.Dir(path), cfg.Palette)
		}
	case os.IsNotExist(err) && !explicit:
	case os.IsNotExist(err):
		return nil, werrors.Wrap(werrors.ErrCodeFileNotFound, err, "config file %s", path)
	default:
		return nil, werrors.Wrap(werrors.ErrCodeInvalidConfig, err, "read %s", path)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes TOML into cfg. Keys absent from data keep their current
// values; unknown keys are rejected.
func Parse(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("WIRING_STRICT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return werrors.New(werrors.ErrCodeInvalidConfig, "WIRING_STRICT: invalid boolean %q", v)
		}
		cfg.Strict = b
	}
	if v := os.Getenv("WIRING_COMBINE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return werrors.New(werrors.ErrCodeInvalidConfig, "WIRING_COMBINE: invalid boolean %q", v)
		}
		cfg.Combine = b
	}
	if v := os.Getenv("WIRING_FORMATS"); v != "" {
		cfg.Formats = wiring.SplitList(v)
	}
	if v := os.Getenv("WIRING_PALETTE"); v != "" {
		cfg.Palette = v
	}
	if v := os.Getenv("WIRING_CACHE_DIR"); v != "" {
		cfg.Cache.Dir = v
	}
	if v := os.Getenv("WIRING_REDIS_URL"); v != "" {
		cfg.Cache.RedisURL = v
	}
	if v := os.Getenv("WIRING_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	return nil
}

// Validate reports every invalid setting in one error.
func (c *Config) Validate() error {
	var errs []string

	if len(c.Formats) > 0 {
		if err := werrors.ValidateFormats(c.Formats, Formats); err != nil {
			errs = append(errs, "formats: "+werrors.UserMessage(err))
		}
	}
	if c.Cache.TTL.Duration < 0 {
		errs = append(errs, "cache.ttl must not be negative")
	}
	if c.Cache.RedisURL != "" {
		if err := werrors.ValidateURL(c.Cache.RedisURL, "redis", "rediss"); err != nil {
			errs = append(errs, "cache.redis_url: "+err.Error())
		}
	}
	if c.Server.Addr == "" {
		errs = append(errs, "server.addr is required")
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, "server.max_body_bytes must be positive")
	}

	if len(errs) > 0 {
		return werrors.New(werrors.ErrCodeInvalidConfig, "configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}
