package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// BasicAuthConfig holds HTTP Basic Auth credentials for the Web UI/API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the Web UI and API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone used for all calendar-day math
	// (e.g. "Asia/Kolkata"). Empty means the system local zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// WeekStart controls which weekday the calendar UI treats as the first
	// day of the week. Supported values: "sunday" (default), "monday".
	WeekStart string `yaml:"week_start" json:"week_start"`

	// ReminderRefresh is a cron-style schedule string (e.g. "*/15 * * * *")
	// for periodic reminder re-evaluation. The store also triggers an
	// immediate re-evaluation on every mutation, independent of this.
	ReminderRefresh string `yaml:"reminder_refresh" json:"reminder_refresh"`

	// BannerLimit caps how many reminder banners the API hands to the UI at
	// once. The reminder engine always computes the complete active set;
	// this is a presentation cap only.
	BannerLimit int `yaml:"banner_limit" json:"banner_limit"`

	// DataDir is where the persisted diary state lives.
	DataDir string `yaml:"data_dir" json:"data_dir"`

	// SeedSamples controls whether an empty diary is seeded with a few
	// illustrative engagements on first run.
	SeedSamples *bool `yaml:"seed_samples" json:"seed_samples"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// envOverrides are applied on top of the YAML file, mycelian-style:
// PHOTODIARY_LISTEN, PHOTODIARY_TIMEZONE, PHOTODIARY_DATA_DIR, ...
type envOverrides struct {
	Listen          string `envconfig:"LISTEN"`
	Timezone        string `envconfig:"TIMEZONE"`
	WeekStart       string `envconfig:"WEEK_START"`
	ReminderRefresh string `envconfig:"REMINDER_REFRESH"`
	BannerLimit     int    `envconfig:"BANNER_LIMIT"`
	DataDir         string `envconfig:"DATA_DIR"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	seed := true
	return &Config{
		Listen:          "127.0.0.1:8080",
		Timezone:        "",
		WeekStart:       "sunday",
		ReminderRefresh: "*/15 * * * *",
		BannerLimit:     5,
		DataDir:         "/var/lib/photodiary",
		SeedSamples:     &seed,
		BasicAuth:       nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	switch c.WeekStart {
	case "sunday", "monday":
		// ok
	case "":
		c.WeekStart = "sunday"
	default:
		// Unknown value; fall back to sunday to avoid surprising layouts.
		c.WeekStart = "sunday"
	}
	if c.ReminderRefresh == "" {
		c.ReminderRefresh = "*/15 * * * *"
	}
	if c.BannerLimit <= 0 {
		c.BannerLimit = 5
	}
	if c.DataDir == "" {
		c.DataDir = "/var/lib/photodiary"
	}
	if c.SeedSamples == nil {
		seed := true
		c.SeedSamples = &seed
	}
}

// SeedSamplesEnabled reports the effective seed_samples value.
func (c *Config) SeedSamplesEnabled() bool {
	return c.SeedSamples == nil || *c.SeedSamples
}

// Load loads configuration from the given YAML path and applies
// PHOTODIARY_* environment overrides on top.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			cfg.applyEnv()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	cfg.applyEnv()

	return &cfg, nil
}

// applyEnv overlays PHOTODIARY_* environment variables onto the config.
func (c *Config) applyEnv() {
	var o envOverrides
	if err := envconfig.Process("photodiary", &o); err != nil {
		return
	}
	if o.Listen != "" {
		c.Listen = o.Listen
	}
	if o.Timezone != "" {
		c.Timezone = o.Timezone
	}
	if o.WeekStart != "" {
		c.WeekStart = o.WeekStart
	}
	if o.ReminderRefresh != "" {
		c.ReminderRefresh = o.ReminderRefresh
	}
	if o.BannerLimit > 0 {
		c.BannerLimit = o.BannerLimit
	}
	if o.DataDir != "" {
		c.DataDir = o.DataDir
	}
	c.Normalize()
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".photodiary-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	// Flush and close before chmod/rename.
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
