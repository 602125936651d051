package config

import (
	"os"
	"time"

	"github.com/tnicklin/timebudget/fetch"
	"github.com/tnicklin/timebudget/logger"
	"github.com/tnicklin/timebudget/store"
	"go.uber.org/config"
)

// ClockConfig holds NTP clock configuration. When disabled, recorded
// timestamps come straight from the system clock.
type ClockConfig struct {
	NTP         bool          `yaml:"ntp"`
	NTPServer   string        `yaml:"ntp_server"`
	NTPInterval time.Duration `yaml:"ntp_interval"`
}

// AppConfig holds all application configuration.
type AppConfig struct {
	Logger  logger.Config `yaml:"logger"`
	Clock   ClockConfig   `yaml:"clock"`
	Fetch   fetch.Config  `yaml:"fetch"`
	Store   store.Config  `yaml:"store"`
	Targets []string      `yaml:"targets"`
}

// Load reads configuration from the specified YAML files.
// Files are merged in order, with later files overriding earlier ones.
// Missing files are silently ignored.
func Load(files ...string) (*AppConfig, error) {
	opts := make([]config.YAMLOption, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			opts = append(opts, config.File(f))
		}
	}

	if len(opts) == 0 {
		return nil, os.ErrNotExist
	}

	provider, err := config.NewYAML(opts...)
	if err != nil {
		return nil, err
	}

	var cfg AppConfig
	if err := provider.Get(config.Root).Populate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadWithDefaults loads configuration with sensible defaults.
func LoadWithDefaults(files ...string) (*AppConfig, error) {
	cfg, err := Load(files...)
	if err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// Default returns a config with every default applied, for running
// without any config file.
func Default() *AppConfig {
	cfg := &AppConfig{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills in every unset field.
func (cfg *AppConfig) ApplyDefaults() {
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = "info"
	}
	if len(cfg.Logger.OutputPaths) == 0 {
		cfg.Logger.OutputPaths = []string{"stderr"}
	}
	if cfg.Clock.NTPServer == "" {
		cfg.Clock.NTPServer = "pool.ntp.org"
	}
	if cfg.Clock.NTPInterval == 0 {
		cfg.Clock.NTPInterval = 30 * time.Minute
	}
	cfg.Fetch.Defaults()
	if cfg.Store.Path == "" {
		cfg.Store.Path = "data/timebudget.db"
	}
}
