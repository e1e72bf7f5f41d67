// Package config loads the optional YAML settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/timeledger/internal/constants"
	"github.com/julianstephens/timeledger/internal/utils"
)

// Config is the effective configuration after defaults, file, environment
// and flags are applied.
type Config struct {
	Database     string
	Timezone     string
	ReportDir    string
	StoreTimeout time.Duration
	Debug        bool
}

type yamlConfig struct {
	Database     string `yaml:"database,omitempty"`
	Timezone     string `yaml:"timezone,omitempty"`
	ReportDir    string `yaml:"report_dir,omitempty"`
	StoreTimeout string `yaml:"store_timeout,omitempty"`
	Debug        bool   `yaml:"debug,omitempty"`
}

func Default() Config {
	return Config{
		Database:     constants.DefaultDBPath,
		Timezone:     constants.DefaultTimezone,
		ReportDir:    constants.DefaultReportDir,
		StoreTimeout: constants.DefaultStoreTimeout,
	}
}

// Path resolves the config file location: explicit path, then
// TIMELEDGER_CONFIG, then the default directory.
func Path(explicit string) (string, error) {
	p := explicit
	if p == "" {
		p = os.Getenv(constants.EnvConfigFile)
	}
	if p == "" {
		p = filepath.Join(constants.DefaultConfigDir, constants.ConfigFileName)
	}
	return ExpandHome(p)
}

// Load reads the YAML file at path over the defaults. A missing file yields
// the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	var file yamlConfig
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return cfg, fmt.Errorf("parse config yaml: %w", err)
	}
	if err := apply(&cfg, file); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func apply(cfg *Config, file yamlConfig) error {
	if file.Database != "" {
		cfg.Database = file.Database
	}
	if file.Timezone != "" {
		cfg.Timezone = file.Timezone
	}
	if file.ReportDir != "" {
		cfg.ReportDir = file.ReportDir
	}
	if file.StoreTimeout != "" {
		d, err := time.ParseDuration(file.StoreTimeout)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", constants.SettingStoreTimeout, file.StoreTimeout, err)
		}
		cfg.StoreTimeout = d
	}
	cfg.Debug = cfg.Debug || file.Debug
	return cfg.Validate()
}

// Validate checks values that would otherwise fail later at use.
func (c Config) Validate() error {
	if !utils.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("invalid %s %q", constants.SettingTimezone, c.Timezone)
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("%s must be positive", constants.SettingStoreTimeout)
	}
	return nil
}

// Save writes cfg to path, creating the directory if needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	out, err := yaml.Marshal(yamlConfig{
		Database:     cfg.Database,
		Timezone:     cfg.Timezone,
		ReportDir:    cfg.ReportDir,
		StoreTimeout: cfg.StoreTimeout.String(),
		Debug:        cfg.Debug,
	})
	if err != nil {
		return fmt.Errorf("marshal config yaml: %w", err)
	}
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}
