//go:build !ios && !android && (amd64 || arm64)

package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/obinnaokechukwu/adlgo"
	"github.com/obinnaokechukwu/adlgo/internal/monitor"
)

// Config is the adlmon configuration. Values come from the YAML file, then
// ADLMON_* environment variables, then command-line flags.
type Config struct {
	Scope        string        `yaml:"scope"`
	Threading    string        `yaml:"threading"`
	Library      string        `yaml:"library"`
	VendorID     int           `yaml:"vendor_id"`
	Interval     time.Duration `yaml:"interval"`
	History      int           `yaml:"history"`
	HotspotLimit int           `yaml:"hotspot_limit"`
	Bell         bool          `yaml:"bell"`
	Refresh      bool          `yaml:"refresh"`

	// OnStall is a shell command run when an adapter reports an invalid
	// fan reading. Adapters are read again afterwards and the alert is
	// raised only if the fan is still stalled.
	OnStall        string        `yaml:"on_stall"`
	OnStallTimeout time.Duration `yaml:"on_stall_timeout"`

	Log LogConfig `yaml:"log"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
	File        string `yaml:"file"`
	MaxSizeMB   int    `yaml:"max_size_mb"`
	MaxBackups  int    `yaml:"max_backups"`
	MaxAgeDays  int    `yaml:"max_age_days"`
	Compress    bool   `yaml:"compress"`
}

// MinInterval is the shortest accepted poll interval.
const MinInterval = 250 * time.Millisecond

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	mon := monitor.DefaultConfig()
	return Config{
		Scope:     "connected",
		Threading: "unlocked",
		VendorID:  adlgo.VendorATI,
		Interval:  mon.Interval,
		History:   mon.HistorySize,
		Bell:      true,

		OnStallTimeout: 30 * time.Second,
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
	}
}

// LoadConfig reads path over the defaults and applies environment overrides.
// A missing file is not an error when path is empty.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}
	flag := func(key string, dst *bool) error {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = b
		return nil
	}

	str("ADLMON_SCOPE", &c.Scope)
	str("ADLMON_THREADING", &c.Threading)
	str("ADLMON_LIBRARY", &c.Library)
	str("ADLMON_LOG_LEVEL", &c.Log.Level)
	str("ADLMON_LOG_FILE", &c.Log.File)
	str("ADLMON_ON_STALL", &c.OnStall)
	if v, ok := os.LookupEnv("ADLMON_INTERVAL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ADLMON_INTERVAL: %w", err)
		}
		c.Interval = d
	}
	return errors.Join(
		num("ADLMON_VENDOR_ID", &c.VendorID),
		num("ADLMON_HISTORY", &c.History),
		num("ADLMON_HOTSPOT_LIMIT", &c.HotspotLimit),
		flag("ADLMON_BELL", &c.Bell),
		flag("ADLMON_REFRESH", &c.Refresh),
		flag("ADLMON_DEV", &c.Log.Development),
	)
}

// Validate checks the configuration.
func (c Config) Validate() error {
	var errs []error
	if _, err := c.EnumerationScope(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.ThreadingModel(); err != nil {
		errs = append(errs, err)
	}
	if c.Interval < MinInterval {
		errs = append(errs, fmt.Errorf("interval %s is below %s", c.Interval, MinInterval))
	}
	if c.History <= 0 {
		errs = append(errs, fmt.Errorf("history must be positive, got %d", c.History))
	}
	if c.HotspotLimit < 0 {
		errs = append(errs, fmt.Errorf("hotspot_limit must not be negative, got %d", c.HotspotLimit))
	}
	if c.OnStall != "" && c.OnStallTimeout <= 0 {
		errs = append(errs, fmt.Errorf("on_stall_timeout must be positive, got %s", c.OnStallTimeout))
	}
	if c.VendorID < 0 {
		errs = append(errs, fmt.Errorf("vendor_id must not be negative, got %d", c.VendorID))
	}
	return errors.Join(errs...)
}

// EnumerationScope parses Scope.
func (c Config) EnumerationScope() (adlgo.EnumerationScope, error) {
	switch strings.ToLower(c.Scope) {
	case "all":
		return adlgo.AllEverPresent, nil
	case "connected", "":
		return adlgo.ConnectedOnly, nil
	}
	return 0, fmt.Errorf("scope must be all or connected, got %q", c.Scope)
}

// ThreadingModel parses Threading.
func (c Config) ThreadingModel() (adlgo.ThreadingModel, error) {
	switch strings.ToLower(c.Threading) {
	case "unlocked", "":
		return adlgo.ThreadingUnlocked, nil
	case "locked":
		return adlgo.ThreadingLocked, nil
	}
	return 0, fmt.Errorf("threading must be unlocked or locked, got %q", c.Threading)
}

// MonitorConfig returns the collector configuration. log receives the
// output of the on_stall command.
func (c Config) MonitorConfig(log *zap.Logger) monitor.Config {
	mc := monitor.Config{Interval: c.Interval, HistorySize: c.History, HotspotLimit: c.HotspotLimit}
	if c.OnStall != "" {
		if log == nil {
			log = zap.NewNop()
		}
		mc.Remediate = &commandRemediator{command: c.OnStall, timeout: c.OnStallTimeout, log: log}
	}
	return mc
}
