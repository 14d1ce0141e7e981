// Package config provides configuration management for the scraper job.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrMissingDataDir      = errors.New("data_dir is required")
	ErrMissingFeedsFile    = errors.New("feeds_file is required")
	ErrMissingLockFile     = errors.New("lock_file is required")
	ErrNegativeMinDelay    = errors.New("throttle.min_delay_sec must be non-negative")
	ErrMinDelayExceedsMax  = errors.New("throttle.min_delay_sec cannot exceed throttle.max_delay_sec")
	ErrInvalidConcurrency  = errors.New("throttle.concurrency must be at least 1")
	ErrInvalidFetchTimeout = errors.New("fetch.timeout_sec must be at least 1")
	ErrInvalidMaxBody      = errors.New("fetch.max_body_kb must be at least 1")
	ErrInvalidLogLevel     = errors.New("logging.level must be one of: debug, info, warning, error, critical")
)

// Config represents the complete scraper configuration.
type Config struct {
	Scraper ScraperConfig `yaml:"scraper"`
}

// ScraperConfig contains scraper-specific settings.
type ScraperConfig struct {
	DataDir     string         `yaml:"data_dir"`
	ArticlesDir string         `yaml:"articles_dir"`
	FeedsFile   string         `yaml:"feeds_file"`
	CacheFile   string         `yaml:"cache_file"`
	LockFile    string         `yaml:"lock_file"`
	LogFile     string         `yaml:"log_file"`
	Throttle    ThrottleConfig `yaml:"throttle"`
	Fetch       FetchConfig    `yaml:"fetch"`
	Logging     LoggingConfig  `yaml:"logging"`
}

// ThrottleConfig defines the per-entry request throttling behavior.
type ThrottleConfig struct {
	MinDelaySec int `yaml:"min_delay_sec"`
	MaxDelaySec int `yaml:"max_delay_sec"`
	Concurrency int `yaml:"concurrency"`
}

// FetchConfig defines article download behavior.
type FetchConfig struct {
	TimeoutSec int    `yaml:"timeout_sec"`
	MaxBodyKb  int    `yaml:"max_body_kb"`
	UserAgent  string `yaml:"user_agent"`
}

// LoggingConfig defines logging behavior. An empty level means "use the
// LOG_LEVEL environment variable, or WARNING".
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultUserAgent is sent on article fetches to avoid being blocked.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// DefaultConfig returns the configuration used when no config file is given.
func DefaultConfig() *Config {
	cfg := &Config{
		Scraper: ScraperConfig{
			DataDir:   "data",
			FeedsFile: "rss_urls.txt",
			LockFile:  "lockfile.lock",
			LogFile:   "logs.txt",
			Throttle: ThrottleConfig{
				MinDelaySec: 5,
				MaxDelaySec: 15,
				Concurrency: 1,
			},
			Fetch: FetchConfig{
				TimeoutSec: 30,
				MaxBodyKb:  2048,
				UserAgent:  DefaultUserAgent,
			},
		},
	}
	cfg.applyDerivedDefaults()

	return cfg
}

// applyDerivedDefaults fills in paths derived from data_dir and zero-valued
// settings that have a sensible default.
func (c *Config) applyDerivedDefaults() {
	s := &c.Scraper

	if s.ArticlesDir == "" && s.DataDir != "" {
		s.ArticlesDir = filepath.Join(s.DataDir, "articles")
	}

	if s.CacheFile == "" && s.DataDir != "" {
		s.CacheFile = filepath.Join(s.DataDir, "scraped_urls_cache.json")
	}

	if s.Throttle.Concurrency == 0 {
		s.Throttle.Concurrency = 1
	}

	if s.Fetch.TimeoutSec == 0 {
		s.Fetch.TimeoutSec = 30
	}

	if s.Fetch.MaxBodyKb == 0 {
		s.Fetch.MaxBodyKb = 2048
	}

	if s.Fetch.UserAgent == "" {
		s.Fetch.UserAgent = DefaultUserAgent
	}
}

// LoadConfig loads configuration from a YAML file.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.applyDerivedDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	s := &c.Scraper

	if s.DataDir == "" {
		return ErrMissingDataDir
	}

	if s.FeedsFile == "" {
		return ErrMissingFeedsFile
	}

	if s.LockFile == "" {
		return ErrMissingLockFile
	}

	if s.Throttle.MinDelaySec < 0 {
		return ErrNegativeMinDelay
	}

	if s.Throttle.MinDelaySec > s.Throttle.MaxDelaySec {
		return ErrMinDelayExceedsMax
	}

	if s.Throttle.Concurrency < 1 {
		return ErrInvalidConcurrency
	}

	if s.Fetch.TimeoutSec < 1 {
		return ErrInvalidFetchTimeout
	}

	if s.Fetch.MaxBodyKb < 1 {
		return ErrInvalidMaxBody
	}

	if s.Logging.Level != "" {
		validLevels := map[string]bool{
			"debug": true, "info": true, "warning": true, "warn": true,
			"error": true, "critical": true,
		}
		if !validLevels[s.Logging.Level] {
			return ErrInvalidLogLevel
		}
	}

	return nil
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Data: %s, Feeds: %s, Delay: %d-%ds}",
		c.Scraper.DataDir,
		c.Scraper.FeedsFile,
		c.Scraper.Throttle.MinDelaySec,
		c.Scraper.Throttle.MaxDelaySec,
	)
}
