// Package main provides the scraper command: one pass over the configured
// RSS feeds, archiving every newly discovered article. Runs are expected to
// be triggered externally (cron or a systemd timer).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"rssarchiver/internal/config"
	"rssarchiver/internal/feed"
	"rssarchiver/internal/job"
	"rssarchiver/internal/logger"
	"rssarchiver/internal/runguard"
)

// Exit codes. Lock contention gets its own code so an external scheduler can
// tell an overlapping run from a real failure.
const (
	exitOK            = 0
	exitFailure       = 1
	exitConcurrentRun = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	configFile := flag.String("config", "", "Path to YAML configuration file (optional)")
	feedsFile := flag.String("feeds", "", "Feed list file, one URL per line (overrides config)")
	dataDir := flag.String("data", "", "Data directory (overrides config)")
	flag.Parse()

	cfg, err := loadConfig(*configFile, *feedsFile, *dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)

		return exitFailure
	}

	if err := createRequiredFiles(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to prepare data files: %v\n", err)

		return exitFailure
	}

	level := cfg.Scraper.Logging.Level
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}

	var log *logger.Logger
	if cfg.Scraper.LogFile != "" {
		log, err = logger.NewLoggerWithFile(level, cfg.Scraper.LogFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)

			return exitFailure
		}
	} else {
		log = logger.NewLogger(level)
	}
	defer log.Close()

	guard := runguard.New(cfg.Scraper.LockFile, log)

	if err := guard.Acquire(); err != nil {
		if errors.Is(err, runguard.ErrConcurrentRun) {
			log.Error("another instance of this program is already running")

			return exitConcurrentRun
		}

		log.Critical("failed to acquire run lock", "error", err)

		return exitFailure
	}

	defer func() {
		guard.Release()
		log.Info("finished scraping RSS feeds")
	}()

	// An interrupt stops the fetch loop; the cache and archive still flush
	// and the deferred release still removes the sentinel file.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := job.New(cfg, log).Run(ctx); err != nil {
		log.Critical("run failed", "error", err)

		return exitFailure
	}

	return exitOK
}

// loadConfig loads the YAML config (or the built-in defaults) and applies
// command-line overrides.
func loadConfig(configFile, feedsFile, dataDir string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)

	if configFile != "" {
		cfg, err = config.LoadConfig(configFile)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.DefaultConfig()
	}

	if feedsFile != "" {
		cfg.Scraper.FeedsFile = feedsFile
	}

	if dataDir != "" {
		cfg.Scraper.DataDir = dataDir
		cfg.Scraper.ArticlesDir = filepath.Join(dataDir, "articles")
		cfg.Scraper.CacheFile = filepath.Join(dataDir, "scraped_urls_cache.json")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// createRequiredFiles creates the data directories and an empty feed list if
// they do not already exist.
func createRequiredFiles(cfg *config.Config) error {
	if err := os.MkdirAll(cfg.Scraper.DataDir, 0o755); err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Scraper.ArticlesDir, 0o755); err != nil {
		return err
	}

	return feed.EnsureSourcesFile(cfg.Scraper.FeedsFile)
}
