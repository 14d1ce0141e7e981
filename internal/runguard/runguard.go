// Package runguard prevents overlapping executions of the scraper job using
// an exclusive advisory lock on a sentinel file.
package runguard

import (
	"errors"
	"fmt"
	"os"

	"github.com/gofrs/flock"

	"rssarchiver/internal/logger"
)

// ErrConcurrentRun indicates another instance already holds the run lock.
var ErrConcurrentRun = errors.New("another instance is already running")

// Guard is a process-level mutual exclusion handle. Acquire takes the lock
// non-blockingly; Release must run on every exit path.
type Guard struct {
	lock *flock.Flock
	log  *logger.Logger
	held bool
}

// New creates a guard over the sentinel file at path.
func New(path string, log *logger.Logger) *Guard {
	return &Guard{
		lock: flock.New(path),
		log:  log,
	}
}

// Acquire attempts to take the exclusive lock without blocking. It creates
// the sentinel file if it does not exist. When the lock is held elsewhere it
// returns ErrConcurrentRun and the caller must abort without further work.
func (g *Guard) Acquire() error {
	locked, err := g.lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to lock sentinel file %s: %w", g.lock.Path(), err)
	}

	if !locked {
		return ErrConcurrentRun
	}

	g.held = true

	return nil
}

// Release unlocks and removes the sentinel file. Cleanup is best-effort:
// failures are logged, never escalated. Safe to call when the lock was never
// acquired.
func (g *Guard) Release() {
	if !g.held {
		return
	}

	g.held = false

	if err := g.lock.Unlock(); err != nil {
		g.log.Warn("failed to unlock sentinel file", "path", g.lock.Path(), "error", err)
	}

	if err := os.Remove(g.lock.Path()); err != nil && !os.IsNotExist(err) {
		g.log.Warn("failed to remove sentinel file", "path", g.lock.Path(), "error", err)
	}
}

// Held reports whether this guard currently holds the lock.
func (g *Guard) Held() bool {
	return g.held
}

// Path returns the sentinel file path.
func (g *Guard) Path() string {
	return g.lock.Path()
}
