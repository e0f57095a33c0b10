// Package janitor removes aged files from the cache directory and prunes
// old operation history.
package janitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ducnd58233/dataset-cache/internal/port"
)

// Config contains janitor configuration
type Config struct {
	// SweepInterval is how often the periodic loop sweeps
	SweepInterval time.Duration

	// Retention is the maximum age of cache files and history rows
	Retention time.Duration
}

// DefaultConfig returns default janitor configuration
func DefaultConfig() *Config {
	return &Config{
		SweepInterval: time.Hour,
		Retention:     30 * 24 * time.Hour,
	}
}

// Janitor handles cache cleanup. Sweeps are best-effort: a failed cleanup
// must never take down the calling process.
type Janitor struct {
	config  *Config
	fs      port.FileSystem
	history port.HistoryRepository
	logger  *zap.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a new Janitor. history may be nil when no operation store is
// configured.
func New(cfg *Config, fs port.FileSystem, history port.HistoryRepository, logger *zap.Logger) *Janitor {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = time.Hour
	}

	return &Janitor{
		config:  cfg,
		fs:      fs,
		history: history,
		logger:  logger,
	}
}

// Sweep removes files directly under the cache root whose last-modified
// time is older than maxAge. It does not recurse into subdirectories.
// Errors are logged and end the sweep early without being returned.
func (j *Janitor) Sweep(maxAge time.Duration) {
	threshold := time.Now().Add(-maxAge)

	files, err := j.fs.ListCacheFiles()
	if err != nil {
		j.logger.Error("cache cleanup failed", zap.Error(err))
		return
	}

	removed := 0
	for _, file := range files {
		if !file.ModTime.Before(threshold) {
			continue
		}
		if err := j.fs.Delete(file.Path); err != nil {
			j.logger.Error("cache cleanup failed",
				zap.String("file", file.Path),
				zap.Error(err))
			return
		}
		j.logger.Info("removed old cache file",
			zap.String("file", file.Path),
			zap.Int64("size", file.Size))
		removed++
	}

	if removed > 0 {
		j.logger.Info("cache sweep completed", zap.Int("removed", removed))
	}
}

// Start runs the periodic sweep loop until ctx is cancelled or Stop is
// called.
func (j *Janitor) Start(ctx context.Context) error {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		return fmt.Errorf("janitor already running")
	}
	j.running = true
	ctx, j.cancel = context.WithCancel(ctx)
	j.mu.Unlock()

	j.logger.Info("janitor started",
		zap.Duration("sweep_interval", j.config.SweepInterval),
		zap.Duration("retention", j.config.Retention))

	j.wg.Add(1)
	go j.sweepLoop(ctx)

	<-ctx.Done()
	j.wg.Wait()
	j.logger.Info("janitor stopped")
	return nil
}

// Stop stops the periodic sweep loop
func (j *Janitor) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cancel != nil {
		j.cancel()
	}
	j.running = false
}

// sweepLoop handles periodic sweeps
func (j *Janitor) sweepLoop(ctx context.Context) {
	defer j.wg.Done()

	ticker := time.NewTicker(j.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.Sweep(j.config.Retention)
			j.pruneHistory()
		}
	}
}

// pruneHistory removes operation rows older than the retention threshold
func (j *Janitor) pruneHistory() {
	if j.history == nil {
		return
	}

	pruned, err := j.history.PruneOlderThan(j.config.Retention)
	if err != nil {
		j.logger.Error("failed to prune operation history", zap.Error(err))
	} else if pruned > 0 {
		j.logger.Info("pruned old operation history", zap.Int("count", pruned))
	}
}
