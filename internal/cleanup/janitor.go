// Package cleanup owns the lifecycle of transient artifacts: per-file delayed
// removals scheduled after each job, plus a periodic sweep that catches
// anything orphaned by a crash.
package cleanup

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"clipforge/internal/config"
	"clipforge/internal/logging"
)

// transientPrefixes identifies the files the sweep is allowed to touch.
// Anything else in the working directories is left alone.
var transientPrefixes = []string{"audio_", "image_", "subtitles_", "video_"}

// Janitor tracks pending delayed removals and runs the periodic stale sweep.
type Janitor struct {
	logger     *slog.Logger
	uploadsDir string
	outputDir  string
	staleAfter time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
	cron   *cron.Cron
}

// NewJanitor constructs a Janitor from config. Start must be called to begin
// the periodic sweep; delayed removals work without it.
func NewJanitor(cfg *config.Config, logger *slog.Logger) *Janitor {
	return &Janitor{
		logger:     logging.NewComponentLogger(logger, "cleanup"),
		uploadsDir: cfg.Paths.UploadsDir,
		outputDir:  cfg.Paths.OutputDir,
		staleAfter: time.Duration(cfg.Workflow.StaleAfterMinutes) * time.Minute,
		timers:     make(map[string]*time.Timer),
	}
}

// ScheduleRemoval arms a delayed deletion for path. Scheduling the same path
// again resets its timer. Missing files are not an error when the timer fires.
func (j *Janitor) ScheduleRemoval(path string, after time.Duration) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if prev, ok := j.timers[path]; ok {
		prev.Stop()
	}
	j.timers[path] = time.AfterFunc(after, func() {
		j.removeTracked(path)
	})
	j.logger.Debug("scheduled removal", logging.String("path", path), logging.Duration("after", after))
}

// Cancel disarms a pending removal without deleting the file. Used when a
// caller takes ownership of an artifact the pipeline scheduled for expiry.
func (j *Janitor) Cancel(path string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if timer, ok := j.timers[path]; ok {
		timer.Stop()
		delete(j.timers, path)
	}
}

// RemoveNow deletes path immediately and cancels any pending timer for it.
func (j *Janitor) RemoveNow(path string) {
	j.mu.Lock()
	if timer, ok := j.timers[path]; ok {
		timer.Stop()
		delete(j.timers, path)
	}
	j.mu.Unlock()
	j.remove(path)
}

// Pending reports how many removals are armed. Intended for status reporting.
func (j *Janitor) Pending() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.timers)
}

// Start begins the periodic stale sweep at the configured interval.
func (j *Janitor) Start(interval time.Duration) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cron != nil {
		return
	}
	j.cron = cron.New()
	j.cron.Schedule(cron.Every(interval), cron.FuncJob(func() { j.Sweep() }))
	j.cron.Start()
	j.logger.Info("stale sweep started",
		logging.Duration("interval", interval),
		logging.Duration("stale_after", j.staleAfter),
	)
}

// Stop halts the sweep and flushes every pending removal immediately, so a
// clean shutdown never leaves armed-but-unfired deletions behind.
func (j *Janitor) Stop() {
	j.mu.Lock()
	if j.cron != nil {
		j.cron.Stop()
		j.cron = nil
	}
	pending := make([]string, 0, len(j.timers))
	for path, timer := range j.timers {
		timer.Stop()
		pending = append(pending, path)
	}
	j.timers = make(map[string]*time.Timer)
	j.mu.Unlock()

	for _, path := range pending {
		j.remove(path)
	}
	if len(pending) > 0 {
		j.logger.Info("flushed pending removals on shutdown", logging.Int("count", len(pending)))
	}
}

// Sweep removes transient files in the working directories whose modification
// time is older than the stale threshold. It only touches files matching the
// pipeline's artifact naming.
func (j *Janitor) Sweep() {
	cutoff := time.Now().Add(-j.staleAfter)
	removed := 0
	for _, dir := range []string{j.uploadsDir, j.outputDir} {
		if dir == "" {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				j.logger.Warn("sweep failed to read directory", logging.String("dir", dir), logging.Error(err))
			}
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !isTransientName(entry.Name()) {
				continue
			}
			info, err := entry.Info()
			if err != nil || info.ModTime().After(cutoff) {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			j.removeTracked(path)
			removed++
		}
	}
	if removed > 0 {
		j.logger.Info("sweep removed stale artifacts", logging.Int("count", removed))
	}
}

func isTransientName(name string) bool {
	for _, prefix := range transientPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// removeTracked deletes path and drops its timer entry if one exists.
func (j *Janitor) removeTracked(path string) {
	j.mu.Lock()
	if timer, ok := j.timers[path]; ok {
		timer.Stop()
		delete(j.timers, path)
	}
	j.mu.Unlock()
	j.remove(path)
}

func (j *Janitor) remove(path string) {
	if err := os.Remove(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			j.logger.Warn("failed to remove artifact", logging.String("path", path), logging.Error(err))
		}
		return
	}
	j.logger.Debug("removed artifact", logging.String("path", path))
}
