// Package daemon runs the long-lived service: single-instance locking, the
// HTTP API, the cleanup janitor, and the periodic stale-session sweep.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/robfig/cron/v3"

	"clipforge/internal/assembly"
	"clipforge/internal/cleanup"
	"clipforge/internal/config"
	"clipforge/internal/encoding"
	"clipforge/internal/logging"
	"clipforge/internal/session"
	"clipforge/internal/tts"
)

// Daemon coordinates the background services and enforces single-instance
// execution via a file lock.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	pipeline *assembly.Pipeline
	sessions *session.Store
	janitor  *cleanup.Janitor

	lockPath string
	lock     *flock.Flock

	api   *apiServer
	sweep *cron.Cron

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status is the daemon's runtime report.
type Status struct {
	Running         bool   `json:"running"`
	FFmpegAvailable bool   `json:"ffmpeg_available"`
	Sessions        int    `json:"sessions"`
	PendingCleanups int    `json:"pending_cleanups"`
	LockFilePath    string `json:"lock_file_path"`
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || logger == nil {
		return nil, errors.New("daemon requires config and logger")
	}

	providers, err := tts.ProvidersFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("build tts cascade: %w", err)
	}

	janitor := cleanup.NewJanitor(cfg, logger)
	synth := tts.NewSynthesizer(cfg.Paths.UploadsDir, logger, providers...)
	lockPath := filepath.Join(cfg.Paths.LogDir, "clipforged.lock")

	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		pipeline: assembly.NewPipeline(cfg, logger, synth, janitor),
		sessions: session.NewStore(),
		janitor:  janitor,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the instance lock and launches the API server, the janitor
// sweep, and the stale-session sweep.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another clipforge daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	if err := d.api.start(runCtx); err != nil {
		_ = d.lock.Unlock()
		cancel()
		d.cancel = nil
		return err
	}

	interval := time.Duration(d.cfg.Workflow.SweepIntervalMinutes) * time.Minute
	d.janitor.Start(interval)

	d.sweep = cron.New()
	d.sweep.Schedule(cron.Every(interval), cron.FuncJob(d.sweepSessions))
	d.sweep.Start()

	if !encoding.Available(runCtx, d.cfg.FFmpegBinary()) {
		d.logger.Warn("ffmpeg not found, clip generation will fail",
			logging.String("binary", d.cfg.FFmpegBinary()))
	}

	d.running.Store(true)
	d.logger.Info("daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop shuts down the API, flushes pending cleanups, and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	if d.sweep != nil {
		d.sweep.Stop()
		d.sweep = nil
	}
	d.janitor.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Status reports runtime state, including whether ffmpeg can be executed.
func (d *Daemon) Status(ctx context.Context) Status {
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return Status{
		Running:         d.running.Load(),
		FFmpegAvailable: encoding.Available(probeCtx, d.cfg.FFmpegBinary()),
		Sessions:        d.sessions.Len(),
		PendingCleanups: d.janitor.Pending(),
		LockFilePath:    d.lockPath,
	}
}

// sweepSessions resets intakes that have been abandoned past the stale
// threshold and discards their uploaded images.
func (d *Daemon) sweepSessions() {
	cutoff := time.Now().Add(-time.Duration(d.cfg.Workflow.StaleAfterMinutes) * time.Minute)
	for _, userID := range d.sessions.Stale(cutoff) {
		_ = d.sessions.Do(userID, func(s *session.Session) error {
			for _, image := range s.Reset() {
				d.janitor.RemoveNow(image)
			}
			return nil
		})
		d.logger.Info("reset stale session", logging.String("user", userID))
	}
}
