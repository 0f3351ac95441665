package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"vrcache/internal/archive"
	"vrcache/internal/catalog"
	"vrcache/internal/config"
	"vrcache/internal/logging"
	"vrcache/internal/watcher"
)

// Daemon ties the cache watcher to the ingestion pipeline and enforces
// single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	manager *archive.Manager
	watch   *watcher.Watcher

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	CachePath    string
	CatalogPath  string
	LockFilePath string
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, manager *archive.Manager, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || manager == nil || logger == nil {
		return nil, errors.New("daemon requires config, archive manager, and logger")
	}

	lockPath := filepath.Join(cfg.LogDir, "vrcached.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		manager:  manager,
		watch:    watcher.New(logger),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// CachePath returns the watched cache directory recorded in the catalog.
func (d *Daemon) CachePath() (string, bool) {
	return d.manager.Store().Scalar(catalog.KeyVRChatCache)
}

// Start acquires the daemon lock, verifies the catalog, begins watching the
// cache directory, and scans it for data written while the daemon was down.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	cachePath, ok := d.CachePath()
	if !ok || cachePath == "" {
		return errors.New("no cache directory configured; run `vrcache config set-cache` first")
	}
	if info, err := os.Stat(cachePath); err != nil {
		return fmt.Errorf("cache directory: %w", err)
	} else if !info.IsDir() {
		return fmt.Errorf("cache path %q is not a directory", cachePath)
	}

	locked, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return errors.New("another vrcache daemon instance is already running")
	}

	if pruned, err := d.manager.VerifyIntegrity(); err != nil {
		d.logger.Warn("startup integrity pass failed", logging.Error(err))
	} else if pruned > 0 {
		d.logger.Info("startup integrity pass pruned records", logging.Int("pruned", pruned))
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.watch.Start(cachePath); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("start cache watch: %w", err)
	}

	d.wg.Add(1)
	go d.consume(d.ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if _, err := d.manager.DiscoverExisting(d.ctx, cachePath); err != nil && !errors.Is(err, context.Canceled) {
			d.logger.Warn("discovery of existing cache data failed", logging.Error(err))
		}
	}()

	d.running.Store(true)
	d.logger.Info("vrcache daemon started",
		logging.String("cache_path", cachePath),
		logging.String("lock", d.lockPath))
	return nil
}

// SetCachePath records a new cache directory in the catalog and, when the
// daemon is running, cleanly moves the watch to it. Events from the old
// directory stop before the new watch begins.
func (d *Daemon) SetCachePath(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve cache path: %w", err)
	}
	if info, err := os.Stat(abs); err != nil {
		return fmt.Errorf("cache directory: %w", err)
	} else if !info.IsDir() {
		return fmt.Errorf("cache path %q is not a directory", abs)
	}

	if err := d.manager.Store().SetScalar(catalog.KeyVRChatCache, abs); err != nil {
		return err
	}
	if d.running.Load() {
		if err := d.watch.Start(abs); err != nil {
			return fmt.Errorf("restart cache watch: %w", err)
		}
		d.logger.Info("cache watch redirected", logging.String("cache_path", abs))
	}
	return nil
}

// consume feeds watcher events through the ingestion pipeline one at a time.
func (d *Daemon) consume(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-d.watch.Events():
			if !ok {
				return
			}
			d.ingest(ctx, ev.Path)
		}
	}
}

// ingest waits out the settle delay so the game finishes writing the payload
// before reading it, then runs the pipeline.
func (d *Daemon) ingest(ctx context.Context, path string) {
	if delay := d.cfg.SettleDelay(); delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
	}

	result, err := d.manager.IngestPayload(ctx, path)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		d.logger.Error("ingestion failed",
			logging.String("path", path),
			logging.Error(err))
		return
	}
	if result.Disposition == archive.DispositionNoCandidates {
		d.logger.Debug("payload held no world identifier", logging.String("path", path))
	}
}

// Stop halts watching and ingestion and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.watch.Stop()
	d.wg.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("vrcache daemon stopped")
}

// Status reports daemon runtime information.
func (d *Daemon) Status() Status {
	cachePath, _ := d.CachePath()
	return Status{
		Running:      d.running.Load(),
		CachePath:    cachePath,
		CatalogPath:  d.manager.Store().Path(),
		LockFilePath: d.lockPath,
	}
}
