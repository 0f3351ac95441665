package watcher

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"vrcache/internal/logging"
)

// PayloadFileName is the fixed name the game gives every cache payload.
const PayloadFileName = "__data"

// Event is a detected payload creation. Consumed exactly once by ingestion.
type Event struct {
	Path string
}

// Watcher monitors a directory tree for newly created payload files.
// Events survive watch redirection: the channel stays open across Start
// calls and closes only when the Watcher is closed for good.
type Watcher struct {
	logger *slog.Logger
	events chan Event

	mu   sync.Mutex
	fsw  *fsnotify.Watcher
	stop chan struct{}
	done chan struct{}

	// seen guards against double emission when a payload surfaces both
	// through a directory sweep and its own create event. Touched only by
	// the run goroutine of the active session.
	seen map[string]struct{}
}

// New constructs a watcher. Call Start to begin monitoring.
func New(logger *slog.Logger) *Watcher {
	return &Watcher{
		logger: logging.NewComponentLogger(logger, "watcher"),
		events: make(chan Event, 256),
	}
}

// Events returns the payload event channel.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start begins recursive monitoring of path. Calling Start while a watch is
// active first stops and joins the prior watch completely, then establishes
// the new one.
func (w *Watcher) Start(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.stopLocked()

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return errors.New("watch path is not a directory")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := addTree(fsw, path); err != nil {
		fsw.Close()
		return err
	}

	w.fsw = fsw
	w.stop = make(chan struct{})
	w.done = make(chan struct{})
	w.seen = make(map[string]struct{})
	go w.run(fsw, w.stop, w.done)

	w.logger.Info("watching cache directory", logging.String("path", path))
	return nil
}

// Stop halts monitoring and joins the background goroutine. In-flight
// ingestion triggered by earlier events is unaffected.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopLocked()
}

func (w *Watcher) stopLocked() {
	if w.fsw == nil {
		return
	}
	close(w.stop)
	w.fsw.Close()
	<-w.done
	w.fsw = nil
	w.stop = nil
	w.done = nil
}

func (w *Watcher) run(fsw *fsnotify.Watcher, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			switch {
			case event.Has(fsnotify.Create):
				w.handleCreate(fsw, event.Name)
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				// The game purges and rewrites payloads in place; forget
				// the path so a re-created payload is emitted again.
				delete(w.seen, event.Name)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", logging.Error(err))
		}
	}
}

func (w *Watcher) handleCreate(fsw *fsnotify.Watcher, path string) {
	info, err := os.Lstat(path)
	if err != nil {
		return
	}

	if info.IsDir() {
		// New asset directories must be registered before the payload
		// inside them materializes; sweep for anything already written.
		if err := addTree(fsw, path); err != nil {
			w.logger.Warn("register new directory failed",
				logging.String("path", path),
				logging.Error(err))
		}
		w.sweep(path)
		return
	}

	if !info.Mode().IsRegular() {
		return
	}
	if filepath.Base(path) != PayloadFileName {
		return
	}
	w.emit(path)
}

// sweep emits payload files that were created inside dir before its watch
// registration took effect.
func (w *Watcher) sweep(dir string) {
	_ = filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if entry.Type().IsRegular() && entry.Name() == PayloadFileName {
			w.emit(path)
		}
		return nil
	})
}

func (w *Watcher) emit(path string) {
	if _, ok := w.seen[path]; ok {
		return
	}
	select {
	case w.events <- Event{Path: path}:
		w.seen[path] = struct{}{}
	default:
		// Not marked seen, so a later sweep or create can retry.
		w.logger.Warn("event buffer full, dropping payload event",
			logging.String(logging.FieldEventType, "event_buffer_full"),
			logging.String("path", path))
	}
}

func addTree(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !entry.IsDir() {
			return nil
		}
		return fsw.Add(path)
	})
}
