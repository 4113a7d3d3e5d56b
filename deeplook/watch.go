package deeplook

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ReloadFunc receives the outcome of every reload triggered by the watcher.
type ReloadFunc func(*Batch, error)

// Watcher reloads the result batch whenever table files in a directory change.
// Events are debounced so a burst of writes yields one reload.
type Watcher struct {
	dir      string
	svc      *Service
	fsw      *fsnotify.Watcher
	debounce time.Duration
	onReload ReloadFunc
	logger   *zap.Logger

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	startOnce sync.Once
	done      chan struct{}
}

// NewWatcher creates a watcher for dir. onReload may be nil.
func NewWatcher(svc *Service, dir string, onReload ReloadFunc) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	return &Watcher{
		dir:      dir,
		svc:      svc,
		fsw:      fsw,
		debounce: svc.Config().Watch.Debounce,
		onReload: onReload,
		logger:   svc.logger.Named("watch"),
		pending:  make(map[string]fsnotify.Op),
		done:     make(chan struct{}),
	}, nil
}

// Start adds the directory watch and begins processing events until ctx is done
// or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.startOnce.Do(func() {
		go w.processEvents(ctx)
	})
	w.logger.Info("watching result directory",
		zap.String("dir", w.dir),
		zap.Duration("debounce", w.debounce))
	return nil
}

// Stop closes the underlying watcher and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	err := w.fsw.Close()
	started := true
	w.startOnce.Do(func() { started = false })
	if started {
		<-w.done
	}
	return err
}

// Reload lists the directory and loads it as a new batch.
func (w *Watcher) Reload(ctx context.Context) (*Batch, error) {
	paths, err := ListResultFiles(w.dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return w.svc.LoadResultSources(nil)
	}
	return w.svc.LoadResults(ctx, paths)
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.done)
	w.loop(ctx, w.fsw.Events, w.fsw.Errors)
}

// loop collects events until the debounce timer fires. Every accepted event
// restarts the timer, so a burst reloads once after it goes quiet.
func (w *Watcher) loop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) {
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-events:
			if !ok {
				return
			}
			if w.handleEvent(event) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-errs:
			if !ok {
				return
			}
			w.logger.Error("watcher error", zap.Error(err))

		case <-timer.C:
			w.flushPending(ctx)
		}
	}
}

// handleEvent records a change to a table file and reports whether it did.
func (w *Watcher) handleEvent(event fsnotify.Event) bool {
	if !IsTableFile(event.Name) {
		return false
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	w.pendingMu.Lock()
	w.pending[event.Name] = event.Op
	w.pendingMu.Unlock()
	w.logger.Debug("result file changed",
		zap.String("path", event.Name),
		zap.String("op", event.Op.String()))
	return true
}

func (w *Watcher) flushPending(ctx context.Context) {
	w.pendingMu.Lock()
	changed := len(w.pending)
	if changed == 0 {
		w.pendingMu.Unlock()
		return
	}
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	batch, err := w.Reload(ctx)
	if err != nil {
		w.logger.Warn("reload failed, keeping previous batch", zap.Int("changed", changed), zap.Error(err))
	}
	if w.onReload != nil {
		w.onReload(batch, err)
	}
}
