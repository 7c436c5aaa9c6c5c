package registry

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ModelWatcher reloads the registry when the model file changes on disk.
// It watches the containing directory so atomic rename-into-place writes are
// observed, and debounces rapid successive events from one save.
type ModelWatcher struct {
	registry *ModelRegistry
	logger   *zap.Logger

	watcher     *fsnotify.Watcher
	modelPath   string
	debounceDur time.Duration

	mu          sync.Mutex
	pendingAt   time.Time
	havePending bool
	running     bool

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewModelWatcher creates a watcher for the registry's model file.
func NewModelWatcher(registry *ModelRegistry, modelPath string, logger *zap.Logger) (*ModelWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &ModelWatcher{
		registry:    registry,
		logger:      logger,
		watcher:     watcher,
		modelPath:   filepath.Clean(modelPath),
		debounceDur: 500 * time.Millisecond,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching; non-blocking.
func (w *ModelWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	dir := filepath.Dir(w.modelPath)
	if err := w.watcher.Add(dir); err != nil {
		w.logger.Warn("model watch failed, relying on periodic reload checks",
			zap.String("dir", dir), zap.Error(err))
	} else {
		w.logger.Info("watching model directory", zap.String("dir", dir))
	}

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the loop to exit.
func (w *ModelWatcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		w.logger.Error("error closing model watcher", zap.Error(err))
	}
}

func (w *ModelWatcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("model watcher error", zap.Error(err))

		case <-ticker.C:
			w.reloadIfSettled(ctx)
		}
	}
}

func (w *ModelWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.modelPath {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	w.mu.Lock()
	w.pendingAt = time.Now()
	w.havePending = true
	w.mu.Unlock()
}

func (w *ModelWatcher) reloadIfSettled(ctx context.Context) {
	w.mu.Lock()
	if !w.havePending || time.Since(w.pendingAt) < w.debounceDur {
		w.mu.Unlock()
		return
	}
	w.havePending = false
	w.mu.Unlock()

	if err := w.registry.Reload(ctx); err != nil {
		w.logger.Error("watcher-triggered reload failed", zap.Error(err))
	}
}
