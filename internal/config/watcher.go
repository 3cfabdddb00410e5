package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"missiongate/internal/logging"
)

// Watcher watches .gate/config.json for changes and re-applies the logging
// settings without a restart. Only the logging block is hot-reloadable;
// extractor and store settings are read once at startup.
type Watcher struct {
	mu        sync.Mutex
	watcher   *fsnotify.Watcher
	workspace string
	lastEvent time.Time
	debounce  time.Duration
	stopCh    chan struct{}
	doneCh    chan struct{}
	running   bool
}

// NewWatcher creates a config watcher for the given workspace.
func NewWatcher(workspace string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher:   fw,
		workspace: workspace,
		debounce:  500 * time.Millisecond, // Debounce rapid saves
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}, nil
}

// Start begins watching. Returns immediately; events are handled in a
// background goroutine until Stop is called.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	// Watch the directory, not the file: editors replace files on save.
	dir := filepath.Join(w.workspace, ".gate")
	if err := w.watcher.Add(dir); err != nil {
		return err
	}

	w.running = true
	go w.loop()
	return nil
}

func (w *Watcher) loop() {
	defer close(w.doneCh)
	log := logging.Get(logging.CategoryBoot)

	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != "config.json" {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			w.mu.Lock()
			if time.Since(w.lastEvent) < w.debounce {
				w.mu.Unlock()
				continue
			}
			w.lastEvent = time.Now()
			w.mu.Unlock()

			cfg, err := Load(w.workspace)
			if err != nil {
				log.Warn("config reload failed: %v", err)
				continue
			}
			logging.Configure(logging.Settings{
				DebugMode:  cfg.Logging.DebugMode,
				Categories: cfg.Logging.Categories,
				Level:      cfg.Logging.Level,
			})
			log.Info("logging settings reloaded from %s", event.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn("config watcher error: %v", err)
		}
	}
}

// Stop halts the watcher and releases its resources.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	_ = w.watcher.Close()
	<-w.doneCh
}
