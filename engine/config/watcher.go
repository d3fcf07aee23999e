package config

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/Carmen-Shannon/oxy-sandbox/engine/input"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a configuration file when it changes on disk and pushes the new tuning
// onto an input queue as an input.TuningEvent.
type Watcher struct {
	mu *sync.Mutex

	path    string
	queue   *input.Queue
	watcher *fsnotify.Watcher
	logger  *log.Logger

	done   chan struct{}
	closed bool
	wg     sync.WaitGroup
}

// WatcherOption is a functional option for configuring a Watcher.
type WatcherOption func(*Watcher)

// WithWatcherLogger sets the logger used for reload results.
func WithWatcherLogger(logger *log.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWatcher starts watching path. The containing directory is watched so that editors which
// replace the file on save are still observed.
//
// Parameters:
//   - path: the configuration file
//   - queue: destination for TuningEvents
//   - options: functional options
//
// Returns:
//   - *Watcher: the running watcher
//   - error: error if the file system watch could not be set up
func NewWatcher(path string, queue *input.Queue, options ...WatcherOption) (*Watcher, error) {
	if queue == nil {
		panic("config.NewWatcher: queue must not be nil")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		mu:      &sync.Mutex{},
		path:    abs,
		queue:   queue,
		watcher: fw,
		logger:  log.WithPrefix("config"),
		done:    make(chan struct{}),
	}
	for _, opt := range options {
		opt(w)
	}

	w.wg.Add(1)
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "err", err)
		}
	}
}

// reload reads the file and pushes its tuning. Invalid files are logged and ignored so that a
// half-saved edit never reaches the loop.
func (w *Watcher) reload() {
	cfg, err := LoadFile(w.path)
	if err != nil {
		w.logger.Warn("reload skipped", "path", w.path, "err", err)
		return
	}
	w.queue.Push(input.TuningEvent{Tuning: cfg.Tuning})
	w.logger.Info("tuning reloaded", "path", w.path)
}

// Close stops the watcher and waits for its goroutine to exit. Safe to call more than once.
//
// Returns:
//   - error: error from closing the file system watch
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.done)
	w.mu.Unlock()

	err := w.watcher.Close()
	w.wg.Wait()
	return err
}
