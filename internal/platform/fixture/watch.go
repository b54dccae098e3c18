package fixture

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

const reloadDebounce = 100 * time.Millisecond

// Watcher reloads a fixture file into a host whenever it changes on disk.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	host      *Host
	path      string
	reloaded  chan struct{}
	stop      chan struct{}
	mu        sync.Mutex
	stopped   bool
}

// Watch starts reloading path into h. The parent directory is watched so
// editors that replace the file on save are still seen.
func Watch(h *Host, path string) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		fsWatcher.Close()
		return nil, err
	}
	if err := fsWatcher.Add(filepath.Dir(abs)); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		host:      h,
		path:      abs,
		reloaded:  make(chan struct{}, 1),
		stop:      make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Reloaded receives a value after each successful reload.
func (w *Watcher) Reloaded() <-chan struct{} {
	return w.reloaded
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.stop)
	return w.fsWatcher.Close()
}

func (w *Watcher) run() {
	var debounce *time.Timer
	for {
		select {
		case <-w.stop:
			if debounce != nil {
				debounce.Stop()
			}
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, w.reload)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Warn().Str("module", "fixture").Err(err).Msg("watch error")
		}
	}
}

func (w *Watcher) reload() {
	spec, err := Load(w.path)
	if err != nil {
		log.Warn().Str("module", "fixture").Err(err).Str("path", w.path).Msg("reload failed")
		return
	}
	fresh, err := spec.Build()
	if err != nil {
		log.Warn().Str("module", "fixture").Err(err).Str("path", w.path).Msg("reload failed")
		return
	}
	w.host.replace(fresh)
	log.Info().Str("module", "fixture").Str("path", w.path).Msg("fixture reloaded")
	select {
	case w.reloaded <- struct{}{}:
	default:
	}
}
