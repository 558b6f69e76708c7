package config

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/tether/engine/core"
)

/**
 * @brief Watches a config file and publishes every successfully parsed
 * revision. The parent directory is watched so editors that replace the
 * file on save are picked up too. Revisions that fail to parse are logged
 * and skipped.
 */
type Watcher struct {
	path     string
	fsnotify *fsnotify.Watcher
	updates  chan *Config
	errors   chan error
	done     chan struct{}
	once     sync.Once
	wg       sync.WaitGroup
}

func NewWatcher(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	if err := fsWatch.Add(filepath.Dir(abs)); err != nil {
		fsWatch.Close()
		core.LogError(err.Error())
		return nil, err
	}
	w := &Watcher{
		path:     abs,
		fsnotify: fsWatch,
		updates:  make(chan *Config, 1),
		errors:   make(chan error, 1),
		done:     make(chan struct{}),
	}
	w.wg.Add(1)
	go w.start()
	return w, nil
}

// Updates delivers reloaded configs. Only the newest pending revision is kept.
func (w *Watcher) Updates() <-chan *Config { return w.updates }

// Errors delivers parse and watch failures. Only the newest pending one is kept.
func (w *Watcher) Errors() <-chan error { return w.errors }

func (w *Watcher) start() {
	defer w.wg.Done()
	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			if filepath.Clean(e.Name) != w.path {
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			cfg, err := Load(w.path)
			if err != nil {
				publish(w.errors, err)
				continue
			}
			core.LogInfo("config reloaded from %s", w.path)
			publish(w.updates, cfg)

		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(err.Error())
			publish(w.errors, err)

		case <-w.done:
			return
		}
	}
}

// publish replaces whatever is pending so a slow reader only sees the latest value.
func publish[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fsnotify.Close()
		w.wg.Wait()
	})
	return err
}
