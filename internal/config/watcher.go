package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ShayCichocki/foreman/pkg/models"
)

// reloadDebounce coalesces the event bursts editors produce on save.
const reloadDebounce = 200 * time.Millisecond

// WorkerWatcher reloads the worker roster when its YAML file changes and
// hands each successfully parsed roster to a callback. Parse failures keep
// the previous roster; the watcher never pushes a broken roster.
type WorkerWatcher struct {
	path     string
	onReload func([]models.WorkerSpec)

	watcher *fsnotify.Watcher
	done    chan struct{}
	once    sync.Once
}

// WatchWorkers starts watching the workers file. The callback runs on the
// watcher goroutine.
func WatchWorkers(path string, onReload func([]models.WorkerSpec)) (*WorkerWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory: editors typically rename over the file, which
	// drops a watch placed on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	w := &WorkerWatcher{
		path:     path,
		onReload: onReload,
		watcher:  watcher,
		done:     make(chan struct{}),
	}
	go w.watch()
	return w, nil
}

func (w *WorkerWatcher) watch() {
	var timer *time.Timer
	reload := func() {
		specs, err := LoadWorkerSpecs(w.path)
		if err != nil {
			return
		}
		w.onReload(specs)
	}

	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(reloadDebounce, reload)
		case <-w.watcher.Errors:
			// Keep watching.
		}
	}
}

// Close stops the watcher. Safe to call more than once.
func (w *WorkerWatcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}
