// Package watch notifies when config files in a directory change. Events
// are debounced so a burst of writes yields one notification.
package watch

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 500 * time.Millisecond

type DirWatcher struct {
	watcher  *fsnotify.Watcher
	ext      string
	onChange chan struct{}
	mu       sync.Mutex
	timer    *time.Timer
	done     chan struct{}
}

// NewDirWatcher watches dir for changes to files whose name ends with ext.
func NewDirWatcher(dir, ext string) (*DirWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &DirWatcher{
		watcher:  fsw,
		ext:      ext,
		onChange: make(chan struct{}, 1),
		done:     make(chan struct{}),
	}, nil
}

func (w *DirWatcher) Start() <-chan struct{} {
	go w.run()
	return w.onChange
}

func (w *DirWatcher) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, w.ext) {
				continue
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) || event.Has(fsnotify.Rename) {
				w.trigger()
			}
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *DirWatcher) trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(DefaultDebounce, func() {
		select {
		case w.onChange <- struct{}{}:
		default:
		}
	})
}

func (w *DirWatcher) Close() error {
	close(w.done)
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}
