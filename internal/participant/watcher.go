package participant

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/atelier-edu/reparto/internal/logging"
)

// watchDebounce coalesces the burst of events editors emit on save.
const watchDebounce = 50 * time.Millisecond

// rosterWatcher watches a single roster file via its parent directory.
// Watching the directory instead of the file survives the delete-and-rename
// save strategy most editors use.
type rosterWatcher struct {
	fsw      *fsnotify.Watcher
	path     string
	onChange func(path string)
	logger   *logging.Logger

	stopCh   chan struct{}
	stopOnce sync.Once
}

func newRosterWatcher(path string, onChange func(string), logger *logging.Logger) (*rosterWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	return &rosterWatcher{
		fsw:      fsw,
		path:     abs,
		onChange: onChange,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}, nil
}

func (w *rosterWatcher) start() {
	go w.watchLoop()
}

func (w *rosterWatcher) stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		_ = w.fsw.Close()
	})
}

// watchLoop processes filesystem events. Events are debounced so one save
// produces one reload.
func (w *rosterWatcher) watchLoop() {
	debounceTimer := time.NewTimer(0)
	<-debounceTimer.C // drain initial timer

	pending := false

	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}

			// Only care about operations that change the file's content.
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !w.matchesPath(event.Name) {
				continue
			}

			pending = true
			debounceTimer.Reset(watchDebounce)

		case <-debounceTimer.C:
			if !pending {
				continue
			}
			pending = false
			w.onChange(w.path)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("roster watch error", "error", err.Error())
		}
	}
}

// matchesPath reports whether an event path refers to the watched roster
// file, comparing base names so relative and absolute event paths both
// match.
func (w *rosterWatcher) matchesPath(eventPath string) bool {
	return filepath.Base(eventPath) == filepath.Base(w.path)
}
