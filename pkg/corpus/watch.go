// ABOUTME: Watches the corpus directory for republished chapter files
// ABOUTME: Fires a callback so owners can invalidate derived structures

package corpus

import (
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watcher observes a corpus directory and invokes onChange whenever a
// chapter JSON file is written, created, renamed or removed. The
// callback runs on the watcher goroutine and should only flag state
// for rebuild, not rebuild inline.
type Watcher struct {
	fsw      *fsnotify.Watcher
	onChange func()
	done     chan struct{}
}

// NewWatcher starts watching dir. Close must be called to release the
// underlying notify handle.
func NewWatcher(dir string, onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		onChange: onChange,
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !isChapterFile(ev.Name) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				w.onChange()
			}
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

func isChapterFile(path string) bool {
	name := filepath.Base(path)
	return strings.HasPrefix(name, "chapter-") && strings.HasSuffix(name, ".json")
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	err := w.fsw.Close()
	<-w.done
	return err
}
