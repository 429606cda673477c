package editor

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultSettle is how long the watcher waits after the last event before
// reporting a change. Editors often write a file in several steps.
const DefaultSettle = 150 * time.Millisecond

// FileWatcher reports changes to a single file. It watches the parent
// directory so atomic replace-by-rename is seen too. Changes arrive on a
// channel the frame loop drains; nothing else is touched from the watcher
// goroutine.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	name    string
	settle  time.Duration
	changes chan struct{}
	done    chan struct{}
	wg      sync.WaitGroup
	log     *zap.Logger
}

func NewFileWatcher(path string, settle time.Duration, log *zap.Logger) (*FileWatcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, err
	}

	fw := &FileWatcher{
		watcher: w,
		name:    filepath.Base(abs),
		settle:  settle,
		changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
		log:     log,
	}
	fw.wg.Add(1)
	go fw.run()
	return fw, nil
}

// Changes delivers at most one pending notification
func (fw *FileWatcher) Changes() <-chan struct{} {
	return fw.changes
}

func (fw *FileWatcher) run() {
	defer fw.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-fw.done:
			if timer != nil {
				timer.Stop()
			}
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != fw.name {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(fw.settle)
			} else {
				timer.Reset(fw.settle)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			select {
			case fw.changes <- struct{}{}:
			default:
			}
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.log.Warn("scene watcher", zap.Error(err))
		}
	}
}

// Close stops watching
func (fw *FileWatcher) Close() error {
	close(fw.done)
	err := fw.watcher.Close()
	fw.wg.Wait()
	return err
}
