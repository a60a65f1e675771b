package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Default quiet period before a changed scene file is reloaded.
const DefaultDebounce = 100 * time.Millisecond

// Reloads a scene file whenever it changes on disk. Editors often save
// in several steps, so changes are coalesced until the file has been
// quiet for the debounce period.
//
// Valid scenes are sent to Scenes. Load and watch failures go to
// Errors. Both channels are closed after [Watcher.Close]().
type Watcher struct {
	Scenes chan *Scene
	Errors chan error

	path     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   zerolog.Logger
	closeCh  chan struct{}
	doneCh   chan struct{}
	once     sync.Once
}

// Starts watching the given scene file. The directory is watched
// rather than the file, so replacing saves keep being seen.
func NewWatcher(path string, debounce time.Duration, logger zerolog.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	path = filepath.Clean(path)
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return nil, err
	}

	watcher := &Watcher{
		Scenes:   make(chan *Scene, 4),
		Errors:   make(chan error, 4),
		path:     path,
		debounce: debounce,
		watcher:  w,
		logger:   logger.With().Str("scene", path).Logger(),
		closeCh:  make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

// Stops watching. Safe to call more than once.
func (self *Watcher) Close() error {
	var err error
	self.once.Do(func() {
		close(self.closeCh)
		err = self.watcher.Close()
		<-self.doneCh
	})
	return err
}

func (self *Watcher) run() {
	defer func() {
		close(self.Scenes)
		close(self.Errors)
		close(self.doneCh)
	}()

	var reload <-chan time.Time
	for {
		select {
		case event, ok := <-self.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != self.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			reload = time.After(self.debounce)
		case <-reload:
			reload = nil
			scene, err := Load(self.path)
			if err != nil {
				self.logger.Warn().Err(err).Msg("scene reload failed")
				self.send(nil, err)
				continue
			}
			self.logger.Info().Msg("scene reloaded")
			self.send(scene, nil)
		case err, ok := <-self.watcher.Errors:
			if !ok {
				return
			}
			self.send(nil, err)
		case <-self.closeCh:
			return
		}
	}
}

func (self *Watcher) send(scene *Scene, err error) {
	if err != nil {
		select {
		case self.Errors <- err:
		case <-self.closeCh:
		}
		return
	}
	select {
	case self.Scenes <- scene:
	case <-self.closeCh:
	}
}
