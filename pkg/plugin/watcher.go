package plugin

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher keeps the registry in sync with a manifest directory: manifests
// added or changed on disk are (re)loaded, removed ones are deregistered.
type Watcher struct {
	loader  *Loader
	watcher *fsnotify.Watcher
	logger  zerolog.Logger

	stopOnce sync.Once
	done     chan struct{}
}

// NewWatcher starts watching dir for manifest changes. The directory must
// already have been loaded via Loader.LoadDir.
func NewWatcher(loader *Loader, dir string, logger zerolog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch plugin directory: %w", err)
	}

	w := &Watcher{
		loader:  loader,
		watcher: fsw,
		logger:  logger.With().Str("component", "plugin-watcher").Logger(),
		done:    make(chan struct{}),
	}
	go w.run()

	w.logger.Info().Str("dir", dir).Msg("Watching plugin directory")
	return w, nil
}

func (w *Watcher) run() {
	defer close(w.done)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error().Err(err).Msg("Watcher error")
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !strings.HasSuffix(event.Name, ".json") {
		return
	}

	switch {
	case event.Op.Has(fsnotify.Create), event.Op.Has(fsnotify.Write):
		if err := w.loader.LoadFile(event.Name); err != nil {
			w.logger.Error().Err(err).Str("path", event.Name).Msg("Failed to reload manifest")
		}
	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		w.loader.Unload(event.Name)
		w.logger.Info().Str("path", event.Name).Msg("Manifest removed")
	}
}

// Stop stops watching and waits for the event loop to drain.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		w.watcher.Close()
		<-w.done
	})
}
