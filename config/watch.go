package config

import (
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a config file every time it's modified.
type Watcher struct {
	fs   *fsnotify.Watcher
	done chan struct{}
}

// Watch starts watching the config file at path. Each successful reload is passed to
// onChange, failed ones are logged and skipped, so the last valid config stays in
// effect. The directory is watched instead of the file itself, as most editors replace
// files by renaming a temporary one over them.
func Watch(path string, onChange func(*Config)) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	path = filepath.Clean(path)
	if err = fs.Add(filepath.Dir(path)); err != nil {
		_ = fs.Close()
		return nil, err
	}

	w := &Watcher{
		fs:   fs,
		done: make(chan struct{}),
	}

	go w.run(path, onChange)

	return w, nil
}

func (w *Watcher) run(path string, onChange func(*Config)) {
	defer close(w.done)

	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}

			if filepath.Clean(event.Name) != path || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}

			cfg, err := Load(path)
			if err != nil {
				log.Printf("config: reload %s: %s", path, err)
				continue
			}

			onChange(cfg)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}

			log.Printf("config: watch %s: %s", path, err)
		}
	}
}

// Close stops watching. No callbacks are invoked after it returns.
func (w *Watcher) Close() error {
	err := w.fs.Close()
	<-w.done

	return err
}
