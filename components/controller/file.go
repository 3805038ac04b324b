package controller

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/adammck/locomotion"
)

// FileSource replaces the command whenever a YAML file like this changes:
//
//	forward: 0.8
//	sideways: 0
//	turning: -0.2
//	height: 0.9
//
// Missing fields are zero. A file which can't be parsed is logged and
// ignored, leaving the previous command in place.
type FileSource struct {
	Path string

	watcher *fsnotify.Watcher

	mu      sync.Mutex
	pending *locomotion.Command
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// ReadCommand parses the command file at path.
func ReadCommand(path string) (locomotion.Command, error) {
	var cmd locomotion.Command

	b, err := os.ReadFile(path)
	if err != nil {
		return cmd, errors.Wrapf(err, "reading command file")
	}

	if err := yaml.Unmarshal(b, &cmd); err != nil {
		return cmd, errors.Wrapf(err, "parsing command file %s", path)
	}

	return cmd, nil
}

// Boot reads the file once, and then watches it for changes. The directory
// is watched rather than the file, since editors tend to replace files rather
// than write to them.
func (f *FileSource) Boot() error {
	f.load()

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating watcher")
	}

	if err := w.Add(filepath.Dir(f.Path)); err != nil {
		w.Close()
		return errors.Wrapf(err, "watching %s", f.Path)
	}

	f.watcher = w
	go f.run()

	log.Infof("watching %s", f.Path)
	return nil
}

func (f *FileSource) run() {
	name := filepath.Clean(f.Path)

	for {
		select {
		case ev, ok := <-f.watcher.Events:
			if !ok {
				return
			}

			if filepath.Clean(ev.Name) != name {
				continue
			}

			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				f.load()
			}

		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}

			log.Warnf("watch error: %s", err)
		}
	}
}

func (f *FileSource) load() {
	cmd, err := ReadCommand(f.Path)
	if err != nil {
		log.Warnf("ignoring command file: %s", err)
		return
	}

	f.mu.Lock()
	f.pending = &cmd
	f.mu.Unlock()
}

// Tick applies the most recently loaded command, if it hasn't been already.
func (f *FileSource) Tick(now time.Time, state *locomotion.State) error {
	f.mu.Lock()
	cmd := f.pending
	f.pending = nil
	f.mu.Unlock()

	if cmd != nil && *cmd != state.Command {
		log.Infof("cmd=%s (from %s)", *cmd, f.Path)
		state.Command = *cmd
	}

	return nil
}

// Close stops watching the file.
func (f *FileSource) Close() error {
	if f.watcher == nil {
		return nil
	}

	return f.watcher.Close()
}
