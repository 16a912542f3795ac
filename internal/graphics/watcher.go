package graphics

import (
	"errors"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"shadow-demo/internal/logging"
)

// ShaderWatcher marks file backed programs dirty when their sources change on
// disk. Rebuilding happens in ReloadChanged, which must be called from the
// render thread; the watcher goroutine never touches the graphics backend.
type ShaderWatcher struct {
	fs *fsnotify.Watcher

	mu       sync.Mutex
	programs map[string][]*Program
	dirs     map[string]bool
	dirty    map[*Program]struct{}
	closed   bool

	done chan struct{}
}

func NewShaderWatcher() (*ShaderWatcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &ShaderWatcher{
		fs:       fs,
		programs: make(map[string][]*Program),
		dirs:     make(map[string]bool),
		dirty:    make(map[*Program]struct{}),
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Watch tracks both source files of p. Directories are watched rather than the
// files themselves so editors that save by rename are still seen.
func (w *ShaderWatcher) Watch(p *Program) error {
	vertex, fragment := p.Paths()
	if vertex == "" {
		return errors.New("program has no source files")
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return errors.New("shader watcher already closed")
	}
	for _, path := range []string{vertex, fragment} {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		dir := filepath.Dir(abs)
		if !w.dirs[dir] {
			if err := w.fs.Add(dir); err != nil {
				return err
			}
			w.dirs[dir] = true
		}
		w.programs[abs] = append(w.programs[abs], p)
	}
	return nil
}

func (w *ShaderWatcher) run() {
	for {
		select {
		case e, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if e.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			abs, err := filepath.Abs(e.Name)
			if err != nil {
				continue
			}
			w.mu.Lock()
			for _, p := range w.programs[abs] {
				w.dirty[p] = struct{}{}
			}
			w.mu.Unlock()

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			logging.Warn("shader watcher", "err", err)

		case <-w.done:
			return
		}
	}
}

// ReloadChanged rebuilds every program whose sources changed since the last
// call and returns how many were rebuilt successfully.
func (w *ShaderWatcher) ReloadChanged() int {
	w.mu.Lock()
	pending := make([]*Program, 0, len(w.dirty))
	for p := range w.dirty {
		pending = append(pending, p)
	}
	clear(w.dirty)
	w.mu.Unlock()

	reloaded := 0
	for _, p := range pending {
		if err := p.Reload(); err == nil {
			reloaded++
		}
	}
	return reloaded
}

func (w *ShaderWatcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.done)
	return w.fs.Close()
}
