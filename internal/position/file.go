package position

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// FileStore keeps one file per key under a directory, so values survive
// restarts and are visible to every process pointed at the same directory.
// Subscribers are notified through fsnotify when any process rewrites a key.
type FileStore struct {
	dir string
	log *slog.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	subs    map[string]map[int]func(string)
	nextID  int
	stopCh  chan struct{}
	doneCh  chan struct{}
	closed  bool
}

func NewFileStore(dir string, log *slog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create position dir: %w", err)
	}
	return &FileStore{
		dir:  dir,
		log:  log,
		subs: make(map[string]map[int]func(string)),
	}, nil
}

func (f *FileStore) path(key string) string {
	return filepath.Join(f.dir, url.PathEscape(key))
}

func (f *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	return string(data), true, nil
}

// Set replaces the key's file via temp file and rename, so readers never see
// a partial value.
func (f *FileStore) Set(_ context.Context, key, value string) error {
	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, f.path(key)); err != nil {
		return fmt.Errorf("rename %s: %w", key, err)
	}
	return nil
}

// Subscribe starts the directory watcher on first use. If the watcher cannot
// be started the subscription is inert; pollers still see every change.
func (f *FileStore) Subscribe(key string, fn func(string)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return func() {}
	}
	if f.watcher == nil {
		if err := f.startLocked(); err != nil {
			f.log.Warn("position watcher unavailable", "dir", f.dir, "error", err)
			return func() {}
		}
	}

	id := f.nextID
	f.nextID++
	if f.subs[key] == nil {
		f.subs[key] = make(map[int]func(string))
	}
	f.subs[key][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			delete(f.subs[key], id)
		})
	}
}

func (f *FileStore) startLocked() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(f.dir); err != nil {
		w.Close()
		return err
	}
	f.watcher = w
	f.stopCh = make(chan struct{})
	f.doneCh = make(chan struct{})
	go f.run(w, f.stopCh, f.doneCh)
	return nil
}

func (f *FileStore) run(w *fsnotify.Watcher, stopCh, doneCh chan struct{}) {
	defer close(doneCh)
	for {
		select {
		case <-stopCh:
			return
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			f.dispatch(filepath.Base(event.Name))
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			f.log.Warn("position watcher error", "error", err)
		}
	}
}

func (f *FileStore) dispatch(name string) {
	key, err := url.PathUnescape(name)
	if err != nil {
		return
	}

	f.mu.Lock()
	fns := make([]func(string), 0, len(f.subs[key]))
	for _, fn := range f.subs[key] {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	if len(fns) == 0 {
		return
	}

	v, ok, err := f.Get(context.Background(), key)
	if err != nil || !ok {
		return
	}
	for _, fn := range fns {
		fn(v)
	}
}

// Close stops the watcher, if one was started.
func (f *FileStore) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	w, stopCh, doneCh := f.watcher, f.stopCh, f.doneCh
	f.mu.Unlock()

	if w == nil {
		return nil
	}
	close(stopCh)
	<-doneCh
	return w.Close()
}
