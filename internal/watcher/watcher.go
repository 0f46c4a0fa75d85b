// Package watcher ingests files dropped under a watch directory. Each
// subdirectory of the root names a session: files written under
// <root>/<session_id>/ are indexed into that session.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/ragvision/ragvision/internal/extract"
	"github.com/ragvision/ragvision/internal/ingest"
	"github.com/ragvision/ragvision/internal/models"
)

const defaultDebounce = 400 * time.Millisecond

// Watcher watches the drop directory and re-ingests a session's directory
// after its contents settle. Ingestion is whole-directory so the session index
// always reflects what is on disk.
type Watcher struct {
	root     string
	pipeline *ingest.Pipeline
	debounce time.Duration
	logger   *zap.Logger

	watcher     *fsnotify.Watcher
	mu          sync.Mutex
	debounceMap map[string]*time.Timer // session id -> pending timer
	done        chan struct{}
	started     bool
	stopOnce    sync.Once
}

// NewWatcher creates a watcher over root. The directory is created on Start
// if it does not exist.
func NewWatcher(root string, pipeline *ingest.Pipeline, logger *zap.Logger) *Watcher {
	return &Watcher{
		root:        filepath.Clean(root),
		pipeline:    pipeline,
		debounce:    defaultDebounce,
		logger:      logger,
		debounceMap: make(map[string]*time.Timer),
		done:        make(chan struct{}),
	}
}

// Start begins watching. Existing session directories are ingested once at
// startup. Runs until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	if err := os.MkdirAll(w.root, 0755); err != nil {
		w.mu.Unlock()
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	if err := watcher.Add(w.root); err != nil {
		_ = watcher.Close()
		w.mu.Unlock()
		return err
	}
	w.watcher = watcher
	w.started = true
	w.mu.Unlock()

	w.logger.Info("watching drop directory", zap.String("root", w.root))

	entries, err := os.ReadDir(w.root)
	if err == nil {
		for _, entry := range entries {
			if entry.IsDir() {
				w.addSessionDir(filepath.Join(w.root, entry.Name()))
			}
		}
	}

	go w.run(ctx)
	return nil
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if err != nil {
				w.logger.Debug("watcher error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	session := w.sessionFor(ev.Name)
	if session == "" {
		return
	}
	w.logger.Debug("watcher event",
		zap.String("op", ev.Op.String()), zap.String("path", ev.Name), zap.String("session_id", session))
	switch {
	case ev.Op.Has(fsnotify.Create):
		info, err := os.Stat(ev.Name)
		if err == nil && info.IsDir() && filepath.Dir(ev.Name) == w.root {
			w.addSessionDir(ev.Name)
			return
		}
		w.debounceSession(session)
	case ev.Op.Has(fsnotify.Write), ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
		w.debounceSession(session)
	}
}

// addSessionDir starts watching a session directory and schedules an ingest
// of its current contents.
func (w *Watcher) addSessionDir(dir string) {
	w.mu.Lock()
	watcher := w.watcher
	w.mu.Unlock()
	if watcher == nil {
		return
	}
	if err := watcher.Add(dir); err != nil {
		w.logger.Warn("failed to watch session directory", zap.String("path", dir), zap.Error(err))
		return
	}
	w.debounceSession(filepath.Base(dir))
}

// sessionFor maps a path under the root to its session id, or "" when the
// path is the root itself or outside it.
func (w *Watcher) sessionFor(path string) string {
	rel, err := filepath.Rel(w.root, filepath.Clean(path))
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return ""
	}
	parts := strings.SplitN(rel, string(filepath.Separator), 2)
	return parts[0]
}

func (w *Watcher) debounceSession(session string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.debounceMap[session]; ok {
		t.Stop()
	}
	w.debounceMap[session] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.debounceMap, session)
		w.mu.Unlock()
		w.ingestSession(session)
	})
}

// ingestSession reads every file under the session's directory and runs the
// batch through the pipeline. An unreadable or empty directory is skipped;
// the session's prior index, if any, stays in place.
func (w *Watcher) ingestSession(session string) {
	dir := filepath.Join(w.root, session)
	var files []models.UploadedFile
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			w.logger.Warn("skipping unreadable file", zap.String("path", path), zap.Error(err))
			return nil
		}
		files = append(files, models.UploadedFile{
			Filename:    d.Name(),
			ContentKind: extract.KindForPath(path),
			Data:        data,
		})
		return nil
	})
	if err != nil {
		w.logger.Debug("session directory walk failed", zap.String("session_id", session), zap.Error(err))
		return
	}
	if len(files) == 0 {
		return
	}
	w.logger.Info("ingesting dropped files",
		zap.String("session_id", session), zap.Int("files", len(files)))
	if !w.pipeline.Ingest(context.Background(), session, files) {
		w.logger.Warn("dropped file ingestion failed", zap.String("session_id", session))
	}
}

// Stop stops the watcher and releases resources.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started || w.watcher == nil {
		w.mu.Unlock()
		return
	}
	for session, t := range w.debounceMap {
		t.Stop()
		delete(w.debounceMap, session)
	}
	_ = w.watcher.Close()
	w.watcher = nil
	w.started = false
	w.mu.Unlock()
	w.stopOnce.Do(func() { close(w.done) })
}
