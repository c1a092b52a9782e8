// Package watcher queues PDFs dropped into an inbox directory for ingestion.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
	"github.com/yurisalesc/poc-legal-llm/internal/core/services"
	"github.com/yurisalesc/poc-legal-llm/internal/logger"
)

// DefaultSettle is how long a file must stay unchanged before it is queued.
const DefaultSettle = 500 * time.Millisecond

// Submitter queues a file for ingestion.
type Submitter interface {
	Submit(ctx context.Context, path string) (*domain.Task, error)
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithSettle sets the quiet period before a written file is queued.
func WithSettle(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.settle = d
		}
	}
}

// WithExisting queues the PDFs already in the directory when Run starts.
func WithExisting() Option {
	return func(w *Watcher) {
		w.existing = true
	}
}

// fileStamp identifies one version of a file.
type fileStamp struct {
	size    int64
	modTime time.Time
}

// Watcher submits new or rewritten PDFs in dir.
type Watcher struct {
	dir       string
	submitter Submitter
	settle    time.Duration
	existing  bool

	mu      sync.Mutex
	pending map[string]*time.Timer
	queued  map[string]fileStamp
	ready   chan string
}

// New creates a watcher for dir.
func New(dir string, submitter Submitter, opts ...Option) *Watcher {
	w := &Watcher{
		dir:       dir,
		submitter: submitter,
		settle:    DefaultSettle,
		pending:   make(map[string]*time.Timer),
		queued:    make(map[string]fileStamp),
		ready:     make(chan string),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches the directory until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	info, err := os.Stat(w.dir)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, w.dir)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	logger.Info("Watching %s for PDFs", w.dir)

	if w.existing {
		w.queueExisting(ctx)
	}

	defer w.stopTimers()
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if path, ok := w.handleFsEvent(event); ok {
				w.schedule(ctx, path)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error: %v", err)

		case path := <-w.ready:
			w.submit(ctx, path)
		}
	}
}

// handleFsEvent returns the path to queue for event, if any.
func (w *Watcher) handleFsEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") || !services.IsPDF(name) {
		return "", false
	}
	info, err := os.Stat(event.Name)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return event.Name, true
}

// schedule (re)starts the settle timer for path.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok {
		t.Reset(w.settle)
		return
	}
	w.pending[path] = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		select {
		case w.ready <- path:
		case <-ctx.Done():
		}
	})
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
}

// submit queues path unless this exact version was already queued.
func (w *Watcher) submit(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil {
		logger.Debug("skipping %s: %v", path, err)
		return
	}
	stamp := fileStamp{size: info.Size(), modTime: info.ModTime()}
	if prev, ok := w.queued[path]; ok && prev == stamp {
		return
	}

	task, err := w.submitter.Submit(ctx, path)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.Error(err, "queueing %s", filepath.Base(path))
		}
		return
	}
	w.queued[path] = stamp
	logger.Info("Queued %s as task %s", filepath.Base(path), task.ID)
}

func (w *Watcher) queueExisting(ctx context.Context) {
	paths, err := services.ListPDFs(w.dir)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("listing %s: %v", w.dir, err)
		}
		return
	}
	for _, path := range paths {
		if strings.HasPrefix(filepath.Base(path), ".") {
			continue
		}
		w.submit(ctx, path)
	}
}
