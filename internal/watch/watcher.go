// Package watch uploads documents dropped into a directory.
//
// The Watcher listens for create and write events with fsnotify, waits for a
// file to stop changing, then uploads it once through the library API and
// optionally requests ingestion. Files already present when watching starts
// are left alone.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/five82/shelf/internal/library"
)

// Uploader is the subset of library.API the watcher needs.
type Uploader interface {
	UploadDocument(ctx context.Context, filename string, content io.Reader, bookID *int64) (library.Document, error)
	IngestDocument(ctx context.Context, id int64) error
}

// Options configure a Watcher.
type Options struct {
	Dir        string
	Extensions []string
	BookID     *int64
	Ingest     bool
	// Settle is how long a file must go without events before it is uploaded.
	Settle time.Duration
	Logger *zap.Logger
	// OnUpload is called after each successful upload.
	OnUpload func(library.Document)
}

const defaultSettle = 500 * time.Millisecond

// Watcher uploads newly created files from one directory.
type Watcher struct {
	api     Uploader
	opts    Options
	watcher *fsnotify.Watcher
	logger  *zap.Logger

	mu       sync.Mutex
	pending  map[string]time.Time
	uploaded map[string]bool
}

// New validates opts and opens an fsnotify watcher on opts.Dir.
func New(api Uploader, opts Options) (*Watcher, error) {
	if api == nil {
		return nil, errors.New("uploader is nil")
	}
	dir := strings.TrimSpace(opts.Dir)
	if dir == "" {
		return nil, errors.New("watch directory is required")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat watch dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	if opts.Settle <= 0 {
		opts.Settle = defaultSettle
	}
	opts.Dir = dir

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	return &Watcher{
		api:      api,
		opts:     opts,
		watcher:  fw,
		logger:   logger,
		pending:  make(map[string]time.Time),
		uploaded: make(map[string]bool),
	}, nil
}

// Run processes events until ctx is cancelled. The underlying fsnotify
// watcher is closed before Run returns.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.watcher.Close() }()

	w.logger.Info("watching directory",
		zap.String("dir", w.opts.Dir),
		zap.Strings("extensions", w.opts.Extensions),
		zap.Bool("ingest", w.opts.Ingest),
	)

	tick := w.opts.Settle / 2
	if tick < time.Millisecond {
		tick = time.Millisecond
	}
	settleTicker := time.NewTicker(tick)
	defer settleTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))
		case <-settleTicker.C:
			w.processSettled(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}
	if !w.isWatchedExtension(event.Name) {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.uploaded[event.Name] {
		return
	}
	w.pending[event.Name] = time.Now()
}

func (w *Watcher) processSettled(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	var ready []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.opts.Settle {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range ready {
		if ctx.Err() != nil {
			return
		}
		if err := w.upload(ctx, path); err != nil {
			w.logger.Warn("upload failed", zap.String("path", path), zap.Error(err))
		}
	}
}

func (w *Watcher) upload(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer func() { _ = file.Close() }()

	doc, err := w.api.UploadDocument(ctx, filepath.Base(path), file, w.opts.BookID)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.uploaded[path] = true
	w.mu.Unlock()

	w.logger.Info("uploaded document",
		zap.String("path", path),
		zap.Int64("document_id", doc.ID),
	)
	if w.opts.OnUpload != nil {
		w.opts.OnUpload(doc)
	}

	if !w.opts.Ingest {
		return nil
	}
	if err := w.api.IngestDocument(ctx, doc.ID); err != nil {
		return fmt.Errorf("ingest document %d: %w", doc.ID, err)
	}
	w.logger.Info("ingestion requested", zap.Int64("document_id", doc.ID))
	return nil
}

func (w *Watcher) isWatchedExtension(path string) bool {
	if len(w.opts.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range w.opts.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}
