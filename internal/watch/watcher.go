// Package watch delivers new order records from the spool directory to the
// processing pipeline.
package watch

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"sheetsync/internal/order"
)

// Handler processes one decoded order record. The key is the record's
// identity (the spool file name without extension) and stays stable across
// redeliveries of the same record.
type Handler func(ctx context.Context, key string, o order.Order) error

// Watcher watches a spool directory for order records written as JSON
// files, one order per file.
type Watcher struct {
	dir     string
	handler Handler
}

// New creates a watcher over dir.
func New(dir string, handler Handler) *Watcher {
	return &Watcher{
		dir:     dir,
		handler: handler,
	}
}

// Run watches the spool directory until the context is cancelled. Records
// already present at startup are processed first, so orders written while
// the process was down are not lost (the handler's ledger skips any that
// were already appended).
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return err
	}

	w.sweep(ctx)

	slog.Info("watching for orders", "dir", w.dir)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if filepath.Ext(event.Name) != ".json" {
				continue
			}
			w.process(ctx, event.Name)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Error("watch error", "error", err)
		}
	}
}

// sweep processes records already in the spool directory.
func (w *Watcher) sweep(ctx context.Context) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		slog.Error("reading spool directory failed", "dir", w.dir, "error", err)
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		w.process(ctx, filepath.Join(w.dir, entry.Name()))
	}
}

func (w *Watcher) process(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Error("reading order record failed", "file", path, "error", err)
		return
	}

	var o order.Order
	if err := json.Unmarshal(data, &o); err != nil {
		// The writer may still be flushing; the Write event for the
		// remainder retries the decode.
		slog.Debug("order record not yet decodable", "file", path, "error", err)
		return
	}

	key := strings.TrimSuffix(filepath.Base(path), ".json")

	if err := w.handler(ctx, key, o); err != nil {
		slog.Error("processing order failed", "order", key, "error", err)
	}
}
