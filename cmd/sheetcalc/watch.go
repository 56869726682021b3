package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
)

// watch runs the script once, then again with a fresh sheet every time the
// file is written, printing the sheet after each run. the parent directory is
// watched so that a file replaced on save is still picked up.
func (a *app) watch(ctx context.Context, out io.Writer, path string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	a.rerun(out, abs)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				a.logger.Debug("script changed", slog.String("path", path), slog.String("op", event.Op.String()))
				a.rerun(out, abs)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Warn("watch error", slog.Any("error", err))
		}
	}
}

// rerun evaluates the script on a fresh sheet. failures are reported and
// watching goes on.
func (a *app) rerun(out io.Writer, path string) {
	session := a.newSession(out)
	if err := a.runFile(session, path); err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
	}
	fmt.Fprintf(out, "--- %s\n", filepath.Base(path))
	if err := session.Exec("print"); err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
	}
}
