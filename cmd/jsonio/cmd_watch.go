package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

func (a *app) watchCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "watch <file> <root-key>",
		Short: "Print a section every time the document changes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.newStore("")
			if err != nil {
				return err
			}
			if format == "" {
				format = a.cfg.Output.Format
			}
			path, rootKey := args[0], args[1]
			ctx := cmd.Context()

			emitSection := func() error {
				section, err := store.Section(ctx, path, rootKey)
				if err != nil {
					a.logger.Warn("section unavailable", "path", path, "root_key", rootKey, "error", err)
					return nil
				}
				return writeSection(cmd.OutOrStdout(), section, format, a.cfg.IndentString())
			}

			watcher, err := newDocumentWatcher(path)
			if err != nil {
				return fmt.Errorf("watch: %w", err)
			}
			defer func() { _ = watcher.Close() }()

			if err := emitSection(); err != nil {
				return err
			}
			return watcher.Run(ctx, emitSection)
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "output format: json or toml (default from config)")
	return cmd
}

// documentWatcher watches the directory holding a document so that editors
// replacing the file through a rename are still observed.
type documentWatcher struct {
	path    string
	watcher *fsnotify.Watcher
}

func newDocumentWatcher(path string) (*documentWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}
	return &documentWatcher{path: abs, watcher: watcher}, nil
}

// Run calls onChange for every relevant event until ctx is done or onChange
// fails.
func (w *documentWatcher) Run(ctx context.Context, onChange func() error) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !shouldReload(event, w.path) {
				continue
			}
			if err := onChange(); err != nil {
				return err
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch: %w", err)
		}
	}
}

func (w *documentWatcher) Close() error {
	return w.watcher.Close()
}

// shouldReload reports whether event changed the document at path.
func shouldReload(event fsnotify.Event, path string) bool {
	if filepath.Clean(event.Name) != filepath.Clean(path) {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}
