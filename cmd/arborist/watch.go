package main

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// Editors often write a file in several steps; wait this long after the
// last event before re-checking.
const watchDebounce = 100 * time.Millisecond

func newWatchCmd(a *app) *cobra.Command {
	var (
		file string
		jobs int
	)

	cmd := &cobra.Command{
		Use:   "watch -f FILE",
		Short: "Re-check an expression file whenever it changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" || file == "-" {
				return &CLIError{
					Message: "watch needs a file",
					Hint:    "Use watch -f FILE",
				}
			}
			if !cmd.Flags().Changed("jobs") && a.cfg.Jobs > 0 {
				jobs = a.cfg.Jobs
			}
			return a.watch(cmd.Context(), file, jobs)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Expression file to watch")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "Expressions checked in parallel")
	return cmd
}

// watch checks file once, then again after every change, until ctx is done
func (a *app) watch(ctx context.Context, file string, jobs int) error {
	abs, err := filepath.Abs(file)
	if err != nil {
		return withExit(ExitIOError, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return withExit(ExitIOError, fmt.Errorf("starting watcher: %w", err))
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory so renames by editors are still seen
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return withExit(ExitIOError, fmt.Errorf("watching %s: %w", file, err))
	}

	logger := a.logger()
	a.recheck(ctx, file, jobs)

	var pending <-chan time.Time
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
			logger.Debug("file event", "file", event.Name, "op", event.Op.String())
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				pending = time.After(watchDebounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)

		case <-pending:
			pending = nil
			a.recheck(ctx, file, jobs)
		}
	}
}

// recheck runs one check of file; failures are reported, never fatal
func (a *app) recheck(ctx context.Context, file string, jobs int) {
	_, _ = fmt.Fprintf(a.stdout, "== %s\n", file)

	exprs, err := a.readExpressions(file)
	if err == nil {
		err = a.check(ctx, exprs, jobs)
	}
	if err != nil {
		FormatError(a.stderr, err, a.useColor())
	}
}
