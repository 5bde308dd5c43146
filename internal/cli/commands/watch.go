package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay collapses the burst of events editors emit on save.
const debounceDelay = 100 * time.Millisecond

// watchInput runs the job, then re-runs it after every change to the input
// file until ctx is canceled or the process is interrupted. Runs never
// overlap. A failed run is reported and watching continues.
func watchInput(ctx context.Context, cc *CommandContext, j *job) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	input, err := filepath.Abs(j.opts.Input)
	if err != nil {
		return fmt.Errorf("failed to resolve input path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory so files replaced by rename are still seen
	if err := watcher.Add(filepath.Dir(input)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(input), err)
	}

	if _, err := j.run(ctx); err != nil {
		cc.Renderer.Warning(err.Error())
	}
	cc.Renderer.Muted(fmt.Sprintf("Watching %s for changes (Ctrl+C to stop)", j.opts.Input))

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != input {
				continue
			}
			debounce = time.After(debounceDelay)
		case <-debounce:
			debounce = nil
			cc.Logger.Info("input changed", "path", input)
			if _, err := j.run(ctx); err != nil {
				cc.Renderer.Warning(err.Error())
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cc.Logger.Warn("watch error", "error", err)
		}
	}
}
