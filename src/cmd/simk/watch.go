package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/phroun/simkernel"
)

// watchSettle is how long a file must stay quiet before it is re-run.
// Editors often write a file in several steps.
const watchSettle = 150 * time.Millisecond

// watchFile runs the sweep, then runs it again every time file changes,
// until ctx is cancelled. The directory is watched rather than the file,
// so editors that replace the file by renaming keep being followed.
func (o options) watchFile(ctx context.Context, file string, window simkernel.Window) int {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		errorPrintf("Error: cannot watch %s: %v\n", file, err)
		return exitError
	}
	defer watcher.Close()

	abs, err := filepath.Abs(file)
	if err != nil {
		errorPrintf("Error: %v\n", err)
		return exitError
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		errorPrintf("Error: cannot watch %s: %v\n", file, err)
		return exitError
	}

	rerun := func() {
		content, err := os.ReadFile(file)
		if err != nil {
			errorPrintf("Error reading parameter file: %v\n", err)
			return
		}
		o.sweep(ctx, string(content), file, window, os.Stdout)
		errorPrintf("-- watching %s (Ctrl-C to stop)\n", file)
	}
	rerun()

	settle := time.NewTimer(watchSettle)
	settle.Stop()
	for {
		select {
		case <-ctx.Done():
			return exitOK
		case ev, ok := <-watcher.Events:
			if !ok {
				return exitOK
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				settle.Reset(watchSettle)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return exitOK
			}
			errorPrintf("Error: watching %s: %v\n", file, err)
		case <-settle.C:
			rerun()
		}
	}
}
