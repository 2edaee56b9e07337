package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrNothingToWatch is returned by --watch when every input is a URL.
var ErrNothingToWatch = errors.New("--watch needs at least one file input")

// watchDebounce groups the burst of events an editor save produces.
const watchDebounce = 150 * time.Millisecond

// inputWatcher re-runs conversion jobs when their source files change.
type inputWatcher struct {
	fs     *fsnotify.Watcher
	jobs   []conversionJob
	shared map[string]bool // stylesheet and template data, affect every job

	// reload re-reads the shared files before a full re-run.
	reload func() error
}

// newInputWatcher watches the directories holding the job inputs and the
// shared files. Directories are watched rather than files so that saves
// which replace the file still arrive.
func newInputWatcher(jobs []conversionJob, sharedFiles ...string) (*inputWatcher, error) {
	dirs := make(map[string]bool)
	for _, job := range jobs {
		for _, in := range job.inputs {
			if in.kind != kindURL {
				dirs[filepath.Dir(absPath(in.path))] = true
			}
		}
	}
	if len(dirs) == 0 {
		return nil, ErrNothingToWatch
	}

	shared := make(map[string]bool)
	for _, f := range sharedFiles {
		if f != "" {
			shared[absPath(f)] = true
			dirs[filepath.Dir(absPath(f))] = true
		}
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("starting watcher: %w", err)
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	return &inputWatcher{fs: fw, jobs: jobs, shared: shared}, nil
}

// Close stops the underlying watcher.
func (w *inputWatcher) Close() error {
	return w.fs.Close()
}

// run blocks until ctx is done, calling convert with the jobs affected by
// each settled batch of changes.
func (w *inputWatcher) run(ctx context.Context, convert func([]conversionJob), warn func(error)) error {
	pending := make(map[string]bool)
	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !relevantEvent(ev) {
				continue
			}
			pending[absPath(ev.Name)] = true
			timer.Reset(watchDebounce)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			warn(fmt.Errorf("watcher: %w", err))

		case <-timer.C:
			jobs, sharedChanged := w.affected(pending)
			clear(pending)
			if sharedChanged && w.reload != nil {
				if err := w.reload(); err != nil {
					warn(err)
					continue
				}
			}
			if len(jobs) > 0 {
				convert(jobs)
			}
		}
	}
}

// affected returns the jobs reading any changed path. A changed shared
// file selects every job.
func (w *inputWatcher) affected(changed map[string]bool) ([]conversionJob, bool) {
	for path := range changed {
		if w.shared[path] {
			return w.jobs, true
		}
	}

	var jobs []conversionJob
	for _, job := range w.jobs {
		for _, in := range job.inputs {
			if in.kind != kindURL && changed[absPath(in.path)] {
				jobs = append(jobs, job)
				break
			}
		}
	}
	return jobs, false
}

// relevantEvent keeps content changes and ignores attribute-only events
// and editor dotfiles.
func relevantEvent(ev fsnotify.Event) bool {
	if strings.HasPrefix(filepath.Base(ev.Name), ".") {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
