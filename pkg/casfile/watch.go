// Copyright © 2018 One Concern

package casfile

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/oneconcern/casfile/pkg/casfile/status"
	"go.uber.org/zap"
)

const defaultWatchInterval = time.Second

// Watch emits a snapshot each time a newer version is observed.
//
// The current snapshot is emitted first, even if empty. Intermediate versions may be
// skipped when several are published between two observations.
//
// Local changes are notified by fsnotify. Network file systems do not notify changes
// made by other hosts, so the directory is also polled at the given interval (1s if not
// positive).
//
// The channel is closed when ctx is done, or after a failure to read the directory.
func (s *Store) Watch(ctx context.Context, interval time.Duration) (<-chan Snapshot, error) {
	if interval <= 0 {
		interval = defaultWatchInterval
	}
	initial, err := s.CurrentSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	var events <-chan fsnotify.Event
	var errs <-chan error
	watcher, err := fsnotify.NewWatcher()
	if err == nil {
		if err = watcher.Add(s.dir); err != nil {
			_ = watcher.Close()
			watcher = nil
		}
	}
	if err != nil {
		s.l.Info("file system notifications unavailable, polling only", zap.Error(status.ErrWatch.Wrap(err)))
	} else {
		events = watcher.Events
		errs = watcher.Errors
	}

	ch := make(chan Snapshot, 1)
	ch <- initial

	go func() {
		defer close(ch)
		if watcher != nil {
			defer func() { _ = watcher.Close() }()
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		last := initial.Version()
		check := func() bool {
			current, err := s.CurrentSnapshot(ctx)
			if err != nil {
				if ctx.Err() == nil {
					s.l.Warn("stopping watch", zap.Error(err))
				}
				return false
			}
			if current.Version() <= last {
				return true
			}
			last = current.Version()
			select {
			case ch <- current:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !check() {
					return
				}
			case event, ok := <-events:
				if !ok {
					events = nil
					continue
				}
				if event.Op&(fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if _, isVersion := s.parseVersion(filepath.Base(event.Name)); !isVersion {
					continue
				}
				if !check() {
					return
				}
			case err, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				s.l.Warn("file system notification error", zap.Error(err))
			}
		}
	}()

	return ch, nil
}
