// Copyright © 2018 One Concern

package casfile

import (
	"os"
	"time"

	"github.com/oneconcern/casfile/pkg/linkfs"
	"go.uber.org/zap"
)

const defaultMode os.FileMode = 0644

// Option to configure a Store
type Option func(*Store)

// FileSystem sets the file system holding versions. Defaults to the OS file system.
func FileSystem(fs linkfs.Fs) Option {
	return func(s *Store) {
		if fs != nil {
			s.fs = fs
		}
	}
}

// Logger sets a logger for this store
func Logger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.l = logger
		}
	}
}

// WithMetrics collects publication statistics
func WithMetrics(m *Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// Mode sets the permissions of published versions. Defaults to 0644.
func Mode(mode os.FileMode) Option {
	return func(s *Store) {
		s.mode = mode.Perm()
	}
}

type updateOpts struct {
	retry RetryPolicy
	_     struct{} // disallow unkeyed usage
}

// UpdateOption is a functor used to tune the behavior of the update loops
type UpdateOption func(*updateOpts)

// Retry sets the policy applied when an update conflicts with a concurrent writer
func Retry(p RetryPolicy) UpdateOption {
	return func(o *updateOpts) {
		o.retry = p
	}
}

// MaxAttempts bounds the number of attempts of an update. 0 means unbounded.
func MaxAttempts(n int) UpdateOption {
	return func(o *updateOpts) {
		o.retry.MaxAttempts = n
	}
}

// Backoff sets the range of the randomized pauses between conflicting attempts.
func Backoff(initial, maxBackoff time.Duration) UpdateOption {
	return func(o *updateOpts) {
		o.retry.InitialBackoff = initial
		o.retry.MaxBackoff = maxBackoff
	}
}

func defaultUpdateOpts(opts []UpdateOption) *updateOpts {
	o := &updateOpts{retry: DefaultRetryPolicy()}
	for _, apply := range opts {
		apply(o)
	}
	return o
}
