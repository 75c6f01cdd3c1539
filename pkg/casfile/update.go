// Copyright © 2018 One Concern

package casfile

import (
	"context"

	"github.com/cenkalti/backoff/v4"
	"github.com/oneconcern/casfile/pkg/casfile/status"
	"github.com/oneconcern/casfile/pkg/codec"
	"go.uber.org/zap"
)

// UpdateFunc computes the new content of a file from its current content.
//
// present is false when no version exists yet. The function may be called several
// times when concurrent writers interfere, so it should not have side effects.
type UpdateFunc func(current []byte, present bool) ([]byte, error)

// Update atomically replaces the content of the file by fn(content).
//
// Update loops over load, transform and publish until it publishes a version based on
// the latest one, then returns the published snapshot. Conflicts with concurrent
// writers are never returned: they trigger a new attempt, after a randomized pause.
//
// The loop stops on any I/O error, on an error returned by fn, when ctx is done, or
// when a bounded RetryPolicy runs out of attempts (status.ErrTooManyConflicts).
func Update(ctx context.Context, s *Store, fn UpdateFunc, opts ...UpdateOption) (Snapshot, error) {
	o := defaultUpdateOpts(opts)

	var attempts int
	published, err := backoff.RetryWithData(func() (Snapshot, error) {
		attempts++
		published, err := s.attemptUpdate(ctx, fn)
		if err != nil && !IsConflict(err) {
			return Snapshot{}, backoff.Permanent(err)
		}
		return published, err
	}, o.retry.backOff(ctx))

	switch {
	case err == nil:
		s.metrics.observeAttempts(attempts)
		return published, nil
	case IsConflict(err):
		s.l.Debug("giving up update", zap.Int("attempts", attempts))
		return Snapshot{}, status.ErrTooManyConflicts.Wrap(err)
	default:
		return Snapshot{}, err
	}
}

func (s *Store) attemptUpdate(ctx context.Context, fn UpdateFunc) (Snapshot, error) {
	base, err := s.CurrentSnapshot(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	current, present, err := base.ReadAll()
	if err != nil {
		return Snapshot{}, err
	}
	next, err := fn(current, present)
	if err != nil {
		return Snapshot{}, status.ErrTransform.Wrap(err)
	}
	return s.publishBytes(ctx, base, next)
}

// publishBytes stages data in a temporary file then publishes it as the version following base
func (s *Store) publishBytes(ctx context.Context, base Snapshot, data []byte) (Snapshot, error) {
	tmp, err := s.CreateTemp(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return Snapshot{}, err
	}
	return s.TryPublish(ctx, base, tmp)
}

// UpdateStructured atomically replaces the value stored in the file by fn(value).
//
// The current value is decoded with c, and is nil when no version exists yet. Returning
// nil stores an explicit null value, which decodes back to nil.
func UpdateStructured[T any](ctx context.Context, s *Store, c codec.Codec, fn func(current *T) (*T, error), opts ...UpdateOption) (Snapshot, error) {
	return Update(ctx, s, func(data []byte, present bool) ([]byte, error) {
		var current *T
		if present {
			if err := c.Unmarshal(data, &current); err != nil {
				return nil, status.ErrDecode.Wrap(err)
			}
		}
		next, err := fn(current)
		if err != nil {
			return nil, err
		}
		b, err := c.Marshal(next)
		if err != nil {
			return nil, status.ErrEncode.Wrap(err)
		}
		return b, nil
	}, opts...)
}

// UpdateJSON is UpdateStructured with JSON encoding
func UpdateJSON[T any](ctx context.Context, s *Store, fn func(current *T) (*T, error), opts ...UpdateOption) (Snapshot, error) {
	return UpdateStructured(ctx, s, codec.JSON, fn, opts...)
}

// Load decodes the value stored in a snapshot. The value is nil for the empty snapshot.
func Load[T any](snapshot Snapshot, c codec.Codec) (*T, error) {
	data, present, err := snapshot.ReadAll()
	if err != nil || !present {
		return nil, err
	}
	var value *T
	if err := c.Unmarshal(data, &value); err != nil {
		return nil, status.ErrDecode.Wrap(err)
	}
	return value, nil
}
