// Copyright © 2018 One Concern

package casfile

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/oneconcern/casfile/pkg/casfile/status"
	"github.com/oneconcern/casfile/pkg/codec"
	"github.com/oneconcern/casfile/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func receive(t *testing.T, ch <-chan Snapshot) Snapshot {
	t.Helper()
	select {
	case snapshot, ok := <-ch:
		require.True(t, ok, "watch channel closed unexpectedly")
		return snapshot
	case <-time.After(5 * time.Second):
		require.FailNow(t, "timed out waiting for a new version")
		return Snapshot{}
	}
}

func TestWatch(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := s.Watch(ctx, 20*time.Millisecond)
	require.NoError(t, err)

	initial := receive(t, ch)
	assert.True(t, initial.IsEmpty())

	for i := 1; i <= 3; i++ {
		_, err := UpdateJSON(context.Background(), s, increment)
		require.NoError(t, err)

		snapshot := receive(t, ch)
		assert.EqualValues(t, i, snapshot.Version())
		value, err := Load[counter](snapshot, codec.JSON)
		require.NoError(t, err)
		assert.Equal(t, i, value.Count)
	}

	cancel()
	for range ch {
		// drain until closed
	}
}

func TestWatchSkipsNoise(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := newTestStore(t)
	_, err := publishString(t, s, Snapshot{}, "one")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := s.Watch(ctx, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, receive(t, ch).Version())

	// temporary files and conflicting publications never emit anything
	tmp, err := s.CreateTemp(context.Background())
	require.NoError(t, err)
	require.NoError(t, tmp.Close())
	_, err = publishString(t, s, Snapshot{}, "stale")
	require.True(t, IsConflict(err))

	select {
	case snapshot := <-ch:
		t.Fatalf("unexpected snapshot %d", snapshot.Version())
	case <-time.After(100 * time.Millisecond):
	}

	current, err := s.CurrentSnapshot(context.Background())
	require.NoError(t, err)
	_, err = publishString(t, s, current, "two")
	require.NoError(t, err)
	assert.EqualValues(t, 2, receive(t, ch).Version())

	cancel()
	for range ch {
	}
}

func TestWatchMissingDir(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "missing"), "x.")
	require.NoError(t, err)
	_, err = s.Watch(context.Background(), time.Second)
	assert.True(t, errors.Is(err, status.ErrListVersions))
}
