// Copyright © 2018 One Concern

package casfile

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/oneconcern/casfile/pkg/casfile/status"
	"github.com/oneconcern/casfile/pkg/errors"
	"github.com/oneconcern/casfile/pkg/linkfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTempFileReadWrite(t *testing.T) {
	s := newTestStore(t)

	tmp, err := s.CreateTemp(context.Background())
	require.NoError(t, err)
	defer tmp.Close()

	_, err = tmp.WriteString("here we go once again")
	require.NoError(t, err)

	_, err = tmp.Seek(0, io.SeekStart)
	require.NoError(t, err)
	b, err := io.ReadAll(tmp)
	require.NoError(t, err)
	assert.Equal(t, "here we go once again", string(b))

	names := dirEntries(t, s)
	require.Len(t, names, 1)
	assert.True(t, IsTempName(names[0]), names[0])
	_, isVersion := s.parseVersion(names[0])
	assert.False(t, isVersion)
}

func TestTempFileUniqueNames(t *testing.T) {
	s := newTestStore(t)
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		tmp, err := s.CreateTemp(context.Background())
		require.NoError(t, err)
		defer tmp.Close()
		_, dup := seen[tmp.path]
		require.False(t, dup, "duplicate temp name %s", tmp.path)
		seen[tmp.path] = struct{}{}
	}
	assert.Len(t, dirEntries(t, s), 50)
}

func TestTempFileDiscarded(t *testing.T) {
	s := newTestStore(t)

	tmp, err := s.CreateTemp(context.Background())
	require.NoError(t, err)
	_, err = tmp.WriteString("never published")
	require.NoError(t, err)

	require.NoError(t, tmp.Close())
	assert.Empty(t, dirEntries(t, s), "a discarded temporary file must not leave anything behind")

	snapshot, err := s.CurrentSnapshot(context.Background())
	require.NoError(t, err)
	assert.True(t, snapshot.IsEmpty())

	require.NoError(t, tmp.Close(), "closing twice is a no-op")

	_, err = tmp.WriteString("too late")
	assert.True(t, errors.Is(err, status.ErrConsumed))
	_, err = tmp.Read(make([]byte, 1))
	assert.True(t, errors.Is(err, status.ErrConsumed))
	_, err = tmp.Seek(0, io.SeekStart)
	assert.True(t, errors.Is(err, status.ErrConsumed))

	_, err = s.TryPublish(context.Background(), snapshot, tmp)
	assert.True(t, errors.Is(err, status.ErrConsumed))
	assert.Empty(t, dirEntries(t, s))
}

func TestTempFileConsumedByPublish(t *testing.T) {
	s := newTestStore(t)

	tmp, err := s.CreateTemp(context.Background())
	require.NoError(t, err)
	_, err = tmp.WriteString("v1")
	require.NoError(t, err)

	_, err = s.TryPublish(context.Background(), Snapshot{}, tmp)
	require.NoError(t, err)

	_, err = tmp.WriteString("sneaky update")
	assert.True(t, errors.Is(err, status.ErrConsumed))
	require.NoError(t, tmp.Close())

	assert.Equal(t, []string{"counter.json.1"}, dirEntries(t, s))
}

func TestCreateTempMissingDir(t *testing.T) {
	_, err := CreateTemp(linkfs.NewOsFs(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrCreateTemp))
}

func TestCreateTempCancelled(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.CreateTemp(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, dirEntries(t, s))
}
