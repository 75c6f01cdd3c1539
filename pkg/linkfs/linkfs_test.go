// Copyright © 2018 One Concern

package linkfs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLink(t *testing.T) {
	dir := t.TempDir()
	fs := NewOsFs()
	assert.Equal(t, "linkfs-os", fs.Name())

	src := filepath.Join(dir, "source")
	require.NoError(t, afero.WriteFile(fs, src, []byte("sixteen tons"), 0600))

	n, err := fs.LinkCount(src)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	dst := filepath.Join(dir, "target")
	require.NoError(t, fs.Link(src, dst))

	n, err = fs.LinkCount(src)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	b, err := afero.ReadFile(fs, dst)
	require.NoError(t, err)
	assert.Equal(t, "sixteen tons", string(b))

	other := filepath.Join(dir, "other")
	require.NoError(t, afero.WriteFile(fs, other, []byte("seventeen tons"), 0600))

	err = fs.Link(other, dst)
	require.Error(t, err)
	assert.True(t, IsExist(err))

	var linkErr *os.LinkError
	require.ErrorAs(t, err, &linkErr)
	assert.Equal(t, other, linkErr.Old)
	assert.Equal(t, dst, linkErr.New)

	n, err = fs.LinkCount(other)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n, "a failed link must leave the link count unchanged")
}

func TestLinkDoesNotFollowSymlinks(t *testing.T) {
	dir := t.TempDir()
	fs := NewOsFs()

	origin := filepath.Join(dir, "origin")
	require.NoError(t, afero.WriteFile(fs, origin, []byte("content"), 0600))
	sym := filepath.Join(dir, "sym")
	require.NoError(t, os.Symlink(origin, sym))

	dst := filepath.Join(dir, "dst")
	require.NoError(t, fs.Link(sym, dst))

	fi, err := os.Lstat(dst)
	require.NoError(t, err)
	assert.NotZero(t, fi.Mode()&os.ModeSymlink, "the link should point to the symlink itself")

	n, err := fs.LinkCount(origin)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestLinkErrors(t *testing.T) {
	dir := t.TempDir()
	fs := NewOsFs()

	err := fs.Link(filepath.Join(dir, "missing"), filepath.Join(dir, "dst"))
	require.Error(t, err)
	assert.False(t, IsExist(err))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = fs.LinkCount(filepath.Join(dir, "missing"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
