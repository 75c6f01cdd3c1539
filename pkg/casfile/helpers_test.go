// Copyright © 2018 One Concern

package casfile

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/oneconcern/casfile/pkg/linkfs"
	"github.com/stretchr/testify/require"
)

type counter struct {
	Count int `json:"count" yaml:"count" cbor:"count"`
}

func increment(c *counter) (*counter, error) {
	if c == nil {
		return &counter{Count: 1}, nil
	}
	c.Count++
	return c, nil
}

func newTestStore(t testing.TB, opts ...Option) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "counter.json"), opts...)
	require.NoError(t, err)
	return s
}

// dirEntries lists the names found in a store's directory, sorted
func dirEntries(t testing.TB, s *Store) []string {
	t.Helper()
	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func publishString(t testing.TB, s *Store, base Snapshot, content string) (Snapshot, error) {
	t.Helper()
	tmp, err := s.CreateTemp(context.Background())
	require.NoError(t, err)
	_, err = tmp.WriteString(content)
	require.NoError(t, err)
	return s.TryPublish(context.Background(), base, tmp)
}

func readString(t testing.TB, snapshot Snapshot) string {
	t.Helper()
	data, present, err := snapshot.ReadAll()
	require.NoError(t, err)
	require.True(t, present)
	return string(data)
}

// faultyFs injects failures into link operations
type faultyFs struct {
	linkfs.Fs
	link      func(fs linkfs.Fs, oldname, newname string) error
	linkCount func(fs linkfs.Fs, name string) (uint64, error)
}

func (f *faultyFs) Link(oldname, newname string) error {
	if f.link != nil {
		return f.link(f.Fs, oldname, newname)
	}
	return f.Fs.Link(oldname, newname)
}

func (f *faultyFs) LinkCount(name string) (uint64, error) {
	if f.linkCount != nil {
		return f.linkCount(f.Fs, name)
	}
	return f.Fs.LinkCount(name)
}
