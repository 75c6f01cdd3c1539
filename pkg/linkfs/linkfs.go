// Copyright © 2018 One Concern

package linkfs

import (
	stderrors "errors"
	"io/fs"
	"os"

	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

// Fs is a file system supporting hard links
type Fs interface {
	afero.Fs

	// Link creates newname as a hard link to oldname. Symbolic links are not followed.
	//
	// The returned error matches fs.ErrExist whenever newname already exists.
	Link(oldname, newname string) error

	// LinkCount returns the number of names referencing the file at name
	LinkCount(name string) (uint64, error)
}

var _ Fs = &osFs{}

// NewOsFs yields a Fs backed by the operating system
func NewOsFs() Fs {
	return &osFs{Fs: afero.NewOsFs()}
}

type osFs struct {
	afero.Fs
}

func (*osFs) Name() string {
	return "linkfs-os"
}

func (*osFs) Link(oldname, newname string) error {
	// flags = 0: AT_SYMLINK_FOLLOW is not set, so oldname is not dereferenced
	if err := unix.Linkat(unix.AT_FDCWD, oldname, unix.AT_FDCWD, newname, 0); err != nil {
		return &os.LinkError{Op: "link", Old: oldname, New: newname, Err: err}
	}
	return nil
}

func (*osFs) LinkCount(name string) (uint64, error) {
	var st unix.Stat_t
	if err := unix.Stat(name, &st); err != nil {
		return 0, &os.PathError{Op: "stat", Path: name, Err: err}
	}
	return uint64(st.Nlink), nil //nolint:unconvert // Nlink is uint32 on some architectures
}

// IsExist tells if an error reports that the target of a link already exists
func IsExist(err error) bool {
	return stderrors.Is(err, fs.ErrExist)
}
