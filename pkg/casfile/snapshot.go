// Copyright © 2018 One Concern

package casfile

import (
	"io"
	"os"

	"github.com/oneconcern/casfile/pkg/casfile/status"
	"github.com/spf13/afero"
)

// Snapshot is an observed version of a logical file.
//
// The zero value is the empty snapshot: no version was published.
type Snapshot struct {
	version uint64
	path    string
	fs      afero.Fs
}

// Version of the snapshot. 0 means that no content was published.
func (s Snapshot) Version() uint64 {
	return s.version
}

// Path to the published content. Empty for the empty snapshot.
func (s Snapshot) Path() string {
	return s.path
}

// IsEmpty tells if no content was published when this snapshot was taken
func (s Snapshot) IsEmpty() bool {
	return s.version == 0
}

// Open the content of this version for reading.
//
// The empty snapshot yields a nil file and no error.
func (s Snapshot) Open() (afero.File, error) {
	if s.version == 0 {
		return nil, nil
	}
	f, err := s.fs.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, status.ErrVersionVanished.Wrap(err)
		}
		return nil, status.ErrReadVersion.Wrap(err)
	}
	return f, nil
}

// ReadAll reads the content of this version.
//
// The boolean is false for the empty snapshot.
func (s Snapshot) ReadAll() ([]byte, bool, error) {
	f, err := s.Open()
	if err != nil || f == nil {
		return nil, false, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, false, status.ErrReadVersion.Wrap(err)
	}
	return data, true, nil
}
