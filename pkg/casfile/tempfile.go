// Copyright © 2018 One Concern

package casfile

import (
	"io"
	"strings"

	"github.com/oneconcern/casfile/pkg/casfile/status"
	"github.com/oneconcern/casfile/pkg/linkfs"
	"github.com/segmentio/ksuid"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const tempPrefix = ".tmp-"

var (
	_ io.ReadWriteSeeker = &TempFile{}
	_ io.Closer          = &TempFile{}
)

// TempFile is a uniquely named file, staged in the versions directory before being published.
//
// A TempFile is the sole handle on its path: the path is never exposed, and the file is
// removed when the TempFile is closed or published. Once published, all operations fail
// with status.ErrConsumed.
//
// A TempFile must not be shared between goroutines.
type TempFile struct {
	fs       linkfs.Fs
	file     afero.File
	path     string
	l        *zap.Logger
	consumed bool
}

// CreateTemp creates a new empty temporary file in dir.
//
// Exclusive creation (O_EXCL) guarantees that no other file already used that name.
// Names embed a ksuid, so that writers on different hosts never compete for the same name.
func CreateTemp(fs linkfs.Fs, dir string) (*TempFile, error) {
	return createTemp(fs, dir, zap.NewNop())
}

func createTemp(fs linkfs.Fs, dir string, l *zap.Logger) (*TempFile, error) {
	pattern := tempPrefix + ksuid.New().String() + "-*"
	f, err := afero.TempFile(fs, dir, pattern)
	if err != nil {
		return nil, status.ErrCreateTemp.Wrap(err)
	}
	return &TempFile{
		fs:   fs,
		file: f,
		path: f.Name(),
		l:    l,
	}, nil
}

// IsTempName tells if a directory entry is a temporary file created by this package
func IsTempName(name string) bool {
	return strings.HasPrefix(name, tempPrefix)
}

// Write implements io.Writer
func (t *TempFile) Write(p []byte) (int, error) {
	if t.consumed {
		return 0, status.ErrConsumed
	}
	n, err := t.file.Write(p)
	if err != nil {
		return n, status.ErrWriteTemp.Wrap(err)
	}
	return n, nil
}

// WriteString writes a string
func (t *TempFile) WriteString(s string) (int, error) {
	return t.Write([]byte(s))
}

// Read implements io.Reader
func (t *TempFile) Read(p []byte) (int, error) {
	if t.consumed {
		return 0, status.ErrConsumed
	}
	return t.file.Read(p)
}

// Seek implements io.Seeker
func (t *TempFile) Seek(offset int64, whence int) (int64, error) {
	if t.consumed {
		return 0, status.ErrConsumed
	}
	return t.file.Seek(offset, whence)
}

// Close discards the temporary file without publishing it.
//
// The backing file is removed. Failing to remove it is not reported: it only leaves
// an orphaned file, never visible as a version. Closing a consumed TempFile is a no-op.
func (t *TempFile) Close() error {
	if t.consumed {
		return nil
	}
	t.consumed = true
	t.dispose()
	return nil
}

// dispose closes the handle if still open and removes the backing path
func (t *TempFile) dispose() {
	err := multierr.Combine(t.closeFile(), t.fs.Remove(t.path))
	if err != nil {
		t.l.Warn("could not clean up temporary file", zap.String("path", t.path), zap.Error(err))
	}
}

func (t *TempFile) closeFile() error {
	if t.file == nil {
		return nil
	}
	err := t.file.Close()
	t.file = nil
	return err
}

// publish flushes the temporary file to durable storage and links it at target.
//
// The TempFile is consumed whatever the outcome, and its own path removed: the
// published content remains reachable through target only.
//
// The returned bool reports a link error that turned out to be a success.
func (t *TempFile) publish(target string) (bool, error) {
	if t.consumed {
		return false, status.ErrConsumed
	}
	t.consumed = true
	defer t.dispose()

	if err := t.file.Sync(); err != nil {
		return false, status.ErrSync.WrapWithLog(t.l, err, zap.String("path", t.path))
	}
	// no writable handle survives past this point. On NFS, close also reports
	// deferred write errors.
	if err := t.closeFile(); err != nil {
		return false, status.ErrSync.WrapWithLog(t.l, err, zap.String("path", t.path))
	}

	linkErr := t.fs.Link(t.path, target)
	if linkErr == nil {
		return false, nil
	}
	if err := resolveLinkError(t.fs, t.l, t.path, linkErr); err != nil {
		return false, err
	}
	return true, nil
}
