// Copyright © 2018 One Concern

package casfile

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/oneconcern/casfile/pkg/casfile/status"
	"github.com/oneconcern/casfile/pkg/linkfs"
	"go.uber.org/zap"
)

// Store is a directory holding successive versions of a logical file.
//
// Several Store values may point to the same directory, in the same process or not:
// the file system arbitrates between concurrent publications. A Store is safe for
// concurrent use.
type Store struct {
	dir     string
	prefix  string
	fs      linkfs.Fs
	mode    os.FileMode
	l       *zap.Logger
	metrics *Metrics
}

// VersionInfo describes a published version
type VersionInfo struct {
	Version uint64
	Size    int64
	ModTime time.Time
}

func defaultStore(dir, prefix string) *Store {
	return &Store{
		dir:    dir,
		prefix: prefix,
		fs:     linkfs.NewOsFs(),
		mode:   defaultMode,
		l:      zap.NewNop(),
	}
}

// New builds a store for versions named "<prefix><n>" in dir.
//
// The directory is assumed to exist. No version needs to exist yet.
func New(dir, prefix string, opts ...Option) (*Store, error) {
	if strings.ContainsRune(prefix, filepath.Separator) {
		return nil, status.ErrInvalidPath.WrapMessage("prefix %q contains a path separator", prefix)
	}
	s := defaultStore(dir, prefix)
	for _, apply := range opts {
		apply(s)
	}
	s.l = s.l.With(zap.String("dir", s.dir), zap.String("prefix", s.prefix))
	return s, nil
}

// Open opens or creates the directory at path as a store.
//
// Versions are named after the directory: "/data/counter.json" holds versions
// "counter.json.1", "counter.json.2", ...
//
// The path must specify the name of the directory: "/" or "/path/to/.." are rejected.
func Open(path string, opts ...Option) (*Store, error) {
	name := filepath.Base(path)
	if path == "" || name == "." || name == ".." || name == string(filepath.Separator) {
		return nil, status.ErrInvalidPath.WrapMessage("%q", path)
	}
	s, err := New(path, name+".", opts...)
	if err != nil {
		return nil, err
	}
	if err := s.fs.MkdirAll(s.dir, 0755); err != nil {
		return nil, status.ErrCreateDir.WrapWithLog(s.l, err)
	}
	return s, nil
}

// Dir yields the directory holding versions
func (s *Store) Dir() string {
	return s.dir
}

// Prefix yields the common prefix of version names
func (s *Store) Prefix() string {
	return s.prefix
}

func (s *Store) String() string {
	return filepath.Join(s.dir, s.prefix+"*")
}

func (s *Store) path(version uint64) string {
	return filepath.Join(s.dir, s.prefix+strconv.FormatUint(version, 10))
}

// parseVersion recognizes version names. Only the canonical decimal form
// is accepted, so that a single name maps to any given version.
func (s *Store) parseVersion(name string) (uint64, bool) {
	suffix, ok := strings.CutPrefix(name, s.prefix)
	if !ok || suffix == "" {
		return 0, false
	}
	v, err := strconv.ParseUint(suffix, 10, 64)
	if err != nil || v == 0 || strconv.FormatUint(v, 10) != suffix {
		return 0, false
	}
	return v, true
}

func (s *Store) listVersions(ctx context.Context) ([]uint64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d, err := s.fs.Open(s.dir)
	if err != nil {
		return nil, status.ErrListVersions.Wrap(err)
	}
	defer d.Close()

	// names only: stat-ing every entry costs a round trip each on network file systems
	names, err := d.Readdirnames(-1)
	if err != nil {
		return nil, status.ErrListVersions.Wrap(err)
	}
	versions := make([]uint64, 0, len(names))
	for _, name := range names {
		if v, ok := s.parseVersion(name); ok {
			versions = append(versions, v)
		}
	}
	return versions, nil
}

// CurrentSnapshot yields the latest published version, or the empty snapshot if none
// was published yet.
//
// The result may be stale as soon as it is returned: it is meant as the base of a
// compare-and-swap with TryPublish.
func (s *Store) CurrentSnapshot(ctx context.Context) (Snapshot, error) {
	versions, err := s.listVersions(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	var latest uint64
	for _, v := range versions {
		if v > latest {
			latest = v
		}
	}
	return s.snapshot(latest), nil
}

func (s *Store) snapshot(version uint64) Snapshot {
	if version == 0 {
		return Snapshot{}
	}
	return Snapshot{version: version, path: s.path(version), fs: s.fs}
}

// Snapshot yields a handle on some published version
func (s *Store) Snapshot(ctx context.Context, version uint64) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	if version == 0 {
		return Snapshot{}, nil
	}
	_, err := s.fs.Stat(s.path(version))
	if os.IsNotExist(err) {
		return Snapshot{}, status.ErrVersionNotFound.WrapMessage("version %d", version)
	}
	if err != nil {
		return Snapshot{}, status.ErrReadVersion.Wrap(err)
	}
	return s.snapshot(version), nil
}

// Versions lists all published versions, oldest first
func (s *Store) Versions(ctx context.Context) ([]VersionInfo, error) {
	versions, err := s.listVersions(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i] < versions[j] })

	infos := make([]VersionInfo, 0, len(versions))
	for _, v := range versions {
		fi, err := s.fs.Stat(s.path(v))
		if err != nil {
			return nil, status.ErrListVersions.Wrap(err)
		}
		infos = append(infos, VersionInfo{Version: v, Size: fi.Size(), ModTime: fi.ModTime()})
	}
	return infos, nil
}

// CreateTemp creates a temporary file in the store's directory, ready to be
// filled then published with TryPublish.
func (s *Store) CreateTemp(ctx context.Context) (*TempFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return createTemp(s.fs, s.dir, s.l)
}

// TryPublish publishes the content of candidate as the version following base.
//
// The candidate is consumed, whatever the outcome.
//
// When another writer already published that version, TryPublish fails with
// status.ErrConflict (see IsConflict): the caller should then load the current
// snapshot again and retry with a new temporary file. TryPublish never retries by itself.
// Any other error is an I/O failure.
func (s *Store) TryPublish(ctx context.Context, base Snapshot, candidate *TempFile) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		_ = candidate.Close()
		return Snapshot{}, err
	}
	version := base.version + 1
	target := s.path(version)

	ambiguous, err := candidate.publish(target)
	switch {
	case IsConflict(err):
		s.metrics.incPublish(resultConflict)
		s.l.Debug("version already published", zap.Uint64("version", version))
		return Snapshot{}, err
	case err != nil:
		s.metrics.incPublish(resultError)
		return Snapshot{}, err
	}

	if ambiguous {
		s.metrics.incAmbiguous()
		s.l.Info("link reported an error but succeeded", zap.Uint64("version", version))
	}
	s.metrics.incPublish(resultPublished)
	s.l.Debug("published version", zap.Uint64("version", version))

	// let other users read the new version. Not critical.
	if err := s.fs.Chmod(target, s.mode); err != nil {
		s.l.Debug("could not set permissions on version", zap.Uint64("version", version), zap.Error(err))
	}
	return s.snapshot(version), nil
}
