// Copyright © 2018 One Concern

package casfile

import (
	"github.com/oneconcern/casfile/pkg/casfile/status"
	"github.com/oneconcern/casfile/pkg/errors"
	"github.com/oneconcern/casfile/pkg/linkfs"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// resolveLinkError decides what a failed link of source actually did.
//
// The error code of link(2) cannot be trusted on NFS: when a reply is lost, the client
// retransmits the request and the server answers EEXIST to a link it already made on
// behalf of the first request. The open(2) manual prescribes the remedy: stat the
// source, and if its link count has become 2 the link succeeded.
//
// The source is a freshly created file that nobody else knows about, so a link count of
// 2 can only come from our own link.
//
// A nil return means that the link was in fact made. Otherwise, the error is
// status.ErrConflict when the target already existed, status.ErrPublish in any other case.
// Only the latter is logged: conflicts are part of the normal flow.
func resolveLinkError(fs linkfs.Fs, l *zap.Logger, source string, linkErr error) error {
	n, err := fs.LinkCount(source)
	if err != nil {
		return status.ErrPublish.WrapWithLog(l, multierr.Combine(linkErr, err), zap.String("source", source))
	}
	if n == 2 {
		return nil
	}
	if linkfs.IsExist(linkErr) {
		return status.ErrConflict.Wrap(linkErr)
	}
	return status.ErrPublish.WrapWithLog(l, linkErr, zap.String("source", source))
}

// IsConflict tells if an error reports that a concurrent writer won the targeted version
func IsConflict(err error) bool {
	return errors.Is(err, status.ErrConflict)
}
