// Copyright © 2018 One Concern

// Package status declares error constants returned by
// the casfile package.
//
// NOTE: such constants are located in a separate package to avoid
// creating undue cyclical dependencies between pkg/casfile and
// the packages it relies upon.
package status

import "github.com/oneconcern/casfile/pkg/errors"

var (
	// ErrConflict indicates that another writer already published the version targeted by a compare-and-swap.
	// The caller should load the current snapshot again and retry with a fresh temporary file.
	ErrConflict = errors.New("version already published by a concurrent writer")

	// ErrConsumed indicates that a temporary file has already been published or closed
	ErrConsumed = errors.New("temporary file already consumed")

	// ErrInvalidPath indicates that the path of a versioned file has no final name component
	ErrInvalidPath = errors.New("path must specify a directory name")

	// ErrCreateDir indicates a failure when creating the directory holding versions
	ErrCreateDir = errors.New("failed to create versions directory")

	// ErrCreateTemp indicates a failure when exclusively creating a temporary file
	ErrCreateTemp = errors.New("failed to create temporary file")

	// ErrWriteTemp indicates a failure when writing into a temporary file
	ErrWriteTemp = errors.New("failed to write temporary file")

	// ErrSync indicates a failure to flush a temporary file to durable storage
	ErrSync = errors.New("failed to sync temporary file")

	// ErrPublish indicates an unexpected failure while linking a new version
	ErrPublish = errors.New("failed to publish version")

	// ErrListVersions indicates a failure when scanning the versions directory
	ErrListVersions = errors.New("failed to list versions")

	// ErrVersionNotFound indicates that the requested version has not been published
	ErrVersionNotFound = errors.New("version not found")

	// ErrVersionVanished indicates that a published version could not be opened.
	// Versions are never removed by this package, so this signals an external interference.
	ErrVersionVanished = errors.New("published version vanished")

	// ErrReadVersion indicates a failure when reading the content of a version
	ErrReadVersion = errors.New("failed to read version")

	// ErrTooManyConflicts indicates that an update gave up after the maximum number of attempts
	ErrTooManyConflicts = errors.New("too many conflicting updates")

	// ErrTransform indicates that the update function refused the current content
	ErrTransform = errors.New("update function failed")

	// ErrEncode indicates a failure to serialize a structured value
	ErrEncode = errors.New("failed to encode value")

	// ErrDecode indicates a failure to deserialize a structured value
	ErrDecode = errors.New("failed to decode value")

	// ErrWatch indicates a failure to set up a watch on the versions directory
	ErrWatch = errors.New("failed to watch versions directory")
)
