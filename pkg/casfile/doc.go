// Copyright © 2018 One Concern

// Package casfile emulates an atomic, optionally absent file on a shared file system.
//
// A logical file is a directory holding immutable, successive versions of its content,
// named "<prefix><n>" with n = 1, 2, 3, ... The highest version is the current content.
//
// Writers stage new content in an exclusively created temporary file, then publish it
// as version n+1 with a single hard link. Link creation fails when the target exists, so
// exactly one writer wins each version: this yields a compare-and-swap primitive that
// holds across threads, processes and machines sharing an NFS-like file system, without
// any lock.
//
// Readers only ever open published versions, which are fully synced before being linked:
// a partially written content is never visible.
//
// Typical usage relies on Update, UpdateStructured or UpdateJSON, which retry the
// read-modify-write cycle until it wins a version.
//
// Superseded versions are never removed by this package.
package casfile
