// Copyright © 2018 One Concern

// Package linkfs extends afero.Fs with the two primitives needed to publish
// files atomically on shared (possibly network) file systems:
//   - creating a hard link without following symbolic links
//   - retrieving the link count of a file
//
// Only POSIX systems are supported.
package linkfs
