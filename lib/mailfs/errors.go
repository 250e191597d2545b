// Copyright 2026 The Kivinge Authors
// SPDX-License-Identifier: Apache-2.0

package mailfs

import (
	"errors"
	"fmt"
	"log/slog"
	"syscall"
)

// The closed error taxonomy of the filesystem. Every error returned by
// a Driver operation wraps exactly one of these sentinels; kernel
// callers therefore see a uniform, stable error surface.
var (
	// ErrNotFound: an inode or name does not resolve against the
	// current listing.
	ErrNotFound = errors.New("not found")

	// ErrInternal: the remote collaborator or its transport failed.
	ErrInternal = errors.New("internal error")

	// ErrInvalid: an attachment carries neither an inline body nor a
	// download key. Data-integrity failure, never a valid state.
	ErrInvalid = errors.New("invalid")

	// ErrIsDir: a read was attempted on a directory inode.
	ErrIsDir = errors.New("inode is directory")

	// ErrIsNotDir: a directory operation was attempted on a file inode.
	ErrIsNotDir = errors.New("inode is not directory")
)

// internalError wraps a collaborator failure. Transport errors are
// never passed through as distinct kinds.
func internalError(err error) error {
	return fmt.Errorf("%w: %v", ErrInternal, err)
}

// Errno projects a taxonomy error onto its POSIX error code.
// Unrecognized errors project to EFAULT like ErrInternal; the driver
// never produces them.
func Errno(err error) syscall.Errno {
	switch {
	case errors.Is(err, ErrNotFound):
		return syscall.ENOENT
	case errors.Is(err, ErrInvalid):
		return syscall.EINVAL
	case errors.Is(err, ErrIsDir):
		return syscall.EISDIR
	case errors.Is(err, ErrIsNotDir):
		return syscall.ENOTDIR
	default:
		return syscall.EFAULT
	}
}

// LogLevel projects a taxonomy error onto its logging severity.
// Domain errors are routine (the kernel probes for names constantly)
// and log at debug; integrity violations warn; collaborator failures
// are errors.
func LogLevel(err error) slog.Level {
	switch {
	case errors.Is(err, ErrInvalid):
		return slog.LevelWarn
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrIsDir), errors.Is(err, ErrIsNotDir):
		return slog.LevelDebug
	default:
		return slog.LevelError
	}
}
