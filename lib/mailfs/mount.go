// Copyright 2026 The Kivinge Authors
// SPDX-License-Identifier: Apache-2.0

package mailfs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"syscall"
	"time"

	gofuse "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/kivinge/kivinge/lib/clock"
)

// attributeTimeout is how long the kernel may cache entries and
// attributes. Matching the listing TTL keeps the kernel's view inside
// the same freshness window as the driver's.
const attributeTimeout = 60 * time.Second

// Options configures the FUSE mount.
type Options struct {
	// Mountpoint is the directory where the filesystem is mounted.
	Mountpoint string

	// Client provides the remote inbox operations.
	Client Client

	// Clock provides time for cache expiry. If nil, defaults to
	// clock.Real().
	Clock clock.Clock

	// AllowOther permits other users (including root) to access the
	// mount. Requires user_allow_other in /etc/fuse.conf.
	AllowOther bool

	// Logger receives diagnostic messages. If nil, a stderr logger at
	// error level is used.
	Logger *slog.Logger
}

// Mount mounts the inbox filesystem at the configured mountpoint. The
// caller must call Unmount on the returned Server when done. The
// mountpoint directory is created if it does not exist.
func Mount(options Options) (*fuse.Server, error) {
	if options.Mountpoint == "" {
		return nil, fmt.Errorf("mountpoint is required")
	}
	if options.Client == nil {
		return nil, fmt.Errorf("client is required")
	}
	if options.Logger == nil {
		options.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelError,
		}))
	}

	if err := os.MkdirAll(options.Mountpoint, 0o755); err != nil {
		return nil, fmt.Errorf("creating mountpoint %s: %w", options.Mountpoint, err)
	}

	driver := NewDriver(options.Client, options.Clock, options.Logger)
	root := &dirNode{driver: driver, ino: RootInode}

	timeout := attributeTimeout
	server, err := gofuse.Mount(options.Mountpoint, root, &gofuse.Options{
		EntryTimeout: &timeout,
		AttrTimeout:  &timeout,
		MountOptions: fuse.MountOptions{
			FsName:     "kivinge",
			Name:       "kivinge",
			AllowOther: options.AllowOther,
			Options:    []string{"ro", "noatime"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("mounting FUSE filesystem at %s: %w", options.Mountpoint, err)
	}

	options.Logger.Info("inbox filesystem mounted", "mountpoint", options.Mountpoint)
	return server, nil
}

// dirNode is the root or an inbox-entry directory, identified by its
// codec inode number.
type dirNode struct {
	gofuse.Inode
	driver *Driver
	ino    uint64
}

var _ gofuse.InodeEmbedder = (*dirNode)(nil)
var _ gofuse.NodeLookuper = (*dirNode)(nil)
var _ gofuse.NodeGetattrer = (*dirNode)(nil)
var _ gofuse.NodeReaddirer = (*dirNode)(nil)

func (n *dirNode) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*gofuse.Inode, syscall.Errno) {
	attr, err := n.driver.Lookup(ctx, n.ino, name)
	if err != nil {
		return nil, n.driver.errno(ctx, "lookup", err)
	}

	child := n.NewInode(ctx, newNode(n.driver, attr), gofuse.StableAttr{
		Mode: attr.Mode & syscall.S_IFMT,
		Ino:  attr.Ino,
	})
	fillAttr(attr, &out.Attr)
	return child, 0
}

func (n *dirNode) Getattr(ctx context.Context, _ gofuse.FileHandle, out *fuse.AttrOut) syscall.Errno {
	attr, err := n.driver.Getattr(ctx, n.ino)
	if err != nil {
		return n.driver.errno(ctx, "getattr", err)
	}
	fillAttr(attr, &out.Attr)
	return 0
}

func (n *dirNode) Readdir(ctx context.Context) (gofuse.DirStream, syscall.Errno) {
	children, err := n.driver.ReadDir(ctx, n.ino, 0)
	if err != nil {
		return nil, n.driver.errno(ctx, "readdir", err)
	}

	entries := make([]fuse.DirEntry, 0, len(children))
	for _, child := range children {
		entries = append(entries, fuse.DirEntry{
			Name: child.Name,
			Ino:  child.Attr.Ino,
			Mode: child.Attr.Mode & syscall.S_IFMT,
		})
	}
	return &sliceDirStream{entries: entries}, 0
}

// attachmentNode is one attachment as a regular file.
type attachmentNode struct {
	gofuse.Inode
	driver *Driver
	ino    uint64
}

var _ gofuse.InodeEmbedder = (*attachmentNode)(nil)
var _ gofuse.NodeGetattrer = (*attachmentNode)(nil)
var _ gofuse.NodeOpener = (*attachmentNode)(nil)
var _ gofuse.NodeReader = (*attachmentNode)(nil)

func (n *attachmentNode) Getattr(ctx context.Context, _ gofuse.FileHandle, out *fuse.AttrOut) syscall.Errno {
	attr, err := n.driver.Getattr(ctx, n.ino)
	if err != nil {
		return n.driver.errno(ctx, "getattr", err)
	}
	fillAttr(attr, &out.Attr)
	return 0
}

func (n *attachmentNode) Open(ctx context.Context, flags uint32) (gofuse.FileHandle, uint32, syscall.Errno) {
	if flags&(syscall.O_WRONLY|syscall.O_RDWR) != 0 {
		return nil, 0, syscall.EROFS
	}
	// Attachment content is immutable, so the kernel page cache is
	// always valid.
	return nil, fuse.FOPEN_KEEP_CACHE, 0
}

func (n *attachmentNode) Read(ctx context.Context, _ gofuse.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	data, err := n.driver.Read(ctx, n.ino, off, len(dest))
	if err != nil {
		return nil, n.driver.errno(ctx, "read", err)
	}
	return fuse.ReadResultData(data), 0
}

// newNode builds the fs node matching an attribute's file type.
func newNode(driver *Driver, attr Attr) gofuse.InodeEmbedder {
	if attr.Dir() {
		return &dirNode{driver: driver, ino: attr.Ino}
	}
	return &attachmentNode{driver: driver, ino: attr.Ino}
}

// fillAttr converts driver attributes to the FUSE reply shape. Block
// accounting uses the conventional 512-byte unit.
func fillAttr(attr Attr, out *fuse.Attr) {
	out.Ino = attr.Ino
	out.Mode = attr.Mode
	out.Size = attr.Size
	out.Blocks = (attr.Size + 511) / 512
	out.Blksize = 512
	if attr.Dir() {
		out.Nlink = 2
	} else {
		out.Nlink = 1
	}
}

// sliceDirStream implements fs.DirStream from a slice of entries.
type sliceDirStream struct {
	entries []fuse.DirEntry
	index   int
}

func (s *sliceDirStream) HasNext() bool {
	return s.index < len(s.entries)
}

func (s *sliceDirStream) Next() (fuse.DirEntry, syscall.Errno) {
	if s.index >= len(s.entries) {
		return fuse.DirEntry{}, syscall.EINVAL
	}
	entry := s.entries[s.index]
	s.index++
	return entry, 0
}

func (s *sliceDirStream) Close() {}
