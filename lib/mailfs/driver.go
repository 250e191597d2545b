// Copyright 2026 The Kivinge Authors
// SPDX-License-Identifier: Apache-2.0

package mailfs

import (
	"context"
	"log/slog"
	"sync"
	"syscall"
	"time"

	"github.com/kivinge/kivinge/lib/clock"
	"github.com/kivinge/kivinge/lib/kivra"
)

// Cache tuning. The listing changes rarely relative to read traffic; a
// short TTL bounds staleness after a new message arrives without
// hammering the remote on every readdir. Item details are immutable
// once created, so the long TTL only guards against a poisoned cache.
// Attachment bodies can be large, so they are bounded by count.
const (
	listingTTL          = 60 * time.Second
	detailsTTL          = 60 * time.Minute
	attachmentCacheSize = 10
)

// Client is the remote capability the driver consumes: the three data
// operations from the full kivra.Client. Session and login plumbing
// stay outside this package.
type Client interface {
	ListInbox(ctx context.Context) (kivra.InboxListing, error)
	GetItemDetails(ctx context.Context, itemKey string) (kivra.ItemDetails, error)
	DownloadAttachment(ctx context.Context, itemKey, attachmentKey string) ([]byte, error)
}

// inboxIndex is the queryable view over one listing fetch: entries in
// sequence-number order plus a name index. Both are rebuilt whenever
// the listing cache refreshes, so directory order and name resolution
// stay mutually consistent within a freshness window.
type inboxIndex struct {
	entries []kivra.InboxEntry
	byID    map[uint32]kivra.InboxEntry
	byName  map[string]kivra.InboxEntry
}

func newInboxIndex(listing kivra.InboxListing) *inboxIndex {
	index := &inboxIndex{
		entries: listing,
		byID:    make(map[uint32]kivra.InboxEntry, len(listing)),
		byName:  make(map[string]kivra.InboxEntry, len(listing)),
	}
	for _, entry := range listing {
		index.byID[entry.ID] = entry
		index.byName[entry.DirName()] = entry
	}
	return index
}

// attachmentAddress keys the attachment content cache.
type attachmentAddress struct {
	entryID      uint32
	attachmentID uint32
}

// Attr describes one inode for the kernel: directories report mode
// 0500 and size zero, attachments report mode 0400 and their metadata
// size (answering stat never downloads a body).
type Attr struct {
	Ino  uint64
	Size uint64
	Mode uint32
}

// Dir reports whether the attribute describes a directory.
func (a Attr) Dir() bool {
	return a.Mode&syscall.S_IFDIR != 0
}

// DirEntry is one readdir result.
type DirEntry struct {
	Name string
	Attr Attr
}

// Driver resolves filesystem operations against the cached inbox.
// All state (the three caches and the client handle) is guarded by a
// single mutex: FUSE callbacks arrive on multiple goroutines, but
// cache entries are read-then-written non-atomically within one
// operation, so the whole driver takes exclusive access per call.
type Driver struct {
	mu     sync.Mutex
	client Client
	logger *slog.Logger

	listing  *ttlCache[struct{}, *inboxIndex]
	details  *ttlCache[uint32, kivra.ItemDetails]
	contents *lruCache[attachmentAddress, []byte]
}

// NewDriver creates a driver over the given remote client. A nil clock
// defaults to real time; a nil logger discards nothing but uses the
// process default.
func NewDriver(client Client, clk clock.Clock, logger *slog.Logger) *Driver {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{
		client:   client,
		logger:   logger,
		listing:  newTTLCache[struct{}, *inboxIndex](clk, listingTTL),
		details:  newTTLCache[uint32, kivra.ItemDetails](clk, detailsTTL),
		contents: newLRUCache[attachmentAddress, []byte](attachmentCacheSize),
	}
}

// ---- Derived lookups (callers hold d.mu) ----

func (d *Driver) inboxIndex(ctx context.Context) (*inboxIndex, error) {
	return d.listing.getOrFetch(struct{}{}, func() (*inboxIndex, error) {
		listing, err := d.client.ListInbox(ctx)
		if err != nil {
			return nil, internalError(err)
		}
		return newInboxIndex(listing), nil
	})
}

func (d *Driver) inboxEntry(ctx context.Context, entryID uint32) (kivra.InboxEntry, error) {
	index, err := d.inboxIndex(ctx)
	if err != nil {
		return kivra.InboxEntry{}, err
	}
	entry, ok := index.byID[entryID]
	if !ok {
		return kivra.InboxEntry{}, ErrNotFound
	}
	return entry, nil
}

func (d *Driver) itemDetails(ctx context.Context, entryID uint32) (kivra.ItemDetails, error) {
	entry, err := d.inboxEntry(ctx, entryID)
	if err != nil {
		return kivra.ItemDetails{}, err
	}
	return d.details.getOrFetch(entryID, func() (kivra.ItemDetails, error) {
		details, err := d.client.GetItemDetails(ctx, entry.Item.Key)
		if err != nil {
			return kivra.ItemDetails{}, internalError(err)
		}
		return details, nil
	})
}

func (d *Driver) attachment(ctx context.Context, entryID, attachmentID uint32) (kivra.Attachment, error) {
	details, err := d.itemDetails(ctx, entryID)
	if err != nil {
		return kivra.Attachment{}, err
	}
	if int(attachmentID) >= len(details.Parts) {
		return kivra.Attachment{}, ErrNotFound
	}
	return details.Parts[attachmentID], nil
}

func (d *Driver) attachmentContents(ctx context.Context, entryID, attachmentID uint32) ([]byte, error) {
	entry, err := d.inboxEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	attachment, err := d.attachment(ctx, entryID, attachmentID)
	if err != nil {
		return nil, err
	}

	// Inline bodies are already in memory; only remote downloads go
	// through the LRU cache.
	switch {
	case attachment.Body != nil:
		return []byte(*attachment.Body), nil
	case attachment.Key != nil:
		address := attachmentAddress{entryID: entryID, attachmentID: attachmentID}
		return d.contents.getOrFetch(address, func() ([]byte, error) {
			body, err := d.client.DownloadAttachment(ctx, entry.Item.Key, *attachment.Key)
			if err != nil {
				return nil, internalError(err)
			}
			return body, nil
		})
	default:
		return nil, ErrInvalid
	}
}

// classify resolves an inode number to its attributes. Entry inodes
// are validated against the cached listing, attachment inodes against
// the cached details (picking up their size from the metadata), so a
// stale kernel handle to a vanished message surfaces as not-found.
func (d *Driver) classify(ctx context.Context, inode uint64) (Attr, error) {
	entryID, hasEntry := EntryID(inode)
	attachmentID, hasAttachment := AttachmentID(inode)

	switch {
	case !hasEntry:
		return Attr{Ino: RootInode, Mode: syscall.S_IFDIR | 0o500}, nil
	case !hasAttachment:
		if _, err := d.inboxEntry(ctx, entryID); err != nil {
			return Attr{}, err
		}
		return Attr{Ino: EncodeEntry(entryID), Mode: syscall.S_IFDIR | 0o500}, nil
	default:
		attachment, err := d.attachment(ctx, entryID, attachmentID)
		if err != nil {
			return Attr{}, err
		}
		return Attr{
			Ino:  EncodeAttachment(entryID, attachmentID),
			Size: uint64(attachment.Size),
			Mode: syscall.S_IFREG | 0o400,
		}, nil
	}
}

// children enumerates a directory inode in stable order: the root
// yields one entry per message by sequence number ascending, an entry
// yields one entry per attachment by position ascending.
func (d *Driver) children(ctx context.Context, inode uint64) ([]DirEntry, error) {
	attr, err := d.classify(ctx, inode)
	if err != nil {
		return nil, err
	}
	if !attr.Dir() {
		return nil, ErrIsNotDir
	}

	entryID, hasEntry := EntryID(inode)
	if !hasEntry {
		index, err := d.inboxIndex(ctx)
		if err != nil {
			return nil, err
		}
		entries := make([]DirEntry, 0, len(index.entries))
		for _, entry := range index.entries {
			entries = append(entries, DirEntry{
				Name: entry.DirName(),
				Attr: Attr{Ino: EncodeEntry(entry.ID), Mode: syscall.S_IFDIR | 0o500},
			})
		}
		return entries, nil
	}

	details, err := d.itemDetails(ctx, entryID)
	if err != nil {
		return nil, err
	}
	entries := make([]DirEntry, 0, len(details.Parts))
	for position, attachment := range details.Parts {
		name, ok := details.AttachmentName(position)
		if !ok {
			continue
		}
		entries = append(entries, DirEntry{
			Name: name,
			Attr: Attr{
				Ino:  EncodeAttachment(entryID, uint32(position)),
				Size: uint64(attachment.Size),
				Mode: syscall.S_IFREG | 0o400,
			},
		})
	}
	return entries, nil
}

// ---- Protocol operations ----

// Lookup resolves a child name within a directory inode.
func (d *Driver) Lookup(ctx context.Context, parent uint64, name string) (Attr, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	entryID, hasEntry := EntryID(parent)
	_, hasAttachment := AttachmentID(parent)

	// Root must classify before the attachment check: the root inode's
	// low word is nonzero, so AttachmentID reports true for it.
	switch {
	case !hasEntry:
		index, err := d.inboxIndex(ctx)
		if err != nil {
			return Attr{}, err
		}
		entry, ok := index.byName[name]
		if !ok {
			return Attr{}, ErrNotFound
		}
		return Attr{Ino: EncodeEntry(entry.ID), Mode: syscall.S_IFDIR | 0o500}, nil
	case hasAttachment:
		return Attr{}, ErrIsNotDir
	default:
		children, err := d.children(ctx, EncodeEntry(entryID))
		if err != nil {
			return Attr{}, err
		}
		for _, child := range children {
			if child.Name == name {
				return child.Attr, nil
			}
		}
		return Attr{}, ErrNotFound
	}
}

// Getattr reports the attributes of an inode.
func (d *Driver) Getattr(ctx context.Context, inode uint64) (Attr, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.classify(ctx, inode)
}

// Read returns up to size bytes of an attachment starting at offset.
// Offsets at or beyond the content length return an empty slice, never
// an error; reads that overrun the end are clamped.
func (d *Driver) Read(ctx context.Context, inode uint64, offset int64, size int) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	entryID, hasEntry := EntryID(inode)
	attachmentID, hasAttachment := AttachmentID(inode)
	if !hasEntry || !hasAttachment {
		return nil, ErrIsDir
	}

	contents, err := d.attachmentContents(ctx, entryID, attachmentID)
	if err != nil {
		return nil, err
	}

	if offset < 0 || offset >= int64(len(contents)) {
		return nil, nil
	}
	end := offset + int64(size)
	if end > int64(len(contents)) {
		end = int64(len(contents))
	}
	return contents[offset:end], nil
}

// ReadDir enumerates a directory inode starting at the given position.
// Order is stable within the cache freshness window, so a paginated
// kernel readdir never skips or duplicates entries unless the cache
// expired mid-enumeration.
func (d *Driver) ReadDir(ctx context.Context, inode uint64, offset int) ([]DirEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	children, err := d.children(ctx, inode)
	if err != nil {
		return nil, err
	}
	if offset >= len(children) {
		return nil, nil
	}
	if offset < 0 {
		offset = 0
	}
	return children[offset:], nil
}

// errno logs the error at its taxonomy severity and returns its POSIX
// projection. All FUSE callbacks funnel their failures through here.
func (d *Driver) errno(ctx context.Context, operation string, err error) syscall.Errno {
	d.logger.Log(ctx, LogLevel(err), operation, "error", err)
	return Errno(err)
}
