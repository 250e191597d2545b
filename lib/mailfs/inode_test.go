// Copyright 2026 The Kivinge Authors
// SPDX-License-Identifier: Apache-2.0

package mailfs

import (
	"math"
	"testing"
)

func TestRootInodeIsOne(t *testing.T) {
	if RootInode != 1 {
		t.Fatalf("RootInode = %d, want 1", RootInode)
	}
	if _, ok := EntryID(RootInode); ok {
		t.Error("EntryID(root) should report no entry")
	}
	if _, ok := AttachmentID(EncodeEntry(0)); ok {
		t.Error("AttachmentID(entry) should report no attachment")
	}
}

func TestEntryRoundTrip(t *testing.T) {
	// Boundary values of the representable range 0..2^32-2.
	for _, entryID := range []uint32{0, 1, 7, 1 << 16, math.MaxUint32 - 1} {
		inode := EncodeEntry(entryID)
		got, ok := EntryID(inode)
		if !ok {
			t.Fatalf("EntryID(EncodeEntry(%d)) reported no entry", entryID)
		}
		if got != entryID {
			t.Errorf("EntryID(EncodeEntry(%d)) = %d", entryID, got)
		}
		if _, ok := AttachmentID(inode); ok {
			t.Errorf("entry inode %#x classified as attachment", inode)
		}
	}
}

func TestAttachmentRoundTrip(t *testing.T) {
	for _, entryID := range []uint32{0, 42, math.MaxUint32 - 1} {
		for _, attachmentID := range []uint32{0, 9, math.MaxUint32 - 1} {
			inode := EncodeAttachment(entryID, attachmentID)
			gotEntry, ok := EntryID(inode)
			if !ok || gotEntry != entryID {
				t.Errorf("EntryID(%#x) = %d, %v; want %d, true", inode, gotEntry, ok, entryID)
			}
			gotAttachment, ok := AttachmentID(inode)
			if !ok || gotAttachment != attachmentID {
				t.Errorf("AttachmentID(%#x) = %d, %v; want %d, true", inode, gotAttachment, ok, attachmentID)
			}
		}
	}
}

func TestNoCollisions(t *testing.T) {
	// Distinct addresses must encode to distinct inode numbers.
	seen := map[uint64]string{RootInode: "root"}
	for entryID := uint32(0); entryID < 8; entryID++ {
		inode := EncodeEntry(entryID)
		if prior, ok := seen[inode]; ok {
			t.Fatalf("entry %d collides with %s", entryID, prior)
		}
		seen[inode] = "entry"
		for attachmentID := uint32(0); attachmentID < 8; attachmentID++ {
			inode := EncodeAttachment(entryID, attachmentID)
			if prior, ok := seen[inode]; ok {
				t.Fatalf("attachment (%d,%d) collides with %s", entryID, attachmentID, prior)
			}
			seen[inode] = "attachment"
		}
	}
}
