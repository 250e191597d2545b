// Copyright 2026 The Kivinge Authors
// SPDX-License-Identifier: Apache-2.0

package mailfs

// RootInode is the reserved inode number of the mount root.
const RootInode uint64 = 1

// EncodeEntry packs an inbox entry's sequence number into an inode
// number. The sequence number is offset by one so that a zero high
// word always means "no entry", keeping the root distinguishable.
func EncodeEntry(entryID uint32) uint64 {
	return (uint64(entryID) + 1) << 32
}

// EncodeAttachment packs an (entry, attachment) pair into an inode
// number. Both halves are offset by one; a zero low word means "no
// attachment", i.e. the inode is the entry directory itself.
func EncodeAttachment(entryID, attachmentID uint32) uint64 {
	return (uint64(entryID)+1)<<32 | (uint64(attachmentID) + 1)
}

// EntryID extracts the entry sequence number from an inode number.
// Returns false iff the high 32 bits are zero, i.e. the inode is the
// root.
func EntryID(inode uint64) (uint32, bool) {
	high := uint32(inode >> 32)
	if high == 0 {
		return 0, false
	}
	return high - 1, true
}

// AttachmentID extracts the attachment position from an inode number.
// Returns false iff the low 32 bits are zero, i.e. the inode is a
// directory (the root or an entry).
func AttachmentID(inode uint64) (uint32, bool) {
	low := uint32(inode)
	if low == 0 {
		return 0, false
	}
	return low - 1, true
}
