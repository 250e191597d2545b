// Copyright 2026 The Kivinge Authors
// SPDX-License-Identifier: Apache-2.0

// Package mailfs implements a read-only FUSE filesystem over the Kivra
// inbox. Each inbox item appears as a directory named after its sender
// and subject; each attachment appears as a regular file inside it.
//
// # Inode Numbering
//
// Every filesystem object maps bidirectionally to a 64-bit inode
// number: the root is inode 1, an inbox entry occupies the high 32
// bits (its sequence number plus one, so zero stays reserved), and an
// attachment adds its position plus one in the low 32 bits. The codec
// is pure; whether an inode number refers to a live message is checked
// against the cached listing, one layer up.
//
// # Caching
//
// The remote API is slow and rate-limited, so every operation goes
// through one of three caches: the inbox listing (single entry, 60
// second TTL), per-item details (keyed by sequence number, 60 minute
// TTL — item content is immutable once created), and attachment bytes
// (LRU of 10, no TTL — bodies are immutable, only memory residency
// matters). Fetch failures are never cached; a later call retries.
//
// # Write Path
//
// Not implemented. The mailbox is read-only; mutation operations
// return EROFS through the mount options.
package mailfs
