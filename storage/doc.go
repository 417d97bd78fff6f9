// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Kelpchain Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - maintain the on-disk transaction index
//
// maintain separate pools of a number of elements in key->value form
//
// This maintains a LevelDB database split into a series of tables.
// Each table is defined by a string discriminator tag that is
// obtained from the prefix tag in the struct defining the available
// tables.
//
// Notes:
// 1. each separate pool has a string tag prefix (groups the keys in LevelDB)
// 2. ++            = concatenation of byte data
// 3. block digest  = 32 byte scrypt hash of the packed block header
// 4. txId          = transaction digest as 32 byte SHA3-256(data)
// 5. *others*      = byte values of various length
//
// Block index:
//
//   blockindex ++ block digest - persisted block index records
//                                data: packed disk block index
//
// Transactions:
//
//   tx ++ txId                 - confirmed transaction locations
//                                data: packed tx index (disk position ++ spent markers)
//
// Metadata (single valued records, the full tag is the key):
//
//   hashBestChain              - digest of the best chain tip
//   bnBestInvalidTrust         - best invalid chain trust (big endian bytes)
//   hashSyncCheckpoint         - digest of the synchronised checkpoint
//   strCheckpointPubKey        - checkpoint signing key
//   version                    - database schema version (big endian uint32)
package storage
