// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Kelpchain Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blockrecord - record layouts for the persistent chain index
//
// all records use fixed little endian layouts:
//
//   header           - the 80 byte block header, its scrypt digest is
//                      the block identity
//   disk block index - one block's metadata without transaction
//                      bodies, keyed by block digest in the store
//   tx index         - a transaction's disk position plus one spent
//                      marker per output
//   block, transaction - the in-memory forms walked by the chain
//                      verifier, packable for flat file storage
package blockrecord
