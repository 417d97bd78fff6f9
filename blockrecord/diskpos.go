// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Kelpchain Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockrecord

import (
	"encoding/binary"
	"fmt"
)

// the null marker for unset positions
const nullMarker = 0xffffffff

// DiskPos - position of a block body in the numbered flat files
type DiskPos struct {
	File   uint32 `json:"file"`
	Offset uint32 `json:"offset"`
}

// NullPos - an unset block position
func NullPos() DiskPos {
	return DiskPos{File: nullMarker, Offset: nullMarker}
}

// IsNull - detect an unset position
func (p DiskPos) IsNull() bool {
	return nullMarker == p.File && nullMarker == p.Offset
}

func (p DiskPos) String() string {
	if p.IsNull() {
		return "(null)"
	}
	return fmt.Sprintf("(blk%04d.dat, %d)", p.File, p.Offset)
}

// DiskTxPos - position of a transaction inside a stored block
type DiskTxPos struct {
	File        uint32 `json:"file"`
	BlockOffset uint32 `json:"blockOffset"`
	TxOffset    uint32 `json:"txOffset"`
}

// DiskTxPosSize - bytes in a packed transaction position
const DiskTxPosSize = 12

// NullTxPos - an unset transaction position, the unspent marker
func NullTxPos() DiskTxPos {
	return DiskTxPos{File: nullMarker, BlockOffset: nullMarker, TxOffset: nullMarker}
}

// IsNull - detect the unspent marker
func (p DiskTxPos) IsNull() bool {
	return nullMarker == p.File && nullMarker == p.BlockOffset && nullMarker == p.TxOffset
}

// BlockPos - the position of the block containing this transaction
func (p DiskTxPos) BlockPos() DiskPos {
	return DiskPos{File: p.File, Offset: p.BlockOffset}
}

func (p DiskTxPos) String() string {
	if p.IsNull() {
		return "(null)"
	}
	return fmt.Sprintf("(blk%04d.dat, %d, %d)", p.File, p.BlockOffset, p.TxOffset)
}

// pack a transaction position into a buffer at an offset
func (p DiskTxPos) pack(buffer []byte) {
	binary.LittleEndian.PutUint32(buffer[0:], p.File)
	binary.LittleEndian.PutUint32(buffer[4:], p.BlockOffset)
	binary.LittleEndian.PutUint32(buffer[8:], p.TxOffset)
}

// unpack a transaction position from the front of a buffer
func unpackDiskTxPos(buffer []byte) DiskTxPos {
	return DiskTxPos{
		File:        binary.LittleEndian.Uint32(buffer[0:]),
		BlockOffset: binary.LittleEndian.Uint32(buffer[4:]),
		TxOffset:    binary.LittleEndian.Uint32(buffer[8:]),
	}
}
