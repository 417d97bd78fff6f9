// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Kelpchain Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockrecord

import (
	"encoding/binary"

	"github.com/kelpchain/kelpd/fault"
)

// TxIndex - one transaction's disk position plus a spent marker per
// output
//
// a null marker means the output is unspent, otherwise it records
// the position of the spending transaction
type TxIndex struct {
	Pos   DiskTxPos   `json:"pos"`
	Spent []DiskTxPos `json:"spent"`
}

// PackedTxIndex - a packed tx index record is a byte slice
type PackedTxIndex []byte

// NewTxIndex - index for a freshly confirmed transaction, every
// output starts unspent
func NewTxIndex(pos DiskTxPos, outputs int) *TxIndex {
	spent := make([]DiskTxPos, outputs)
	for i := 0; i < outputs; i += 1 {
		spent[i] = NullTxPos()
	}
	return &TxIndex{
		Pos:   pos,
		Spent: spent,
	}
}

// MarkSpent - record the spending transaction of one output
func (txindex *TxIndex) MarkSpent(output uint32, pos DiskTxPos) error {
	if int(output) >= len(txindex.Spent) {
		return fault.ErrOutOfRangeSpentIndex
	}
	txindex.Spent[output] = pos
	return nil
}

// IsSpent - check the marker of one output
func (txindex *TxIndex) IsSpent(output uint32) bool {
	if int(output) >= len(txindex.Spent) {
		return false
	}
	return !txindex.Spent[output].IsNull()
}

// Pack - turn a tx index into bytes
func (txindex *TxIndex) Pack() PackedTxIndex {
	buffer := make([]byte, DiskTxPosSize+4+len(txindex.Spent)*DiskTxPosSize)

	txindex.Pos.pack(buffer)
	binary.LittleEndian.PutUint32(buffer[DiskTxPosSize:], uint32(len(txindex.Spent)))

	offset := DiskTxPosSize + 4
	for _, pos := range txindex.Spent {
		pos.pack(buffer[offset:])
		offset += DiskTxPosSize
	}
	return buffer
}

// Unpack - turn bytes back into a tx index
func (record PackedTxIndex) Unpack() (*TxIndex, error) {
	if len(record) < DiskTxPosSize+4 {
		return nil, fault.ErrCannotDecodeRecord
	}

	count := int(binary.LittleEndian.Uint32(record[DiskTxPosSize:]))
	if len(record) != DiskTxPosSize+4+count*DiskTxPosSize {
		return nil, fault.ErrCannotDecodeRecord
	}

	txindex := &TxIndex{
		Pos:   unpackDiskTxPos(record),
		Spent: make([]DiskTxPos, count),
	}

	offset := DiskTxPosSize + 4
	for i := 0; i < count; i += 1 {
		txindex.Spent[i] = unpackDiskTxPos(record[offset:])
		offset += DiskTxPosSize
	}
	return txindex, nil
}
