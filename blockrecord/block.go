// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Kelpchain Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockrecord

import (
	"encoding/binary"

	"github.com/kelpchain/kelpd/blockdigest"
	"github.com/kelpchain/kelpd/fault"
)

// Block - a block header with its transactions
type Block struct {
	Header Header        `json:"header"`
	Txs    []Transaction `json:"txs"`
}

// PackedBlock - a packed block is a byte slice
type PackedBlock []byte

// Pack - turn a block into bytes for flat file storage
func (block *Block) Pack() PackedBlock {
	packedHeader := block.Header.Pack()

	buffer := make([]byte, 0, totalHeaderSize+4)
	buffer = append(buffer, packedHeader[:]...)

	count := make([]byte, 4)
	binary.LittleEndian.PutUint32(count, uint32(len(block.Txs)))
	buffer = append(buffer, count...)

	length := make([]byte, 4)
	for i := range block.Txs {
		packedTx := block.Txs[i].Pack()
		binary.LittleEndian.PutUint32(length, uint32(len(packedTx)))
		buffer = append(buffer, length...)
		buffer = append(buffer, packedTx...)
	}
	return buffer
}

// Unpack - decode a block
func (record PackedBlock) Unpack() (*Block, error) {
	if len(record) < totalHeaderSize+4 {
		return nil, fault.ErrInvalidBlockHeaderSize
	}

	packedHeader := PackedHeader{}
	copy(packedHeader[:], record[:totalHeaderSize])
	header, err := packedHeader.Unpack()
	if nil != err {
		return nil, err
	}

	block := &Block{Header: *header}

	offset := totalHeaderSize
	count := int(binary.LittleEndian.Uint32(record[offset:]))
	offset += 4

	block.Txs = make([]Transaction, 0, count)
	for i := 0; i < count; i += 1 {
		if len(record) < offset+4 {
			return nil, fault.ErrCannotDecodeRecord
		}
		length := int(binary.LittleEndian.Uint32(record[offset:]))
		offset += 4
		if len(record) < offset+length {
			return nil, fault.ErrCannotDecodeRecord
		}
		tx, _, err := PackedTransaction(record[offset : offset+length]).Unpack()
		if nil != err {
			return nil, err
		}
		block.Txs = append(block.Txs, *tx)
		offset += length
	}

	return block, nil
}

// Digest - the block identity
func (block *Block) Digest() blockdigest.Digest {
	return block.Header.Digest()
}
