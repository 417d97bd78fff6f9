// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Kelpchain Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockrecord

import (
	"encoding/binary"
	"fmt"

	"github.com/kelpchain/kelpd/fault"
	"github.com/kelpchain/kelpd/merkle"
)

// OutPoint - reference to one output of one transaction
type OutPoint struct {
	TxId  merkle.Digest `json:"txId"`
	Index uint32        `json:"index"`
}

// OutPointSize - bytes in a packed out point
const OutPointSize = merkle.DigestLength + 4

// NullOutPoint - an unset out point
func NullOutPoint() OutPoint {
	return OutPoint{Index: nullMarker}
}

// IsNull - detect an unset out point
func (o OutPoint) IsNull() bool {
	return nullMarker == o.Index && o.TxId.IsEmpty()
}

func (o OutPoint) String() string {
	return fmt.Sprintf("%s:%d", o.TxId, o.Index)
}

func (o OutPoint) pack(buffer []byte) {
	copy(buffer, o.TxId[:])
	binary.LittleEndian.PutUint32(buffer[merkle.DigestLength:], o.Index)
}

func unpackOutPoint(buffer []byte) OutPoint {
	o := OutPoint{}
	copy(o.TxId[:], buffer[:merkle.DigestLength])
	o.Index = binary.LittleEndian.Uint32(buffer[merkle.DigestLength:])
	return o
}

// TxIn - one input of a transaction
type TxIn struct {
	PrevOut  OutPoint `json:"prevOut"`
	Sequence uint32   `json:"sequence"`
}

const txInSize = OutPointSize + 4

// TxOut - one output of a transaction
type TxOut struct {
	Value int64 `json:"value"`
}

const txOutSize = 8

// Transaction - the in-memory transaction form
//
// scripts and witnesses belong to the semantic validation layer and
// are not represented here
type Transaction struct {
	Version   uint32  `json:"version"`
	Timestamp uint32  `json:"timestamp"`
	Vin       []TxIn  `json:"vin"`
	Vout      []TxOut `json:"vout"`
	LockTime  uint32  `json:"lockTime"`
}

// PackedTransaction - a packed transaction is a byte slice
type PackedTransaction []byte

// Pack - turn a transaction into bytes
func (tx *Transaction) Pack() PackedTransaction {
	size := 4 + 4 + 4 + len(tx.Vin)*txInSize + 4 + len(tx.Vout)*txOutSize + 4
	buffer := make([]byte, size)

	binary.LittleEndian.PutUint32(buffer[0:], tx.Version)
	binary.LittleEndian.PutUint32(buffer[4:], tx.Timestamp)

	offset := 8
	binary.LittleEndian.PutUint32(buffer[offset:], uint32(len(tx.Vin)))
	offset += 4
	for _, in := range tx.Vin {
		in.PrevOut.pack(buffer[offset:])
		binary.LittleEndian.PutUint32(buffer[offset+OutPointSize:], in.Sequence)
		offset += txInSize
	}

	binary.LittleEndian.PutUint32(buffer[offset:], uint32(len(tx.Vout)))
	offset += 4
	for _, out := range tx.Vout {
		binary.LittleEndian.PutUint64(buffer[offset:], uint64(out.Value))
		offset += txOutSize
	}

	binary.LittleEndian.PutUint32(buffer[offset:], tx.LockTime)

	return buffer
}

// Unpack - decode a transaction from the front of a buffer
//
// returns the transaction and the number of bytes consumed
func (record PackedTransaction) Unpack() (*Transaction, int, error) {
	if len(record) < 16 {
		return nil, 0, fault.ErrCannotDecodeRecord
	}

	tx := &Transaction{}
	tx.Version = binary.LittleEndian.Uint32(record[0:])
	tx.Timestamp = binary.LittleEndian.Uint32(record[4:])

	offset := 8
	vinCount := int(binary.LittleEndian.Uint32(record[offset:]))
	offset += 4
	if len(record) < offset+vinCount*txInSize+4 {
		return nil, 0, fault.ErrCannotDecodeRecord
	}
	tx.Vin = make([]TxIn, vinCount)
	for i := 0; i < vinCount; i += 1 {
		tx.Vin[i].PrevOut = unpackOutPoint(record[offset:])
		tx.Vin[i].Sequence = binary.LittleEndian.Uint32(record[offset+OutPointSize:])
		offset += txInSize
	}

	voutCount := int(binary.LittleEndian.Uint32(record[offset:]))
	offset += 4
	if len(record) < offset+voutCount*txOutSize+4 {
		return nil, 0, fault.ErrCannotDecodeRecord
	}
	tx.Vout = make([]TxOut, voutCount)
	for i := 0; i < voutCount; i += 1 {
		tx.Vout[i].Value = int64(binary.LittleEndian.Uint64(record[offset:]))
		offset += txOutSize
	}

	tx.LockTime = binary.LittleEndian.Uint32(record[offset:])
	offset += 4

	return tx, offset, nil
}

// Digest - the transaction id
func (tx *Transaction) Digest() merkle.Digest {
	return merkle.NewDigest(tx.Pack())
}

// SpendsOutput - check that one of the inputs references the given output
func (tx *Transaction) SpendsOutput(txId merkle.Digest, index uint32) bool {
	for _, in := range tx.Vin {
		if in.PrevOut.TxId == txId && in.PrevOut.Index == index {
			return true
		}
	}
	return false
}
