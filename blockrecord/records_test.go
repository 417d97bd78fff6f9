// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Kelpchain Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockrecord_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kelpchain/kelpd/blockdigest"
	"github.com/kelpchain/kelpd/blockrecord"
	"github.com/kelpchain/kelpd/difficulty"
	"github.com/kelpchain/kelpd/fault"
	"github.com/kelpchain/kelpd/merkle"
)

func testHeader() blockrecord.Header {
	h := blockrecord.Header{
		Version:   1,
		Timestamp: 0x5d0e2f00,
		Bits:      difficulty.DefaultBits,
		Nonce:     0x41424344,
	}
	h.PreviousBlock[0] = 0x99
	h.MerkleRoot[0] = 0xaa
	return h
}

func TestHeaderPackUnpack(t *testing.T) {
	header := testHeader()

	packed := header.Pack()
	unpacked, err := packed.Unpack()
	assert.Nil(t, err, "unpack failed")
	assert.Equal(t, header, *unpacked, "header roundtrip mismatch")

	// digest must be stable over the packed form
	assert.Equal(t, packed.Digest(), header.Digest(), "digest mismatch")
	assert.False(t, header.Digest().IsEmpty(), "empty digest")
}

func TestDiskBlockIndexPackUnpack(t *testing.T) {
	record := &blockrecord.DiskBlockIndex{
		Header:        testHeader(),
		File:          3,
		Offset:        0x1000,
		Height:        129,
		Mint:          15000000,
		MoneySupply:   98765432100,
		Flags:         blockrecord.FlagProofOfStake,
		StakeModifier: 0x0123456789abcdef,
		StakeTime:     0x5d0e2e80,
	}
	record.Next[5] = 0x77
	record.StakeSpent.TxId[0] = 0x31
	record.StakeSpent.Index = 2
	record.ProofOfStake[1] = 0x66

	unpacked, err := record.Pack().Unpack()
	assert.Nil(t, err, "unpack failed")
	assert.Equal(t, record, unpacked, "index record roundtrip mismatch")
	assert.True(t, unpacked.IsProofOfStake(), "stake flag lost")
	assert.Equal(t, blockrecord.DiskPos{File: 3, Offset: 0x1000}, unpacked.BlockPos(), "block position mismatch")
}

func TestDiskBlockIndexShortBuffer(t *testing.T) {
	_, err := blockrecord.PackedDiskBlockIndex([]byte{1, 2, 3}).Unpack()
	assert.Equal(t, fault.ErrCannotDecodeRecord, err, "short buffer accepted")
}

func TestTxIndexSpentMarkers(t *testing.T) {
	pos := blockrecord.DiskTxPos{File: 1, BlockOffset: 0x200, TxOffset: 88}
	txindex := blockrecord.NewTxIndex(pos, 3)

	// all outputs start unspent
	for i := uint32(0); i < 3; i += 1 {
		assert.False(t, txindex.IsSpent(i), "output %d started spent", i)
	}

	spender := blockrecord.DiskTxPos{File: 1, BlockOffset: 0x400, TxOffset: 88}
	err := txindex.MarkSpent(1, spender)
	assert.Nil(t, err, "mark spent failed")
	assert.True(t, txindex.IsSpent(1), "output not marked")
	assert.False(t, txindex.IsSpent(0), "wrong output marked")

	// unmark by storing the null position
	err = txindex.MarkSpent(1, blockrecord.NullTxPos())
	assert.Nil(t, err, "unmark failed")
	assert.False(t, txindex.IsSpent(1), "output still marked")

	err = txindex.MarkSpent(7, spender)
	assert.Equal(t, fault.ErrOutOfRangeSpentIndex, err, "out of range accepted")

	unpacked, err := txindex.Pack().Unpack()
	assert.Nil(t, err, "unpack failed")
	assert.Equal(t, txindex, unpacked, "tx index roundtrip mismatch")
}

func TestTransactionPackUnpack(t *testing.T) {
	tx := &blockrecord.Transaction{
		Version:   1,
		Timestamp: 0x5d0e2f10,
		Vin: []blockrecord.TxIn{
			{PrevOut: blockrecord.OutPoint{Index: 1}, Sequence: 0xffffffff},
		},
		Vout: []blockrecord.TxOut{
			{Value: 5000000},
			{Value: 2500000},
		},
		LockTime: 0,
	}
	tx.Vin[0].PrevOut.TxId[0] = 0x21

	packed := tx.Pack()
	unpacked, consumed, err := packed.Unpack()
	assert.Nil(t, err, "unpack failed")
	assert.Equal(t, len(packed), consumed, "consumed length mismatch")
	assert.Equal(t, tx, unpacked, "transaction roundtrip mismatch")

	assert.True(t, tx.SpendsOutput(tx.Vin[0].PrevOut.TxId, 1), "spend not detected")
	assert.False(t, tx.SpendsOutput(tx.Vin[0].PrevOut.TxId, 2), "wrong output matched")
	assert.False(t, tx.SpendsOutput(merkle.Digest{}, 1), "wrong transaction matched")
}

func TestBlockPackUnpack(t *testing.T) {
	txs := []blockrecord.Transaction{
		{
			Version:   1,
			Timestamp: 0x5d0e2f00,
			Vin:       []blockrecord.TxIn{{PrevOut: blockrecord.NullOutPoint()}},
			Vout:      []blockrecord.TxOut{{Value: 100}},
		},
		{
			Version:   1,
			Timestamp: 0x5d0e2f01,
			Vin:       []blockrecord.TxIn{{PrevOut: blockrecord.OutPoint{Index: 0}}},
			Vout:      []blockrecord.TxOut{{Value: 60}, {Value: 40}},
		},
	}
	block := &blockrecord.Block{
		Header: testHeader(),
		Txs:    txs,
	}

	unpacked, err := block.Pack().Unpack()
	assert.Nil(t, err, "unpack failed")
	assert.Equal(t, block, unpacked, "block roundtrip mismatch")
	assert.Equal(t, block.Header.Digest(), unpacked.Digest(), "block digest mismatch")
}

func TestNullPositions(t *testing.T) {
	assert.True(t, blockrecord.NullPos().IsNull(), "null pos not null")
	assert.True(t, blockrecord.NullTxPos().IsNull(), "null tx pos not null")
	assert.True(t, blockrecord.NullOutPoint().IsNull(), "null out point not null")
	assert.False(t, blockrecord.DiskPos{File: 1, Offset: 0}.IsNull(), "real pos is null")

	var proofOfStake blockdigest.Digest
	assert.True(t, proofOfStake.IsEmpty(), "zero digest not empty")
}
