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

// block flag bits
const (
	FlagProofOfStake  uint32 = 1 << iota // block is proof-of-stake
	FlagStakeEntropy                     // entropy bit for stake modifier
	FlagStakeModifier                    // regenerated stake modifier
)

// byte sizes of the non-header fields
const (
	NextBlockSize     = blockdigest.Length
	FileSize          = 4
	OffsetSize        = 4
	HeightSize        = 8
	MintSize          = 8
	MoneySupplySize   = 8
	FlagsSize         = 4
	StakeModifierSize = 8
	StakeSpentSize    = OutPointSize
	StakeTimeSize     = 4
	ProofOfStakeSize  = blockdigest.Length
)

// offsets of the fields, the embedded header comes first
const (
	nextBlockOffset     = totalHeaderSize
	fileOffset          = nextBlockOffset + NextBlockSize
	offsetOffset        = fileOffset + FileSize
	heightOffset        = offsetOffset + OffsetSize
	mintOffset          = heightOffset + HeightSize
	moneySupplyOffset   = mintOffset + MintSize
	flagsOffset         = moneySupplyOffset + MoneySupplySize
	stakeModifierOffset = flagsOffset + FlagsSize
	stakeSpentOffset    = stakeModifierOffset + StakeModifierSize
	stakeTimeOffset     = stakeSpentOffset + StakeSpentSize
	proofOfStakeOffset  = stakeTimeOffset + StakeTimeSize

	totalDiskBlockIndexSize = proofOfStakeOffset + ProofOfStakeSize
)

// DiskBlockIndex - one block's persisted metadata without its
// transaction bodies
//
// the embedded header carries the link to the previous block; the
// record key in the store is the scrypt digest of that header
type DiskBlockIndex struct {
	Header

	Next          blockdigest.Digest `json:"next"`
	File          uint32             `json:"file"`
	Offset        uint32             `json:"offset"`
	Height        uint64             `json:"height"`
	Mint          int64              `json:"mint"`
	MoneySupply   int64              `json:"moneySupply"`
	Flags         uint32             `json:"flags"`
	StakeModifier uint64             `json:"stakeModifier"`
	StakeSpent    OutPoint           `json:"stakeSpent"`
	StakeTime     uint32             `json:"stakeTime"`
	ProofOfStake  blockdigest.Digest `json:"proofOfStake"`
}

// PackedDiskBlockIndex - a packed index record is a byte slice
type PackedDiskBlockIndex []byte

// IsProofOfStake - check the proof-of-stake flag
func (record *DiskBlockIndex) IsProofOfStake() bool {
	return 0 != record.Flags&FlagProofOfStake
}

// BlockPos - the position of the full block body
func (record *DiskBlockIndex) BlockPos() DiskPos {
	return DiskPos{File: record.File, Offset: record.Offset}
}

// Pack - turn an index record into bytes
func (record *DiskBlockIndex) Pack() PackedDiskBlockIndex {
	buffer := make([]byte, totalDiskBlockIndexSize)

	packedHeader := record.Header.Pack()
	copy(buffer, packedHeader[:])

	copy(buffer[nextBlockOffset:], record.Next[:])
	binary.LittleEndian.PutUint32(buffer[fileOffset:], record.File)
	binary.LittleEndian.PutUint32(buffer[offsetOffset:], record.Offset)
	binary.LittleEndian.PutUint64(buffer[heightOffset:], record.Height)
	binary.LittleEndian.PutUint64(buffer[mintOffset:], uint64(record.Mint))
	binary.LittleEndian.PutUint64(buffer[moneySupplyOffset:], uint64(record.MoneySupply))
	binary.LittleEndian.PutUint32(buffer[flagsOffset:], record.Flags)
	binary.LittleEndian.PutUint64(buffer[stakeModifierOffset:], record.StakeModifier)
	record.StakeSpent.pack(buffer[stakeSpentOffset:])
	binary.LittleEndian.PutUint32(buffer[stakeTimeOffset:], record.StakeTime)
	copy(buffer[proofOfStakeOffset:], record.ProofOfStake[:])

	return buffer
}

// Unpack - turn bytes back into an index record
func (record PackedDiskBlockIndex) Unpack() (*DiskBlockIndex, error) {
	if totalDiskBlockIndexSize != len(record) {
		return nil, fault.ErrCannotDecodeRecord
	}

	packedHeader := PackedHeader{}
	copy(packedHeader[:], record[:totalHeaderSize])
	header, err := packedHeader.Unpack()
	if nil != err {
		return nil, err
	}

	index := &DiskBlockIndex{Header: *header}

	copy(index.Next[:], record[nextBlockOffset:fileOffset])
	index.File = binary.LittleEndian.Uint32(record[fileOffset:])
	index.Offset = binary.LittleEndian.Uint32(record[offsetOffset:])
	index.Height = binary.LittleEndian.Uint64(record[heightOffset:])
	index.Mint = int64(binary.LittleEndian.Uint64(record[mintOffset:]))
	index.MoneySupply = int64(binary.LittleEndian.Uint64(record[moneySupplyOffset:]))
	index.Flags = binary.LittleEndian.Uint32(record[flagsOffset:])
	index.StakeModifier = binary.LittleEndian.Uint64(record[stakeModifierOffset:])
	index.StakeSpent = unpackOutPoint(record[stakeSpentOffset:])
	index.StakeTime = binary.LittleEndian.Uint32(record[stakeTimeOffset:])
	copy(index.ProofOfStake[:], record[proofOfStakeOffset:])

	return index, nil
}
