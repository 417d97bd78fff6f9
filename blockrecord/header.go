// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Kelpchain Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockrecord

import (
	"encoding/binary"

	"github.com/kelpchain/kelpd/blockdigest"
	"github.com/kelpchain/kelpd/fault"
	"github.com/kelpchain/kelpd/merkle"
)

// PackedHeader - use fixed size array to simplify validation
type PackedHeader [totalHeaderSize]byte

// currently supported block version
const (
	Version        = 1
	MinimumVersion = 1
)

// byte sizes for various fields
const (
	VersionSize       = 4                   // Block version number
	PreviousBlockSize = blockdigest.Length  // 256-bit scrypt hash of the previous block header
	MerkleRootSize    = merkle.DigestLength // 256-bit SHA3 hash based on all of the transactions in the block
	TimestampSize     = 4                   // Current timestamp as seconds since 1970-01-01T00:00 UTC
	BitsSize          = 4                   // Current target difficulty in compact format
	NonceSize         = 4                   // 32-bit number (starts at 0)
)

// offsets of the fields
const (
	versionOffset       = 0
	previousBlockOffset = versionOffset + VersionSize
	merkleRootOffset    = previousBlockOffset + PreviousBlockSize
	timestampOffset     = merkleRootOffset + MerkleRootSize
	bitsOffset          = timestampOffset + TimestampSize
	nonceOffset         = bitsOffset + BitsSize

	// to set size of header array
	totalHeaderSize = nonceOffset + NonceSize // total bytes in the header
)

// PackedHeaderSize - total bytes in a packed header
const PackedHeaderSize = totalHeaderSize

// Header - the unpacked header structure
type Header struct {
	Version       uint32             `json:"version"`
	PreviousBlock blockdigest.Digest `json:"previousBlock"`
	MerkleRoot    merkle.Digest      `json:"merkleRoot"`
	Timestamp     uint32             `json:"timestamp"`
	Bits          uint32             `json:"bits"`
	Nonce         uint32             `json:"nonce"`
}

// Unpack - turn a byte array into a header structure
func (record PackedHeader) Unpack() (*Header, error) {

	header := &Header{}

	header.Version = binary.LittleEndian.Uint32(record[versionOffset:])
	if header.Version < MinimumVersion {
		return nil, fault.ErrBlockVersionMustBeLeast1
	}

	err := blockdigest.DigestFromBytes(&header.PreviousBlock, record[previousBlockOffset:merkleRootOffset])
	if nil != err {
		return nil, err
	}

	err = merkle.DigestFromBytes(&header.MerkleRoot, record[merkleRootOffset:timestampOffset])
	if nil != err {
		return nil, err
	}

	header.Timestamp = binary.LittleEndian.Uint32(record[timestampOffset:])
	header.Bits = binary.LittleEndian.Uint32(record[bitsOffset:])
	header.Nonce = binary.LittleEndian.Uint32(record[nonceOffset:])

	return header, nil
}

// Digest - digest for a packed header
//
// this is the block identity used as the store key
func (record PackedHeader) Digest() blockdigest.Digest {
	return blockdigest.NewDigest(record[:])
}

// Pack - turn a header structure into an array of bytes
func (header *Header) Pack() PackedHeader {
	buffer := PackedHeader{}

	binary.LittleEndian.PutUint32(buffer[versionOffset:], header.Version)

	// these are in little endian order so can just copy them
	copy(buffer[previousBlockOffset:], header.PreviousBlock[:])
	copy(buffer[merkleRootOffset:], header.MerkleRoot[:])

	binary.LittleEndian.PutUint32(buffer[timestampOffset:], header.Timestamp)
	binary.LittleEndian.PutUint32(buffer[bitsOffset:], header.Bits)
	binary.LittleEndian.PutUint32(buffer[nonceOffset:], header.Nonce)

	return buffer
}

// Digest - the block identity of an unpacked header
func (header *Header) Digest() blockdigest.Digest {
	packed := header.Pack()
	return packed.Digest()
}
