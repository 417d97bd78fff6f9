// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Kelpchain Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package genesis - the well-known first blocks of each chain
//
// the index loader watches for these digests to find the chain root
package genesis

import (
	"github.com/kelpchain/kelpd/blockdigest"
	"github.com/kelpchain/kelpd/blockrecord"
	"github.com/kelpchain/kelpd/difficulty"
	"github.com/kelpchain/kelpd/merkle"
)

// BlockNumber - height of the genesis block
const BlockNumber = 0

// the genesis coinbase messages fix the merkle roots
var (
	liveMerkleRoot = merkle.NewDigest([]byte("kelp 2019-06-21 holdfast anchors the frond"))
	testMerkleRoot = merkle.NewDigest([]byte("kelp testnet 2019-06-21"))
)

// LiveGenesisHeader - header of the live chain genesis block
var LiveGenesisHeader = blockrecord.Header{
	Version:    1,
	MerkleRoot: liveMerkleRoot,
	Timestamp:  1561075200,
	Bits:       difficulty.DefaultBits,
	Nonce:      2083236893,
}

// TestGenesisHeader - header of the testing chain genesis block
var TestGenesisHeader = blockrecord.Header{
	Version:    1,
	MerkleRoot: testMerkleRoot,
	Timestamp:  1561075201,
	Bits:       difficulty.DefaultBits,
	Nonce:      414098458,
}

// LiveGenesisDigest - block identity of the live genesis block
var LiveGenesisDigest = LiveGenesisHeader.Digest()

// TestGenesisDigest - block identity of the testing genesis block
var TestGenesisDigest = TestGenesisHeader.Digest()

// IsGenesisDigest - watch for a genesis block during index load
func IsGenesisDigest(digest blockdigest.Digest, testing bool) bool {
	if testing {
		return digest == TestGenesisDigest
	}
	return digest == LiveGenesisDigest
}
