// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Kelpchain Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockindex

import (
	"fmt"
	"math/big"

	"github.com/kelpchain/kelpd/blockdigest"
	"github.com/kelpchain/kelpd/blockrecord"
	"github.com/kelpchain/kelpd/difficulty"
	"github.com/kelpchain/kelpd/merkle"
)

// Node - one block's metadata in the in-memory chain graph
//
// a node is created as a placeholder the first time its digest is
// referenced, by itself or by a neighbour, and filled in when its
// own persisted record is consumed; the digest never changes after
// insertion
type Node struct {
	// neighbour links, non-owning references into the same graph
	Previous *Node
	Next     *Node

	File   uint32
	Offset uint32
	Height uint64

	Mint        int64
	MoneySupply int64

	Flags         uint32
	StakeModifier uint64
	StakeSpent    blockrecord.OutPoint
	StakeTime     uint32
	ProofOfStake  blockdigest.Digest

	// header fields
	Version    uint32
	MerkleRoot merkle.Digest
	Timestamp  uint32
	Bits       uint32
	Nonce      uint32

	// computed during trust accumulation, never persisted
	ChainTrust *big.Int

	digest blockdigest.Digest
	filled bool
}

// Digest - the block identity
func (node *Node) Digest() blockdigest.Digest {
	return node.digest
}

// Filled - false while the node is only a placeholder created from a
// neighbour reference
func (node *Node) Filled() bool {
	return node.filled
}

// IsProofOfStake - check the proof-of-stake flag
func (node *Node) IsProofOfStake() bool {
	return 0 != node.Flags&blockrecord.FlagProofOfStake
}

// BlockTrust - the intrinsic trust contribution of this block
func (node *Node) BlockTrust() *big.Int {
	return difficulty.BlockTrust(node.Bits, node.IsProofOfStake())
}

// BlockPos - the position of the full block body on disk
func (node *Node) BlockPos() blockrecord.DiskPos {
	return blockrecord.DiskPos{File: node.File, Offset: node.Offset}
}

// Header - rebuild the block header from the node fields
func (node *Node) Header() blockrecord.Header {
	previous := blockdigest.Digest{}
	if nil != node.Previous {
		previous = node.Previous.Digest()
	}
	return blockrecord.Header{
		Version:       node.Version,
		PreviousBlock: previous,
		MerkleRoot:    node.MerkleRoot,
		Timestamp:     node.Timestamp,
		Bits:          node.Bits,
		Nonce:         node.Nonce,
	}
}

func (node *Node) String() string {
	return fmt.Sprintf("block %d %s", node.Height, node.digest)
}
